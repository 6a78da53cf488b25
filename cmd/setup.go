package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"spotfave/internal/server"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// Setup creates the config file if missing and runs the OAuth2 flow.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Created %s\n", configPath)
		r.writePlain("  Fill in your Spotify client_id and client_secret, then run 'spotfave setup' again.\n")
		return nil
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config
	r.configPath = configPath

	if cmd.Bool("skip-auth") {
		r.writePlain("✓ Config file %s is in place\n", configPath)
		return nil
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrInvalidArgument, configPath)
	}

	spotifyService, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, config, spotifyService, "authorization")
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := spotifyService.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to authenticate with new tokens: %w", err)
	}
	r.catalog = spotifyService
	r.SetLogger(r.logger)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)

	if playlists, listErr := spotifyService.UserPlaylists(ctx); listErr == nil {
		r.writePlain("Your playlists:\n")
		for _, p := range playlists {
			r.writePlain("  - %s (%d tracks)\n", p.Name, p.TrackCount)
		}
		r.writePlain("\n")
	} else {
		r.logger.Warn("failed to list playlists after setup", "error", listErr)
	}

	if genres := config.GenreNames(); len(genres) > 0 {
		r.writePlain("Configured genre groups: %s\n\n", strings.Join(genres, ", "))
	}

	r.writePlain("You can now use: spotfave add <track-url>\n")

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	token, err := server.WaitForCallback(ctx, router, oauthHandler, serverAddr, 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	return token, nil
}

// handleAuthError checks if an error is a token expiration error and triggers reauthorization if needed.
func (r *Runner) handleAuthError(ctx context.Context, err error) (bool, error) {
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...\n")

	oauthSrv, ok := r.catalog.(services.OAuthService)
	if !ok {
		return true, fmt.Errorf("catalog service does not support reauthorization")
	}

	token, reauthErr := r.doOAuth(ctx, r.config, oauthSrv, "reauthorization")
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}

	if updateErr := r.config.Credentials.Spotify.Update(token); updateErr != nil {
		return true, fmt.Errorf("failed to update spotify configuration: %w", updateErr)
	}

	if saveErr := shared.SaveConfig(r.configPath, r.config); saveErr != nil {
		r.logger.Warn("failed to persist refreshed tokens", "error", saveErr)
	}

	if authErr := oauthSrv.OAuthenticate(ctx, token); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...\n")

	return true, nil
}
