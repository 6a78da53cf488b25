package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"spotfave/internal/repositories"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	var catalog services.CatalogService

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			if config.Credentials.Spotify.AccessToken != "" {
				if err := svc.OAuthenticate(context.Background(), config.Credentials.Spotify.Token()); err != nil {
					logger.Warn("cached token rejected, reauthorization needed", "error", err)
				}
			}
			catalog = svc
		}
	}

	var history *repositories.HistoryRepository
	if config.Database.Path != "" {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			history = repositories.NewHistoryRepository(db)
			if err := history.Migrate(); err != nil {
				logger.Warn("history schema migration failed", "error", err)
				history = nil
			}
		} else {
			logger.Warn("failed to open history database", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    catalog,
		Logger:     logger,
		History:    history,
	})

	app := &cli.Command{
		Name:     "spotfave",
		Usage:    "Save tracks to multiple Spotify playlists at once",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
