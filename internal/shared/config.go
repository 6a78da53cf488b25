package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// It owns the genre playlist groups and the locked-playlist registry; load
// and save happen here, in-memory mutation happens through the methods on
// Config. Components receive a *Config handle rather than reading a global.
type Config struct {
	Credentials CredentialsConfig     `toml:"credentials"`
	Server      ServerConfig          `toml:"server"`
	Database    DatabaseConfig        `toml:"database"`
	Genres      map[string]GenreGroup `toml:"genres"`
	Locked      []LockEntry           `toml:"locked_playlists"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and cached OAuth tokens.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token,omitempty"`
	RefreshToken string `toml:"refresh_token,omitempty"`
	TokenExpiry  string `toml:"token_expiry,omitempty"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig contains settings for the operation history database.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// GenreGroup is a named set of target playlists for the add command.
type GenreGroup struct {
	Playlists   []string `toml:"playlists"`
	SaveToLiked bool     `toml:"save_to_liked"`
}

// LockEntry marks a playlist as exempt from automated mutation.
//
// Name is a display snapshot taken when the lock was created; the playlist
// may be renamed remotely without invalidating the lock.
type LockEntry struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Map returns the Spotify credentials as a string map for service constructors.
func (s *SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
	}
}

// Update stores an [oauth2.Token] in the config for persistence.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidArgument)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		s.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// Token reconstructs an [oauth2.Token] from the persisted fields.
func (s *SpotifyConfig) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	if s.TokenExpiry != "" {
		if expiry, err := time.Parse(time.RFC3339, s.TokenExpiry); err == nil {
			token.Expiry = expiry
		}
	}
	return token
}

// GenreGroup resolves the playlist group for a genre name, defaulting to "default" when empty.
func (c *Config) GenreGroup(genre string) (GenreGroup, error) {
	if len(c.Genres) == 0 {
		return GenreGroup{}, fmt.Errorf("%w: no genres configured", ErrInvalidConfig)
	}

	target := genre
	if target == "" {
		target = "default"
	}

	group, ok := c.Genres[target]
	if !ok {
		return GenreGroup{}, fmt.Errorf("%w: %q", ErrUnknownGenre, target)
	}
	return group, nil
}

// GenreNames returns the configured genre names.
func (c *Config) GenreNames() []string {
	names := make([]string, 0, len(c.Genres))
	for name := range c.Genres {
		names = append(names, name)
	}
	return names
}

// SetGenreGroup creates or replaces a genre playlist group.
func (c *Config) SetGenreGroup(genre string, group GenreGroup) {
	if c.Genres == nil {
		c.Genres = map[string]GenreGroup{}
	}
	c.Genres[genre] = group
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the configuration back to the specified path as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
