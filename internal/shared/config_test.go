package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "spotfave.db" {
			t.Errorf("expected database path spotfave.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:8080/callback" {
			t.Errorf("expected default redirect URI, got %s", config.Credentials.Spotify.RedirectURI)
		}

		if _, ok := config.Genres["default"]; !ok {
			t.Error("expected a default genre group")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "test_id"
		config.LockPlaylist("locked-id", "Archive")

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.ClientID != "test_id" {
			t.Errorf("expected client id to round trip, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if !loaded.IsPlaylistLocked("locked-id") {
			t.Error("expected lock entry to round trip")
		}
	})

	t.Run("GenreGroup", func(t *testing.T) {
		config := &Config{Genres: map[string]GenreGroup{
			"default": {Playlists: []string{"Favorites"}, SaveToLiked: true},
			"rock":    {Playlists: []string{"Rock Hits"}},
		}}

		t.Run("empty name selects default", func(t *testing.T) {
			group, err := config.GenreGroup("")
			if err != nil {
				t.Fatalf("expected default group, got %v", err)
			}
			if !group.SaveToLiked {
				t.Error("expected default group's save_to_liked")
			}
		})

		t.Run("named group", func(t *testing.T) {
			group, err := config.GenreGroup("rock")
			if err != nil {
				t.Fatalf("expected rock group, got %v", err)
			}
			if len(group.Playlists) != 1 || group.Playlists[0] != "Rock Hits" {
				t.Errorf("unexpected playlists: %v", group.Playlists)
			}
		})

		t.Run("unknown group", func(t *testing.T) {
			if _, err := config.GenreGroup("jazz"); !errors.Is(err, ErrUnknownGenre) {
				t.Errorf("expected unknown genre error, got %v", err)
			}
		})

		t.Run("no genres configured", func(t *testing.T) {
			empty := &Config{}
			if _, err := empty.GenreGroup(""); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected invalid config error, got %v", err)
			}
		})
	})
}

func TestLocks(t *testing.T) {
	t.Run("lock and unlock", func(t *testing.T) {
		config := &Config{}

		if config.IsPlaylistLocked("p1") {
			t.Error("empty registry should report unlocked")
		}

		if !config.LockPlaylist("p1", "Mix") {
			t.Error("locking a new playlist should return true")
		}
		if !config.IsPlaylistLocked("p1") {
			t.Error("expected playlist to be locked")
		}

		if config.LockPlaylist("p1", "Mix") {
			t.Error("locking twice should return false")
		}

		if !config.UnlockPlaylist("p1") {
			t.Error("unlocking a locked playlist should return true")
		}
		if config.IsPlaylistLocked("p1") {
			t.Error("expected playlist to be unlocked")
		}

		if config.UnlockPlaylist("p1") {
			t.Error("unlocking twice should return false")
		}
	})

	t.Run("lock keeps other entries", func(t *testing.T) {
		config := &Config{}
		config.LockPlaylist("p1", "One")
		config.LockPlaylist("p2", "Two")

		config.UnlockPlaylist("p1")

		if config.IsPlaylistLocked("p1") {
			t.Error("p1 should be unlocked")
		}
		if !config.IsPlaylistLocked("p2") {
			t.Error("p2 should remain locked")
		}
	})
}
