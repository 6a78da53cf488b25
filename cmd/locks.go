package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/shared"
)

// LocksList lists locked playlists from the registry.
func (r *Runner) LocksList(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Locked) == 0 {
		r.writePlain("No playlists are locked.\n")
		return nil
	}

	r.writePlain("Locked playlists:\n\n")
	for i, entry := range r.config.Locked {
		r.writePlain("%d. 🔒 %s\n", i+1, entry.Name)
		r.writePlain("   ID: %s\n", entry.ID)
	}

	return nil
}

// LocksAdd locks a playlist against automated mutation.
func (r *Runner) LocksAdd(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")

	playlistID, err := r.resolvePlaylistID(ctx, ref)
	if err != nil {
		return err
	}

	name := ref
	if r.catalog != nil {
		if playlist, lookupErr := r.catalog.PlaylistByID(ctx, playlistID); lookupErr == nil {
			name = playlist.Name
		}
	}

	if !r.config.LockPlaylist(playlistID, name) {
		r.writePlain("Playlist %s is already locked.\n", name)
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlain("🔒 Locked %s\n", name)
	return nil
}

// LocksRemove unlocks a playlist.
func (r *Runner) LocksRemove(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")

	playlistID, err := r.resolvePlaylistID(ctx, ref)
	if err != nil {
		return err
	}

	if !r.config.UnlockPlaylist(playlistID) {
		r.writePlain("Playlist %s is not locked.\n", ref)
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlain("✓ Unlocked %s\n", ref)
	return nil
}
