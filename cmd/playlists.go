package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"spotfave/internal/formatter"
	"spotfave/internal/qr"
	"spotfave/internal/refs"
	"spotfave/internal/services"
	"spotfave/internal/shared"
	"spotfave/internal/tasks"
)

// PlaylistsList lists the current user's playlists with optional limit.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.requireCatalog(); err != nil {
		return err
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := r.catalog.UserPlaylists(ctx)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if playlists, err = r.catalog.UserPlaylists(ctx); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if search := cmd.String("search"); search != "" {
		filtered := playlists[:0]
		for _, p := range playlists {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
				filtered = append(filtered, p)
			}
		}
		playlists = filtered
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		marker := ""
		if r.config.IsPlaylistLocked(p.ID) {
			marker = " 🔒"
		}
		r.writePlain("%d. %s%s\n", i+1, p.Name, marker)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// PlaylistsCopy copies a playlist's tracks into a new playlist.
func (r *Runner) PlaylistsCopy(ctx context.Context, cmd *cli.Command) error {
	source := cmd.StringArg("source")
	if source == "" {
		return fmt.Errorf("%w: source playlist URL, ID or name is required", shared.ErrMissingArgument)
	}

	if err := r.requireCatalog(); err != nil {
		return err
	}

	destName := cmd.String("name")
	public := cmd.Bool("public")

	r.logger.Info("copying playlist", "source", source, "dest", destName)
	r.writePlain("Copying playlist...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveRef, tasks.FetchTracks:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.PopulatePlaylist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.CopyPlaylist(ctx, progressCh, source, destName, public)
	close(progressCh)

	if err != nil {
		return err
	}

	r.recordHistory("copy", source, result.Added, result.Total-result.Added,
		fmt.Sprintf("copied %d of %d tracks to %s", result.Added, result.Total, result.Dest.Name))

	r.writePlain("\n")
	r.writePlainHeader("Copy Complete!")
	r.writePlain("Source: %s (%d tracks)\n", result.Source.Name, result.Total)
	r.writePlain("Destination: %s (%d tracks copied)\n", result.Dest.Name, result.Added)
	if len(result.Failures) > 0 {
		r.writePlain("\n%d chunk(s) failed:\n", len(result.Failures))
		for _, failure := range result.Failures {
			r.writePlain("  - chunk %d (%d tracks): %v\n", failure.Index+1, failure.Size, failure.Err)
		}
	}

	return nil
}

// PlaylistsURL prints the shareable open.spotify.com URL for a playlist.
func (r *Runner) PlaylistsURL(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	r.writePlain("%s\n", services.PlaylistURL(playlistID))
	return nil
}

// PlaylistsQR writes a QR code PNG encoding a playlist's share URL.
func (r *Runner) PlaylistsQR(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		output = playlistID + ".png"
	}

	url := services.PlaylistURL(playlistID)
	path, err := r.writeQR(url, output, int(cmd.Int("size")))
	if err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}

	r.writePlain("✓ QR code saved to %s\n", path)
	r.writePlain("  Encodes: %s\n", url)
	return nil
}

// PlaylistsExport exports a single playlist in the requested format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("playlist")
	if ref == "" {
		return fmt.Errorf("%w: playlist URL, ID or name is required", shared.ErrMissingArgument)
	}

	if err := r.requireCatalog(); err != nil {
		return err
	}

	playlistID, err := r.resolvePlaylistID(ctx, ref)
	if err != nil {
		return err
	}

	r.logger.Infof("exporting playlist %v", playlistID)

	export, err := r.fetchExport(ctx, playlistID)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if export, err = r.fetchExport(ctx, playlistID); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	format := strings.ToLower(cmd.String("format"))
	outputFile := cmd.String("output")
	if outputFile == "" {
		outputFile = defaultExportPath(export.Playlist.Name, format)
	}

	files, err := writeExport(export, format, outputFile)
	if err != nil {
		return err
	}

	r.writePlain("✓ Playlist exported\n")
	r.writePlain("  Playlist: %s\n", export.Playlist.Name)
	r.writePlain("  Tracks: %d\n", len(export.Tracks))
	for _, file := range files {
		r.writePlain("  File: %s\n", file)
	}

	return nil
}

// PlaylistsExportAll exports every playlist concurrently via the worker pool.
func (r *Runner) PlaylistsExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	playlists, err := r.catalog.UserPlaylists(ctx)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			if playlists, err = r.catalog.UserPlaylists(ctx); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}

	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}

	r.writePlain("Exporting %d playlists...\n\n", len(ids))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	opts := tasks.BulkExportOpts{
		Format:     strings.ToLower(cmd.String("format")),
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate-limit"),
	}

	result, err := r.engine.BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Output directory: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if result.FailedExports > 0 {
		r.writePlain("\nFailed exports:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.PlaylistName, res.ErrorMessage)
			}
		}
	}

	return nil
}

// resolvePlaylistID extracts a playlist ID from a URL/URI/ID reference, or
// resolves a display name against the user's playlists.
func (r *Runner) resolvePlaylistID(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: playlist URL, ID or name is required", shared.ErrMissingArgument)
	}

	if id, ok := refs.PlaylistID(ref); ok {
		return id, nil
	}

	if err := r.requireCatalog(); err != nil {
		return "", err
	}

	id, _, err := tasks.NewPlaylistResolver(r.catalog, r.logger).Resolve(ctx, ref)
	return id, err
}

// fetchExport fetches a playlist's metadata and full track list.
func (r *Runner) fetchExport(ctx context.Context, playlistID string) (*services.PlaylistExport, error) {
	playlist, err := r.catalog.PlaylistByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	tracks, err := r.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil && len(tracks) == 0 {
		return nil, err
	}
	if err != nil {
		r.logger.Warn("playlist fetched partially", "playlist", playlist.Name, "tracks", len(tracks), "error", err)
	}

	return &services.PlaylistExport{Playlist: *playlist, Tracks: tracks}, nil
}

// writeQR renders the payload through the runner's encoder.
func (r *Runner) writeQR(payload, path string, size int) (string, error) {
	return qr.WriteFile(r.qrEncoder, payload, path, size)
}

// defaultExportPath derives an output path from the playlist name and format.
func defaultExportPath(name, format string) string {
	base := "spotify_" + strings.ReplaceAll(name, string(os.PathSeparator), "_")
	switch format {
	case "csv":
		return base
	case "markdown":
		return base
	case "txt":
		return base + ".txt"
	default:
		return base + ".json"
	}
}

// writeExport renders an export to disk and returns the files written.
func writeExport(export *services.PlaylistExport, format, output string) ([]string, error) {
	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return nil, fmt.Errorf("failed to write CSV export: %w", err)
		}
		return []string{result.TracksFile, result.MetadataFile}, nil
	case "markdown":
		files, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return nil, fmt.Errorf("failed to write markdown export: %w", err)
		}
		return files, nil
	case "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return nil, fmt.Errorf("failed to write text export: %w", err)
		}
		return []string{path}, nil
	case "json", "":
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write file: %w", err)
		}
		return []string{output}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}
