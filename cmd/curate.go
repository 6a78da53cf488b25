package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/shared"
	"spotfave/internal/tasks"
)

// Curate creates a recommendation playlist seeded from an existing one.
func (r *Runner) Curate(ctx context.Context, cmd *cli.Command) error {
	source := cmd.StringArg("source")
	if source == "" {
		return fmt.Errorf("%w: source playlist URL, ID or name is required", shared.ErrMissingArgument)
	}

	if err := r.requireCatalog(); err != nil {
		return err
	}

	opts := tasks.CurateOptions{
		Name:    cmd.String("name"),
		Limit:   int(cmd.Int("limit")),
		Private: cmd.Bool("private"),
	}

	r.logger.Info("starting curation", "source", source, "limit", opts.Limit)
	r.writePlain("Curating from %s...\n\n", source)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveRef, tasks.FetchTracks:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.AnalyzeTracks:
				r.writePlain("🔬 %s\n", update.Message)
			case tasks.FetchRecommendations:
				r.writePlain("✨ %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.PopulatePlaylist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.curator.Curate(ctx, progressCh, source, opts)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				close(progressCh)
				return authErr
			}
			result, err = r.curator.Curate(ctx, progressCh, source, opts)
		}
	}
	close(progressCh)

	if err != nil {
		if result != nil && result.State == tasks.Aborted {
			r.writePlainln("✗ Curation aborted: %v", err)
		}
		return err
	}

	r.recordHistory("curate", source, result.Added, len(result.Recommended)-result.Added,
		fmt.Sprintf("created %s with %d tracks", result.Playlist.Name, result.Added))

	r.writePlain("\n")
	r.writePlainHeader("Curation Complete!")
	r.writePlain("Playlist: %s\n", result.Playlist.Name)
	r.writePlain("Tracks added: %d of %d recommended\n", result.Added, len(result.Recommended))
	if len(result.Analysis.TopGenres) > 0 {
		r.writePlain("Seeded from genres: %v\n", result.Analysis.TopGenres)
	}
	if result.ShareURL != "" {
		r.writePlain("Share: %s\n", result.ShareURL)
	}

	return nil
}
