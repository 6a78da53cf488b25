package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/analysis"
	"spotfave/internal/formatter"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// Analyze reports BPM, key and genre information for a playlist.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
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

	r.logger.Infof("analyzing playlist %v", playlistID)

	tracks, err := r.catalog.PlaylistTracks(ctx, playlistID)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			tracks, err = r.catalog.PlaylistTracks(ctx, playlistID)
		}
		if err != nil && len(tracks) == 0 {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: playlist has no tracks", shared.ErrInvalidInput)
	}

	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, t.ID)
	}

	features, err := r.fetchFeatures(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	summary := analysis.SummarizeAudio(tracks, features)
	moods := r.analyzer.Analyze(ctx, ids)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"summary":  summary,
			"analysis": moods,
		}, true)
	}

	if cmd.Bool("csv") {
		data, err := formatter.AudioSummaryToCSV(summary)
		if err != nil {
			return fmt.Errorf("failed to render CSV: %w", err)
		}
		return r.writePlain("%s", data)
	}

	if cmd.Bool("markdown") {
		return r.writePlain("%s", formatter.AudioSummaryToMarkdown(summary))
	}

	r.writePlainHeader("Playlist Analysis")
	r.writePlain("%s", formatter.AudioSummaryToText(summary))
	if !moods.Empty() {
		r.writePlain("\n%s", formatter.AnalysisToText(moods))
	}

	return nil
}

// fetchFeatures fetches audio feature records in API-sized batches.
func (r *Runner) fetchFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error) {
	features := make([]*services.AudioFeatures, 0, len(ids))
	for i := 0; i < len(ids); i += services.MaxBatchItems {
		end := min(i+services.MaxBatchItems, len(ids))
		batch, err := r.catalog.AudioFeatures(ctx, ids[i:end])
		if err != nil {
			return nil, err
		}
		features = append(features, batch...)
	}
	return features, nil
}
