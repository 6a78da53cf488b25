package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// DiscoverOldFavorites lists long-term top tracks missing from recent listening.
func (r *Runner) DiscoverOldFavorites(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	r.logger.Info("finding old favorites", "limit", limit)
	r.writePlain("Digging through your listening history...\n")

	favorites, err := r.discover.OldFavorites(ctx, limit)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			favorites, err = r.discover.OldFavorites(ctx, limit)
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(favorites, true)
	}

	if len(favorites) == 0 {
		r.writePlain("No old favorites found, everything you love is still in rotation.\n")
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Found %d old favorites", len(favorites)))
	for i, track := range favorites {
		r.writePlain("%2d. %s by %s\n", i+1, track.Title, track.Artist)
	}
	return nil
}

// DiscoverGenres suggests genres outside the user's current listening.
func (r *Runner) DiscoverGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	timeRange := cmd.String("time-range")
	if !services.ValidTimeRange(timeRange) {
		return fmt.Errorf("%w: time range must be one of short_term, medium_term, long_term", shared.ErrInvalidArgument)
	}

	r.logger.Info("suggesting genres", "time_range", timeRange)
	r.writePlain("Fetching your top artists for %s...\n", timeRange)

	suggestions, err := r.discover.SuggestGenres(ctx, timeRange)
	if err != nil {
		if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
			if authErr != nil {
				return authErr
			}
			suggestions, err = r.discover.SuggestGenres(ctx, timeRange)
		}
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(suggestions, true)
	}

	if len(suggestions) == 0 {
		r.writePlain("No new genre suggestions found at this time.\n")
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader("Suggested New Genres")
	for _, suggestion := range suggestions {
		r.writePlain("🎶 %s\n", suggestion.Genre)
		for _, artist := range suggestion.Artists {
			r.writePlain("   🎤 %s\n", artist)
		}
	}
	return nil
}
