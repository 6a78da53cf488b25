package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// DefaultOldFavoritesLimit is the suggestion count when the caller does not
// request one.
const DefaultOldFavoritesLimit = 20

// suggestionSeedArtists is how many top artists seed the genre suggestion
// recommendation request, bounded by [services.MaxSeeds].
const suggestionSeedArtists = services.MaxSeeds

// defaultSuggestionPool is the recommendation count sampled for genre
// suggestions.
const defaultSuggestionPool = 50

// maxExampleArtists caps the example artists listed per suggested genre.
const maxExampleArtists = 3

// GenreSuggestion is one genre outside the user's current listening, with
// example artists drawn from the recommendations that surfaced it.
type GenreSuggestion struct {
	Genre   string   `json:"genre"`
	Artists []string `json:"artists,omitempty"`
}

// DiscoverEngine surfaces listening-history insights: old favorites the user
// has stopped playing, and genres adjacent to their current taste.
type DiscoverEngine struct {
	catalog services.CatalogService
	logger  *log.Logger
}

// NewDiscoverEngine creates a DiscoverEngine with the provided dependencies.
func NewDiscoverEngine(catalog services.CatalogService, logger *log.Logger) *DiscoverEngine {
	return &DiscoverEngine{catalog: catalog, logger: logger}
}

// OldFavorites returns long-term top tracks absent from the medium-term and
// short-term tops and from the recent play history, capped at limit.
//
// The long-term read is required; the exclusion reads are best effort, so a
// failed one narrows the filter instead of aborting the run.
func (e *DiscoverEngine) OldFavorites(ctx context.Context, limit int) ([]services.Track, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if limit <= 0 {
		limit = DefaultOldFavoritesLimit
	}

	longTerm, err := e.catalog.TopTracks(ctx, services.TimeRangeLong, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch long-term top tracks: %v", shared.ErrAPIRequest, err)
	}
	if len(longTerm) == 0 {
		return nil, fmt.Errorf("%w: no long-term listening history", shared.ErrInvalidInput)
	}

	exclude := make(map[string]bool)
	e.excludeTop(ctx, exclude, services.TimeRangeMedium)
	e.excludeTop(ctx, exclude, services.TimeRangeShort)

	recent, err := e.catalog.RecentlyPlayed(ctx, 0)
	if err != nil {
		e.logger.Warn("could not fetch recent plays, filtering on top tracks only", "error", err)
	}
	for _, t := range recent {
		exclude[t.ID] = true
	}

	favorites := make([]services.Track, 0, limit)
	for _, t := range longTerm {
		if exclude[t.ID] {
			continue
		}
		favorites = append(favorites, t)
		if len(favorites) == limit {
			break
		}
	}
	return favorites, nil
}

// excludeTop adds a time range's top track IDs to the exclusion set,
// tolerating a failed read.
func (e *DiscoverEngine) excludeTop(ctx context.Context, exclude map[string]bool, timeRange string) {
	tracks, err := e.catalog.TopTracks(ctx, timeRange, 0)
	if err != nil {
		e.logger.Warn("could not fetch top tracks for exclusion", "time_range", timeRange, "error", err)
		return
	}
	for _, t := range tracks {
		exclude[t.ID] = true
	}
}

// SuggestGenres recommends genres the user does not currently listen to.
//
// The user's top artists for the time range define the current genre set and
// seed a recommendation request; genres tagged on the recommended tracks'
// artists that fall outside the current set become suggestions, each with up
// to three example artists. Suggestions are sorted by example count, then
// genre name.
func (e *DiscoverEngine) SuggestGenres(ctx context.Context, timeRange string) ([]GenreSuggestion, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if timeRange == "" {
		timeRange = services.TimeRangeMedium
	}

	topArtists, err := e.catalog.TopArtists(ctx, timeRange, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch top artists: %v", shared.ErrAPIRequest, err)
	}
	if len(topArtists) == 0 {
		return nil, fmt.Errorf("%w: no top artists for time range %s", shared.ErrInvalidInput, timeRange)
	}

	current := make(map[string]bool)
	for _, artist := range topArtists {
		for _, genre := range artist.Genres {
			current[genre] = true
		}
	}

	var seeds services.SeedSet
	for _, artist := range topArtists {
		if len(seeds.Artists) == suggestionSeedArtists {
			break
		}
		seeds.Artists = append(seeds.Artists, artist.ID)
	}

	recommended, err := e.catalog.Recommendations(ctx, seeds, nil, defaultSuggestionPool)
	if err != nil {
		return nil, fmt.Errorf("%w: recommendation request failed: %v", shared.ErrAPIRequest, err)
	}

	examples := make(map[string][]string)
	seenArtist := make(map[string]bool)
	for _, track := range recommended {
		if len(track.ArtistIDs) == 0 {
			continue
		}
		artistID := track.ArtistIDs[0]
		if seenArtist[artistID] {
			continue
		}
		seenArtist[artistID] = true

		artist, err := e.catalog.Artist(ctx, artistID)
		if err != nil {
			e.logger.Warn("artist lookup failed, no genres contributed", "artist", artistID, "error", err)
			continue
		}
		for _, genre := range artist.Genres {
			if current[genre] {
				continue
			}
			if _, known := examples[genre]; !known {
				examples[genre] = nil
			}
			if artist.Name != "" && len(examples[genre]) < maxExampleArtists {
				examples[genre] = append(examples[genre], artist.Name)
			}
		}
	}

	suggestions := make([]GenreSuggestion, 0, len(examples))
	for genre, artists := range examples {
		suggestions = append(suggestions, GenreSuggestion{Genre: genre, Artists: artists})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if len(suggestions[i].Artists) != len(suggestions[j].Artists) {
			return len(suggestions[i].Artists) > len(suggestions[j].Artists)
		}
		return suggestions[i].Genre < suggestions[j].Genre
	})
	return suggestions, nil
}
