package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"spotfave/internal/analysis"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// DefaultRecommendationLimit is the fixed result count requested per curation run.
const DefaultRecommendationLimit = 20

// seedTrackLimit caps the track seeds taken from the analysis; the remaining
// slots go to artist and then genre seeds.
const seedTrackLimit = 2

// CurateOptions configures a curation run.
//
// Curated playlists are public unless Private is set.
type CurateOptions struct {
	Name    string // explicit destination name, used verbatim when set
	Limit   int    // recommendation count, DefaultRecommendationLimit when <= 0
	Private bool
}

// CurateResult contains the outcome of a curation run. State is Done or
// Aborted; on Aborted the remaining fields cover the steps that completed.
type CurateResult struct {
	State       Phase
	Analysis    *analysis.PlaylistAnalysis
	Seeds       services.SeedSet
	Recommended []services.Track
	Playlist    *services.Playlist
	Added       int
	ShareURL    string
}

// CurateEngine builds a new playlist from recommendations seeded by an
// analysis of an existing playlist.
//
// The run is a linear sequence: analyze the source tracks, build a seed set,
// request recommendations, compose a name, create the playlist, populate it.
// Any step's failure condition aborts the run; partial failures while
// populating do not.
type CurateEngine struct {
	catalog  services.CatalogService
	analyzer *analysis.Analyzer
	logger   *log.Logger
	now      func() time.Time
}

// NewCurateEngine creates a CurateEngine with the provided dependencies.
func NewCurateEngine(catalog services.CatalogService, analyzer *analysis.Analyzer, logger *log.Logger) *CurateEngine {
	return &CurateEngine{catalog: catalog, analyzer: analyzer, logger: logger, now: time.Now}
}

// Curate runs the full curation pipeline against the source playlist.
//
// The returned result always carries a terminal State; the error explains an
// Aborted state and is nil when the run reaches Done.
func (e *CurateEngine) Curate(ctx context.Context, progress chan<- ProgressUpdate, sourceRef string, opts CurateOptions) (*CurateResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecommendationLimit
	}

	result := &CurateResult{State: Aborted}

	sendProgress(progress, resolveRefUpdate(sourceRef))
	resolver := NewPlaylistResolver(e.catalog, e.logger)
	sourceID, sourceName, err := resolver.Resolve(ctx, sourceRef)
	if err != nil {
		sendProgress(progress, abortedUpdate("source playlist not found"))
		return result, err
	}

	sendProgress(progress, fetchTracksUpdate(sourceName))
	tracks, err := e.catalog.PlaylistTracks(ctx, sourceID)
	if err != nil && len(tracks) == 0 {
		sendProgress(progress, abortedUpdate("could not fetch source tracks"))
		return result, fmt.Errorf("%w: failed to fetch tracks for %s: %v", shared.ErrAPIRequest, sourceName, err)
	}
	if err != nil {
		e.logger.Warn("pagination ended early, analyzing partial track list", "fetched", len(tracks), "error", err)
	}

	trackIDs := make([]string, 0, len(tracks))
	for _, t := range tracks {
		trackIDs = append(trackIDs, t.ID)
	}

	sendProgress(progress, analyzeUpdate(len(trackIDs)))
	playlistAnalysis := e.analyzer.Analyze(ctx, trackIDs)
	result.Analysis = playlistAnalysis
	if playlistAnalysis.Empty() {
		sendProgress(progress, abortedUpdate("analysis unavailable"))
		return result, fmt.Errorf("%w: no analyzable tracks in %s", shared.ErrInvalidInput, sourceName)
	}

	seeds, err := e.buildSeedSet(ctx, playlistAnalysis)
	if err != nil {
		sendProgress(progress, abortedUpdate("no seeds available"))
		return result, err
	}
	result.Seeds = seeds

	sendProgress(progress, recommendUpdate(seeds))
	recommended := e.requestRecommendations(ctx, seeds, targetFeatures(playlistAnalysis), opts.Limit)
	result.Recommended = recommended
	if len(recommended) == 0 {
		sendProgress(progress, abortedUpdate("no recommendations returned"))
		return result, fmt.Errorf("%w: recommendation request returned no tracks", shared.ErrAPIRequest)
	}

	name := e.composeName(ctx, sourceID, opts.Name)
	sendProgress(progress, composeNameUpdate(name))

	sendProgress(progress, creatingPlaylistUpdate(name))
	playlist, err := e.catalog.CreatePlaylist(ctx, name, !opts.Private)
	if err != nil {
		sendProgress(progress, abortedUpdate("playlist creation failed"))
		return result, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}
	result.Playlist = playlist
	sendProgress(progress, createPlaylistUpdate(playlist))

	uris := make([]string, 0, len(recommended))
	for _, t := range recommended {
		if t.URI != "" {
			uris = append(uris, t.URI)
			continue
		}
		uris = append(uris, services.TrackURI(t.ID))
	}

	totalChunks := (len(uris) + services.MaxBatchItems - 1) / services.MaxBatchItems
	chunk := 0
	added, failures := writeChunks(ctx, e.logger, uris, func(ctx context.Context, items []string) error {
		chunk++
		sendProgress(progress, populateUpdate(chunk, totalChunks))
		return e.catalog.AddItems(ctx, playlist.ID, items)
	})
	result.Added = added
	if len(failures) > 0 {
		e.logger.Warn("populated with partial failures", "added", added, "failed_chunks", len(failures))
	}

	result.State = Done
	result.ShareURL = playlist.URL
	if result.ShareURL == "" {
		result.ShareURL = services.PlaylistURL(playlist.ID)
	}
	sendProgress(progress, doneUpdate(fmt.Sprintf("Created %s with %d tracks: %s", playlist.Name, added, result.ShareURL), result))
	return result, nil
}

// buildSeedSet allocates the recommendation seed slots from the analysis:
// up to 2 track seeds, then each track seed's primary artist, then top
// genres, never exceeding the combined limit of [services.MaxSeeds].
func (e *CurateEngine) buildSeedSet(ctx context.Context, a *analysis.PlaylistAnalysis) (services.SeedSet, error) {
	var seeds services.SeedSet

	trackIDs := a.SeedTracks
	if len(trackIDs) > seedTrackLimit {
		trackIDs = trackIDs[:seedTrackLimit]
	}
	for _, id := range trackIDs {
		seeds.Tracks = append(seeds.Tracks, services.TrackURI(id))
	}

	seen := make(map[string]bool)
	for _, id := range trackIDs {
		if len(seeds.Artists) >= services.MaxSeeds-len(seeds.Tracks) {
			break
		}
		track, err := e.catalog.Track(ctx, id)
		if err != nil {
			e.logger.Warn("could not resolve seed track's artist", "track", id, "error", err)
			continue
		}
		if len(track.ArtistIDs) == 0 {
			continue
		}
		primary := track.ArtistIDs[0]
		if seen[primary] {
			continue
		}
		seen[primary] = true
		seeds.Artists = append(seeds.Artists, primary)
	}

	for _, genre := range a.TopGenres {
		if seeds.Count() >= services.MaxSeeds {
			break
		}
		seeds.Genres = append(seeds.Genres, genre)
	}

	if seeds.Empty() {
		return seeds, fmt.Errorf("%w: analysis produced no usable seeds", shared.ErrNoSeeds)
	}
	return seeds, nil
}

// requestRecommendations invokes the remote recommendation call. A remote
// error and an empty remote result both yield an empty list; rate limiting
// is distinguished from an ordinary bad request in the log only.
func (e *CurateEngine) requestRecommendations(ctx context.Context, seeds services.SeedSet, targets map[string]float64, limit int) []services.Track {
	recommended, err := e.catalog.Recommendations(ctx, seeds, targets, limit)
	if err != nil {
		if services.IsRateLimited(err) {
			e.logger.Warn("recommendation request was rate limited", "error", err)
		} else {
			e.logger.Error("recommendation request failed", "error", err)
		}
		return nil
	}
	return recommended
}

// composeName resolves the destination playlist name. Never fails: an
// explicit name wins, otherwise the source name is fetched and a dated name
// composed, falling back to a generic dated name.
func (e *CurateEngine) composeName(ctx context.Context, sourceID, explicit string) string {
	if explicit != "" {
		return explicit
	}
	date := e.now().Format("2006-01-02")
	source, err := e.catalog.PlaylistByID(ctx, sourceID)
	if err != nil || source.Name == "" {
		return fmt.Sprintf("My Curated Playlist - %s", date)
	}
	return fmt.Sprintf("Curated - %s - %s", source.Name, date)
}

// targetFeatures converts the non-null feature averages into target hints
// for the recommendation call.
func targetFeatures(a *analysis.PlaylistAnalysis) map[string]float64 {
	targets := make(map[string]float64)
	for name, avg := range a.FeatureAverages {
		if avg != nil {
			targets[name] = *avg
		}
	}
	return targets
}

// IsNoSeeds reports whether a curation run aborted for lack of seeds.
func IsNoSeeds(err error) bool {
	return errors.Is(err, shared.ErrNoSeeds)
}
