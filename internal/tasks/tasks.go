// package tasks implements the playlist mutation and curation engines.
//
// The core abstractions are MutationEngine, which adds tracks to configured
// target playlists and copies playlists, and CurateEngine, which builds a new
// playlist from recommendations seeded by an analysis of an existing one.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"spotfave/internal/refs"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// Closed set of failure reasons recorded in a TargetResult.
const (
	ReasonRemoteError = "remote-error"
	ReasonLocked      = "locked"
	ReasonNotFound    = "not-found"
)

// TargetResult records the outcome of one attempted mutation target, in
// attempt order. Reason is empty on success.
type TargetResult struct {
	Target string // display name of the playlist, or "Liked Songs"
	ID     string // resolved playlist ID, empty when resolution failed
	Added  int    // number of items written to this target
	Reason string // one of the Reason constants, empty on success
	Err    error  // underlying error, nil on success and on a lock skip
}

// MutationResult is the per-target outcome list of a single add operation.
type MutationResult struct {
	TrackID string
	Targets []TargetResult
}

// Succeeded returns the number of targets written without error.
func (r *MutationResult) Succeeded() int {
	n := 0
	for _, t := range r.Targets {
		if t.Reason == "" {
			n++
		}
	}
	return n
}

// Failed returns the number of targets skipped or errored.
func (r *MutationResult) Failed() int {
	return len(r.Targets) - r.Succeeded()
}

// AddOptions configures a single add operation.
type AddOptions struct {
	Genre string // genre group name, empty selects the default group
	Force bool   // write to locked playlists anyway
}

// CopyResult contains the outcome of a playlist copy.
type CopyResult struct {
	Source   *services.Playlist
	Dest     *services.Playlist
	Total    int // tracks fetched from the source
	Added    int // tracks written to the destination
	Failures []ChunkError
}

// MutationEngine adds tracks to configured targets and copies playlists.
// The lock registry in the config is consulted before every playlist write.
type MutationEngine struct {
	catalog services.CatalogService
	config  *shared.Config
	logger  *log.Logger
}

// NewMutationEngine creates a MutationEngine with the provided dependencies.
func NewMutationEngine(catalog services.CatalogService, config *shared.Config, logger *log.Logger) *MutationEngine {
	return &MutationEngine{catalog: catalog, config: config, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// AddTrack adds the referenced track to every playlist in the selected genre
// group, and to Liked Songs first when the group requests it.
//
// Locked playlists are skipped with reason "locked" unless opts.Force is set;
// an unresolvable target is skipped with reason "not-found". A failed target
// never aborts the remaining targets.
func (e *MutationEngine) AddTrack(ctx context.Context, progress chan<- ProgressUpdate, ref string, opts AddOptions) (*MutationResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, resolveRefUpdate(ref))

	trackID, ok := refs.TrackID(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a recognizable track reference", shared.ErrRefNotFound, ref)
	}
	if refs.IsShortLink(ref) {
		e.logger.Warn("short link tokens cannot be resolved to a track ID; the add may fail with not-found", "ref", ref)
	}

	group, err := e.config.GenreGroup(opts.Genre)
	if err != nil {
		return nil, err
	}

	result := &MutationResult{TrackID: trackID}
	total := len(group.Playlists)
	if group.SaveToLiked {
		total++
	}
	step := 0

	if group.SaveToLiked {
		step++
		sendProgress(progress, saveLikedUpdate(step, total))

		target := TargetResult{Target: "Liked Songs"}
		if err := e.catalog.SaveLiked(ctx, trackID); err != nil {
			e.logger.Error("failed to save to liked songs", "track", trackID, "error", err)
			target.Reason = failureReason(err)
			target.Err = err
		} else {
			target.Added = 1
		}
		result.Targets = append(result.Targets, target)
	}

	uri := services.TrackURI(trackID)
	resolver := NewPlaylistResolver(e.catalog, e.logger)

	for _, entry := range group.Playlists {
		step++

		playlistID, name, err := resolver.Resolve(ctx, entry)
		if err != nil {
			sendProgress(progress, skipTargetUpdate(step, total, entry, ReasonNotFound))
			e.logger.Error("target playlist not found", "target", entry, "error", err)
			result.Targets = append(result.Targets, TargetResult{Target: entry, Reason: ReasonNotFound, Err: err})
			continue
		}

		if e.config.IsPlaylistLocked(playlistID) {
			if !opts.Force {
				sendProgress(progress, skipTargetUpdate(step, total, name, ReasonLocked))
				result.Targets = append(result.Targets, TargetResult{Target: name, ID: playlistID, Reason: ReasonLocked})
				continue
			}
			e.logger.Warn("overriding lock", "playlist", name, "id", playlistID)
		}

		sendProgress(progress, addTrackUpdate(step, total, name))
		target := TargetResult{Target: name, ID: playlistID}
		if err := e.catalog.AddItems(ctx, playlistID, []string{uri}); err != nil {
			e.logger.Error("failed to add track", "playlist", name, "track", trackID, "error", err)
			target.Reason = failureReason(err)
			target.Err = err
		} else {
			target.Added = 1
		}
		result.Targets = append(result.Targets, target)
	}

	sendProgress(progress, doneUpdate(fmt.Sprintf("Added to %d of %d targets", result.Succeeded(), len(result.Targets)), result))
	return result, nil
}

// CopyPlaylist copies every track of the source playlist into a newly
// created playlist. Chunk failures during the copy are recorded but do not
// abort the remaining chunks.
func (e *MutationEngine) CopyPlaylist(ctx context.Context, progress chan<- ProgressUpdate, sourceRef, destName string, public bool) (*CopyResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, resolveRefUpdate(sourceRef))

	resolver := NewPlaylistResolver(e.catalog, e.logger)
	sourceID, sourceName, err := resolver.Resolve(ctx, sourceRef)
	if err != nil {
		return nil, err
	}

	source, err := e.catalog.PlaylistByID(ctx, sourceID)
	if err != nil {
		e.logger.Warn("could not fetch source playlist metadata", "id", sourceID, "error", err)
		source = &services.Playlist{ID: sourceID, Name: sourceName}
	}

	sendProgress(progress, fetchTracksUpdate(source.Name))
	tracks, err := e.catalog.PlaylistTracks(ctx, sourceID)
	if err != nil {
		if len(tracks) == 0 {
			return nil, fmt.Errorf("%w: failed to fetch tracks for %s: %v", shared.ErrAPIRequest, source.Name, err)
		}
		e.logger.Warn("pagination ended early, copying partial track list", "fetched", len(tracks), "error", err)
	}

	if destName == "" {
		destName = fmt.Sprintf("%s (Copy)", source.Name)
	}

	sendProgress(progress, creatingPlaylistUpdate(destName))
	dest, err := e.catalog.CreatePlaylist(ctx, destName, public)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}
	sendProgress(progress, createPlaylistUpdate(dest))

	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
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
		return e.catalog.AddItems(ctx, dest.ID, items)
	})

	result := &CopyResult{Source: source, Dest: dest, Total: len(uris), Added: added, Failures: failures}
	sendProgress(progress, doneUpdate(fmt.Sprintf("Copied %d of %d tracks to %s", added, len(uris), dest.Name), result))
	return result, nil
}

// failureReason maps a remote error to its closed-set skip reason.
func failureReason(err error) string {
	if errors.Is(err, shared.ErrTrackNotFound) || errors.Is(err, shared.ErrPlaylistNotFound) {
		return ReasonNotFound
	}
	return ReasonRemoteError
}

// PlaylistResolver resolves playlist references against the catalog, fetching
// the user's playlist list at most once per operation for name lookups.
type PlaylistResolver struct {
	catalog   services.CatalogService
	logger    *log.Logger
	playlists []services.Playlist
	loaded    bool
	loadErr   error
}

// NewPlaylistResolver creates a resolver backed by the given catalog.
func NewPlaylistResolver(catalog services.CatalogService, logger *log.Logger) *PlaylistResolver {
	return &PlaylistResolver{catalog: catalog, logger: logger}
}

// Resolve accepts a playlist URL, URI, bare ID, or display name and returns
// the canonical playlist ID with a display name for reporting.
//
// An exact name match wins; otherwise case-insensitive matches are
// considered, alphabetically by ID with a warning when more than one
// playlist shares the name.
func (pr *PlaylistResolver) Resolve(ctx context.Context, ref string) (string, string, error) {
	if id, ok := refs.PlaylistID(ref); ok {
		return id, ref, nil
	}

	if !pr.loaded {
		pr.loaded = true
		pr.playlists, pr.loadErr = pr.catalog.UserPlaylists(ctx)
	}

	var loose []services.Playlist
	for _, pl := range pr.playlists {
		if pl.Name == ref {
			return pl.ID, pl.Name, nil
		}
		if strings.EqualFold(pl.Name, ref) {
			loose = append(loose, pl)
		}
	}

	if len(loose) > 0 {
		sort.Slice(loose, func(i, j int) bool { return loose[i].ID < loose[j].ID })
		if len(loose) > 1 {
			pr.logger.Warn("multiple playlists match name", "name", ref, "matches", len(loose), "using", loose[0].ID)
		}
		return loose[0].ID, loose[0].Name, nil
	}

	if pr.loadErr != nil {
		return "", "", fmt.Errorf("%w: failed to list playlists: %v", shared.ErrAPIRequest, pr.loadErr)
	}
	return "", "", fmt.Errorf("%w: no playlist found with name %q", shared.ErrPlaylistNotFound, ref)
}
