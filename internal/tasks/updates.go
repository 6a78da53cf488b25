package tasks

import (
	"fmt"

	"spotfave/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveRef Phase = iota
	FetchPlaylists
	FetchTracks
	SaveLiked
	AddTracks
	AnalyzeTracks
	FetchRecommendations
	ComposeName
	CreatePlaylist
	PopulatePlaylist
	ExportPlaylist
	Done
	Aborted
)

func (p Phase) String() string {
	switch p {
	case ResolveRef:
		return "resolve_ref"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case SaveLiked:
		return "save_liked"
	case AddTracks:
		return "add_tracks"
	case AnalyzeTracks:
		return "analyze_tracks"
	case FetchRecommendations:
		return "fetch_recommendations"
	case ComposeName:
		return "compose_name"
	case CreatePlaylist:
		return "create_playlist"
	case PopulatePlaylist:
		return "populate_playlist"
	case ExportPlaylist:
		return "export_playlist"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return ""
	}
}

func resolveRefUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveRef,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving reference %s...", ref),
	}
}

func fetchTracksUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks from %s...", name),
	}
}

func saveLikedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveLiked,
		Step:    step,
		Total:   total,
		Message: "Saving to Liked Songs...",
	}
}

func addTrackUpdate(step, total int, target string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding to %s...", step, total, target),
	}
}

func skipTargetUpdate(step, total int, target, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Skipping %s (%s)", step, total, target, reason),
	}
}

func analyzeUpdate(trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AnalyzeTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Analyzing %d tracks...", trackCount),
	}
}

func recommendUpdate(seeds services.SeedSet) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecommendations,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting recommendations (%d seeds)...", seeds.Count()),
		Data:    seeds,
	}
}

func composeNameUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComposeName,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("New playlist will be named %q", name),
	}
}

func createPlaylistUpdate(pl *services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func creatingPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func populateUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PopulatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding tracks...", step, total),
	}
}

func doneUpdate(message string, data any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: message,
		Data:    data,
	}
}

func abortedUpdate(reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aborted,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Aborted: %s", reason),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
