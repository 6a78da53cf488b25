// Package tasks orchestrates playlist mutations and curation runs with real-time progress reporting.
//
// # Core Operations
//
//  1. [MutationEngine.AddTrack] : Add one track to a genre group's targets
//     - Resolves the track reference (URL, URI, short link token, bare ID)
//     - Saves to Liked Songs first when the group requests it
//     - Writes to each target playlist, skipping locked ones
//     - Returns a per-target result list in attempt order
//
//  2. [MutationEngine.CopyPlaylist] : Copy a playlist's tracks into a new one
//     - Fetches the full (paginated) source track list
//     - Creates the destination and writes tracks in chunks of 100
//     - Chunk failures are recorded, remaining chunks still attempted
//
//  3. [CurateEngine.Curate] : Build a new playlist from recommendations
//     - Analyzes the source playlist's audio features and artist genres
//     - Allocates up to 5 recommendation seeds (tracks, artists, genres)
//     - Creates and populates the destination, reporting a share link
//
//  4. [MutationEngine.BulkExport] : Export many playlists to files
//     - Rate-limited fetching with a rendering worker pool
//     - JSON, CSV, Markdown, or plain-text output plus a manifest
//
//  5. [DiscoverEngine.OldFavorites] : Resurface forgotten long-term favorites
//     - Long-term top tracks filtered against current tops and recent plays
//
//  6. [DiscoverEngine.SuggestGenres] : Suggest genres outside current listening
//     - Top artists seed recommendations; unfamiliar genres are reported
//       with example artists
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
