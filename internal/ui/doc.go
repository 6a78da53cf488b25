// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist management:
//  1. [PlaylistListView] : Browse playlists, toggle locks, pick one to inspect or curate
//  2. [TrackListView] : Preview a playlist's tracks
//  3. [AnalysisView] : BPM/key table and mood analysis for the selected playlist
//  4. [ConfirmView] : Confirm a curation run
//  5. [CurateView] : Monitor real-time curation progress
//  6. [ResultView] : Display the created playlist and its share link
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the CurateEngine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
