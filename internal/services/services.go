// package services defines interface CatalogService for the remote music
// catalog and implements it for the Spotify Web API.
package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"spotfave/internal/shared"
)

// MaxSeeds is the remote recommendation endpoint's combined seed limit.
const MaxSeeds = 5

// MaxBatchItems is the per-call item limit for batched reads and writes.
const MaxBatchItems = 100

// Time ranges accepted by the personalization reads.
const (
	TimeRangeShort  = "short_term"  // roughly the last 4 weeks
	TimeRangeMedium = "medium_term" // roughly the last 6 months
	TimeRangeLong   = "long_term"   // several years of listening
)

// ValidTimeRange reports whether timeRange is one of the accepted values.
func ValidTimeRange(timeRange string) bool {
	switch timeRange {
	case TimeRangeShort, TimeRangeMedium, TimeRangeLong:
		return true
	}
	return false
}

// CatalogService defines the paginated read/write surface of the remote music catalog.
//
// All calls are blocking and may fail with a wrapped [APIError]; the caller
// decides whether a partial result is usable. No call retries internally.
type CatalogService interface {
	// Authenticate performs OAuth authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// UserPlaylists retrieves all playlists owned by the authenticated user,
	// walking every page.
	UserPlaylists(ctx context.Context) ([]Playlist, error)

	// PlaylistByID retrieves a single playlist's metadata.
	PlaylistByID(ctx context.Context, playlistID string) (*Playlist, error)

	// PlaylistTracks retrieves all tracks of a playlist, walking every page.
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)

	// Track retrieves a single track by ID.
	Track(ctx context.Context, trackID string) (*Track, error)

	// Artist retrieves a single artist by ID.
	Artist(ctx context.Context, artistID string) (*Artist, error)

	// AudioFeatures retrieves audio feature records for up to 100 track IDs.
	// The result is positionally aligned with ids; entries are nil when the
	// catalog has no record for that track.
	AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error)

	// CreatePlaylist creates a new playlist owned by the current user.
	CreatePlaylist(ctx context.Context, name string, public bool) (*Playlist, error)

	// AddItems appends up to 100 track URIs to a playlist.
	AddItems(ctx context.Context, playlistID string, uris []string) error

	// SaveLiked saves a track to the user's liked songs collection.
	SaveLiked(ctx context.Context, trackID string) error

	// TopTracks retrieves the user's most played tracks for a time range,
	// walking every page up to limit items.
	TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error)

	// TopArtists retrieves the user's most played artists for a time range,
	// walking every page up to limit items.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error)

	// RecentlyPlayed retrieves the user's play history, most recent first,
	// up to limit items.
	RecentlyPlayed(ctx context.Context, limit int) ([]Track, error)

	// Recommendations requests recommended tracks for a seed set. Result
	// order is the remote order; no local re-sorting.
	Recommendations(ctx context.Context, seeds SeedSet, targets map[string]float64, limit int) ([]Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends CatalogService for providers using the OAuth2
// authorization code flow with a local callback server.
type OAuthService interface {
	CatalogService

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for the callback server.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate installs a previously obtained token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// User represents a catalog user profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist represents a music playlist.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	URL         string `json:"url,omitempty"`
}

// Track represents a music track.
type Track struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`               // primary (first-listed) artist name
	ArtistIDs []string `json:"artist_ids,omitempty"` // all artist IDs, primary first
	Album     string   `json:"album,omitempty"`
	Duration  int      `json:"duration"` // seconds
	URI       string   `json:"uri,omitempty"`
}

// PlaylistExport bundles a playlist's metadata with its full track listing.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Artist represents a catalog artist with its genre tags.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

// AudioFeatures is the per-track audio feature record.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Instrumentalness float64 `json:"instrumentalness"`
	Acousticness     float64 `json:"acousticness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Tempo            float64 `json:"tempo"`
	Key              int     `json:"key"`  // pitch class 0-11, -1 when undetected
	Mode             int     `json:"mode"` // 0 minor, 1 major
}

// SeedSet holds the seeds for a recommendation request.
//
// Tracks hold catalog URIs, Artists and Genres hold plain identifiers.
// The combined count must not exceed [MaxSeeds].
type SeedSet struct {
	Tracks  []string
	Artists []string
	Genres  []string
}

// Count returns the total number of allocated seed slots.
func (s SeedSet) Count() int {
	return len(s.Tracks) + len(s.Artists) + len(s.Genres)
}

// Empty reports whether no seeds of any kind are present.
func (s SeedSet) Empty() bool {
	return s.Count() == 0
}

// APIError is a remote catalog error carrying the HTTP status code.
//
// It unwraps to a shared sentinel so callers can distinguish rate limiting
// and expired tokens with errors.Is without inspecting status codes.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog API error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog API error: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return shared.ErrTokenExpired
	case 404:
		return shared.ErrTrackNotFound
	case 429:
		return shared.ErrRateLimited
	default:
		return shared.ErrAPIRequest
	}
}

// IsRateLimited reports whether an error chain contains a 429 response.
func IsRateLimited(err error) bool {
	return errors.Is(err, shared.ErrRateLimited)
}
