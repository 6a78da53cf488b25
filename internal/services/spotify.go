// Spotify API implementation of [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"spotfave/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Country     string    `json:"country"`
	Followers   followers `json:"followers"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksField struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Owner        owner               `json:"owner"`
	Public       bool                `json:"public"`
	Tracks       playlistTracksField `json:"tracks"`
	URI          string              `json:"uri"`
	ExternalURLs externalURLs        `json:"external_urls"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is a pointer because the API returns null entries for removed or
// unavailable tracks; those entries are skipped during pagination.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyPaginatedPlaylistTracks represents a paginated response of playlist items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPaginatedTracks represents a paginated response of bare tracks.
type SpotifyPaginatedTracks struct {
	Items []SpotifyTrack `json:"items"`
	Next  *string        `json:"next"`
}

// SpotifyPaginatedArtists represents a paginated response of artists.
type SpotifyPaginatedArtists struct {
	Items []SpotifyArtist `json:"items"`
	Next  *string         `json:"next"`
}

// SpotifyPlayHistoryItem represents one play history entry.
//
// Track is a pointer because the API can return null entries for tracks that
// are no longer available; those are skipped.
type SpotifyPlayHistoryItem struct {
	PlayedAt string        `json:"played_at"`
	Track    *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlayHistory represents a paginated play history response.
type SpotifyPaginatedPlayHistory struct {
	Items []SpotifyPlayHistoryItem `json:"items"`
	Next  *string                  `json:"next"`
}

// SpotifyAudioFeatures represents an audio feature record.
type SpotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Instrumentalness float64 `json:"instrumentalness"`
	Acousticness     float64 `json:"acousticness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
	Tempo            float64 `json:"tempo"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
}

// SpotifyService implements [CatalogService] for Spotify API interactions.
// Uses [oauth2] for authentication and token refresh.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	userID     string // cached after the first CurrentUser call
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-read",
			"user-library-modify",
			"user-top-read",
			"user-read-recently-played",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken}
		if refresh, ok := credentials["refresh_token"]; ok {
			token.RefreshToken = refresh
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs an [oauth2.Token] and wraps the HTTP client for automatic refresh.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidArgument)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated HTTP request against an API endpoint path.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	return s.doRequestURL(ctx, method, s.baseURL+endpoint, body, result)
}

// doRequestURL performs an authenticated HTTP request against an absolute URL.
//
// Pagination cursors are absolute "next" URLs, so the walkers call this directly.
func (s *SpotifyService) doRequestURL(ctx context.Context, method, apiURL string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Message = errBody.Error.Message
		}
		return fmt.Errorf("%w", apiErr)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*User, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	s.userID = user.ID
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// currentUserID returns the cached user ID, fetching the profile on first use.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// UserPlaylists retrieves all playlists owned by the authenticated user.
//
// Walks every page of /me/playlists and filters out followed playlists
// owned by other users.
func (s *SpotifyService) UserPlaylists(ctx context.Context) ([]Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	all, err := CollectPages(ctx, func(ctx context.Context, cursor string) (Page[Playlist], error) {
		apiURL := cursor
		if apiURL == "" {
			apiURL = fmt.Sprintf("%s/me/playlists?limit=50", s.baseURL)
		}

		var response SpotifyPaginatedPlaylists
		if err := s.doRequestURL(ctx, http.MethodGet, apiURL, nil, &response); err != nil {
			return Page[Playlist]{}, err
		}

		page := Page[Playlist]{}
		for _, sp := range response.Items {
			if sp.Owner.ID != userID {
				continue
			}
			page.Items = append(page.Items, mapPlaylist(sp))
		}
		if response.Next != nil {
			page.Next = *response.Next
		}
		return page, nil
	})

	if err != nil {
		return all, fmt.Errorf("failed to list playlists: %w", err)
	}
	return all, nil
}

// PlaylistByID retrieves a playlist's metadata.
func (s *SpotifyService) PlaylistByID(ctx context.Context, playlistID string) (*Playlist, error) {
	var sp SpotifyPlaylist
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	playlist := mapPlaylist(sp)
	return &playlist, nil
}

// PlaylistTracks retrieves all tracks of a playlist, walking every page.
//
// Null track entries (removed or unavailable items) are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	tracks, err := CollectPages(ctx, func(ctx context.Context, cursor string) (Page[Track], error) {
		apiURL := cursor
		if apiURL == "" {
			apiURL = fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", s.baseURL, playlistID, MaxBatchItems)
		}

		var response SpotifyPaginatedPlaylistTracks
		if err := s.doRequestURL(ctx, http.MethodGet, apiURL, nil, &response); err != nil {
			return Page[Track]{}, err
		}

		page := Page[Track]{}
		for _, item := range response.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			page.Items = append(page.Items, mapTrack(*item.Track))
		}
		if response.Next != nil {
			page.Next = *response.Next
		}
		return page, nil
	})

	if err != nil {
		return tracks, fmt.Errorf("failed to list playlist tracks: %w", err)
	}
	return tracks, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*Track, error) {
	var st SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", trackID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &st); err != nil {
		return nil, err
	}

	track := mapTrack(st)
	return &track, nil
}

// Artist retrieves a single artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*Artist, error) {
	var sa SpotifyArtist
	endpoint := fmt.Sprintf("/artists/%s", artistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sa); err != nil {
		return nil, err
	}

	return &Artist{ID: sa.ID, Name: sa.Name, Genres: sa.Genres}, nil
}

// AudioFeatures retrieves audio feature records for up to 100 track IDs.
//
// The response is positionally aligned with ids; a nil entry means the
// catalog has no record for that track.
func (s *SpotifyService) AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatchItems {
		return nil, fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, MaxBatchItems)
	}

	endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(strings.Join(ids, ",")))

	var response struct {
		AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	features := make([]*AudioFeatures, len(response.AudioFeatures))
	for i, sf := range response.AudioFeatures {
		if sf == nil {
			continue
		}
		features[i] = &AudioFeatures{
			Danceability:     sf.Danceability,
			Energy:           sf.Energy,
			Valence:          sf.Valence,
			Instrumentalness: sf.Instrumentalness,
			Acousticness:     sf.Acousticness,
			Speechiness:      sf.Speechiness,
			Liveness:         sf.Liveness,
			Tempo:            sf.Tempo,
			Key:              sf.Key,
			Mode:             sf.Mode,
		}
	}
	return features, nil
}

// CreatePlaylist creates a new playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string, public bool) (*Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"name": name, "public": public}
	endpoint := fmt.Sprintf("/users/%s/playlists", userID)

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &sp); err != nil {
		return nil, err
	}
	if sp.ID == "" {
		return nil, fmt.Errorf("%w: create playlist response missing id", shared.ErrAPIRequest)
	}

	playlist := mapPlaylist(sp)
	return &playlist, nil
}

// AddItems appends up to 100 track URIs to a playlist.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxBatchItems {
		return fmt.Errorf("%w: maximum %d items per call", shared.ErrInvalidArgument, MaxBatchItems)
	}

	body := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// SaveLiked saves a track to the user's liked songs collection.
func (s *SpotifyService) SaveLiked(ctx context.Context, trackID string) error {
	endpoint := fmt.Sprintf("/me/tracks?ids=%s", url.QueryEscape(trackID))
	return s.doRequest(ctx, http.MethodPut, endpoint, nil, nil)
}

// defaultPersonalizationLimit caps personalization reads when the caller
// does not request a count.
const defaultPersonalizationLimit = 50

// TopTracks retrieves the user's most played tracks for a time range,
// walking /me/top/tracks until limit items are accumulated.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	if !ValidTimeRange(timeRange) {
		return nil, fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, timeRange)
	}
	if limit <= 0 {
		limit = defaultPersonalizationLimit
	}

	fetched := 0
	tracks, err := CollectPages(ctx, func(ctx context.Context, cursor string) (Page[Track], error) {
		apiURL := cursor
		if apiURL == "" {
			apiURL = fmt.Sprintf("%s/me/top/tracks?time_range=%s&limit=%d", s.baseURL, timeRange, pageLimit(limit))
		}

		var response SpotifyPaginatedTracks
		if err := s.doRequestURL(ctx, http.MethodGet, apiURL, nil, &response); err != nil {
			return Page[Track]{}, err
		}

		page := Page[Track]{}
		for _, st := range response.Items {
			if st.ID == "" || fetched >= limit {
				continue
			}
			page.Items = append(page.Items, mapTrack(st))
			fetched++
		}
		if response.Next != nil && fetched < limit {
			page.Next = *response.Next
		}
		return page, nil
	})

	if err != nil {
		return tracks, fmt.Errorf("failed to list top tracks: %w", err)
	}
	return tracks, nil
}

// TopArtists retrieves the user's most played artists for a time range,
// walking /me/top/artists until limit items are accumulated.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error) {
	if !ValidTimeRange(timeRange) {
		return nil, fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, timeRange)
	}
	if limit <= 0 {
		limit = defaultPersonalizationLimit
	}

	fetched := 0
	artists, err := CollectPages(ctx, func(ctx context.Context, cursor string) (Page[Artist], error) {
		apiURL := cursor
		if apiURL == "" {
			apiURL = fmt.Sprintf("%s/me/top/artists?time_range=%s&limit=%d", s.baseURL, timeRange, pageLimit(limit))
		}

		var response SpotifyPaginatedArtists
		if err := s.doRequestURL(ctx, http.MethodGet, apiURL, nil, &response); err != nil {
			return Page[Artist]{}, err
		}

		page := Page[Artist]{}
		for _, sa := range response.Items {
			if sa.ID == "" || fetched >= limit {
				continue
			}
			page.Items = append(page.Items, Artist{ID: sa.ID, Name: sa.Name, Genres: sa.Genres})
			fetched++
		}
		if response.Next != nil && fetched < limit {
			page.Next = *response.Next
		}
		return page, nil
	})

	if err != nil {
		return artists, fmt.Errorf("failed to list top artists: %w", err)
	}
	return artists, nil
}

// RecentlyPlayed retrieves the user's play history, most recent first,
// walking /me/player/recently-played until limit items are accumulated.
//
// Null track entries are skipped.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = defaultPersonalizationLimit
	}

	fetched := 0
	tracks, err := CollectPages(ctx, func(ctx context.Context, cursor string) (Page[Track], error) {
		apiURL := cursor
		if apiURL == "" {
			apiURL = fmt.Sprintf("%s/me/player/recently-played?limit=%d", s.baseURL, pageLimit(limit))
		}

		var response SpotifyPaginatedPlayHistory
		if err := s.doRequestURL(ctx, http.MethodGet, apiURL, nil, &response); err != nil {
			return Page[Track]{}, err
		}

		page := Page[Track]{}
		for _, item := range response.Items {
			if item.Track == nil || item.Track.ID == "" || fetched >= limit {
				continue
			}
			page.Items = append(page.Items, mapTrack(*item.Track))
			fetched++
		}
		if response.Next != nil && fetched < limit {
			page.Next = *response.Next
		}
		return page, nil
	})

	if err != nil {
		return tracks, fmt.Errorf("failed to list recently played tracks: %w", err)
	}
	return tracks, nil
}

// pageLimit clamps a requested count to the per-page maximum of the
// personalization endpoints.
func pageLimit(limit int) int {
	if limit > defaultPersonalizationLimit {
		return defaultPersonalizationLimit
	}
	return limit
}

// Recommendations requests recommended tracks for a seed set.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds SeedSet, targets map[string]float64, limit int) ([]Track, error) {
	if seeds.Empty() {
		return nil, shared.ErrNoSeeds
	}
	if seeds.Count() > MaxSeeds {
		return nil, fmt.Errorf("%w: at most %d combined seeds", shared.ErrInvalidArgument, MaxSeeds)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if len(seeds.Tracks) > 0 {
		params.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}
	if len(seeds.Artists) > 0 {
		params.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Genres) > 0 {
		params.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}
	for feature, value := range targets {
		params.Set("target_"+feature, strconv.FormatFloat(value, 'f', -1, 64))
	}

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}
	endpoint := "/recommendations?" + params.Encode()
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(response.Tracks))
	for _, st := range response.Tracks {
		if st.ID == "" {
			continue
		}
		tracks = append(tracks, mapTrack(st))
	}
	return tracks, nil
}

func mapPlaylist(sp SpotifyPlaylist) Playlist {
	return Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		OwnerID:     sp.Owner.ID,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		URL:         sp.ExternalURLs.Spotify,
	}
}

func mapTrack(st SpotifyTrack) Track {
	track := Track{
		ID:       st.ID,
		Title:    st.Name,
		Album:    st.Album.Name,
		Duration: st.DurationMS / 1000,
		URI:      st.URI,
	}
	for _, artist := range st.Artists {
		if artist.ID != "" {
			track.ArtistIDs = append(track.ArtistIDs, artist.ID)
		}
	}
	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	return track
}

// TrackURI converts a bare track ID to catalog URI form.
func TrackURI(trackID string) string {
	return "spotify:track:" + trackID
}

// PlaylistURL composes the public share link for a playlist ID.
func PlaylistURL(playlistID string) string {
	return "https://open.spotify.com/playlist/" + playlistID
}
