// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"golang.org/x/oauth2"

	"spotfave/internal/services"
)

// MockCatalog is a configurable test double for [services.CatalogService].
//
// Zero value returns empty results everywhere; tests populate only the
// fields the command under test touches.
type MockCatalog struct {
	Playlists       []services.Playlist
	PlaylistsErr    error
	Tracks          map[string][]services.Track
	TracksErr       error
	TrackByID       map[string]*services.Track
	Artists         map[string]*services.Artist
	Features        map[string]*services.AudioFeatures
	Recommended  []services.Track
	Created      []services.Playlist
	CreateErr    error
	AddErr       error
	SaveLikedErr error
	TopByRange   map[string][]services.Track // keyed by time range
	TopErr       error
	TopArtistsBy map[string][]services.Artist
	Recent       []services.Track
	RecentErr    error

	AddedItems []string
	Saved      []string
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	return nil
}

func (m *MockCatalog) CurrentUser(ctx context.Context) (*services.User, error) {
	return &services.User{ID: "mock-user", DisplayName: "Mock User"}, nil
}

func (m *MockCatalog) UserPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockCatalog) PlaylistByID(ctx context.Context, playlistID string) (*services.Playlist, error) {
	for i := range m.Playlists {
		if m.Playlists[i].ID == playlistID {
			return &m.Playlists[i], nil
		}
	}
	for i := range m.Created {
		if m.Created[i].ID == playlistID {
			return &m.Created[i], nil
		}
	}
	return nil, &services.APIError{StatusCode: 404, Message: "playlist not found"}
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]services.Track, error) {
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return m.Tracks[playlistID], nil
}

func (m *MockCatalog) Track(ctx context.Context, trackID string) (*services.Track, error) {
	if track, ok := m.TrackByID[trackID]; ok {
		return track, nil
	}
	return nil, &services.APIError{StatusCode: 404, Message: "track not found"}
}

func (m *MockCatalog) Artist(ctx context.Context, artistID string) (*services.Artist, error) {
	if artist, ok := m.Artists[artistID]; ok {
		return artist, nil
	}
	return nil, &services.APIError{StatusCode: 404, Message: "artist not found"}
}

func (m *MockCatalog) AudioFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error) {
	features := make([]*services.AudioFeatures, 0, len(ids))
	for _, id := range ids {
		features = append(features, m.Features[id])
	}
	return features, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name string, public bool) (*services.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	playlist := services.Playlist{
		ID:     "created-" + name,
		Name:   name,
		Public: public,
	}
	m.Created = append(m.Created, playlist)
	return &playlist, nil
}

func (m *MockCatalog) AddItems(ctx context.Context, playlistID string, uris []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedItems = append(m.AddedItems, uris...)
	return nil
}

func (m *MockCatalog) SaveLiked(ctx context.Context, trackID string) error {
	if m.SaveLikedErr != nil {
		return m.SaveLikedErr
	}
	m.Saved = append(m.Saved, trackID)
	return nil
}

func (m *MockCatalog) TopTracks(ctx context.Context, timeRange string, limit int) ([]services.Track, error) {
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	return m.TopByRange[timeRange], nil
}

func (m *MockCatalog) TopArtists(ctx context.Context, timeRange string, limit int) ([]services.Artist, error) {
	if m.TopErr != nil {
		return nil, m.TopErr
	}
	return m.TopArtistsBy[timeRange], nil
}

func (m *MockCatalog) RecentlyPlayed(ctx context.Context, limit int) ([]services.Track, error) {
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	return m.Recent, nil
}

func (m *MockCatalog) Recommendations(ctx context.Context, seeds services.SeedSet, targets map[string]float64, limit int) ([]services.Track, error) {
	return m.Recommended, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
