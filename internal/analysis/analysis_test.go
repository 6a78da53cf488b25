package analysis

import (
	"context"
	"fmt"
	"io"
	"math"
	"testing"

	"spotfave/internal/services"
	"spotfave/internal/shared"
)

type mockCatalog struct {
	tracks     map[string]*services.Track
	artists    map[string]*services.Artist
	features   map[string]*services.AudioFeatures
	trackErr   map[string]error
	artistErr  map[string]error
	featureErr error
}

func (m *mockCatalog) Track(ctx context.Context, trackID string) (*services.Track, error) {
	if err, ok := m.trackErr[trackID]; ok {
		return nil, err
	}
	if track, ok := m.tracks[trackID]; ok {
		return track, nil
	}
	return nil, fmt.Errorf("track not found")
}

func (m *mockCatalog) Artist(ctx context.Context, artistID string) (*services.Artist, error) {
	if err, ok := m.artistErr[artistID]; ok {
		return nil, err
	}
	if artist, ok := m.artists[artistID]; ok {
		return artist, nil
	}
	return nil, fmt.Errorf("artist not found")
}

func (m *mockCatalog) AudioFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error) {
	if m.featureErr != nil {
		return nil, m.featureErr
	}
	out := make([]*services.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = m.features[id]
	}
	return out, nil
}

func newTestAnalyzer(catalog *mockCatalog) *Analyzer {
	return NewAnalyzer(catalog, shared.NewLogger(io.Discard))
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzer(t *testing.T) {
	catalog := &mockCatalog{
		tracks: map[string]*services.Track{
			"t1": {ID: "t1", ArtistIDs: []string{"a1"}},
			"t2": {ID: "t2", ArtistIDs: []string{"a2"}},
			"t3": {ID: "t3", ArtistIDs: []string{"a1", "a2"}},
		},
		artists: map[string]*services.Artist{
			"a1": {ID: "a1", Genres: []string{"pop", "dance pop"}},
			"a2": {ID: "a2", Genres: []string{"rock"}},
		},
		features: map[string]*services.AudioFeatures{
			"t1": {Danceability: 0.2, Energy: 0.4, Tempo: 100, Key: 0, Mode: 1},
			"t2": {Danceability: 0.6, Energy: 0.8, Tempo: 140, Key: 9, Mode: 0},
			// t3 has no audio feature record
		},
	}

	t.Run("Aggregates Genres And Features", func(t *testing.T) {
		analyzer := newTestAnalyzer(catalog)
		analysis := analyzer.Analyze(context.Background(), []string{"t1", "t2", "t3"})

		if analysis.Empty() {
			t.Fatal("expected a populated analysis")
		}

		// pop and dance pop appear twice (t1, t3), rock twice (t2, t3);
		// ties rank by first appearance.
		want := []string{"pop", "dance pop", "rock"}
		if len(analysis.TopGenres) != len(want) {
			t.Fatalf("expected %d genres, got %v", len(want), analysis.TopGenres)
		}
		for i, genre := range want {
			if analysis.TopGenres[i] != genre {
				t.Errorf("genre %d: expected %s, got %s", i, genre, analysis.TopGenres[i])
			}
		}

		dance := analysis.FeatureAverages["danceability"]
		if dance == nil || !floatEquals(*dance, 0.4) {
			t.Errorf("expected danceability average 0.4, got %v", dance)
		}
		tempo := analysis.FeatureAverages["tempo"]
		if tempo == nil || !floatEquals(*tempo, 120) {
			t.Errorf("expected tempo average 120, got %v", tempo)
		}

		if len(analysis.SeedTracks) != 3 {
			t.Errorf("expected 3 seed tracks, got %d", len(analysis.SeedTracks))
		}
		if analysis.SeedTracks[0] != "t1" {
			t.Errorf("expected seeds in playlist order, got %v", analysis.SeedTracks)
		}
	})

	t.Run("Average Is Order Independent", func(t *testing.T) {
		analyzer := newTestAnalyzer(catalog)

		forward := analyzer.Analyze(context.Background(), []string{"t1", "t2", "t3"})
		reversed := analyzer.Analyze(context.Background(), []string{"t3", "t2", "t1"})

		for _, feature := range FeatureNames {
			a, b := forward.FeatureAverages[feature], reversed.FeatureAverages[feature]
			if (a == nil) != (b == nil) {
				t.Fatalf("feature %s: nilness differs between orderings", feature)
			}
			if a != nil && !floatEquals(*a, *b) {
				t.Errorf("feature %s: %v != %v", feature, *a, *b)
			}
		}
	})

	t.Run("Average Is Null Iff No Contribution", func(t *testing.T) {
		noFeatures := &mockCatalog{
			tracks:  map[string]*services.Track{"t1": {ID: "t1", ArtistIDs: []string{"a1"}}},
			artists: map[string]*services.Artist{"a1": {ID: "a1", Genres: []string{"pop"}}},
		}
		analyzer := newTestAnalyzer(noFeatures)

		analysis := analyzer.Analyze(context.Background(), []string{"t1"})
		for _, feature := range FeatureNames {
			if analysis.FeatureAverages[feature] != nil {
				t.Errorf("feature %s: expected nil average with zero contributors", feature)
			}
		}
		if analysis.Empty() {
			t.Error("genres alone should make the analysis non-empty")
		}
	})

	t.Run("Empty Input Yields Sentinel", func(t *testing.T) {
		analyzer := newTestAnalyzer(catalog)
		analysis := analyzer.Analyze(context.Background(), nil)
		if !analysis.Empty() {
			t.Error("expected the sentinel empty analysis")
		}
	})

	t.Run("All Lookups Failing Yields Sentinel", func(t *testing.T) {
		broken := &mockCatalog{
			trackErr: map[string]error{"t1": fmt.Errorf("remote down"), "t2": fmt.Errorf("remote down")},
		}
		analyzer := newTestAnalyzer(broken)
		analysis := analyzer.Analyze(context.Background(), []string{"t1", "t2"})
		if !analysis.Empty() {
			t.Error("expected the sentinel empty analysis when no track resolves")
		}
	})

	t.Run("Artist Failure Contributes No Genres", func(t *testing.T) {
		partial := &mockCatalog{
			tracks: map[string]*services.Track{
				"t1": {ID: "t1", ArtistIDs: []string{"a1", "a2"}},
			},
			artists:   map[string]*services.Artist{"a1": {ID: "a1", Genres: []string{"pop"}}},
			artistErr: map[string]error{"a2": fmt.Errorf("lookup failed")},
		}
		analyzer := newTestAnalyzer(partial)

		details := analyzer.TrackDetails(context.Background(), []string{"t1"})
		if len(details) != 1 {
			t.Fatalf("expected 1 detail, got %d", len(details))
		}
		if len(details[0].Genres) != 1 || details[0].Genres[0] != "pop" {
			t.Errorf("expected only the resolvable artist's genres, got %v", details[0].Genres)
		}
	})

	t.Run("Feature Batch Failure Leaves Features Nil", func(t *testing.T) {
		noBatch := &mockCatalog{
			tracks:     map[string]*services.Track{"t1": {ID: "t1"}},
			featureErr: fmt.Errorf("batch down"),
		}
		analyzer := newTestAnalyzer(noBatch)

		details := analyzer.TrackDetails(context.Background(), []string{"t1"})
		if len(details) != 1 {
			t.Fatalf("expected detail despite feature failure, got %d", len(details))
		}
		if details[0].Features != nil {
			t.Error("expected nil features after batch failure")
		}
	})
}

func TestSummarizeAudio(t *testing.T) {
	tracks := []services.Track{
		{ID: "t1", Title: "One", Artist: "A"},
		{ID: "t2", Title: "Two", Artist: "B"},
		{ID: "t3", Title: "Three", Artist: "C"},
	}
	features := []*services.AudioFeatures{
		{Tempo: 120, Key: 0, Mode: 1},
		nil,
		{Tempo: 100, Key: 9, Mode: 0},
	}

	summary := SummarizeAudio(tracks, features)

	if len(summary.Tracks) != 2 {
		t.Fatalf("expected 2 report rows, got %d", len(summary.Tracks))
	}
	if !floatEquals(summary.AverageBPM, 110) {
		t.Errorf("expected average BPM 110, got %v", summary.AverageBPM)
	}
	if !floatEquals(summary.MinBPM, 100) || !floatEquals(summary.MaxBPM, 120) {
		t.Errorf("expected BPM range 100-120, got %v-%v", summary.MinBPM, summary.MaxBPM)
	}
	if summary.KeyDistribution["C Major"] != 1 || summary.KeyDistribution["A Minor"] != 1 {
		t.Errorf("unexpected key distribution: %v", summary.KeyDistribution)
	}
	if summary.Tracks[0].Camelot != "8B" {
		t.Errorf("expected 8B for C Major, got %s", summary.Tracks[0].Camelot)
	}
}
