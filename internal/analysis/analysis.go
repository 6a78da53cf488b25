// package analysis aggregates audio features and artist genres across track
// sets and derives playlist-level summaries used by curation and reporting.
package analysis

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"spotfave/internal/services"
)

// TopGenreCount is how many dominant genres an analysis keeps.
const TopGenreCount = 5

// SeedTrackCount is how many seed tracks an analysis keeps.
const SeedTrackCount = 5

// FeatureNames lists the recognized audio features, in reporting order.
var FeatureNames = []string{
	"danceability",
	"energy",
	"valence",
	"instrumentalness",
	"acousticness",
	"speechiness",
	"liveness",
	"tempo",
}

// Catalog is the subset of the catalog service the analyzer needs.
type Catalog interface {
	Track(ctx context.Context, trackID string) (*services.Track, error)
	Artist(ctx context.Context, artistID string) (*services.Artist, error)
	AudioFeatures(ctx context.Context, ids []string) ([]*services.AudioFeatures, error)
}

// TrackDetail holds the per-track inputs to an analysis.
//
// Features is nil when the catalog has no audio feature record for the
// track. Genres is the sorted union of the track's artists' genre tags.
type TrackDetail struct {
	ID       string
	Features *services.AudioFeatures
	Genres   []string
}

// PlaylistAnalysis is the aggregate over a playlist's tracks.
//
// FeatureAverages holds one entry per recognized feature; a nil value means
// no track contributed a value for that feature. SeedTracks are the first
// tracks in playlist order, capped at [SeedTrackCount].
type PlaylistAnalysis struct {
	TopGenres       []string
	FeatureAverages map[string]*float64
	SeedTracks      []string
}

// Empty reports whether the analysis carries no usable signal.
//
// An empty analysis is the sentinel for "analysis unavailable"; orchestration
// treats it as fatal for the run.
func (a *PlaylistAnalysis) Empty() bool {
	if a == nil {
		return true
	}
	if len(a.TopGenres) > 0 || len(a.SeedTracks) > 0 {
		return false
	}
	for _, avg := range a.FeatureAverages {
		if avg != nil {
			return false
		}
	}
	return true
}

// Analyzer fetches per-track details and aggregates them.
type Analyzer struct {
	catalog Catalog
	logger  *log.Logger
}

// NewAnalyzer creates an Analyzer backed by the given catalog.
func NewAnalyzer(catalog Catalog, logger *log.Logger) *Analyzer {
	return &Analyzer{catalog: catalog, logger: logger}
}

// TrackDetails fetches audio features and artist genres for each track ID.
//
// Failures are per-track: a track whose metadata cannot be fetched is
// skipped, a missing feature record leaves Features nil, and an artist
// lookup error contributes no genres. Duplicates are not removed; a
// repeated track double-weights the averages.
func (a *Analyzer) TrackDetails(ctx context.Context, trackIDs []string) []TrackDetail {
	if len(trackIDs) == 0 {
		return nil
	}

	featuresByID := a.fetchFeatures(ctx, trackIDs)

	details := make([]TrackDetail, 0, len(trackIDs))
	for _, trackID := range trackIDs {
		track, err := a.catalog.Track(ctx, trackID)
		if err != nil {
			a.logger.Warn("skipping track, metadata fetch failed", "track", trackID, "error", err)
			continue
		}

		genreSet := map[string]struct{}{}
		for _, artistID := range track.ArtistIDs {
			artist, err := a.catalog.Artist(ctx, artistID)
			if err != nil {
				a.logger.Warn("artist lookup failed, no genres contributed", "artist", artistID, "track", trackID, "error", err)
				continue
			}
			for _, genre := range artist.Genres {
				genreSet[genre] = struct{}{}
			}
		}

		genres := make([]string, 0, len(genreSet))
		for genre := range genreSet {
			genres = append(genres, genre)
		}
		sort.Strings(genres)

		details = append(details, TrackDetail{
			ID:       trackID,
			Features: featuresByID[trackID],
			Genres:   genres,
		})
	}

	return details
}

// fetchFeatures retrieves audio feature records in catalog-sized batches.
//
// A failed batch leaves its tracks without features; the analysis continues.
func (a *Analyzer) fetchFeatures(ctx context.Context, trackIDs []string) map[string]*services.AudioFeatures {
	featuresByID := make(map[string]*services.AudioFeatures, len(trackIDs))

	for start := 0; start < len(trackIDs); start += services.MaxBatchItems {
		end := min(start+services.MaxBatchItems, len(trackIDs))
		batch := trackIDs[start:end]

		features, err := a.catalog.AudioFeatures(ctx, batch)
		if err != nil {
			a.logger.Warn("audio feature batch failed", "from", start, "count", len(batch), "error", err)
			continue
		}

		for i, record := range features {
			if i >= len(batch) || record == nil {
				continue
			}
			featuresByID[batch[i]] = record
		}
	}

	return featuresByID
}

// Analyze runs the full mood/genre aggregation over a track list.
//
// Returns the sentinel empty analysis when the input is empty or no track
// resolved.
func (a *Analyzer) Analyze(ctx context.Context, trackIDs []string) *PlaylistAnalysis {
	analysis := &PlaylistAnalysis{FeatureAverages: map[string]*float64{}}
	for _, feature := range FeatureNames {
		analysis.FeatureAverages[feature] = nil
	}

	if len(trackIDs) == 0 {
		return analysis
	}

	details := a.TrackDetails(ctx, trackIDs)
	if len(details) == 0 {
		a.logger.Warn("no track details resolved, analysis unavailable")
		return analysis
	}

	analysis.TopGenres = topGenres(details, TopGenreCount)
	for feature, avg := range averageFeatures(details) {
		analysis.FeatureAverages[feature] = avg
	}

	seeds := trackIDs
	if len(seeds) > SeedTrackCount {
		seeds = seeds[:SeedTrackCount]
	}
	analysis.SeedTracks = append([]string(nil), seeds...)

	return analysis
}

// topGenres counts genre frequency across all details and keeps the n most
// frequent, ties broken by first appearance during the scan.
func topGenres(details []TrackDetail, n int) []string {
	counts := map[string]int{}
	var firstSeen []string

	for _, detail := range details {
		for _, genre := range detail.Genres {
			if _, seen := counts[genre]; !seen {
				firstSeen = append(firstSeen, genre)
			}
			counts[genre]++
		}
	}

	ranked := append([]string(nil), firstSeen...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// averageFeatures computes the arithmetic mean per feature over the tracks
// that have a feature record. A feature with zero contributors stays nil.
func averageFeatures(details []TrackDetail) map[string]*float64 {
	sums := map[string]float64{}
	counts := map[string]int{}

	for _, detail := range details {
		if detail.Features == nil {
			continue
		}
		for feature, value := range featureValues(detail.Features) {
			sums[feature] += value
			counts[feature]++
		}
	}

	averages := map[string]*float64{}
	for _, feature := range FeatureNames {
		if counts[feature] == 0 {
			averages[feature] = nil
			continue
		}
		avg := sums[feature] / float64(counts[feature])
		averages[feature] = &avg
	}
	return averages
}

func featureValues(f *services.AudioFeatures) map[string]float64 {
	return map[string]float64{
		"danceability":     f.Danceability,
		"energy":           f.Energy,
		"valence":          f.Valence,
		"instrumentalness": f.Instrumentalness,
		"acousticness":     f.Acousticness,
		"speechiness":      f.Speechiness,
		"liveness":         f.Liveness,
		"tempo":            f.Tempo,
	}
}
