package analysis

import "spotfave/internal/services"

// TrackKeyInfo is one row of a BPM/key report.
type TrackKeyInfo struct {
	ID      string
	Title   string
	Artist  string
	Tempo   float64
	Key     string
	Camelot string
}

// AudioSummary is a playlist-level BPM and key overview.
type AudioSummary struct {
	AverageBPM      float64
	MinBPM          float64
	MaxBPM          float64
	KeyDistribution map[string]int
	Tracks          []TrackKeyInfo
}

// SummarizeAudio builds an [AudioSummary] from a track list and its
// positionally aligned audio feature records.
//
// Tracks without a feature record are left out of the report entirely; a
// record with tempo 0 still contributes its key to the distribution but
// not to the BPM statistics.
func SummarizeAudio(tracks []services.Track, features []*services.AudioFeatures) *AudioSummary {
	summary := &AudioSummary{KeyDistribution: map[string]int{}}

	var tempoSum float64
	var tempoCount int

	for i, track := range tracks {
		if i >= len(features) || features[i] == nil {
			continue
		}
		record := features[i]

		keyName := KeyName(record.Key, record.Mode)
		summary.KeyDistribution[keyName]++
		summary.Tracks = append(summary.Tracks, TrackKeyInfo{
			ID:      track.ID,
			Title:   track.Title,
			Artist:  track.Artist,
			Tempo:   record.Tempo,
			Key:     keyName,
			Camelot: CamelotCode(keyName),
		})

		if record.Tempo <= 0 {
			continue
		}
		tempoSum += record.Tempo
		tempoCount++
		if summary.MinBPM == 0 || record.Tempo < summary.MinBPM {
			summary.MinBPM = record.Tempo
		}
		if record.Tempo > summary.MaxBPM {
			summary.MaxBPM = record.Tempo
		}
	}

	if tempoCount > 0 {
		summary.AverageBPM = tempoSum / float64(tempoCount)
	}

	return summary
}
