package formatter

import (
	"strings"
	"testing"

	"spotfave/internal/analysis"
	"spotfave/internal/services"
)

func sampleExport() *services.PlaylistExport {
	return &services.PlaylistExport{
		Playlist: services.Playlist{
			ID:          "pl1",
			Name:        "Morning Mix",
			Description: "wake up slowly",
			Public:      true,
		},
		Tracks: []services.Track{
			{ID: "t1", Title: "First Light", Artist: "Aurora", Album: "Dawn", Duration: 215, URI: "spotify:track:t1"},
			{ID: "t2", Title: "Second Wind", Artist: "Breeze", Duration: 190},
		},
	}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(sampleExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 records, got %d lines", len(lines))
	}
	if lines[0] != "ID,Title,Artist,Album,Duration,URI" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "First Light") || !strings.Contains(lines[1], "215") {
		t.Errorf("unexpected first record: %s", lines[1])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(sampleExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := string(data)

	for _, want := range []string{"# Morning Mix", "**Tracks**: 2", "**Visibility**: Public", "1. Aurora - First Light (Dawn) [3:35]"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(sampleExport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "Playlist: Morning Mix") || !strings.Contains(text, "2. Breeze - Second Wind") {
		t.Errorf("unexpected text output:\n%s", text)
	}
}

func TestAnalysisToText(t *testing.T) {
	energy := 0.62
	a := &analysis.PlaylistAnalysis{
		TopGenres:       []string{"pop", "rock"},
		FeatureAverages: map[string]*float64{"energy": &energy},
		SeedTracks:      []string{"t1"},
	}

	text := string(AnalysisToText(a))
	if !strings.Contains(text, "1. pop") || !strings.Contains(text, "2. rock") {
		t.Errorf("genre list missing:\n%s", text)
	}
	if !strings.Contains(text, "0.620") {
		t.Errorf("energy average missing:\n%s", text)
	}
	// features with no contributors render as n/a
	if !strings.Contains(text, "n/a") {
		t.Errorf("expected n/a for absent averages:\n%s", text)
	}
}

func TestAudioSummaryToText(t *testing.T) {
	summary := &analysis.AudioSummary{
		AverageBPM:      110,
		MinBPM:          100,
		MaxBPM:          120,
		KeyDistribution: map[string]int{"C Major": 1, "A Minor": 1},
		Tracks: []analysis.TrackKeyInfo{
			{ID: "t1", Title: "First Light", Artist: "Aurora", Tempo: 120, Key: "C Major", Camelot: "8B"},
			{ID: "t2", Title: "Second Wind", Artist: "Breeze", Tempo: 100, Key: "A Minor", Camelot: "8A"},
		},
	}

	text := string(AudioSummaryToText(summary))
	for _, want := range []string{"8B", "8A", "avg 110.0", "C Major"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestAudioSummaryToCSV(t *testing.T) {
	summary := &analysis.AudioSummary{
		Tracks: []analysis.TrackKeyInfo{
			{ID: "t1", Title: "First Light", Artist: "Aurora", Tempo: 120.5, Key: "C Major", Camelot: "8B"},
		},
	}

	data, err := AudioSummaryToCSV(summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "ID,Title,Artist,BPM,Key,Camelot" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "120.5") || !strings.Contains(lines[1], "8B") {
		t.Errorf("unexpected record: %s", lines[1])
	}
}

func TestAudioSummaryToMarkdown(t *testing.T) {
	summary := &analysis.AudioSummary{
		AverageBPM: 110,
		MinBPM:     100,
		MaxBPM:     120,
		Tracks: []analysis.TrackKeyInfo{
			{ID: "t1", Title: "First Light", Artist: "Aurora", Tempo: 120, Key: "C Major", Camelot: "8B"},
		},
	}

	text := string(AudioSummaryToMarkdown(summary))
	if !strings.Contains(text, "| Title | Artist | BPM | Key | Camelot |") {
		t.Errorf("missing table header:\n%s", text)
	}
	if !strings.Contains(text, "| First Light | Aurora | 120.0 | C Major | 8B |") {
		t.Errorf("missing track row:\n%s", text)
	}
	if !strings.Contains(text, "**BPM**: avg 110.0 (min 100.0, max 120.0)") {
		t.Errorf("missing aggregate line:\n%s", text)
	}
}
