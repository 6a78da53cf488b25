// package formatter provides functions to render playlist and analysis data
// to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"spotfave/internal/analysis"
	"spotfave/internal/services"
	"spotfave/internal/shared"
)

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Duration, URI
func ExportToCSV(export *services.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *services.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Playlist.Name))

	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", export.Playlist.Description))
	}

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(export.Tracks)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", shared.VisibilityString(export.Playlist.Public)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		duration := shared.FormatDuration(track.Duration)
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *services.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if export.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", export.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// AnalysisToText renders a PlaylistAnalysis as a short plain-text report.
// Feature averages with no contributing tracks render as "n/a".
func AnalysisToText(a *analysis.PlaylistAnalysis) []byte {
	var buf bytes.Buffer

	buf.WriteString("Top genres:\n")
	if len(a.TopGenres) == 0 {
		buf.WriteString("  (none)\n")
	}
	for i, genre := range a.TopGenres {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, genre))
	}

	buf.WriteString("\nFeature averages:\n")
	for _, name := range analysis.FeatureNames {
		avg := a.FeatureAverages[name]
		if avg == nil {
			buf.WriteString(fmt.Sprintf("  %-16s n/a\n", name))
			continue
		}
		buf.WriteString(fmt.Sprintf("  %-16s %.3f\n", name, *avg))
	}

	return buf.Bytes()
}

// AudioSummaryToText renders a per-track BPM/key table with the Camelot
// wheel code column, followed by the aggregate BPM line and key counts.
func AudioSummaryToText(summary *analysis.AudioSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-30s %-20s %7s  %-12s %s\n", "Title", "Artist", "BPM", "Key", "Camelot"))
	for _, track := range summary.Tracks {
		buf.WriteString(fmt.Sprintf("%-30s %-20s %7.1f  %-12s %s\n",
			truncate(track.Title, 30), truncate(track.Artist, 20), track.Tempo, track.Key, track.Camelot))
	}

	if len(summary.Tracks) > 0 {
		buf.WriteString(fmt.Sprintf("\nBPM: avg %.1f (min %.1f, max %.1f)\n",
			summary.AverageBPM, summary.MinBPM, summary.MaxBPM))
	}

	if len(summary.KeyDistribution) > 0 {
		keys := make([]string, 0, len(summary.KeyDistribution))
		for key := range summary.KeyDistribution {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			if summary.KeyDistribution[keys[i]] != summary.KeyDistribution[keys[j]] {
				return summary.KeyDistribution[keys[i]] > summary.KeyDistribution[keys[j]]
			}
			return keys[i] < keys[j]
		})
		buf.WriteString("Keys:\n")
		for _, key := range keys {
			buf.WriteString(fmt.Sprintf("  %-12s %d\n", key, summary.KeyDistribution[key]))
		}
	}

	return buf.Bytes()
}

// AudioSummaryToMarkdown renders the per-track BPM/key table as a Markdown
// table followed by the aggregate BPM line.
func AudioSummaryToMarkdown(summary *analysis.AudioSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString("| Title | Artist | BPM | Key | Camelot |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, track := range summary.Tracks {
		buf.WriteString(fmt.Sprintf("| %s | %s | %.1f | %s | %s |\n",
			track.Title, track.Artist, track.Tempo, track.Key, track.Camelot))
	}

	if len(summary.Tracks) > 0 {
		buf.WriteString(fmt.Sprintf("\n**BPM**: avg %.1f (min %.1f, max %.1f)\n",
			summary.AverageBPM, summary.MinBPM, summary.MaxBPM))
	}

	return buf.Bytes()
}

// AudioSummaryToCSV renders the per-track BPM/key table as CSV.
func AudioSummaryToCSV(summary *analysis.AudioSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artist", "BPM", "Key", "Camelot"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, track := range summary.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			strconv.FormatFloat(track.Tempo, 'f', 1, 64),
			track.Key,
			track.Camelot,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without tracks)
func ToMetadataJSON(playlist services.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *services.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID. Creates {dir}/README.md.
func WriteMarkdownExport(export *services.PlaylistExport, outputDir string) ([]string, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return []string{mdFile}, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(export *services.PlaylistExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", export.Playlist.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteManifest writes a JSON manifest describing an export run.
func WriteManifest(manifest any, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
