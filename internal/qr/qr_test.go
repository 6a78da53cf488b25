package qr

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spotfave/internal/shared"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestPNGEncoder(t *testing.T) {
	t.Run("Encodes A Share Link As PNG", func(t *testing.T) {
		enc := NewPNGEncoder()

		data, err := enc.Encode("https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", 256)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Error("expected PNG output")
		}
	})

	t.Run("Rejects Empty Payload", func(t *testing.T) {
		enc := NewPNGEncoder()

		_, err := enc.Encode("", 256)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Zero Size Falls Back To Default", func(t *testing.T) {
		enc := NewPNGEncoder()

		if _, err := enc.Encode("payload", 0); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "playlist.png")

	written, err := WriteFile(NewPNGEncoder(), "https://open.spotify.com/playlist/x", path, 256)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != path {
		t.Errorf("expected path %s, got %s", path, written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("written file is not a PNG")
	}
}
