// package qr renders playlist share links as QR code images.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	"spotfave/internal/shared"
)

// DefaultSize is the side length in pixels of a generated QR image.
const DefaultSize = 512

// Encoder renders a text payload as a QR code image.
type Encoder interface {
	// Encode returns PNG image bytes for the payload.
	Encode(payload string, size int) ([]byte, error)
}

// PNGEncoder implements Encoder with medium error-correction PNG output.
type PNGEncoder struct{}

// NewPNGEncoder creates a PNGEncoder.
func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{}
}

// Encode returns PNG image bytes for the payload.
func (e *PNGEncoder) Encode(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty QR payload", shared.ErrInvalidInput)
	}
	if size <= 0 {
		size = DefaultSize
	}
	data, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return data, nil
}

// WriteFile encodes the payload and writes the PNG to path, creating parent
// directories as needed. Returns the written path.
func WriteFile(enc Encoder, payload, path string, size int) (string, error) {
	data, err := enc.Encode(payload, size)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write QR image: %w", err)
	}
	return path, nil
}
