// Package frame loads still camera frames and reports their dimensions.
package frame

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrEmpty is returned for a frame without pixels.
var ErrEmpty = errors.New("empty frame")

// Frame is a decoded still image.
type Frame struct {
	Path  string
	Image image.Image
}

// Load decodes the image at path.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	return &Frame{Path: path, Image: img}, nil
}

// Width returns the image width in pixels.
func (f *Frame) Width() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (f *Frame) Height() int {
	if f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// Size reads only the header of the image at path and returns its dimensions.
func Size(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return cfg.Width, cfg.Height, nil
}
