// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// ImageSource is an encoded image, either held in memory or referenced by file path.
type ImageSource struct {
	// Name is an identifier for this image (e.g., "noise", "seed").
	Name string

	// Path is the file path of the image (empty when Data is set).
	Path string

	// Data contains the raw encoded image bytes (PNG/JPEG).
	Data []byte
}

// Decode decodes the image to RGBA staging data.
// Uses either the Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - TextureStagingData: the decoded pixels and their dimensions
//   - error: error if decoding fails
func (s *ImageSource) Decode() (TextureStagingData, error) {
	if s == nil {
		return TextureStagingData{}, fmt.Errorf("image source is nil")
	}

	var img image.Image
	var err error

	if len(s.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(s.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode image %s: %w", s.Name, err)
		}
	} else if s.Path != "" {
		file, fileErr := os.Open(s.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open image file %s: %w", s.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode image file %s: %w", s.Path, err)
		}
	} else {
		return TextureStagingData{}, fmt.Errorf("image source has neither data nor path")
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
