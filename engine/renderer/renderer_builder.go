package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithCamera replaces the default camera.
//
// Parameters:
//   - c: the camera feeding the projection and view uniforms
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCamera(c camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.camera = c
	}
}

// WithResolution sets the initial drawing surface size. The camera aspect follows it.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the resolution option to a renderer
func WithResolution(width, height int32) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}
