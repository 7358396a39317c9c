package uniform

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Texture is a GPU texture bound to a fixed texture unit. Sampler uniforms hold it by
// pointer, so swapping two uniforms' textures never copies texel data.
type Texture struct {
	Handle uint32
	Unit   uint32
	Spec   backend.TextureSpec
}

// Target returns the texture dimensionality.
func (t *Texture) Target() backend.TextureTarget { return t.Spec.Target }

// NewTexture allocates a texture on a unit and uploads its initial data.
//
// Parameters:
//   - b: the backend
//   - unit: the texture unit the texture is bound to for sampling
//   - spec: dimensions, format, sampling and initial data
//
// Returns:
//   - *Texture: the allocated texture
func NewTexture(b backend.Backend, unit uint32, spec backend.TextureSpec) *Texture {
	handle := b.CreateTexture(unit, spec)
	spec.Data = nil
	return &Texture{Handle: handle, Unit: unit, Spec: spec}
}

// Release deletes the GPU texture.
func (t *Texture) Release(b backend.Backend) {
	if t.Handle != 0 {
		b.DeleteTexture(t.Handle)
		t.Handle = 0
	}
}
