// Package uniform holds uniform descriptors, the well-known uniform vocabulary,
// ordered uniform tables, uniform buffers and textures.
//
// A Uniform is created once with its Kind and location. Creation picks the upload
// function for the Kind, and a well-known uniform additionally gets a resolver closure,
// so per-frame work is a resolver call and an upload with no name dispatch.
package uniform

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Resolver recomputes the value of a well-known uniform from the current engine state.
type Resolver func() []float32

// Uniform is a single named uniform of a program.
type Uniform struct {
	// Name is the GLSL uniform name.
	Name string
	// Kind is the GLSL type.
	Kind Kind
	// Location is the resolved location, -1 when the program has no active uniform of this name.
	Location int32
	// Texture is the backing texture of a Sampler uniform. It may be shared with other uniforms.
	Texture *Texture

	floats  []float32
	ints    []int32
	resolve Resolver
	upload  uploadFunc
}

// New creates a uniform of the given kind at a resolved location.
//
// Parameters:
//   - name: the GLSL uniform name
//   - kind: the GLSL type
//   - location: the location returned by the backend, or -1
//
// Returns:
//   - *Uniform: the uniform with a zero value
func New(name string, kind Kind, location int32) *Uniform {
	u := &Uniform{
		Name:     name,
		Kind:     kind,
		Location: location,
		upload:   func(backend.Backend, *Uniform) {},
	}
	if kind >= 0 && int(kind) < len(uploaders) {
		u.upload = uploaders[kind]
	}
	if kind.IsInt() {
		u.ints = make([]int32, kind.Size())
	} else {
		u.floats = make([]float32, kind.Size())
	}
	return u
}

// NewSampler creates a Sampler uniform backed by a texture.
func NewSampler(name string, location int32, tex *Texture) *Uniform {
	u := New(name, Sampler, location)
	u.Texture = tex
	if tex != nil {
		u.ints[0] = int32(tex.Unit)
	}
	return u
}

// WithResolver attaches the per-frame resolver of a well-known uniform and seeds the value.
func (u *Uniform) WithResolver(r Resolver) *Uniform {
	u.resolve = r
	u.Resolve()
	return u
}

// Resolved reports whether the uniform has a resolver.
func (u *Uniform) Resolved() bool { return u.resolve != nil }

// Resolve recomputes the value through the resolver. User uniforms are left untouched.
func (u *Uniform) Resolve() {
	if u.resolve != nil {
		u.SetFloats(u.resolve())
	}
}

// SetFloats stores a float value. Integer kinds are converted by truncation.
func (u *Uniform) SetFloats(v []float32) {
	if u.Kind.IsInt() {
		u.ints = u.ints[:0]
		for _, f := range v {
			u.ints = append(u.ints, int32(f))
		}
		return
	}
	u.floats = append(u.floats[:0], v...)
}

// SetInts stores an integer value. Float kinds are converted.
func (u *Uniform) SetInts(v []int32) {
	if !u.Kind.IsInt() {
		u.floats = u.floats[:0]
		for _, i := range v {
			u.floats = append(u.floats, float32(i))
		}
		return
	}
	u.ints = append(u.ints[:0], v...)
}

// Floats returns the current value as floats.
func (u *Uniform) Floats() []float32 {
	if u.Kind.IsInt() {
		out := make([]float32, len(u.ints))
		for i, v := range u.ints {
			out[i] = float32(v)
		}
		return out
	}
	return append([]float32(nil), u.floats...)
}

// Ints returns the current value as integers.
func (u *Uniform) Ints() []int32 {
	if !u.Kind.IsInt() {
		out := make([]int32, len(u.floats))
		for i, v := range u.floats {
			out[i] = int32(v)
		}
		return out
	}
	return append([]int32(nil), u.ints...)
}

// Upload sends the current value to the current program. Inactive uniforms are skipped,
// except samplers, whose texture is still bound to its unit.
func (u *Uniform) Upload(b backend.Backend) {
	if u.Location < 0 && u.Kind != Sampler {
		return
	}
	u.upload(b, u)
}
