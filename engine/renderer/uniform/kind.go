package uniform

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Kind is the GLSL type of a uniform. It decides how the value is uploaded.
type Kind int

const (
	Float Kind = iota
	Vec2
	Vec3
	Vec4
	Int
	IVec2
	IVec3
	IVec4
	Mat2
	Mat3
	Mat4
	// Sampler is a sampler2D or sampler3D. Its value is the texture unit.
	Sampler
)

var kindNames = []string{"float", "vec2", "vec3", "vec4", "int", "ivec2", "ivec3", "ivec4", "mat2", "mat3", "mat4", "sampler"}

// Size returns the number of scalar components of one value of this kind.
func (k Kind) Size() int {
	switch k {
	case Vec2, IVec2:
		return 2
	case Vec3, IVec3:
		return 3
	case Vec4, IVec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 1
}

// IsInt reports whether values of this kind are uploaded as integers.
func (k Kind) IsInt() bool {
	switch k {
	case Int, IVec2, IVec3, IVec4, Sampler:
		return true
	}
	return false
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "sampler2d" || s == "sampler3d" {
		s = "sampler"
	}
	for i, n := range kindNames {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown uniform kind %q", string(text))
}

// uploadFunc issues the typed upload for a uniform.
type uploadFunc func(b backend.Backend, u *Uniform)

// uploaders is indexed by Kind. Each entry is picked once, when the uniform is created.
var uploaders = [...]uploadFunc{
	Float: func(b backend.Backend, u *Uniform) { b.Uniform1fv(u.Location, u.floats) },
	Vec2:  func(b backend.Backend, u *Uniform) { b.Uniform2fv(u.Location, u.floats) },
	Vec3:  func(b backend.Backend, u *Uniform) { b.Uniform3fv(u.Location, u.floats) },
	Vec4:  func(b backend.Backend, u *Uniform) { b.Uniform4fv(u.Location, u.floats) },
	Int:   func(b backend.Backend, u *Uniform) { b.Uniform1iv(u.Location, u.ints) },
	IVec2: func(b backend.Backend, u *Uniform) { b.Uniform2iv(u.Location, u.ints) },
	IVec3: func(b backend.Backend, u *Uniform) { b.Uniform3iv(u.Location, u.ints) },
	IVec4: func(b backend.Backend, u *Uniform) { b.Uniform4iv(u.Location, u.ints) },
	Mat2:  func(b backend.Backend, u *Uniform) { b.UniformMatrix2fv(u.Location, u.floats) },
	Mat3:  func(b backend.Backend, u *Uniform) { b.UniformMatrix3fv(u.Location, u.floats) },
	Mat4:  func(b backend.Backend, u *Uniform) { b.UniformMatrix4fv(u.Location, u.floats) },
	Sampler: func(b backend.Backend, u *Uniform) {
		if u.Texture == nil {
			return
		}
		b.BindTexture(u.Texture.Unit, u.Texture.Target(), u.Texture.Handle)
		b.Uniform1iv(u.Location, []int32{int32(u.Texture.Unit)})
	},
}
