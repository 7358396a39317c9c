package uniform

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Well-known uniform names resolved by the engine.
const (
	TimeDelta          = "u_TimeDelta"
	TotalTime          = "u_TotalTime"
	Resolution         = "u_Resolution"
	Mouse              = "u_Mouse"
	Click              = "u_Click"
	ProjectionMatrix   = "u_ProjectionMatrix"
	ViewMatrix         = "u_ViewMatrix"
	ModelMatrix        = "u_ModelMatrix"
	InverseModelMatrix = "u_InverseModelMatrix"
)

// Frame is the per-frame engine state program uniforms are resolved from.
type Frame struct {
	// TimeDelta is the clamped frame delta in seconds.
	TimeDelta float32
	// TotalTime is the accumulated time in seconds.
	TotalTime float32
	// Resolution is the drawing surface size in pixels.
	Resolution mgl32.Vec2
	// Mouse is the cursor position in normalized device coordinates.
	Mouse mgl32.Vec2
	// Click is true while the primary button is held.
	Click bool
	// Projection is the camera projection matrix.
	Projection mgl32.Mat4
	// View is the camera view matrix.
	View mgl32.Mat4
}

// ProgramRule describes how a well-known program uniform is resolved.
type ProgramRule struct {
	Kind Kind
	// Varying marks uniforms that change between frames without any explicit update.
	// A program holding one is re-resolved every frame.
	Varying bool
	Resolve func(f *Frame) []float32
}

// GeometryRule describes how a well-known per-geometry uniform is resolved from the
// geometry's model matrix.
type GeometryRule struct {
	Kind    Kind
	Resolve func(model mgl32.Mat4) []float32
}

var programRules = map[string]ProgramRule{
	TimeDelta: {Kind: Float, Varying: true, Resolve: func(f *Frame) []float32 {
		return []float32{f.TimeDelta}
	}},
	TotalTime: {Kind: Float, Varying: true, Resolve: func(f *Frame) []float32 {
		return []float32{f.TotalTime}
	}},
	Mouse: {Kind: Vec2, Varying: true, Resolve: func(f *Frame) []float32 {
		return f.Mouse[:]
	}},
	Click: {Kind: Int, Varying: true, Resolve: func(f *Frame) []float32 {
		if f.Click {
			return []float32{1}
		}
		return []float32{0}
	}},
	Resolution: {Kind: Vec2, Resolve: func(f *Frame) []float32 {
		return f.Resolution[:]
	}},
	ProjectionMatrix: {Kind: Mat4, Resolve: func(f *Frame) []float32 {
		return f.Projection[:]
	}},
	ViewMatrix: {Kind: Mat4, Resolve: func(f *Frame) []float32 {
		return f.View[:]
	}},
}

var geometryRules = map[string]GeometryRule{
	ModelMatrix: {Kind: Mat4, Resolve: func(m mgl32.Mat4) []float32 {
		return m[:]
	}},
	InverseModelMatrix: {Kind: Mat4, Resolve: func(m mgl32.Mat4) []float32 {
		inv := m.Inv()
		return inv[:]
	}},
}

// LookupProgram returns the rule of a well-known program uniform.
func LookupProgram(name string) (ProgramRule, bool) {
	r, ok := programRules[name]
	return r, ok
}

// LookupGeometry returns the rule of a well-known per-geometry uniform.
func LookupGeometry(name string) (GeometryRule, bool) {
	r, ok := geometryRules[name]
	return r, ok
}
