// Package geometry contains the drawables the renderer attaches to programs: static
// meshes (quad, cube, point clouds) and the GPU particle system.
package geometry

import (
	"errors"
	"math"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrBufferHazard is returned when a feedback pass would read and write the same buffer.
var ErrBufferHazard = errors.New("feedback source and target are the same buffer")

// Target identifies the program a geometry is linked to or drawn with.
type Target struct {
	// Name is the program name.
	Name string
	// Handle is the linked program handle.
	Handle uint32
	// Feedback is true for programs that capture vertex outputs instead of rasterizing.
	Feedback bool
}

// Geometry is a drawable that can be linked to one or more programs.
type Geometry interface {
	// Link allocates the GPU buffers (once) and the vertex layout for one program,
	// resolving attribute locations against that program.
	//
	// Parameters:
	//   - b: the backend
	//   - t: the program to link against
	//
	// Returns:
	//   - error: an error if the geometry cannot be used with this program
	Link(b backend.Backend, t Target) error

	// Bind binds the vertex layout to draw with the given program.
	//
	// Parameters:
	//   - b: the backend
	//   - t: the program about to draw
	Bind(b backend.Backend, t Target)

	// VertexCount returns the number of vertices drawn by a non-indexed draw.
	//
	// Returns:
	//   - int32: the vertex count
	VertexCount() int32

	// IndexCount returns the number of indices, or 0 for non-indexed geometry.
	//
	// Returns:
	//   - int32: the index count
	IndexCount() int32

	// NeedsUpdate reports whether per-geometry uniforms must be recomputed.
	//
	// Returns:
	//   - bool: true when the transform was set
	NeedsUpdate() bool

	// ModelMatrix computes the model matrix at a point in time.
	//
	// Parameters:
	//   - t: the total elapsed time in milliseconds
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	ModelMatrix(t float64) mgl32.Mat4

	// Release deletes every GPU object the geometry allocated.
	//
	// Parameters:
	//   - b: the backend
	Release(b backend.Backend)
}

// Simulator is a geometry whose state is advanced on the GPU by a feedback program.
type Simulator interface {
	Geometry

	// Step runs one feedback pass of the given program over the geometry's state.
	//
	// Parameters:
	//   - b: the backend
	//   - t: the feedback program
	//   - dt: the frame delta in seconds
	//
	// Returns:
	//   - error: ErrBufferHazard if the source and target buffers coincide
	Step(b backend.Backend, t Target, dt float32) error

	// AdvanceFrame ends the current frame, swapping the roles of the state buffers.
	AdvanceFrame()
}

// Base holds the transform shared by every geometry. Angles are in radians; the rotation
// angle grows linearly with time, or oscillates when oscillation is enabled.
type Base struct {
	translation mgl32.Vec3
	speed       float32
	axis        mgl32.Vec3
	oscillate   bool
	dirty       bool
}

// SetTranslation moves the geometry and marks its uniforms for update.
func (g *Base) SetTranslation(v mgl32.Vec3) {
	g.translation = v
	g.dirty = true
}

// SetRotation sets the rotation speed (radians per millisecond) and axis and marks the
// uniforms for update.
func (g *Base) SetRotation(speed float32, axis mgl32.Vec3) {
	g.speed = speed
	g.axis = axis
	g.dirty = true
}

// SetOscillate switches between continuous rotation and a sinusoidal sweep.
func (g *Base) SetOscillate(on bool) {
	g.oscillate = on
}

func (g *Base) Translation() mgl32.Vec3 { return g.translation }

func (g *Base) Rotation() (float32, mgl32.Vec3) { return g.speed, g.axis }

func (g *Base) Oscillate() bool { return g.oscillate }

// NeedsUpdate stays true once a transform has been set; the matrix of a rotating
// geometry changes every frame.
func (g *Base) NeedsUpdate() bool { return g.dirty }

// ModelMatrix returns T * R(angle, axis) where angle is (oscillate ? sin(t/1000)*90 : t) * speed.
// A zero axis or zero speed yields a pure translation.
func (g *Base) ModelMatrix(t float64) mgl32.Mat4 {
	m := mgl32.Translate3D(g.translation.X(), g.translation.Y(), g.translation.Z())
	if g.speed == 0 || g.axis.Len() == 0 {
		return m
	}
	angle := float32(t)
	if g.oscillate {
		angle = float32(math.Sin(t*0.001) * 90)
	}
	return m.Mul4(mgl32.HomogRotate3D(angle*g.speed, g.axis.Normalize()))
}
