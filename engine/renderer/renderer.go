// Package renderer is the engine context: it owns the program registry, the framebuffer
// table, the camera and the frame clock, and drives every program once per frame.
//
// All methods must be called from the thread that owns the GPU context.
package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	// ErrProgramNotFound is returned when no program is registered under a name.
	ErrProgramNotFound = errors.New("program not found")
	// ErrUniformNotFound is returned when a program has no uniform of a name.
	ErrUniformNotFound = errors.New("uniform not found")
	// ErrBlockNotFound is returned when a program has no active uniform block of a name.
	ErrBlockNotFound = uniform.ErrBlockNotFound
	// ErrFramebufferNotFound is returned when no framebuffer is registered under a name.
	ErrFramebufferNotFound = errors.New("framebuffer not found")
	// ErrTextureHazard is returned when a framebuffer routine would sample the texture it renders to.
	ErrTextureHazard = errors.New("framebuffer target and source are the same texture")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backend backend.Backend

	programs     []*program.Program
	byName       map[string]*program.Program
	framebuffers map[string]uint32
	simulators   []geometry.Simulator

	camera camera.Camera
	clock  clock
	frame  uniform.Frame

	width, height int32
}

// Renderer defines the interface of the engine context.
//
// Programs are drawn in registration order. Geometries attached to a program are drawn
// in attachment order; attaching a particle system to a feedback program makes that
// program's draw a simulation step.
type Renderer interface {
	// Backend returns the GPU backend the renderer issues commands to.
	//
	// Returns:
	//   - backend.Backend: the backend
	Backend() backend.Backend

	// Camera returns the camera feeding the projection and view uniforms.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// CreateProgram compiles and links a shader pair and registers it under name.
	// Registering a name twice keeps the first program. A compile or link failure is logged and registers the program with handle 0, on
	// which attach and draw calls are no-ops.
	//
	// Parameters:
	//   - name: the registry key
	//   - vertexSrc: GLSL vertex shader source
	//   - fragmentSrc: GLSL fragment shader source
	//   - varyings: vertex outputs captured by a feedback program, or nil
	//   - mode: the primitive of visible draws
	//
	// Returns:
	//   - *program.Program: the registered program
	//   - error: the compile or link error, if any
	CreateProgram(name, vertexSrc, fragmentSrc string, varyings []string, mode backend.DrawMode) (*program.Program, error)

	// Program returns a registered program.
	//
	// Parameters:
	//   - name: the registry key
	//
	// Returns:
	//   - *program.Program: the program
	//   - error: ErrProgramNotFound if no program has that name
	Program(name string) (*program.Program, error)

	// Programs returns the registered programs in registration order.
	//
	// Returns:
	//   - []*program.Program: the programs
	Programs() []*program.Program

	// Attach links a geometry to a program and adds it to the program's draw list.
	// The program's per-geometry uniforms are instantiated for the new attachment.
	//
	// Parameters:
	//   - name: the program name
	//   - g: the geometry
	//
	// Returns:
	//   - error: ErrProgramNotFound or the geometry's link error
	Attach(name string, g geometry.Geometry) error

	// SetDrawParams merges the set fields of params into the program's draw parameters.
	//
	// Parameters:
	//   - name: the program name
	//   - params: the override
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	SetDrawParams(name string, params program.DrawParams) error

	// SetFramebufferRoutine sets the routine run before the program draws.
	//
	// Parameters:
	//   - name: the program name
	//   - routine: the routine
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	SetFramebufferRoutine(name string, routine program.FramebufferRoutine) error

	// ClearFramebufferRoutine removes the program's framebuffer routine.
	//
	// Parameters:
	//   - name: the program name
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	ClearFramebufferRoutine(name string) error

	// CreateFramebuffer allocates a framebuffer object and registers it under name.
	//
	// Parameters:
	//   - name: the framebuffer name referenced by routines
	CreateFramebuffer(name string)

	// InitProgramUniforms registers well-known program uniforms. Unknown names are logged
	// and skipped. Registering a time or input dependent uniform makes the program
	// re-resolve its uniforms every frame.
	//
	// Parameters:
	//   - name: the program name
	//   - uniforms: well-known uniform names
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	InitProgramUniforms(name string, uniforms ...string) error

	// InitGeometryUniforms registers well-known per-geometry uniforms. Unknown names are
	// logged and skipped.
	//
	// Parameters:
	//   - name: the program name
	//   - uniforms: well-known uniform names
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	InitGeometryUniforms(name string, uniforms ...string) error

	// AddProgramUniform registers a user uniform that is only changed by UpdateProgramUniform.
	//
	// Parameters:
	//   - name: the program name
	//   - uniformName: the GLSL uniform name
	//   - kind: the GLSL type
	//   - value: the initial value
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	AddProgramUniform(name, uniformName string, kind uniform.Kind, value []float32) error

	// AddGeometryUniform registers a user uniform on every current and future attachment.
	//
	// Parameters:
	//   - name: the program name
	//   - uniformName: the GLSL uniform name
	//   - kind: the GLSL type
	//   - value: the initial value
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	AddGeometryUniform(name, uniformName string, kind uniform.Kind, value []float32) error

	// UpdateProgramUniform sets the value of a program uniform.
	//
	// Parameters:
	//   - name: the program name
	//   - uniformName: the GLSL uniform name
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrProgramNotFound or ErrUniformNotFound
	UpdateProgramUniform(name, uniformName string, value []float32) error

	// UpdateGeometryUniform sets the value of a per-geometry uniform for one attachment.
	//
	// Parameters:
	//   - name: the program name
	//   - g: the attached geometry
	//   - uniformName: the GLSL uniform name
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrProgramNotFound or ErrUniformNotFound
	UpdateGeometryUniform(name string, g geometry.Geometry, uniformName string, value []float32) error

	// AddUniformBuffer creates a uniform buffer for a named block and binds it to a binding point.
	//
	// Parameters:
	//   - name: the program name
	//   - block: the uniform block name
	//   - binding: the binding point
	//   - values: the initial contents; their length fixes the buffer size
	//
	// Returns:
	//   - error: ErrProgramNotFound or ErrBlockNotFound
	AddUniformBuffer(name, block string, binding uint32, values []float32) error

	// UpdateUniformBuffer writes values at a float offset into a uniform buffer, uploading
	// only the written range.
	//
	// Parameters:
	//   - name: the program name
	//   - block: the uniform block name
	//   - offset: the offset in floats
	//   - values: the values to write
	//
	// Returns:
	//   - error: ErrProgramNotFound, ErrBlockNotFound or uniform.ErrOutOfRange
	UpdateUniformBuffer(name, block string, offset int, values []float32) error

	// DataTexture creates a texture from raw texels and exposes it as a sampler uniform.
	//
	// Parameters:
	//   - name: the program name
	//   - uniformName: the sampler uniform name
	//   - unit: the texture unit
	//   - spec: dimensions, format, sampling and texels
	//
	// Returns:
	//   - error: ErrProgramNotFound if no program has that name
	DataTexture(name, uniformName string, unit uint32, spec backend.TextureSpec) error

	// LoadTexture decodes a PNG or JPEG image into an RGBA texture sampler uniform.
	//
	// Parameters:
	//   - name: the program name
	//   - uniformName: the sampler uniform name
	//   - unit: the texture unit
	//   - src: the encoded image
	//
	// Returns:
	//   - error: ErrProgramNotFound or the decode error
	LoadTexture(name, uniformName string, unit uint32, src common.ImageSource) error

	// SwapTextures exchanges the textures of two sampler uniforms by reference.
	//
	// Parameters:
	//   - a: the first sampler
	//   - b: the second sampler
	//
	// Returns:
	//   - error: ErrProgramNotFound or ErrUniformNotFound
	SwapTextures(a, b program.TextureRef) error

	// SwapTexturesHook returns a framebuffer routine pre hook that calls SwapTextures.
	//
	// Parameters:
	//   - a: the first sampler
	//   - b: the second sampler
	//
	// Returns:
	//   - func() error: the hook
	SwapTexturesHook(a, b program.TextureRef) func() error

	// Draw runs one frame at the given monotonic timestamp. A program whose routine fails
	// is skipped; the remaining programs still draw. After every program ran, each
	// simulator swaps its buffer roles once.
	//
	// Parameters:
	//   - now: the frame timestamp
	//
	// Returns:
	//   - error: the joined errors of the programs that failed this frame
	Draw(now time.Duration) error

	// Frame returns the state uniforms were last resolved from.
	//
	// Returns:
	//   - uniform.Frame: a copy of the frame state
	Frame() uniform.Frame

	// Resolution returns the drawing surface size in pixels.
	//
	// Returns:
	//   - width, height: the surface size
	Resolution() (width, height int32)

	// SetResolution resizes the drawing surface and updates the camera aspect.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	SetResolution(width, height int32)

	// SetCursor sets the cursor position from window pixels, top-left origin.
	//
	// Parameters:
	//   - x, y: the cursor position in pixels
	SetCursor(x, y float64)

	// SetClick sets whether the primary button is held.
	//
	// Parameters:
	//   - down: the button state
	SetClick(down bool)

	// SetCameraPosition moves the camera eye.
	//
	// Parameters:
	//   - p: the eye position
	SetCameraPosition(p mgl32.Vec3)

	// SetCameraTarget changes the camera look-at target.
	//
	// Parameters:
	//   - t: the target
	SetCameraTarget(t mgl32.Vec3)

	// SetFOV sets the camera's vertical field of view in radians.
	//
	// Parameters:
	//   - fov: the field of view
	SetFOV(fov float32)

	// CameraChanged refreshes the camera uniforms of every program after the camera was
	// moved directly, e.g. by an orbit.
	CameraChanged()

	// Release deletes every GPU object owned by the renderer and its programs and geometries.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates an empty engine context issuing commands to b.
//
// Parameters:
//   - b: the GPU backend
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(b backend.Backend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backend:      b,
		byName:       make(map[string]*program.Program),
		framebuffers: make(map[string]uint32),
		width:        1,
		height:       1,
	}
	for _, option := range options {
		option(r)
	}
	if r.camera == nil {
		r.camera = camera.NewCamera()
	}
	r.camera.SetAspect(float32(r.width) / float32(r.height))
	r.frame.Resolution = mgl32.Vec2{float32(r.width), float32(r.height)}
	r.syncCamera()
	return r
}

func logger() *zap.Logger {
	return logging.Named("renderer")
}

func (r *renderer) Backend() backend.Backend { return r.backend }

func (r *renderer) Camera() camera.Camera { return r.camera }

func (r *renderer) CreateProgram(name, vertexSrc, fragmentSrc string, varyings []string, mode backend.DrawMode) (*program.Program, error) {
	if p, ok := r.byName[name]; ok {
		logger().Warn("program already registered", zap.String("program", name))
		return p, nil
	}

	handle, err := r.backend.CreateProgram(vertexSrc, fragmentSrc, varyings)
	if err != nil {
		logger().Error("program unusable", zap.String("program", name), zap.Error(err))
		err = fmt.Errorf("create program %q: %w", name, err)
		handle = 0
	}

	p := program.New(name, handle, varyings, mode)
	r.programs = append(r.programs, p)
	r.byName[name] = p
	if err == nil {
		logger().Info("program created",
			zap.String("program", name),
			zap.Uint32("handle", handle),
			zap.Bool("feedback", p.Feedback()),
		)
	}
	return p, err
}

func (r *renderer) Program(name string) (*program.Program, error) {
	p, ok := r.byName[name]
	if !ok {
		known := make([]string, len(r.programs))
		for i, p := range r.programs {
			known[i] = p.Name
		}
		logger().Warn("unknown program", zap.String("program", name), zap.Strings("known", known))
		return nil, fmt.Errorf("%w: %q", ErrProgramNotFound, name)
	}
	return p, nil
}

func (r *renderer) Programs() []*program.Program {
	return r.programs
}

func (r *renderer) Attach(name string, g geometry.Geometry) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	if !p.Valid() {
		return nil
	}
	if err := g.Link(r.backend, p.Target()); err != nil {
		return fmt.Errorf("attach to %q: %w", name, err)
	}

	a := p.Attach(g)
	for _, gu := range p.GeometryUniforms {
		r.instantiate(p, a, gu)
	}

	if sim, ok := g.(geometry.Simulator); ok {
		r.trackSimulator(sim)
	}
	return nil
}

func (r *renderer) trackSimulator(sim geometry.Simulator) {
	for _, s := range r.simulators {
		if s == sim {
			return
		}
	}
	r.simulators = append(r.simulators, sim)
}

func (r *renderer) SetDrawParams(name string, params program.DrawParams) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	p.Params = p.Params.Merge(params)
	return nil
}

func (r *renderer) SetFramebufferRoutine(name string, routine program.FramebufferRoutine) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	p.Routine = &routine
	return nil
}

func (r *renderer) ClearFramebufferRoutine(name string) error {
	p, err := r.Program(name)
	if err != nil {
		return err
	}
	p.Routine = nil
	return nil
}

func (r *renderer) Release() {
	seen := make(map[*uniform.Texture]bool)
	released := make(map[geometry.Geometry]bool)
	for _, p := range r.programs {
		for _, a := range p.Attachments() {
			for _, u := range a.Uniforms.All() {
				if u.Texture != nil && !seen[u.Texture] {
					seen[u.Texture] = true
					u.Texture.Release(r.backend)
				}
			}
			if !released[a.Geometry] {
				released[a.Geometry] = true
				a.Geometry.Release(r.backend)
			}
		}
		p.Release(r.backend, seen)
	}
	for name, fb := range r.framebuffers {
		r.backend.DeleteFramebuffer(fb)
		delete(r.framebuffers, name)
	}
	r.programs = nil
	r.byName = make(map[string]*program.Program)
	r.simulators = nil
	logger().Info("renderer released")
}
