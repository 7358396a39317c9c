// Package program holds the per-program state owned by the renderer: the linked handle,
// draw parameters, uniform tables, uniform buffers, attached geometries and the optional
// framebuffer routine.
package program

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
)

// TextureRef names a sampler uniform of a program.
type TextureRef struct {
	Program string `yaml:"program"`
	Uniform string `yaml:"uniform"`
}

// FramebufferRoutine redirects a program's output before it draws. Pre runs first, then
// Framebuffer is bound ("" binds the main viewport), Target is attached as color
// attachment 0 and Source is bound as readable input.
type FramebufferRoutine struct {
	Pre         func() error
	Framebuffer string
	Target      *TextureRef
	Source      *TextureRef
}

// GeometryUniform is a per-geometry uniform registered on a program.
type GeometryUniform struct {
	Name string
	Kind uniform.Kind
	// Value seeds user uniforms. Well-known uniforms are resolved from the geometry.
	Value []float32
}

// Attachment is a geometry attached to a program together with the per-geometry uniforms
// the program resolves for it.
type Attachment struct {
	Geometry geometry.Geometry
	Uniforms *uniform.Table
}

// Program is a linked shader pair and the state it draws with.
type Program struct {
	// Name is the registry key.
	Name string
	// Handle is the linked program, 0 when compilation or linking failed.
	Handle uint32
	// Varyings lists the captured outputs of a feedback program.
	Varyings []string
	// Mode is the primitive used by visible draws.
	Mode backend.DrawMode
	// Params is the fixed-function state applied every frame.
	Params DrawParams
	// Routine is the optional framebuffer routine.
	Routine *FramebufferRoutine
	// Uniforms are the program-wide uniforms.
	Uniforms *uniform.Table
	// GeometryUniforms are instantiated for every attachment, in registration order.
	GeometryUniforms []GeometryUniform
	// Buffers are the uniform buffers bound while the program draws.
	Buffers []*uniform.Buffer
	// NeedsUpdate is set when any program uniform varies per frame.
	NeedsUpdate bool

	attachments []*Attachment
}

// New creates an empty program record with default draw parameters.
//
// Parameters:
//   - name: the registry key
//   - handle: the linked program handle, or 0
//   - varyings: the feedback outputs, or nil
//   - mode: the draw mode of visible draws
//
// Returns:
//   - *Program: the program
func New(name string, handle uint32, varyings []string, mode backend.DrawMode) *Program {
	return &Program{
		Name:     name,
		Handle:   handle,
		Varyings: varyings,
		Mode:     mode,
		Params:   DefaultDrawParams(),
		Uniforms: uniform.NewTable(),
	}
}

// Valid reports whether the program linked.
func (p *Program) Valid() bool { return p.Handle != 0 }

// Feedback reports whether the program captures vertex outputs instead of rasterizing.
func (p *Program) Feedback() bool { return len(p.Varyings) > 0 }

// Target returns the identity geometries link and draw against.
func (p *Program) Target() geometry.Target {
	return geometry.Target{Name: p.Name, Handle: p.Handle, Feedback: p.Feedback()}
}

// Attach records a linked geometry and returns its attachment.
func (p *Program) Attach(g geometry.Geometry) *Attachment {
	for _, a := range p.attachments {
		if a.Geometry == g {
			return a
		}
	}
	a := &Attachment{Geometry: g, Uniforms: uniform.NewTable()}
	p.attachments = append(p.attachments, a)
	return a
}

// Attachments returns the attached geometries in attachment order.
func (p *Program) Attachments() []*Attachment {
	return p.attachments
}

// Attachment returns the attachment of a geometry.
func (p *Program) Attachment(g geometry.Geometry) (*Attachment, bool) {
	for _, a := range p.attachments {
		if a.Geometry == g {
			return a, true
		}
	}
	return nil, false
}

// Uniform returns a program uniform by name.
func (p *Program) Uniform(name string) (*uniform.Uniform, bool) {
	return p.Uniforms.Get(name)
}

// Release deletes the program, its uniform buffers and the textures its sampler uniforms
// own. Textures shared with other programs must be released by one owner only, so
// released handles are tracked in seen.
func (p *Program) Release(b backend.Backend, seen map[*uniform.Texture]bool) {
	for _, u := range p.Uniforms.All() {
		if u.Texture != nil && !seen[u.Texture] {
			seen[u.Texture] = true
			u.Texture.Release(b)
		}
	}
	for _, ub := range p.Buffers {
		ub.Release(b)
	}
	p.Buffers = nil
	if p.Handle != 0 {
		b.DeleteProgram(p.Handle)
		p.Handle = 0
	}
}
