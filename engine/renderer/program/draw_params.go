package program

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is a drawing rectangle in pixels. A zero width or height means the full surface.
type Viewport struct {
	X, Y, Width, Height int32
}

// BlendFunc is a source/destination blend factor pair.
type BlendFunc struct {
	Src backend.BlendFactor `yaml:"src"`
	Dst backend.BlendFactor `yaml:"dst"`
}

// DrawParams is the fixed-function state applied before a program draws. Nil fields are
// unset: they are left out of Merge and not applied.
type DrawParams struct {
	ClearColor *mgl32.Vec4          `yaml:"clearColor"`
	ClearDepth *float64             `yaml:"clearDepth"`
	Clear      *backend.ClearMask   `yaml:"-"`
	Viewport   *Viewport            `yaml:"viewport"`
	Enable     []backend.Capability `yaml:"enable"`
	Disable    []backend.Capability `yaml:"disable"`
	BlendFunc  *BlendFunc           `yaml:"blendFunc"`
	DepthFunc  *backend.DepthFunc   `yaml:"depthFunc"`
}

// DefaultDrawParams returns the parameters every program starts with: a light grey clear
// of color and depth over the full surface with culling and depth testing on.
func DefaultDrawParams() DrawParams {
	clearColor := mgl32.Vec4{0.95, 0.95, 0.95, 1}
	clearDepth := 1.0
	clear := backend.ClearColor | backend.ClearDepth
	return DrawParams{
		ClearColor: &clearColor,
		ClearDepth: &clearDepth,
		Clear:      &clear,
		Viewport:   &Viewport{},
		Enable:     []backend.Capability{backend.CapCullFace, backend.CapDepthTest},
	}
}

// Merge returns p with every field set in o replacing the corresponding field of p.
//
// Parameters:
//   - o: the override
//
// Returns:
//   - DrawParams: the merged parameters
func (p DrawParams) Merge(o DrawParams) DrawParams {
	if o.ClearColor != nil {
		p.ClearColor = o.ClearColor
	}
	if o.ClearDepth != nil {
		p.ClearDepth = o.ClearDepth
	}
	if o.Clear != nil {
		p.Clear = o.Clear
	}
	if o.Viewport != nil {
		p.Viewport = o.Viewport
	}
	if o.Enable != nil {
		p.Enable = o.Enable
	}
	if o.Disable != nil {
		p.Disable = o.Disable
	}
	if o.BlendFunc != nil {
		p.BlendFunc = o.BlendFunc
	}
	if o.DepthFunc != nil {
		p.DepthFunc = o.DepthFunc
	}
	return p
}

// Apply issues the set parameters in a fixed order: clear color, clear depth, clear,
// viewport, capabilities, blend function, depth function.
//
// Parameters:
//   - b: the backend
//   - width: the surface width used by a full-surface viewport
//   - height: the surface height used by a full-surface viewport
func (p DrawParams) Apply(b backend.Backend, width, height int32) {
	if p.ClearColor != nil {
		c := *p.ClearColor
		b.ClearColor(c[0], c[1], c[2], c[3])
	}
	if p.ClearDepth != nil {
		b.ClearDepth(*p.ClearDepth)
	}
	if p.Clear != nil && *p.Clear != 0 {
		b.Clear(*p.Clear)
	}
	if p.Viewport != nil {
		v := *p.Viewport
		if v.Width == 0 || v.Height == 0 {
			v = Viewport{Width: width, Height: height}
		}
		b.Viewport(v.X, v.Y, v.Width, v.Height)
	}
	for _, c := range p.Enable {
		b.Enable(c)
	}
	for _, c := range p.Disable {
		b.Disable(c)
	}
	if p.BlendFunc != nil {
		b.BlendFunc(p.BlendFunc.Src, p.BlendFunc.Dst)
	}
	if p.DepthFunc != nil {
		b.DepthFunc(*p.DepthFunc)
	}
}
