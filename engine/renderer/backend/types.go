package backend

import (
	"fmt"
	"strings"
)

// Capability is a server-side GPU capability toggled with Enable/Disable.
type Capability int

const (
	// CapBlend enables color blending.
	CapBlend Capability = iota
	// CapCullFace enables back-face culling.
	CapCullFace
	// CapDepthTest enables depth testing.
	CapDepthTest
	// CapRasterizerDiscard discards primitives before rasterization. Used by feedback passes.
	CapRasterizerDiscard
	// CapProgramPointSize lets the vertex stage write gl_PointSize.
	CapProgramPointSize
)

// BlendFactor is a source or destination factor for BlendFunc.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendDstColor
	BlendOneMinusDstColor
)

// DepthFunc is the comparison used by the depth test.
type DepthFunc int

const (
	DepthNever DepthFunc = iota
	DepthLess
	DepthEqual
	DepthLEqual
	DepthGreater
	DepthNotEqual
	DepthGEqual
	DepthAlways
)

// DrawMode is the primitive topology used by draw calls and transform feedback.
type DrawMode int

const (
	// DrawPoints draws one point per vertex.
	DrawPoints DrawMode = iota
	// DrawLines draws one segment per vertex pair.
	DrawLines
	// DrawLineStrip draws a connected polyline.
	DrawLineStrip
	// DrawTriangles draws one triangle per vertex triple.
	DrawTriangles
	// DrawTriangleStrip draws a strip of triangles.
	DrawTriangleStrip
)

// ClearMask selects which buffers Clear resets.
type ClearMask uint8

const (
	// ClearColor clears the color buffer.
	ClearColor ClearMask = 1 << iota
	// ClearDepth clears the depth buffer.
	ClearDepth
)

// BufferTarget is the binding point a buffer is bound to.
type BufferTarget int

const (
	BufferArray BufferTarget = iota
	BufferElementArray
	BufferUniform
	BufferTransformFeedback
)

// BufferUsage is the usage hint supplied at buffer allocation.
type BufferUsage int

const (
	UsageStaticDraw BufferUsage = iota
	UsageDynamicDraw
	UsageStreamDraw
)

// TextureTarget is the dimensionality of a texture.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	Texture3D
)

// TextureFormat is the internal storage format of a texture. The pixel transfer format
// and component type are derived from it.
type TextureFormat int

const (
	FormatR8 TextureFormat = iota
	FormatRG8
	FormatRGB8
	FormatRGBA8
	FormatRGBA32F
)

// Channels returns the number of color components per texel.
func (f TextureFormat) Channels() int {
	switch f {
	case FormatR8:
		return 1
	case FormatRG8:
		return 2
	case FormatRGB8:
		return 3
	default:
		return 4
	}
}

// BytesPerTexel returns the byte size of one texel in the pixel transfer layout.
func (f TextureFormat) BytesPerTexel() int {
	if f == FormatRGBA32F {
		return 16
	}
	return f.Channels()
}

// TextureWrap is the addressing mode outside [0, 1].
type TextureWrap int

const (
	WrapClampToEdge TextureWrap = iota
	WrapRepeat
	WrapMirroredRepeat
)

// TextureFilter is the minification/magnification filter.
type TextureFilter int

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

var (
	capabilityNames = []string{"BLEND", "CULL_FACE", "DEPTH_TEST", "RASTERIZER_DISCARD", "PROGRAM_POINT_SIZE"}
	blendNames      = []string{"ZERO", "ONE", "SRC_COLOR", "ONE_MINUS_SRC_COLOR", "SRC_ALPHA", "ONE_MINUS_SRC_ALPHA", "DST_ALPHA", "ONE_MINUS_DST_ALPHA", "DST_COLOR", "ONE_MINUS_DST_COLOR"}
	depthNames      = []string{"NEVER", "LESS", "EQUAL", "LEQUAL", "GREATER", "NOTEQUAL", "GEQUAL", "ALWAYS"}
	drawModeNames   = []string{"POINTS", "LINES", "LINE_STRIP", "TRIANGLES", "TRIANGLE_STRIP"}
	formatNames     = []string{"R8", "RG8", "RGB8", "RGBA8", "RGBA32F"}
	wrapNames       = []string{"CLAMP_TO_EDGE", "REPEAT", "MIRRORED_REPEAT"}
	filterNames     = []string{"NEAREST", "LINEAR"}
	usageNames      = []string{"STATIC_DRAW", "DYNAMIC_DRAW", "STREAM_DRAW"}
)

// enumName returns the GL-style name of v, or a numeric fallback for out-of-range values.
func enumName(names []string, v int, kind string) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("%s(%d)", kind, v)
	}
	return names[v]
}

// parseEnum resolves a GL-style name (case-insensitive, optional "GL_" prefix) to its index.
func parseEnum(names []string, text []byte, kind string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	s = strings.TrimPrefix(s, "GL_")
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, string(text))
}

func (c Capability) String() string { return enumName(capabilityNames, int(c), "Capability") }

func (c Capability) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Capability) UnmarshalText(text []byte) error {
	v, err := parseEnum(capabilityNames, text, "capability")
	if err != nil {
		return err
	}
	*c = Capability(v)
	return nil
}

func (b BlendFactor) String() string { return enumName(blendNames, int(b), "BlendFactor") }

func (b BlendFactor) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BlendFactor) UnmarshalText(text []byte) error {
	v, err := parseEnum(blendNames, text, "blend factor")
	if err != nil {
		return err
	}
	*b = BlendFactor(v)
	return nil
}

func (d DepthFunc) String() string { return enumName(depthNames, int(d), "DepthFunc") }

func (d DepthFunc) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DepthFunc) UnmarshalText(text []byte) error {
	v, err := parseEnum(depthNames, text, "depth func")
	if err != nil {
		return err
	}
	*d = DepthFunc(v)
	return nil
}

func (m DrawMode) String() string { return enumName(drawModeNames, int(m), "DrawMode") }

func (m DrawMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *DrawMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(drawModeNames, text, "draw mode")
	if err != nil {
		return err
	}
	*m = DrawMode(v)
	return nil
}

func (f TextureFormat) String() string { return enumName(formatNames, int(f), "TextureFormat") }

func (f TextureFormat) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *TextureFormat) UnmarshalText(text []byte) error {
	v, err := parseEnum(formatNames, text, "texture format")
	if err != nil {
		return err
	}
	*f = TextureFormat(v)
	return nil
}

func (w TextureWrap) String() string { return enumName(wrapNames, int(w), "TextureWrap") }

func (w TextureWrap) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *TextureWrap) UnmarshalText(text []byte) error {
	v, err := parseEnum(wrapNames, text, "texture wrap")
	if err != nil {
		return err
	}
	*w = TextureWrap(v)
	return nil
}

func (f TextureFilter) String() string { return enumName(filterNames, int(f), "TextureFilter") }

func (f TextureFilter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *TextureFilter) UnmarshalText(text []byte) error {
	v, err := parseEnum(filterNames, text, "texture filter")
	if err != nil {
		return err
	}
	*f = TextureFilter(v)
	return nil
}

func (u BufferUsage) String() string { return enumName(usageNames, int(u), "BufferUsage") }

func (u BufferUsage) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *BufferUsage) UnmarshalText(text []byte) error {
	v, err := parseEnum(usageNames, text, "buffer usage")
	if err != nil {
		return err
	}
	*u = BufferUsage(v)
	return nil
}
