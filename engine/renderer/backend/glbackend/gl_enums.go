package glbackend

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/gl/v4.1-core/gl"
)

func capability(c backend.Capability) uint32 {
	switch c {
	case backend.CapBlend:
		return gl.BLEND
	case backend.CapCullFace:
		return gl.CULL_FACE
	case backend.CapDepthTest:
		return gl.DEPTH_TEST
	case backend.CapRasterizerDiscard:
		return gl.RASTERIZER_DISCARD
	case backend.CapProgramPointSize:
		return gl.PROGRAM_POINT_SIZE
	}
	return 0
}

var blendFactors = [...]uint32{
	backend.BlendZero:             gl.ZERO,
	backend.BlendOne:              gl.ONE,
	backend.BlendSrcColor:         gl.SRC_COLOR,
	backend.BlendOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	backend.BlendSrcAlpha:         gl.SRC_ALPHA,
	backend.BlendOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	backend.BlendDstAlpha:         gl.DST_ALPHA,
	backend.BlendOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
	backend.BlendDstColor:         gl.DST_COLOR,
	backend.BlendOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
}

func blendFactor(f backend.BlendFactor) uint32 {
	if int(f) < 0 || int(f) >= len(blendFactors) {
		return gl.ONE
	}
	return blendFactors[f]
}

var depthFuncs = [...]uint32{
	backend.DepthNever:    gl.NEVER,
	backend.DepthLess:     gl.LESS,
	backend.DepthEqual:    gl.EQUAL,
	backend.DepthLEqual:   gl.LEQUAL,
	backend.DepthGreater:  gl.GREATER,
	backend.DepthNotEqual: gl.NOTEQUAL,
	backend.DepthGEqual:   gl.GEQUAL,
	backend.DepthAlways:   gl.ALWAYS,
}

func depthFunc(f backend.DepthFunc) uint32 {
	if int(f) < 0 || int(f) >= len(depthFuncs) {
		return gl.LESS
	}
	return depthFuncs[f]
}

func drawMode(m backend.DrawMode) uint32 {
	switch m {
	case backend.DrawLines:
		return gl.LINES
	case backend.DrawLineStrip:
		return gl.LINE_STRIP
	case backend.DrawTriangles:
		return gl.TRIANGLES
	case backend.DrawTriangleStrip:
		return gl.TRIANGLE_STRIP
	}
	return gl.POINTS
}

func bufferTarget(t backend.BufferTarget) uint32 {
	switch t {
	case backend.BufferElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case backend.BufferUniform:
		return gl.UNIFORM_BUFFER
	case backend.BufferTransformFeedback:
		return gl.TRANSFORM_FEEDBACK_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u backend.BufferUsage) uint32 {
	switch u {
	case backend.UsageDynamicDraw:
		return gl.DYNAMIC_DRAW
	case backend.UsageStreamDraw:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func textureTarget(t backend.TextureTarget) uint32 {
	if t == backend.Texture3D {
		return gl.TEXTURE_3D
	}
	return gl.TEXTURE_2D
}

// textureFormat returns the internal format, pixel transfer format and component type.
func textureFormat(f backend.TextureFormat) (int32, uint32, uint32) {
	switch f {
	case backend.FormatR8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case backend.FormatRG8:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE
	case backend.FormatRGB8:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case backend.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func textureWrap(w backend.TextureWrap) int32 {
	switch w {
	case backend.WrapRepeat:
		return gl.REPEAT
	case backend.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func textureFilter(f backend.TextureFilter) int32 {
	if f == backend.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}
