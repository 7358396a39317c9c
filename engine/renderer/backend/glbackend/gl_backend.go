// Package glbackend implements backend.Backend over an OpenGL 4.1 core context.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

type glBackend struct {
	log *zap.Logger
}

var _ backend.Backend = &glBackend{}

// NewBackend loads the OpenGL function pointers for the context current on the calling
// thread and returns a Backend bound to it.
//
// Returns:
//   - backend.Backend: the GL backend
//   - error: an error if the GL bindings could not be initialized
func NewBackend() (backend.Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	b := &glBackend{log: logging.Named("gl")}
	b.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return b, nil
}

func (b *glBackend) Type() backend.BackendType {
	return backend.BackendTypeGL
}

func (b *glBackend) CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (uint32, error) {
	vs, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)

	// Feedback varyings must be declared before linking.
	if len(varyings) > 0 {
		names := make([]string, len(varyings))
		for i, v := range varyings {
			names[i] = v + "\x00"
		}
		cnames, free := gl.Strs(names...)
		gl.TransformFeedbackVaryings(program, int32(len(names)), cnames, gl.INTERLEAVED_ATTRIBS)
		free()
	}

	gl.LinkProgram(program)
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(buf))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return shader, nil
}

func (b *glBackend) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (b *glBackend) UseProgram(program uint32) { gl.UseProgram(program) }

func (b *glBackend) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (b *glBackend) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (b *glBackend) UniformBlockIndex(program uint32, name string) (uint32, bool) {
	idx := gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
	return idx, idx != gl.INVALID_INDEX
}

func (b *glBackend) UniformBlockBinding(program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(program, blockIndex, binding)
}

func (b *glBackend) Uniform1fv(location int32, v []float32) {
	if len(v) > 0 {
		gl.Uniform1fv(location, int32(len(v)), &v[0])
	}
}

func (b *glBackend) Uniform2fv(location int32, v []float32) {
	if len(v) >= 2 {
		gl.Uniform2fv(location, int32(len(v)/2), &v[0])
	}
}

func (b *glBackend) Uniform3fv(location int32, v []float32) {
	if len(v) >= 3 {
		gl.Uniform3fv(location, int32(len(v)/3), &v[0])
	}
}

func (b *glBackend) Uniform4fv(location int32, v []float32) {
	if len(v) >= 4 {
		gl.Uniform4fv(location, int32(len(v)/4), &v[0])
	}
}

func (b *glBackend) Uniform1iv(location int32, v []int32) {
	if len(v) > 0 {
		gl.Uniform1iv(location, int32(len(v)), &v[0])
	}
}

func (b *glBackend) Uniform2iv(location int32, v []int32) {
	if len(v) >= 2 {
		gl.Uniform2iv(location, int32(len(v)/2), &v[0])
	}
}

func (b *glBackend) Uniform3iv(location int32, v []int32) {
	if len(v) >= 3 {
		gl.Uniform3iv(location, int32(len(v)/3), &v[0])
	}
}

func (b *glBackend) Uniform4iv(location int32, v []int32) {
	if len(v) >= 4 {
		gl.Uniform4iv(location, int32(len(v)/4), &v[0])
	}
}

func (b *glBackend) UniformMatrix2fv(location int32, v []float32) {
	if len(v) >= 4 {
		gl.UniformMatrix2fv(location, int32(len(v)/4), false, &v[0])
	}
}

func (b *glBackend) UniformMatrix3fv(location int32, v []float32) {
	if len(v) >= 9 {
		gl.UniformMatrix3fv(location, int32(len(v)/9), false, &v[0])
	}
}

func (b *glBackend) UniformMatrix4fv(location int32, v []float32) {
	if len(v) >= 16 {
		gl.UniformMatrix4fv(location, int32(len(v)/16), false, &v[0])
	}
}

func (b *glBackend) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (b *glBackend) BufferData(target backend.BufferTarget, buffer uint32, data []byte, usage backend.BufferUsage) {
	t := bufferTarget(target)
	gl.BindBuffer(t, buffer)
	gl.BufferData(t, len(data), ptr(data), bufferUsage(usage))
}

func (b *glBackend) BufferSubData(target backend.BufferTarget, buffer uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	t := bufferTarget(target)
	gl.BindBuffer(t, buffer)
	gl.BufferSubData(t, offset, len(data), gl.Ptr(&data[0]))
}

func (b *glBackend) BindBuffer(target backend.BufferTarget, buffer uint32) {
	gl.BindBuffer(bufferTarget(target), buffer)
}

func (b *glBackend) BindBufferBase(target backend.BufferTarget, index, buffer uint32) {
	gl.BindBufferBase(bufferTarget(target), index, buffer)
}

func (b *glBackend) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (b *glBackend) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (b *glBackend) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (b *glBackend) VertexAttribPointer(p backend.AttribPointer) {
	gl.EnableVertexAttribArray(p.Location)
	gl.VertexAttribPointerWithOffset(p.Location, p.Components, gl.FLOAT, false, p.Stride, uintptr(p.Offset))
	gl.VertexAttribDivisor(p.Location, p.Divisor)
}

func (b *glBackend) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (b *glBackend) CreateTexture(unit uint32, spec backend.TextureSpec) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	target := textureTarget(spec.Target)
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(target, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	internal, format, xtype := textureFormat(spec.Format)
	switch spec.Target {
	case backend.Texture3D:
		gl.TexImage3D(target, 0, internal, spec.Width, spec.Height, spec.Depth, 0, format, xtype, ptr(spec.Data))
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, textureWrap(spec.Wrap))
	default:
		gl.TexImage2D(target, 0, internal, spec.Width, spec.Height, 0, format, xtype, ptr(spec.Data))
	}
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, textureWrap(spec.Wrap))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, textureWrap(spec.Wrap))
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, textureFilter(spec.Filter))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, textureFilter(spec.Filter))
	return tex
}

func (b *glBackend) BindTexture(unit uint32, target backend.TextureTarget, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(textureTarget(target), texture)
}

func (b *glBackend) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (b *glBackend) CreateFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (b *glBackend) BindFramebuffer(framebuffer uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
}

func (b *glBackend) FramebufferTexture2D(texture uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, texture, 0)
}

func (b *glBackend) DeleteFramebuffer(framebuffer uint32) { gl.DeleteFramebuffers(1, &framebuffer) }

func (b *glBackend) Enable(c backend.Capability)  { gl.Enable(capability(c)) }
func (b *glBackend) Disable(c backend.Capability) { gl.Disable(capability(c)) }

func (b *glBackend) BlendFunc(src, dst backend.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (b *glBackend) DepthFunc(f backend.DepthFunc) { gl.DepthFunc(depthFunc(f)) }

func (b *glBackend) ClearColor(r, g, bl, a float32) { gl.ClearColor(r, g, bl, a) }

func (b *glBackend) ClearDepth(d float64) { gl.ClearDepth(d) }

func (b *glBackend) Clear(mask backend.ClearMask) {
	var bits uint32
	if mask&backend.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&backend.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if bits != 0 {
		gl.Clear(bits)
	}
}

func (b *glBackend) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (b *glBackend) DrawArrays(mode backend.DrawMode, first, count int32) {
	gl.DrawArrays(drawMode(mode), first, count)
}

func (b *glBackend) DrawElements(mode backend.DrawMode, count int32) {
	gl.DrawElements(drawMode(mode), count, gl.UNSIGNED_SHORT, nil)
}

func (b *glBackend) BeginTransformFeedback(mode backend.DrawMode) {
	gl.BeginTransformFeedback(drawMode(mode))
}

func (b *glBackend) EndTransformFeedback() { gl.EndTransformFeedback() }

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(&data[0])
}
