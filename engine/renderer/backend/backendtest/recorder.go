// Package backendtest provides an in-memory backend.Backend that records every command.
package backendtest

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Call is one recorded backend command.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder implements backend.Backend without a GPU. Handles are handed out from a single
// counter starting at 1, buffer contents are retained so sub-range writes can be inspected,
// and programs report every uniform, attribute and block name as present unless listed in
// Missing.
type Recorder struct {
	// FailCompile makes CreateProgram fail for any vertex source containing one of these markers.
	FailCompile []string
	// Missing lists uniform, attribute and block names reported as inactive.
	Missing map[string]bool

	Calls []Call

	next      uint32
	locations map[string]int32
	buffers   map[uint32][]byte
	bound     map[backend.BufferTarget]uint32
	textures  map[uint32]backend.TextureSpec
	program   uint32
	vao       uint32
	// vaoSource maps a vertex array to the array buffer its attributes read.
	vaoSource map[uint32]uint32
}

var _ backend.Backend = &Recorder{}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Missing:   make(map[string]bool),
		locations: make(map[string]int32),
		buffers:   make(map[uint32][]byte),
		bound:     make(map[backend.BufferTarget]uint32),
		textures:  make(map[uint32]backend.TextureSpec),
		vaoSource: make(map[uint32]uint32),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

// Reset forgets the recorded calls but keeps all object state.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Named returns the recorded calls with the given name, in order.
func (r *Recorder) Named(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many calls with the given name were recorded.
func (r *Recorder) Count(name string) int {
	return len(r.Named(name))
}

// Names returns the names of all recorded calls, in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Name
	}
	return out
}

// Buffer returns a copy of the current contents of a buffer.
func (r *Recorder) Buffer(buffer uint32) []byte {
	return append([]byte(nil), r.buffers[buffer]...)
}

// Texture returns the allocation spec a texture was created with.
func (r *Recorder) Texture(texture uint32) (backend.TextureSpec, bool) {
	spec, ok := r.textures[texture]
	return spec, ok
}

// BoundBuffer returns the buffer last bound to a target.
func (r *Recorder) BoundBuffer(target backend.BufferTarget) uint32 {
	return r.bound[target]
}

// CurrentProgram returns the program last made current.
func (r *Recorder) CurrentProgram() uint32 { return r.program }

// VertexArraySource returns the array buffer the attributes of a vertex array read.
func (r *Recorder) VertexArraySource(vao uint32) uint32 { return r.vaoSource[vao] }

// CurrentVertexArray returns the vertex array last bound.
func (r *Recorder) CurrentVertexArray() uint32 { return r.vao }

func (r *Recorder) Type() backend.BackendType { return backend.BackendTypeRecorder }

func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (uint32, error) {
	for _, marker := range r.FailCompile {
		if strings.Contains(vertexSrc, marker) {
			r.record("CreateProgram", 0)
			return 0, fmt.Errorf("compile shader: ERROR: 0:1: %q: syntax error", marker)
		}
	}
	p := r.handle()
	r.record("CreateProgram", p, len(varyings))
	return p, nil
}

func (r *Recorder) DeleteProgram(program uint32) { r.record("DeleteProgram", program) }

func (r *Recorder) UseProgram(program uint32) {
	r.program = program
	r.record("UseProgram", program)
}

func (r *Recorder) location(program uint32, kind, name string) int32 {
	if r.Missing[name] {
		return -1
	}
	key := fmt.Sprintf("%d/%s/%s", program, kind, name)
	if loc, ok := r.locations[key]; ok {
		return loc
	}
	loc := int32(len(r.locations))
	r.locations[key] = loc
	return loc
}

func (r *Recorder) UniformLocation(program uint32, name string) int32 {
	return r.location(program, "uniform", name)
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	return r.location(program, "attrib", name)
}

func (r *Recorder) UniformBlockIndex(program uint32, name string) (uint32, bool) {
	loc := r.location(program, "block", name)
	if loc < 0 {
		return 0, false
	}
	return uint32(loc), true
}

func (r *Recorder) UniformBlockBinding(program, blockIndex, binding uint32) {
	r.record("UniformBlockBinding", program, blockIndex, binding)
}

func (r *Recorder) uniformf(name string, location int32, v []float32) {
	r.record(name, location, append([]float32(nil), v...))
}

func (r *Recorder) uniformi(name string, location int32, v []int32) {
	r.record(name, location, append([]int32(nil), v...))
}

func (r *Recorder) Uniform1fv(location int32, v []float32)       { r.uniformf("Uniform1fv", location, v) }
func (r *Recorder) Uniform2fv(location int32, v []float32)       { r.uniformf("Uniform2fv", location, v) }
func (r *Recorder) Uniform3fv(location int32, v []float32)       { r.uniformf("Uniform3fv", location, v) }
func (r *Recorder) Uniform4fv(location int32, v []float32)       { r.uniformf("Uniform4fv", location, v) }
func (r *Recorder) Uniform1iv(location int32, v []int32)         { r.uniformi("Uniform1iv", location, v) }
func (r *Recorder) Uniform2iv(location int32, v []int32)         { r.uniformi("Uniform2iv", location, v) }
func (r *Recorder) Uniform3iv(location int32, v []int32)         { r.uniformi("Uniform3iv", location, v) }
func (r *Recorder) Uniform4iv(location int32, v []int32)         { r.uniformi("Uniform4iv", location, v) }
func (r *Recorder) UniformMatrix2fv(location int32, v []float32) { r.uniformf("UniformMatrix2fv", location, v) }
func (r *Recorder) UniformMatrix3fv(location int32, v []float32) { r.uniformf("UniformMatrix3fv", location, v) }
func (r *Recorder) UniformMatrix4fv(location int32, v []float32) { r.uniformf("UniformMatrix4fv", location, v) }

func (r *Recorder) CreateBuffer() uint32 {
	b := r.handle()
	r.buffers[b] = nil
	r.record("CreateBuffer", b)
	return b
}

func (r *Recorder) BufferData(target backend.BufferTarget, buffer uint32, data []byte, usage backend.BufferUsage) {
	r.bound[target] = buffer
	r.buffers[buffer] = append([]byte(nil), data...)
	r.record("BufferData", target, buffer, len(data), usage)
}

func (r *Recorder) BufferSubData(target backend.BufferTarget, buffer uint32, offset int, data []byte) {
	r.bound[target] = buffer
	if buf := r.buffers[buffer]; offset <= len(buf) {
		copy(buf[offset:], data)
	}
	r.record("BufferSubData", target, buffer, offset, len(data))
}

func (r *Recorder) BindBuffer(target backend.BufferTarget, buffer uint32) {
	r.bound[target] = buffer
	r.record("BindBuffer", target, buffer)
}

func (r *Recorder) BindBufferBase(target backend.BufferTarget, index, buffer uint32) {
	r.bound[target] = buffer
	r.record("BindBufferBase", target, index, buffer)
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	delete(r.buffers, buffer)
	r.record("DeleteBuffer", buffer)
}

func (r *Recorder) CreateVertexArray() uint32 {
	v := r.handle()
	r.record("CreateVertexArray", v)
	return v
}

func (r *Recorder) BindVertexArray(vao uint32) {
	r.vao = vao
	r.record("BindVertexArray", vao)
}

func (r *Recorder) VertexAttribPointer(p backend.AttribPointer) {
	if r.vao != 0 {
		r.vaoSource[r.vao] = r.bound[backend.BufferArray]
	}
	r.record("VertexAttribPointer", p.Location, p.Components, p.Stride, p.Offset, r.bound[backend.BufferArray])
}

func (r *Recorder) DeleteVertexArray(vao uint32) { r.record("DeleteVertexArray", vao) }

func (r *Recorder) CreateTexture(unit uint32, spec backend.TextureSpec) uint32 {
	t := r.handle()
	r.textures[t] = spec
	r.record("CreateTexture", unit, t)
	return t
}

func (r *Recorder) BindTexture(unit uint32, target backend.TextureTarget, texture uint32) {
	r.record("BindTexture", unit, texture)
}

func (r *Recorder) DeleteTexture(texture uint32) {
	delete(r.textures, texture)
	r.record("DeleteTexture", texture)
}

func (r *Recorder) CreateFramebuffer() uint32 {
	f := r.handle()
	r.record("CreateFramebuffer", f)
	return f
}

func (r *Recorder) BindFramebuffer(framebuffer uint32) { r.record("BindFramebuffer", framebuffer) }

func (r *Recorder) FramebufferTexture2D(texture uint32) { r.record("FramebufferTexture2D", texture) }

func (r *Recorder) DeleteFramebuffer(framebuffer uint32) { r.record("DeleteFramebuffer", framebuffer) }

func (r *Recorder) Enable(c backend.Capability)  { r.record("Enable", c) }
func (r *Recorder) Disable(c backend.Capability) { r.record("Disable", c) }

func (r *Recorder) BlendFunc(src, dst backend.BlendFactor) { r.record("BlendFunc", src, dst) }

func (r *Recorder) DepthFunc(f backend.DepthFunc) { r.record("DepthFunc", f) }

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) ClearDepth(d float64) { r.record("ClearDepth", d) }

func (r *Recorder) Clear(mask backend.ClearMask) { r.record("Clear", mask) }

func (r *Recorder) Viewport(x, y, width, height int32) { r.record("Viewport", x, y, width, height) }

func (r *Recorder) DrawArrays(mode backend.DrawMode, first, count int32) {
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) DrawElements(mode backend.DrawMode, count int32) {
	r.record("DrawElements", mode, count)
}

func (r *Recorder) BeginTransformFeedback(mode backend.DrawMode) {
	r.record("BeginTransformFeedback", mode)
}

func (r *Recorder) EndTransformFeedback() { r.record("EndTransformFeedback") }
