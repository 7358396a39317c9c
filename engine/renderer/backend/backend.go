// Package backend defines the GPU command surface the engine drives.
//
// The renderer, the uniform pipeline and every geometry issue their GPU work through
// the Backend interface only. The glbackend package implements it over OpenGL 4.1 core;
// backendtest implements it in memory for tests. Handles are plain uint32 names with 0
// meaning "none", mirroring the OpenGL object model.
package backend

// BackendType identifies the GPU backend implementation behind a Backend.
type BackendType int

const (
	// BackendTypeGL selects the OpenGL 4.1 core backend.
	BackendTypeGL BackendType = iota

	// BackendTypeRecorder selects the in-memory recording backend used by tests.
	BackendTypeRecorder
)

// AttribPointer describes one vertex attribute inside an interleaved array buffer.
type AttribPointer struct {
	// Location is the shader attribute location.
	Location uint32
	// Components is the number of float components (1..4).
	Components int32
	// Stride is the byte distance between consecutive vertices.
	Stride int32
	// Offset is the byte offset of the attribute inside one vertex.
	Offset int
	// Divisor is the instancing divisor; 0 advances per vertex.
	Divisor uint32
}

// TextureSpec describes a texture allocation and its initial contents.
type TextureSpec struct {
	// Target selects a 2D or 3D texture.
	Target TextureTarget
	// Format is the internal storage format.
	Format TextureFormat
	// Width, Height and Depth are the texel dimensions. Depth is ignored for 2D textures.
	Width, Height, Depth int32
	// Wrap is applied to every texture coordinate axis.
	Wrap TextureWrap
	// Filter is applied to minification and magnification.
	Filter TextureFilter
	// Data is the initial texel data in the pixel layout implied by Format, or nil.
	Data []byte
}

// Backend is the GPU command surface. Implementations are not safe for concurrent use;
// every call must come from the thread that owns the GPU context.
type Backend interface {
	// Type returns the backend implementation type.
	//
	// Returns:
	//   - BackendType: the backend type
	Type() BackendType

	// CreateProgram compiles a vertex/fragment shader pair and links them into a program.
	// When varyings is non-empty the listed vertex outputs are captured interleaved by
	// transform feedback.
	//
	// Parameters:
	//   - vertexSrc: the vertex shader source
	//   - fragmentSrc: the fragment shader source
	//   - varyings: transform feedback output names, or nil for a rasterizing program
	//
	// Returns:
	//   - uint32: the program handle, 0 on failure
	//   - error: a compile or link error carrying the info log
	CreateProgram(vertexSrc, fragmentSrc string, varyings []string) (uint32, error)

	// DeleteProgram releases a program.
	DeleteProgram(program uint32)

	// UseProgram makes a program current. 0 unbinds.
	UseProgram(program uint32)

	// UniformLocation returns the location of a named uniform, or -1 if it is not active.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the uniform name
	//
	// Returns:
	//   - int32: the location or -1
	UniformLocation(program uint32, name string) int32

	// AttribLocation returns the location of a named vertex attribute, or -1 if it is not active.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the attribute name
	//
	// Returns:
	//   - int32: the location or -1
	AttribLocation(program uint32, name string) int32

	// UniformBlockIndex returns the index of a named uniform block.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the uniform block name
	//
	// Returns:
	//   - uint32: the block index
	//   - bool: false when the program has no block with that name
	UniformBlockIndex(program uint32, name string) (uint32, bool)

	// UniformBlockBinding assigns a uniform block to a buffer binding point.
	UniformBlockBinding(program, blockIndex, binding uint32)

	Uniform1fv(location int32, v []float32)
	Uniform2fv(location int32, v []float32)
	Uniform3fv(location int32, v []float32)
	Uniform4fv(location int32, v []float32)
	Uniform1iv(location int32, v []int32)
	Uniform2iv(location int32, v []int32)
	Uniform3iv(location int32, v []int32)
	Uniform4iv(location int32, v []int32)
	UniformMatrix2fv(location int32, v []float32)
	UniformMatrix3fv(location int32, v []float32)
	UniformMatrix4fv(location int32, v []float32)

	// CreateBuffer allocates a buffer name.
	CreateBuffer() uint32

	// BufferData (re)allocates the storage of a buffer and fills it with data.
	BufferData(target BufferTarget, buffer uint32, data []byte, usage BufferUsage)

	// BufferSubData overwrites part of a buffer's storage starting at a byte offset without
	// reallocating it.
	BufferSubData(target BufferTarget, buffer uint32, offset int, data []byte)

	// BindBuffer binds a buffer to a target. 0 unbinds.
	BindBuffer(target BufferTarget, buffer uint32)

	// BindBufferBase binds a buffer to an indexed binding point (uniform or transform feedback).
	BindBufferBase(target BufferTarget, index, buffer uint32)

	// DeleteBuffer releases a buffer.
	DeleteBuffer(buffer uint32)

	// CreateVertexArray allocates a vertex array name.
	CreateVertexArray() uint32

	// BindVertexArray binds a vertex array. 0 unbinds.
	BindVertexArray(vao uint32)

	// VertexAttribPointer enables and describes one attribute of the bound vertex array,
	// sourcing from the buffer currently bound to BufferArray.
	VertexAttribPointer(p AttribPointer)

	// DeleteVertexArray releases a vertex array.
	DeleteVertexArray(vao uint32)

	// CreateTexture allocates and fills a texture on the given unit and leaves it bound there.
	CreateTexture(unit uint32, spec TextureSpec) uint32

	// BindTexture activates a texture unit and binds a texture to it.
	BindTexture(unit uint32, target TextureTarget, texture uint32)

	// DeleteTexture releases a texture.
	DeleteTexture(texture uint32)

	// CreateFramebuffer allocates a framebuffer name.
	CreateFramebuffer() uint32

	// BindFramebuffer binds a framebuffer. 0 binds the default (window) framebuffer.
	BindFramebuffer(framebuffer uint32)

	// FramebufferTexture2D attaches a 2D texture as color attachment 0 of the bound framebuffer.
	FramebufferTexture2D(texture uint32)

	// DeleteFramebuffer releases a framebuffer.
	DeleteFramebuffer(framebuffer uint32)

	Enable(c Capability)
	Disable(c Capability)
	BlendFunc(src, dst BlendFactor)
	DepthFunc(f DepthFunc)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float64)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int32)

	// DrawArrays draws count vertices starting at first from the bound vertex array.
	DrawArrays(mode DrawMode, first, count int32)

	// DrawElements draws count uint16 indices from the bound element array buffer.
	DrawElements(mode DrawMode, count int32)

	// BeginTransformFeedback starts capturing vertex outputs into the bound feedback buffer.
	BeginTransformFeedback(mode DrawMode)

	// EndTransformFeedback stops capturing vertex outputs.
	EndTransformFeedback()
}
