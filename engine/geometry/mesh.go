package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

// Attribute is one named float attribute of an interleaved vertex layout.
type Attribute struct {
	Name       string
	Components int32
}

// Mesh is static interleaved vertex data with optional uint16 indices. The vertex and
// index buffers are shared by every program the mesh is linked to; each program gets its
// own vertex array because attribute locations differ between programs.
type Mesh struct {
	Base

	layout   []Attribute
	vertices []float32
	indices  []uint16

	vbo  uint32
	ibo  uint32
	vaos map[uint32]uint32
}

var _ Geometry = &Mesh{}

// NewMesh creates a mesh from interleaved vertex data.
//
// Parameters:
//   - layout: the attributes of one vertex, in memory order
//   - vertices: the interleaved vertex data
//   - indices: the element indices, or nil for non-indexed drawing
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(layout []Attribute, vertices []float32, indices []uint16) *Mesh {
	return &Mesh{
		layout:   layout,
		vertices: vertices,
		indices:  indices,
		vaos:     make(map[uint32]uint32),
	}
}

func (m *Mesh) stride() int32 {
	var n int32
	for _, a := range m.layout {
		n += a.Components
	}
	return n
}

// Vertices returns the interleaved vertex data.
func (m *Mesh) Vertices() []float32 { return m.vertices }

// Indices returns the element indices.
func (m *Mesh) Indices() []uint16 { return m.indices }

func (m *Mesh) Link(b backend.Backend, t Target) error {
	if t.Handle == 0 {
		return fmt.Errorf("cannot link mesh to program %s: no program handle", t.Name)
	}
	if _, ok := m.vaos[t.Handle]; ok {
		return nil
	}
	if m.vbo == 0 {
		m.vbo = b.CreateBuffer()
		b.BufferData(backend.BufferArray, m.vbo, common.SliceToBytes(m.vertices), backend.UsageStaticDraw)
		if len(m.indices) > 0 {
			m.ibo = b.CreateBuffer()
			b.BufferData(backend.BufferElementArray, m.ibo, common.SliceToBytes(m.indices), backend.UsageStaticDraw)
		}
	}

	vao := b.CreateVertexArray()
	b.BindVertexArray(vao)
	b.BindBuffer(backend.BufferArray, m.vbo)
	linkLayout(b, t.Handle, m.layout, 0)
	if m.ibo != 0 {
		b.BindBuffer(backend.BufferElementArray, m.ibo)
	}
	b.BindVertexArray(0)
	b.BindBuffer(backend.BufferArray, 0)
	b.BindBuffer(backend.BufferElementArray, 0)

	m.vaos[t.Handle] = vao
	return nil
}

// linkLayout describes an interleaved layout on the bound vertex array. Attributes the
// program does not use, and unnamed padding, are skipped but still advance the offset.
func linkLayout(b backend.Backend, program uint32, layout []Attribute, divisor uint32) {
	var stride int32
	for _, a := range layout {
		stride += a.Components
	}
	offset := 0
	for _, a := range layout {
		loc := int32(-1)
		if a.Name != "" {
			loc = b.AttribLocation(program, a.Name)
		}
		if loc >= 0 {
			b.VertexAttribPointer(backend.AttribPointer{
				Location:   uint32(loc),
				Components: a.Components,
				Stride:     stride * 4,
				Offset:     offset,
				Divisor:    divisor,
			})
		}
		offset += int(a.Components) * 4
	}
}

func (m *Mesh) Bind(b backend.Backend, t Target) {
	b.BindVertexArray(m.vaos[t.Handle])
}

func (m *Mesh) VertexCount() int32 {
	s := m.stride()
	if s == 0 {
		return 0
	}
	return int32(len(m.vertices)) / s
}

func (m *Mesh) IndexCount() int32 { return int32(len(m.indices)) }

func (m *Mesh) Release(b backend.Backend) {
	for p, vao := range m.vaos {
		b.DeleteVertexArray(vao)
		delete(m.vaos, p)
	}
	if m.vbo != 0 {
		b.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
	if m.ibo != 0 {
		b.DeleteBuffer(m.ibo)
		m.ibo = 0
	}
}
