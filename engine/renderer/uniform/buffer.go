package uniform

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
)

var (
	// ErrBlockNotFound is returned when a program has no uniform block of the requested name.
	ErrBlockNotFound = errors.New("uniform block not found")
	// ErrOutOfRange is returned when a buffer write does not fit the buffer.
	ErrOutOfRange = errors.New("write out of range")
)

// BufferWrite is one sub-range update of a uniform buffer, in floats.
type BufferWrite struct {
	Offset int
	Data   []float32
}

// Buffer is a uniform buffer object backing a named uniform block. The CPU copy mirrors
// the GPU contents; updates touch only the written range and never reallocate.
type Buffer struct {
	Name    string
	Handle  uint32
	Binding uint32

	data []float32
}

// NewBuffer resolves a uniform block of a program, binds it to a binding point and
// allocates a buffer holding the initial values.
//
// Parameters:
//   - b: the backend
//   - program: the program declaring the block
//   - name: the uniform block name
//   - binding: the binding point shared by the block and the buffer
//   - values: the initial contents; their length fixes the buffer size
//
// Returns:
//   - *Buffer: the allocated buffer
//   - error: ErrBlockNotFound if the program declares no such block
func NewBuffer(b backend.Backend, program uint32, name string, binding uint32, values []float32) (*Buffer, error) {
	idx, ok := b.UniformBlockIndex(program, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, name)
	}
	b.UniformBlockBinding(program, idx, binding)

	ub := &Buffer{
		Name:    name,
		Binding: binding,
		data:    append([]float32(nil), values...),
	}
	ub.Handle = b.CreateBuffer()
	b.BufferData(backend.BufferUniform, ub.Handle, common.SliceToBytes(ub.data), backend.UsageDynamicDraw)
	b.BindBufferBase(backend.BufferUniform, binding, ub.Handle)
	b.BindBuffer(backend.BufferUniform, 0)
	return ub, nil
}

// Update writes values at a float offset and uploads only that byte range.
//
// Parameters:
//   - b: the backend
//   - offset: the float offset of the first written value
//   - values: the values to write
//
// Returns:
//   - error: ErrOutOfRange if the write does not fit
func (u *Buffer) Update(b backend.Backend, offset int, values []float32) error {
	if offset < 0 || offset+len(values) > len(u.data) {
		return fmt.Errorf("%w: %s[%d:%d] of %d", ErrOutOfRange, u.Name, offset, offset+len(values), len(u.data))
	}
	if len(values) == 0 {
		return nil
	}
	copy(u.data[offset:], values)
	b.BufferSubData(backend.BufferUniform, u.Handle, offset*4, common.SliceToBytes(u.data[offset:offset+len(values)]))
	b.BindBuffer(backend.BufferUniform, 0)
	return nil
}

// Apply performs a batch of writes in order, stopping at the first failure.
func (u *Buffer) Apply(b backend.Backend, writes ...BufferWrite) error {
	for _, w := range writes {
		if err := u.Update(b, w.Offset, w.Data); err != nil {
			return err
		}
	}
	return nil
}

// Bind attaches the buffer to its binding point.
func (u *Buffer) Bind(b backend.Backend) {
	b.BindBufferBase(backend.BufferUniform, u.Binding, u.Handle)
}

// Data returns a copy of the CPU mirror.
func (u *Buffer) Data() []float32 {
	return append([]float32(nil), u.data...)
}

// Len returns the buffer size in floats.
func (u *Buffer) Len() int { return len(u.data) }

// Release deletes the GPU buffer.
func (u *Buffer) Release(b backend.Backend) {
	if u.Handle != 0 {
		b.DeleteBuffer(u.Handle)
		u.Handle = 0
	}
}
