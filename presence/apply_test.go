package presence

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpdateProgram(t *testing.T, users int) renderer.Renderer {
	t.Helper()
	r := renderer.NewRenderer(backendtest.NewRecorder())
	_, err := r.CreateProgram("update", "#version 410 core", "#version 410 core", []string{"v_Position"}, backend.DrawPoints)
	require.NoError(t, err)
	require.NoError(t, r.AddProgramUniform("update", NumUsersUniform, uniform.Int, []float32{0}))
	require.NoError(t, r.AddUniformBuffer("update", IntersectsBlock, 1, make([]float32, users*4)))
	return r
}

func TestApplyRoomUpdate(t *testing.T) {
	r := newUpdateProgram(t, 8)
	msg := dataMessage(0, 3, 3, []UserState{
		{Intersect: Intersect{1, 0, 0, 1}},
		{Intersect: Intersect{0, 1, 0, 0}},
	})

	require.NoError(t, ApplyRoomUpdate(r, "update", msg))

	p, err := r.Program("update")
	require.NoError(t, err)
	require.Len(t, p.Buffers, 1)
	data := p.Buffers[0].Data()
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 1, 0, 0}, data[:8])
	assert.Equal(t, make([]float32, 24), data[8:])

	u, ok := p.Uniform(NumUsersUniform)
	require.True(t, ok)
	assert.Equal(t, []int32{2}, u.Ints())
}

func TestApplyRoomUpdateIgnoresOtherTypes(t *testing.T) {
	r := newUpdateProgram(t, 1)
	require.NoError(t, ApplyRoomUpdate(r, "update", userCountMessage(4)))
	require.NoError(t, ApplyRoomUpdate(r, "missing", initMessage(0, 0, 1)))
}

func TestApplyRoomUpdateOverflow(t *testing.T) {
	r := newUpdateProgram(t, 1)
	msg := dataMessage(0, 3, 3, []UserState{{Intersect: Intersect{1, 1, 1, 1}}, {Intersect: Intersect{2, 2, 2, 2}}})

	err := ApplyRoomUpdate(r, "update", msg)
	assert.True(t, errors.Is(err, uniform.ErrOutOfRange))

	p, _ := r.Program("update")
	assert.Equal(t, []float32{1, 1, 1, 1}, p.Buffers[0].Data())
	u, _ := p.Uniform(NumUsersUniform)
	assert.Equal(t, []int32{2}, u.Ints(), "the count is still set")
}

func TestApplyRoomUpdateUnknownProgram(t *testing.T) {
	r := newUpdateProgram(t, 1)
	err := ApplyRoomUpdate(r, "render", dataMessage(0, 2, 2, []UserState{{}}))
	assert.True(t, errors.Is(err, renderer.ErrProgramNotFound))
}
