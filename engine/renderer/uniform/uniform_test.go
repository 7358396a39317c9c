package uniform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/backendtest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatsOf(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestUploadDispatchesByKind(t *testing.T) {
	rec := backendtest.NewRecorder()

	cases := []struct {
		kind Kind
		call string
	}{
		{Float, "Uniform1fv"},
		{Vec2, "Uniform2fv"},
		{Vec3, "Uniform3fv"},
		{Vec4, "Uniform4fv"},
		{Int, "Uniform1iv"},
		{IVec3, "Uniform3iv"},
		{Mat3, "UniformMatrix3fv"},
		{Mat4, "UniformMatrix4fv"},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			rec.Reset()
			New("u_Value", tc.kind, 3).Upload(rec)
			require.Len(t, rec.Calls, 1)
			assert.Equal(t, tc.call, rec.Calls[0].Name)
			assert.Equal(t, int32(3), rec.Calls[0].Args[0])
		})
	}
}

func TestUploadSkipsInactive(t *testing.T) {
	rec := backendtest.NewRecorder()
	New("u_Unused", Vec4, -1).Upload(rec)
	assert.Empty(t, rec.Calls)
}

func TestSamplerBindsTextureBeforeUpload(t *testing.T) {
	rec := backendtest.NewRecorder()
	tex := NewTexture(rec, 2, backend.TextureSpec{Target: backend.Texture2D, Format: backend.FormatRGBA8, Width: 4, Height: 4})
	rec.Reset()

	NewSampler("u_State", 5, tex).Upload(rec)

	assert.Equal(t, []string{"BindTexture", "Uniform1iv"}, rec.Names())
	assert.Equal(t, []any{uint32(2), tex.Handle}, rec.Calls[0].Args)
	assert.Equal(t, []int32{2}, rec.Calls[1].Args[1])
}

func TestResolverSeedsAndRefreshes(t *testing.T) {
	frame := &Frame{TotalTime: 1.5}
	rule, ok := LookupProgram(TotalTime)
	require.True(t, ok)
	assert.True(t, rule.Varying)

	u := New(TotalTime, rule.Kind, 0).WithResolver(func() []float32 { return rule.Resolve(frame) })
	assert.Equal(t, []float32{1.5}, u.Floats())

	frame.TotalTime = 2.25
	u.Resolve()
	assert.Equal(t, []float32{2.25}, u.Floats())
}

func TestClickResolvesToInt(t *testing.T) {
	frame := &Frame{Click: true}
	rule, ok := LookupProgram(Click)
	require.True(t, ok)

	u := New(Click, rule.Kind, 0).WithResolver(func() []float32 { return rule.Resolve(frame) })
	assert.Equal(t, []int32{1}, u.Ints())

	frame.Click = false
	u.Resolve()
	assert.Equal(t, []int32{0}, u.Ints())
}

func TestCameraUniformsAreNotVarying(t *testing.T) {
	for _, name := range []string{Resolution, ProjectionMatrix, ViewMatrix} {
		rule, ok := LookupProgram(name)
		require.True(t, ok, name)
		assert.False(t, rule.Varying, name)
	}
	_, ok := LookupProgram("u_Unknown")
	assert.False(t, ok)
}

func TestInverseModelMatrix(t *testing.T) {
	rule, ok := LookupGeometry(InverseModelMatrix)
	require.True(t, ok)

	m := mgl32.Translate3D(1, 2, 3)
	inv := mgl32.Mat4{}
	copy(inv[:], rule.Resolve(m))
	assert.True(t, m.Mul4(inv).ApproxEqual(mgl32.Ident4()))
}

func TestUserUniformIgnoresResolve(t *testing.T) {
	u := New("u_Color", Vec3, 1)
	u.SetFloats([]float32{0.2, 0.4, 0.6})
	u.Resolve()
	assert.False(t, u.Resolved())
	assert.Equal(t, []float32{0.2, 0.4, 0.6}, u.Floats())
}

func TestTablePreservesOrderOnReplace(t *testing.T) {
	tbl := NewTable()
	tbl.Put(New("a", Float, 0))
	tbl.Put(New("b", Float, 1))
	replacement := New("a", Vec2, 2)
	tbl.Put(replacement)

	require.Equal(t, 2, tbl.Len())
	assert.Same(t, replacement, tbl.All()[0])
	got, ok := tbl.Get("b")
	require.True(t, ok)
	assert.Equal(t, int32(1), got.Location)
}

func TestKindText(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("sampler2D")))
	assert.Equal(t, Sampler, k)
	require.NoError(t, k.UnmarshalText([]byte("MAT4")))
	assert.Equal(t, Mat4, k)
	assert.Error(t, k.UnmarshalText([]byte("dvec2")))
}

func TestBufferPartialUpdate(t *testing.T) {
	rec := backendtest.NewRecorder()
	ub, err := NewBuffer(rec, 1, "u_Users", 0, make([]float32, 4))
	require.NoError(t, err)
	rec.Reset()

	require.NoError(t, ub.Update(rec, 1, []float32{7.5}))

	assert.Equal(t, []float32{0, 7.5, 0, 0}, ub.Data())
	assert.Equal(t, []float32{0, 7.5, 0, 0}, floatsOf(rec.Buffer(ub.Handle)))

	subs := rec.Named("BufferSubData")
	require.Len(t, subs, 1)
	assert.Equal(t, 4, subs[0].Args[2], "byte offset")
	assert.Equal(t, 4, subs[0].Args[3], "byte length")
	assert.Zero(t, rec.Count("BufferData"), "buffer must not be reallocated")
}

func TestBufferApplyBatch(t *testing.T) {
	rec := backendtest.NewRecorder()
	ub, err := NewBuffer(rec, 1, "u_Users", 0, make([]float32, 8))
	require.NoError(t, err)

	err = ub.Apply(rec,
		BufferWrite{Offset: 0, Data: []float32{1, 2, 3, 4}},
		BufferWrite{Offset: 4, Data: []float32{5, 6, 7, 8}},
	)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, floatsOf(rec.Buffer(ub.Handle)))
}

func TestBufferRejectsOutOfRange(t *testing.T) {
	rec := backendtest.NewRecorder()
	ub, err := NewBuffer(rec, 1, "u_Users", 0, make([]float32, 4))
	require.NoError(t, err)

	err = ub.Update(rec, 3, []float32{1, 2})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, []float32{0, 0, 0, 0}, ub.Data())
}

func TestBufferMissingBlock(t *testing.T) {
	rec := backendtest.NewRecorder()
	rec.Missing["u_Missing"] = true

	_, err := NewBuffer(rec, 1, "u_Missing", 0, make([]float32, 4))
	assert.ErrorIs(t, err, ErrBlockNotFound)
	assert.Zero(t, rec.Count("CreateBuffer"))
}
