package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/geometry"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend/backendtest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/program"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var particleVaryings = []string{"v_Position", "v_Velocity", "v_Age", "v_Life"}

func newTestRenderer(t *testing.T) (Renderer, *backendtest.Recorder) {
	t.Helper()
	rec := backendtest.NewRecorder()
	return NewRenderer(rec, WithResolution(800, 600)), rec
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return logs
}

func mustProgram(t *testing.T, r Renderer, name string, varyings []string, mode backend.DrawMode) *program.Program {
	t.Helper()
	p, err := r.CreateProgram(name, "#version 410 core\n// "+name, "#version 410 core", varyings, mode)
	require.NoError(t, err)
	require.True(t, p.Valid())
	return p
}

func TestClockClampsLongGaps(t *testing.T) {
	var c clock
	c.Tick(10 * time.Second)
	assert.Zero(t, c.Delta(), "first frame has no delta")

	c.Tick(10*time.Second + 16*time.Millisecond)
	assert.Equal(t, 16*time.Millisecond, c.Delta())

	c.Tick(10*time.Second + 616*time.Millisecond)
	assert.Zero(t, c.Delta(), "a 600ms gap is a pause")
	assert.InDelta(t, 16, c.TotalMillis(), 1e-9)

	c.Tick(10*time.Second + 1116*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, c.Delta(), "exactly 500ms still counts")
	assert.InDelta(t, 0.516, float64(c.TotalSeconds()), 1e-6)
}

func TestDrawResolvesTimeInSeconds(t *testing.T) {
	r, _ := newTestRenderer(t)
	require.NoError(t, r.Draw(0))
	require.NoError(t, r.Draw(250*time.Millisecond))
	assert.InDelta(t, 0.25, float64(r.Frame().TimeDelta), 1e-6)

	require.NoError(t, r.Draw(2*time.Second))
	assert.Zero(t, r.Frame().TimeDelta)
	assert.InDelta(t, 0.25, float64(r.Frame().TotalTime), 1e-6)
}

func TestProgramNotFound(t *testing.T) {
	logs := observeLogs(t)
	r, _ := newTestRenderer(t)
	mustProgram(t, r, "render", nil, backend.DrawTriangles)

	_, err := r.Program("missing")
	assert.True(t, errors.Is(err, ErrProgramNotFound))
	assert.Contains(t, err.Error(), "missing")

	entries := logs.FilterMessage("unknown program").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, []interface{}{"render"}, entries[0].ContextMap()["known"])

	assert.True(t, errors.Is(r.Attach("missing", geometry.NewQuad()), ErrProgramNotFound))
	assert.True(t, errors.Is(r.SetDrawParams("missing", program.DrawParams{}), ErrProgramNotFound))
}

func TestFailedCompileRegistersNullProgram(t *testing.T) {
	logs := observeLogs(t)
	r, rec := newTestRenderer(t)
	rec.FailCompile = []string{"BROKEN"}

	p, err := r.CreateProgram("bad", "BROKEN", "", nil, backend.DrawTriangles)
	require.Error(t, err)
	require.NotNil(t, p)
	assert.False(t, p.Valid())
	assert.Equal(t, 1, logs.FilterMessage("program unusable").Len())
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1, "a failed program is logged once")
	assert.Contains(t, errs[0].ContextMap()["error"], "syntax error", "the log carries the compiler output")
	assert.ErrorContains(t, err, "syntax error")

	same, err := r.Program("bad")
	require.NoError(t, err)
	assert.Same(t, p, same)

	require.NoError(t, r.Attach("bad", geometry.NewQuad()))
	require.NoError(t, r.InitProgramUniforms("bad", uniform.TotalTime))
	rec.Reset()
	require.NoError(t, r.Draw(0))

	assert.Zero(t, rec.Count("UseProgram"))
	assert.Zero(t, rec.Count("DrawArrays"))
	assert.Zero(t, rec.Count("DrawElements"))
}

func TestDrawVisitsProgramsInRegistrationOrder(t *testing.T) {
	r, rec := newTestRenderer(t)
	empty := mustProgram(t, r, "empty", nil, backend.DrawTriangles)
	first := mustProgram(t, r, "first", nil, backend.DrawTriangles)
	second := mustProgram(t, r, "second", nil, backend.DrawLines)

	require.NoError(t, r.Attach("first", geometry.NewQuad()))
	require.NoError(t, r.Attach("second", geometry.NewCube(true)))
	rec.Reset()
	require.NoError(t, r.Draw(0))

	var used []uint32
	for _, c := range rec.Named("UseProgram") {
		used = append(used, c.Args[0].(uint32))
	}
	assert.Equal(t, []uint32{first.Handle, second.Handle}, used)
	assert.NotContains(t, used, empty.Handle, "a program without geometry never becomes current")

	draws := rec.Named("DrawElements")
	require.Len(t, draws, 2)
	assert.Equal(t, []any{backend.DrawTriangles, int32(6)}, draws[0].Args)
	assert.Equal(t, []any{backend.DrawLines, int32(24)}, draws[1].Args)

	// Draw parameters are applied for every program, with or without geometry.
	assert.Equal(t, 3, rec.Count("Viewport"))

	last := rec.Calls[len(rec.Calls)-3:]
	assert.Equal(t, "BindVertexArray(0)", last[0].String())
	assert.Equal(t, "BindBuffer", last[1].Name)
	assert.Equal(t, "BindBuffer", last[2].Name)
}

func TestDrawPerProgramSequence(t *testing.T) {
	r, rec := newTestRenderer(t)
	p := mustProgram(t, r, "render", nil, backend.DrawTriangles)
	quad := geometry.NewQuad()
	require.NoError(t, r.Attach("render", quad))
	require.NoError(t, r.InitProgramUniforms("render", uniform.TimeDelta))
	require.NoError(t, r.InitGeometryUniforms("render", uniform.ModelMatrix))
	rec.Reset()
	require.NoError(t, r.Draw(0))

	want := []string{
		"ClearColor", "ClearDepth", "Clear", "Viewport", "Enable", "Enable",
		"UseProgram", "Uniform1fv",
		"BindVertexArray", "UniformMatrix4fv", "DrawElements",
		"BindVertexArray", "BindBuffer", "BindBuffer",
	}
	assert.Equal(t, want, rec.Names())
	assert.Equal(t, p.Handle, rec.CurrentProgram())
}

func TestFeedbackProgramNeverDrawsVisibly(t *testing.T) {
	r, rec := newTestRenderer(t)
	update := mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)
	render := mustProgram(t, r, "render", nil, backend.DrawPoints)

	ps, err := geometry.NewParticleSystem(geometry.WithNumParticles(100), geometry.WithBirthRate(10))
	require.NoError(t, err)
	require.NoError(t, r.Attach("update", ps))
	require.NoError(t, r.Attach("render", ps))

	require.NoError(t, r.Draw(0))
	rec.Reset()
	require.NoError(t, r.Draw(time.Second))

	var current uint32
	inFeedback := false
	var renderCounts []int32
	for _, c := range rec.Calls {
		switch c.Name {
		case "UseProgram":
			current = c.Args[0].(uint32)
		case "BeginTransformFeedback":
			inFeedback = true
		case "EndTransformFeedback":
			inFeedback = false
		case "DrawArrays":
			if current == update.Handle {
				assert.True(t, inFeedback, "update program draws only inside a feedback pass")
			}
			if current == render.Handle {
				assert.False(t, inFeedback)
				renderCounts = append(renderCounts, c.Args[2].(int32))
			}
		}
	}
	assert.Zero(t, rec.Count("DrawElements"))
	assert.Equal(t, 1, rec.Count("BeginTransformFeedback"))
	assert.Equal(t, []int32{10}, renderCounts, "render draws the born count")
}

func TestSimulatorsAdvanceOncePerFrame(t *testing.T) {
	r, _ := newTestRenderer(t)
	mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)
	mustProgram(t, r, "render", nil, backend.DrawPoints)

	ps, err := geometry.NewParticleSystem()
	require.NoError(t, err)
	require.NoError(t, r.Attach("update", ps))
	require.NoError(t, r.Attach("render", ps))

	for f := 0; f < 4; f++ {
		read, write := ps.Read(), ps.Write()
		require.NoError(t, r.Draw(time.Duration(f)*16*time.Millisecond))
		assert.Equal(t, write, ps.Read(), "frame %d", f)
		assert.Equal(t, read, ps.Write(), "frame %d", f)
	}
}

func TestSetDrawParamsMerges(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := mustProgram(t, r, "render", nil, backend.DrawTriangles)

	blend := program.BlendFunc{Src: backend.BlendSrcAlpha, Dst: backend.BlendOne}
	require.NoError(t, r.SetDrawParams("render", program.DrawParams{BlendFunc: &blend}))
	require.NoError(t, r.SetDrawParams("render", program.DrawParams{Enable: []backend.Capability{backend.CapBlend}}))

	assert.Equal(t, &blend, p.Params.BlendFunc)
	assert.Equal(t, []backend.Capability{backend.CapBlend}, p.Params.Enable)
	assert.Equal(t, program.DefaultDrawParams().ClearColor, p.Params.ClearColor)
}

func TestInitProgramUniforms(t *testing.T) {
	logs := observeLogs(t)
	r, _ := newTestRenderer(t)
	p := mustProgram(t, r, "render", nil, backend.DrawTriangles)

	require.NoError(t, r.InitProgramUniforms("render", uniform.Resolution, uniform.ProjectionMatrix))
	assert.False(t, p.NeedsUpdate, "resolution and camera uniforms do not vary per frame")

	u, ok := p.Uniform(uniform.Resolution)
	require.True(t, ok)
	assert.Equal(t, []float32{800, 600}, u.Floats(), "seeded at registration")

	require.NoError(t, r.InitProgramUniforms("render", "u_Bogus", uniform.TotalTime))
	assert.True(t, p.NeedsUpdate)
	assert.Equal(t, 3, p.Uniforms.Len())
	assert.Equal(t, 1, logs.FilterMessage("unknown program uniform").Len())
}

func TestVaryingUniformsResolveEveryFrame(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := mustProgram(t, r, "render", nil, backend.DrawTriangles)
	require.NoError(t, r.Attach("render", geometry.NewQuad()))
	require.NoError(t, r.InitProgramUniforms("render", uniform.TotalTime, uniform.Click))

	require.NoError(t, r.Draw(0))
	r.SetClick(true)
	require.NoError(t, r.Draw(100*time.Millisecond))

	total, _ := p.Uniform(uniform.TotalTime)
	assert.InDelta(t, 0.1, float64(total.Floats()[0]), 1e-6)
	click, _ := p.Uniform(uniform.Click)
	assert.Equal(t, []int32{1}, click.Ints())
}

func TestCameraChangeRefreshesGlobals(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := mustProgram(t, r, "render", nil, backend.DrawTriangles)
	require.NoError(t, r.InitProgramUniforms("render", uniform.ViewMatrix, uniform.ProjectionMatrix))

	eye := mgl32.Vec3{0, 0, 5}
	r.SetCameraPosition(eye)
	view, _ := p.Uniform(uniform.ViewMatrix)
	want := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, want[:], view.Floats())

	r.SetResolution(400, 400)
	proj, _ := p.Uniform(uniform.ProjectionMatrix)
	wantProj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	assert.InDeltaSlice(t, wantProj[:], proj.Floats(), 1e-6)
}

func TestSetCursorToNDC(t *testing.T) {
	r, _ := newTestRenderer(t)
	r.SetCursor(400, 300)
	assert.Equal(t, mgl32.Vec2{0, 0}, r.Frame().Mouse)
	r.SetCursor(0, 0)
	assert.Equal(t, mgl32.Vec2{-1, 1}, r.Frame().Mouse)
	r.SetCursor(800, 600)
	assert.Equal(t, mgl32.Vec2{1, -1}, r.Frame().Mouse)
}

func TestGeometryUniformsResolvePerAttachment(t *testing.T) {
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "render", nil, backend.DrawTriangles)

	moved := geometry.NewQuad()
	moved.SetTranslation(mgl32.Vec3{1, 2, 3})
	still := geometry.NewQuad()
	require.NoError(t, r.Attach("render", moved))
	require.NoError(t, r.InitGeometryUniforms("render", uniform.ModelMatrix))
	require.NoError(t, r.AddGeometryUniform("render", "u_Color", uniform.Vec3, []float32{1, 0, 0}))
	require.NoError(t, r.Attach("render", still), "uniforms registered earlier are instantiated on later attachments")
	require.NoError(t, r.UpdateGeometryUniform("render", still, "u_Color", []float32{0, 1, 0}))

	rec.Reset()
	require.NoError(t, r.Draw(0))

	models := rec.Named("UniformMatrix4fv")
	require.Len(t, models, 2)
	translate := mgl32.Translate3D(1, 2, 3)
	identity := mgl32.Ident4()
	assert.Equal(t, translate[:], models[0].Args[1])
	assert.Equal(t, identity[:], models[1].Args[1])

	colors := rec.Named("Uniform3fv")
	require.Len(t, colors, 2)
	assert.Equal(t, []float32{1, 0, 0}, colors[0].Args[1])
	assert.Equal(t, []float32{0, 1, 0}, colors[1].Args[1])

	err := r.UpdateGeometryUniform("render", geometry.NewQuad(), "u_Color", nil)
	assert.True(t, errors.Is(err, ErrUniformNotFound))
}

func TestUserProgramUniform(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)

	require.NoError(t, r.AddProgramUniform("update", "u_NumUsers", uniform.Int, []float32{0}))
	require.NoError(t, r.UpdateProgramUniform("update", "u_NumUsers", []float32{3}))
	u, ok := p.Uniform("u_NumUsers")
	require.True(t, ok)
	assert.Equal(t, []int32{3}, u.Ints())
	assert.False(t, p.NeedsUpdate)

	err := r.UpdateProgramUniform("update", "u_Missing", []float32{1})
	assert.True(t, errors.Is(err, ErrUniformNotFound))
}

func TestUniformBufferPartialUpdate(t *testing.T) {
	r, rec := newTestRenderer(t)
	p := mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)

	require.NoError(t, r.AddUniformBuffer("update", "u_UserSettings", 2, make([]float32, 4)))
	rec.Reset()
	require.NoError(t, r.UpdateUniformBuffer("update", "u_UserSettings", 1, []float32{0.75}))

	require.Len(t, p.Buffers, 1)
	assert.Equal(t, []float32{0, 0.75, 0, 0}, p.Buffers[0].Data())
	assert.Zero(t, rec.Count("BufferData"), "the buffer is never reallocated")
	sub := rec.Named("BufferSubData")
	require.Len(t, sub, 1)
	assert.Equal(t, []any{backend.BufferUniform, p.Buffers[0].Handle, 4, 4}, sub[0].Args)

	err := r.UpdateUniformBuffer("update", "u_UserSettings", 4, []float32{1})
	assert.True(t, errors.Is(err, uniform.ErrOutOfRange))

	err = r.UpdateUniformBuffer("update", "u_Unknown", 0, []float32{1})
	assert.True(t, errors.Is(err, ErrBlockNotFound))
}

func TestUniformBufferMissingBlock(t *testing.T) {
	logs := observeLogs(t)
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)
	rec.Missing["u_UserIntersectsBuffer"] = true

	err := r.AddUniformBuffer("update", "u_UserIntersectsBuffer", 1, make([]float32, 32))
	assert.True(t, errors.Is(err, ErrBlockNotFound))
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func newPingPong(t *testing.T, r Renderer) (a, b *uniform.Texture) {
	t.Helper()
	mustProgram(t, r, "step", nil, backend.DrawTriangles)
	mustProgram(t, r, "display", nil, backend.DrawTriangles)
	spec := backend.TextureSpec{Target: backend.Texture2D, Format: backend.FormatRGBA8, Width: 4, Height: 4}
	require.NoError(t, r.DataTexture("step", "u_State", 0, spec))
	require.NoError(t, r.DataTexture("display", "u_State", 0, spec))
	require.NoError(t, r.Attach("step", geometry.NewQuad()))
	require.NoError(t, r.Attach("display", geometry.NewQuad()))

	sp, _ := r.Program("step")
	dp, _ := r.Program("display")
	ua, _ := sp.Uniform("u_State")
	ub, _ := dp.Uniform("u_State")
	return ua.Texture, ub.Texture
}

func TestFramebufferRoutineOrder(t *testing.T) {
	r, rec := newTestRenderer(t)
	ta, tb := newPingPong(t, r)
	r.CreateFramebuffer("state")

	stepState := program.TextureRef{Program: "step", Uniform: "u_State"}
	displayState := program.TextureRef{Program: "display", Uniform: "u_State"}
	require.NoError(t, r.SetFramebufferRoutine("step", program.FramebufferRoutine{
		Pre:         r.SwapTexturesHook(stepState, displayState),
		Framebuffer: "state",
		Target:      &displayState,
		Source:      &stepState,
	}))
	require.NoError(t, r.SetFramebufferRoutine("display", program.FramebufferRoutine{}))

	rec.Reset()
	require.NoError(t, r.Draw(0))

	// After the swap the display sampler holds ta and the step sampler holds tb.
	require.GreaterOrEqual(t, len(rec.Calls), 4)
	assert.Equal(t, "BindFramebuffer", rec.Calls[0].Name)
	assert.NotZero(t, rec.Calls[0].Args[0])
	assert.Equal(t, []any{ta.Handle}, rec.Calls[1].Args)
	assert.Equal(t, "FramebufferTexture2D", rec.Calls[1].Name)
	assert.Equal(t, []any{uint32(0), tb.Handle}, rec.Calls[2].Args)
	assert.Equal(t, "BindTexture", rec.Calls[2].Name)
	assert.Equal(t, "ClearColor", rec.Calls[3].Name)

	// The display routine binds the main viewport.
	fbs := rec.Named("BindFramebuffer")
	require.Len(t, fbs, 2)
	assert.Equal(t, []any{uint32(0)}, fbs[1].Args)

	require.NoError(t, r.Draw(16*time.Millisecond))
	sp, _ := r.Program("step")
	u, _ := sp.Uniform("u_State")
	assert.Same(t, ta, u.Texture, "two swaps restore the original assignment")
}

func TestFramebufferRoutineHazard(t *testing.T) {
	r, rec := newTestRenderer(t)
	newPingPong(t, r)
	r.CreateFramebuffer("state")

	self := program.TextureRef{Program: "step", Uniform: "u_State"}
	require.NoError(t, r.SetFramebufferRoutine("step", program.FramebufferRoutine{
		Framebuffer: "state",
		Target:      &self,
		Source:      &self,
	}))
	step, _ := r.Program("step")
	display, _ := r.Program("display")

	rec.Reset()
	err := r.Draw(0)
	assert.True(t, errors.Is(err, ErrTextureHazard))
	assert.Zero(t, rec.Count("FramebufferTexture2D"))

	var used []uint32
	for _, c := range rec.Named("UseProgram") {
		used = append(used, c.Args[0].(uint32))
	}
	assert.Equal(t, []uint32{display.Handle}, used, "only the hazardous program is skipped")
	assert.NotContains(t, used, step.Handle)

	require.NoError(t, r.ClearFramebufferRoutine("step"))
	assert.NoError(t, r.Draw(16*time.Millisecond))
}

func TestFramebufferRoutineUnknownFramebuffer(t *testing.T) {
	r, _ := newTestRenderer(t)
	newPingPong(t, r)
	require.NoError(t, r.SetFramebufferRoutine("step", program.FramebufferRoutine{Framebuffer: "nope"}))
	assert.True(t, errors.Is(r.Draw(0), ErrFramebufferNotFound))
}

func TestSwapTexturesExchangesReferences(t *testing.T) {
	r, _ := newTestRenderer(t)
	ta, tb := newPingPong(t, r)

	a := program.TextureRef{Program: "step", Uniform: "u_State"}
	b := program.TextureRef{Program: "display", Uniform: "u_State"}
	require.NoError(t, r.SwapTextures(a, b))

	sp, _ := r.Program("step")
	dp, _ := r.Program("display")
	ua, _ := sp.Uniform("u_State")
	ub, _ := dp.Uniform("u_State")
	assert.Same(t, tb, ua.Texture)
	assert.Same(t, ta, ub.Texture)

	err := r.SwapTextures(a, program.TextureRef{Program: "step", Uniform: "u_Nope"})
	assert.True(t, errors.Is(err, ErrUniformNotFound))
}

func TestRelease(t *testing.T) {
	r, rec := newTestRenderer(t)
	newPingPong(t, r)
	r.CreateFramebuffer("state")
	require.NoError(t, r.SwapTextures(
		program.TextureRef{Program: "step", Uniform: "u_State"},
		program.TextureRef{Program: "display", Uniform: "u_State"},
	))
	rec.Reset()

	r.Release()
	assert.Equal(t, 2, rec.Count("DeleteProgram"))
	assert.Equal(t, 2, rec.Count("DeleteTexture"))
	assert.Equal(t, 1, rec.Count("DeleteFramebuffer"))
	assert.Empty(t, r.Programs())
}

func TestRenderPassReadsPreviousFeedbackOutput(t *testing.T) {
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)
	render := mustProgram(t, r, "render", nil, backend.DrawPoints)

	ps, err := geometry.NewParticleSystem(geometry.WithBirthRate(100))
	require.NoError(t, err)
	require.NoError(t, r.Attach("update", ps))
	require.NoError(t, r.Attach("render", ps))

	for f := 0; f < 3; f++ {
		rec.Reset()
		require.NoError(t, r.Draw(time.Duration(f)*16*time.Millisecond))

		var target, current, renderSource uint32
		for _, c := range rec.Calls {
			switch c.Name {
			case "UseProgram":
				current = c.Args[0].(uint32)
			case "BindBufferBase":
				if c.Args[0] == backend.BufferTransformFeedback && c.Args[2].(uint32) != 0 {
					target = c.Args[2].(uint32)
				}
			case "BindVertexArray":
				if vao := c.Args[0].(uint32); current == render.Handle && vao != 0 {
					renderSource = rec.VertexArraySource(vao)
				}
			}
		}
		require.NotZero(t, target, "frame %d", f)
		require.NotZero(t, renderSource, "frame %d", f)
		assert.NotEqual(t, target, renderSource, "frame %d renders the feedback target", f)
	}
}

func TestFeedbackProgramUploadsGeometryUniforms(t *testing.T) {
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)

	ps, err := geometry.NewParticleSystem()
	require.NoError(t, err)
	ps.SetTranslation(mgl32.Vec3{0, 1, 0})
	require.NoError(t, r.Attach("update", ps))
	require.NoError(t, r.InitGeometryUniforms("update", uniform.ModelMatrix))

	for f := 0; f < 2; f++ {
		rec.Reset()
		require.NoError(t, r.Draw(time.Duration(f)*16*time.Millisecond))

		names := rec.Names()
		upload := indexOf(names, "UniformMatrix4fv")
		feedback := indexOf(names, "BeginTransformFeedback")
		require.GreaterOrEqual(t, upload, 0, "frame %d uploads the model matrix", f)
		assert.Less(t, upload, feedback, "frame %d uploads before the feedback pass", f)
	}
	model := rec.Named("UniformMatrix4fv")[0].Args[1]
	translate := mgl32.Translate3D(0, 1, 0)
	assert.Equal(t, translate[:], model)
}

func TestFeedbackProgramUploadsEmitterUniforms(t *testing.T) {
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "update", particleVaryings, backend.DrawPoints)

	opts := geometry.DefaultParticleOptions()
	ps, err := geometry.NewParticleSystem(geometry.WithParticleOptions(opts))
	require.NoError(t, err)
	require.NoError(t, r.Attach("update", ps))
	require.NoError(t, r.AddProgramUniform("update", "u_Gravity", uniform.Vec2, opts.Gravity[:]))
	require.NoError(t, r.AddProgramUniform("update", "u_SpeedRange", uniform.Vec2, opts.SpeedRange[:]))

	rec.Reset()
	require.NoError(t, r.Draw(0))

	names := rec.Names()
	uploads := rec.Named("Uniform2fv")
	require.Len(t, uploads, 2)
	assert.Equal(t, []float32{0, -0.8}, uploads[0].Args[1])
	assert.Equal(t, []float32{0.5, 1.0}, uploads[1].Args[1])
	assert.Less(t, indexOf(names, "Uniform2fv"), indexOf(names, "BeginTransformFeedback"))
}

func TestPointProgramDrawsVerticesOfIndexedMesh(t *testing.T) {
	r, rec := newTestRenderer(t)
	mustProgram(t, r, "points", nil, backend.DrawPoints)
	quad := geometry.NewQuad()
	require.NoError(t, r.Attach("points", quad))
	require.Positive(t, quad.IndexCount())

	rec.Reset()
	require.NoError(t, r.Draw(0))

	assert.Zero(t, rec.Count("DrawElements"))
	draws := rec.Named("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{backend.DrawPoints, int32(0), quad.VertexCount()}, draws[0].Args)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
