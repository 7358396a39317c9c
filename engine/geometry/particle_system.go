package geometry

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Attribute names read by particle programs.
const (
	AttribVelocity = "i_Velocity"
	AttribAge      = "i_Age"
	AttribLife     = "i_Life"
)

// ParticleOptions configures a particle system. Ranges are [min, max]. The system itself
// only consumes Dimensions, NumParticles, BirthRate, LifeRange and Seed; the emission
// ranges and Gravity are for the update program, which receives them as uniforms.
type ParticleOptions struct {
	// Dimensions is 2 or 3; position and velocity each have this many components.
	Dimensions int
	// NumParticles is the particle cap.
	NumParticles int
	// BirthRate is the number of particles born per second.
	BirthRate float32
	// LifeRange bounds the per-particle lifetime.
	LifeRange [2]float32
	// DirectionRange bounds the emission angle in radians.
	DirectionRange [2]float32
	// SpeedRange bounds the emission speed.
	SpeedRange [2]float32
	// Gravity is the constant acceleration applied by the update program.
	Gravity mgl32.Vec2
	// Seed seeds the initial particle state.
	Seed int64
}

// DefaultParticleOptions returns the options used when none are given.
func DefaultParticleOptions() ParticleOptions {
	return ParticleOptions{
		Dimensions:     2,
		NumParticles:   100,
		BirthRate:      0.5,
		LifeRange:      [2]float32{1.01, 1.15},
		DirectionRange: [2]float32{math.Pi/2 - 0.5, math.Pi/2 + 0.5},
		SpeedRange:     [2]float32{0.5, 1.0},
		Gravity:        mgl32.Vec2{0, -0.8},
		Seed:           1,
	}
}

// particleSystem is the unexported implementation of ParticleSystem.
type particleSystem struct {
	Base

	opts ParticleOptions
	// initial is the seeded state uploaded to both buffers at link time.
	initial []float32

	buffers    [2]uint32
	updateVAOs [2]uint32
	renderVAOs map[uint32][2]uint32
	update     Target

	read, write int
	born        int32
	// elapsed is the total simulated time in seconds, the basis of the born count.
	elapsed float64
}

// ParticleSystem is a GPU-resident particle simulation. Particle state lives in two
// buffers with identical layout: every frame one is the feedback source and the other
// the feedback target, and their roles swap in AdvanceFrame.
type ParticleSystem interface {
	Simulator

	// SetTranslation moves the particle system.
	SetTranslation(v mgl32.Vec3)

	// SetRotation sets the rotation speed and axis.
	SetRotation(speed float32, axis mgl32.Vec3)

	// SetOscillate switches between continuous rotation and a sinusoidal sweep.
	SetOscillate(on bool)

	// Options returns the configuration.
	//
	// Returns:
	//   - ParticleOptions: the options
	Options() ParticleOptions

	// Read returns the index (0 or 1) of the buffer the next feedback pass reads.
	//
	// Returns:
	//   - int: the read index
	Read() int

	// Write returns the index (0 or 1) of the buffer the next feedback pass writes.
	//
	// Returns:
	//   - int: the write index
	Write() int

	// ReadBuffer returns the handle of the read buffer, 0 before linking.
	//
	// Returns:
	//   - uint32: the buffer handle
	ReadBuffer() uint32

	// WriteBuffer returns the handle of the write buffer, 0 before linking.
	//
	// Returns:
	//   - uint32: the buffer handle
	WriteBuffer() uint32

	// Born returns the number of live particles. It never decreases and never exceeds the cap.
	//
	// Returns:
	//   - int32: the born count
	Born() int32

	// InitialState returns the seeded per-particle data, interleaved as
	// position, velocity, age, life.
	//
	// Returns:
	//   - []float32: the initial state
	InitialState() []float32
}

var _ ParticleSystem = &particleSystem{}

// NewParticleSystem creates a particle system and seeds its initial state.
//
// Parameters:
//   - options: functional options applied over DefaultParticleOptions
//
// Returns:
//   - ParticleSystem: the particle system
//   - error: an error if the options are invalid
func NewParticleSystem(options ...ParticleSystemBuilderOption) (ParticleSystem, error) {
	ps := &particleSystem{
		opts:       DefaultParticleOptions(),
		renderVAOs: make(map[uint32][2]uint32),
		read:       0,
		write:      1,
	}
	for _, opt := range options {
		opt(ps)
	}

	o := ps.opts
	if o.Dimensions != 2 && o.Dimensions != 3 {
		return nil, fmt.Errorf("particle dimensions must be 2 or 3, got %d", o.Dimensions)
	}
	if o.NumParticles <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", o.NumParticles)
	}
	if o.LifeRange[1] < o.LifeRange[0] {
		return nil, fmt.Errorf("invalid life range [%v, %v]", o.LifeRange[0], o.LifeRange[1])
	}

	rng := rand.New(rand.NewSource(o.Seed))
	ps.initial = make([]float32, 0, o.NumParticles*ps.floatsPerParticle())
	for i := 0; i < o.NumParticles; i++ {
		for d := 0; d < o.Dimensions; d++ {
			ps.initial = append(ps.initial, rng.Float32())
		}
		for d := 0; d < o.Dimensions; d++ {
			ps.initial = append(ps.initial, 0)
		}
		life := o.LifeRange[0] + rng.Float32()*(o.LifeRange[1]-o.LifeRange[0])
		// Age starts past life so every particle is respawned when first born.
		ps.initial = append(ps.initial, life+1, life)
	}
	return ps, nil
}

func (ps *particleSystem) floatsPerParticle() int {
	return 2*ps.opts.Dimensions + 2
}

func (ps *particleSystem) updateLayout() []Attribute {
	d := int32(ps.opts.Dimensions)
	return []Attribute{{AttribPosition, d}, {AttribVelocity, d}, {AttribAge, 1}, {AttribLife, 1}}
}

func (ps *particleSystem) Link(b backend.Backend, t Target) error {
	if t.Handle == 0 {
		return fmt.Errorf("cannot link particle system to program %s: no program handle", t.Name)
	}
	if t.Feedback && ps.update.Handle != 0 && ps.update.Handle != t.Handle {
		return fmt.Errorf("particle system already updated by program %s", ps.update.Name)
	}

	if ps.buffers[0] == 0 {
		data := common.SliceToBytes(ps.initial)
		for i := range ps.buffers {
			ps.buffers[i] = b.CreateBuffer()
			b.BufferData(backend.BufferArray, ps.buffers[i], data, backend.UsageStreamDraw)
		}
		b.BindBuffer(backend.BufferArray, 0)
	}

	if t.Feedback {
		if ps.update.Handle == t.Handle {
			return nil
		}
		for i := range ps.updateVAOs {
			ps.updateVAOs[i] = ps.linkVAO(b, ps.buffers[i], t.Handle, ps.updateLayout())
		}
		ps.update = t
	} else {
		if _, ok := ps.renderVAOs[t.Handle]; ok {
			return nil
		}
		// The render view reads only the position; the other fields are padding.
		layout := ps.updateLayout()
		layout[1].Name, layout[2].Name, layout[3].Name = "", "", ""
		var vaos [2]uint32
		for i := range vaos {
			vaos[i] = ps.linkVAO(b, ps.buffers[i], t.Handle, layout)
		}
		ps.renderVAOs[t.Handle] = vaos
	}

	logging.Named("geometry").Debug("particle system linked",
		zap.String("program", t.Name),
		zap.Bool("feedback", t.Feedback),
		zap.Uint32s("buffers", ps.buffers[:]),
	)
	return nil
}

func (ps *particleSystem) linkVAO(b backend.Backend, buffer, program uint32, layout []Attribute) uint32 {
	vao := b.CreateVertexArray()
	b.BindVertexArray(vao)
	b.BindBuffer(backend.BufferArray, buffer)
	linkLayout(b, program, layout, 0)
	b.BindVertexArray(0)
	b.BindBuffer(backend.BufferArray, 0)
	return vao
}

// Bind binds the render view of the read buffer. The buffer this frame's feedback pass
// writes is never bound for drawing; it becomes readable after AdvanceFrame.
func (ps *particleSystem) Bind(b backend.Backend, t Target) {
	b.BindVertexArray(ps.renderVAOs[t.Handle][ps.read])
}

func (ps *particleSystem) Step(b backend.Backend, t Target, dt float32) error {
	if ps.read == ps.write || (ps.buffers[ps.read] != 0 && ps.buffers[ps.read] == ps.buffers[ps.write]) {
		return ErrBufferHazard
	}
	if ps.update.Handle == 0 || ps.update.Handle != t.Handle {
		return fmt.Errorf("particle system is not linked to feedback program %s", t.Name)
	}

	// Particles born this frame are simulated from the next pass on.
	count := ps.born
	ps.advanceBorn(dt)

	b.BindVertexArray(ps.updateVAOs[ps.read])
	b.BindBufferBase(backend.BufferTransformFeedback, 0, ps.buffers[ps.write])
	b.Enable(backend.CapRasterizerDiscard)
	b.BeginTransformFeedback(backend.DrawPoints)
	b.DrawArrays(backend.DrawPoints, 0, count)
	b.EndTransformFeedback()
	b.Disable(backend.CapRasterizerDiscard)
	b.BindBufferBase(backend.BufferTransformFeedback, 0, 0)
	return nil
}

// advanceBorn adds dt seconds to the simulated time and sets born to
// min(cap, floor(rate * elapsed)). The born count never decreases.
func (ps *particleSystem) advanceBorn(dt float32) {
	if dt > 0 {
		ps.elapsed += float64(dt)
	}
	limit := int32(ps.opts.NumParticles)
	if ps.born >= limit {
		return
	}
	n := math.Floor(float64(ps.opts.BirthRate) * ps.elapsed)
	if n >= float64(limit) {
		ps.born = limit
	} else if int32(n) > ps.born {
		ps.born = int32(n)
	}
}

func (ps *particleSystem) AdvanceFrame() {
	ps.read, ps.write = ps.write, ps.read
}

func (ps *particleSystem) VertexCount() int32 { return ps.born }

func (ps *particleSystem) IndexCount() int32 { return 0 }

func (ps *particleSystem) Options() ParticleOptions { return ps.opts }

func (ps *particleSystem) Read() int { return ps.read }

func (ps *particleSystem) Write() int { return ps.write }

func (ps *particleSystem) ReadBuffer() uint32 { return ps.buffers[ps.read] }

func (ps *particleSystem) WriteBuffer() uint32 { return ps.buffers[ps.write] }

func (ps *particleSystem) Born() int32 { return ps.born }

func (ps *particleSystem) InitialState() []float32 {
	return append([]float32(nil), ps.initial...)
}

func (ps *particleSystem) Release(b backend.Backend) {
	for _, vao := range ps.updateVAOs {
		if vao != 0 {
			b.DeleteVertexArray(vao)
		}
	}
	for p, vaos := range ps.renderVAOs {
		for _, vao := range vaos {
			b.DeleteVertexArray(vao)
		}
		delete(ps.renderVAOs, p)
	}
	for i, buf := range ps.buffers {
		if buf != 0 {
			b.DeleteBuffer(buf)
			ps.buffers[i] = 0
		}
	}
	ps.updateVAOs = [2]uint32{}
	ps.update = Target{}
}
