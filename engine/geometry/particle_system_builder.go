package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleSystemBuilderOption is a functional option for configuring a ParticleSystem during construction.
type ParticleSystemBuilderOption func(*particleSystem)

// WithParticleOptions replaces the whole configuration.
//
// Parameters:
//   - o: the options
//
// Returns:
//   - ParticleSystemBuilderOption: functional option to set the configuration
func WithParticleOptions(o ParticleOptions) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts = o
	}
}

// WithDimensions sets the number of position and velocity components (2 or 3).
//
// Parameters:
//   - d: the dimension count
//
// Returns:
//   - ParticleSystemBuilderOption: functional option to set the dimensions
func WithDimensions(d int) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.Dimensions = d
	}
}

// WithNumParticles sets the particle cap.
//
// Parameters:
//   - n: the maximum number of particles
//
// Returns:
//   - ParticleSystemBuilderOption: functional option to set the cap
func WithNumParticles(n int) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.NumParticles = n
	}
}

// WithBirthRate sets how many particles are born per second.
//
// Parameters:
//   - rate: particles per second
//
// Returns:
//   - ParticleSystemBuilderOption: functional option to set the birth rate
func WithBirthRate(rate float32) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.BirthRate = rate
	}
}

// WithLifeRange sets the bounds of the per-particle lifetime.
//
// Parameters:
//   - lo: the shortest lifetime
//   - hi: the longest lifetime
//
// Returns:
//   - ParticleSystemBuilderOption: functional option to set the life range
func WithLifeRange(lo, hi float32) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.LifeRange = [2]float32{lo, hi}
	}
}

// WithDirectionRange sets the bounds of the emission angle in radians.
func WithDirectionRange(lo, hi float32) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.DirectionRange = [2]float32{lo, hi}
	}
}

// WithSpeedRange sets the bounds of the emission speed.
func WithSpeedRange(lo, hi float32) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.SpeedRange = [2]float32{lo, hi}
	}
}

// WithGravity sets the constant acceleration.
func WithGravity(g mgl32.Vec2) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.Gravity = g
	}
}

// WithSeed sets the seed of the initial particle state.
func WithSeed(seed int64) ParticleSystemBuilderOption {
	return func(ps *particleSystem) {
		ps.opts.Seed = seed
	}
}
