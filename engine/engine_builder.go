package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/Carmen-Shannon/oxy-gl/presence"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilingInterval sets how often profiling stats are logged.
//
// Parameters:
//   - interval: the log interval (defaults to 1 second if <= 0)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilingInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithWindow sets the window the engine draws into and takes input from.
//
// Parameters:
//   - w: the window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithPresence connects the engine to a presence feed. Room updates are written into
// the named program each frame and mouse drags publish the cursor hit point.
//
// Parameters:
//   - c: the connected presence client
//   - program: the program declaring u_UserIntersectsBuffer and u_NumUsers
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPresence(c presence.Client, program string) EngineBuilderOption {
	return func(e *engine) {
		e.presence = c
		e.presenceProgram = program
	}
}

// WithOrbitSensitivity sets the shift-drag rotation speed.
//
// Parameters:
//   - radiansPerPixel: rotation per pixel of cursor movement
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOrbitSensitivity(radiansPerPixel float32) EngineBuilderOption {
	return func(e *engine) {
		e.orbit = camera.NewOrbit(e.renderer.Camera(), radiansPerPixel)
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}
