package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
	"github.com/Carmen-Shannon/oxy-gl/presence"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	minFOV float32 = 15 * math.Pi / 180
	maxFOV float32 = 90 * math.Pi / 180
	// fovStep is the field of view change per scroll unit, in radians.
	fovStep = 0.05
)

// engine implements the Engine interface.
// Everything runs on the thread owning the GL context; the presence client's read
// goroutine only hands messages over through its inbox.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	orbit    *camera.Orbit

	profiler         *profiler.Profiler
	profilingEnabled bool

	presence        presence.Client
	presenceProgram string
	messageCallback func(msg presence.Message)

	frameCallback    func(deltaTime float32)
	renderFrameLimit time.Duration

	shiftDown  bool
	buttonDown bool
	lastX      float64
	lastY      float64

	quitOnce sync.Once
	quit     chan struct{}
}

// Engine is the main entry point for the engine.
// It owns the per-frame loop: drain network input, run the frame callback, draw every
// program and log profiling stats.
type Engine interface {
	// Window returns the underlying window, nil for headless engines.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driven by the engine.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Orbit returns the shift-drag camera orbit.
	//
	// Returns:
	//   - *camera.Orbit: the orbit around the camera target
	Orbit() *camera.Orbit

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called each frame before drawing.
	// Use it for uniform updates driven by application state.
	//
	// Parameters:
	//   - callback: function receiving the clamped delta of the previous frame in seconds
	SetFrameCallback(callback func(deltaTime float32))

	// SetMessageCallback registers the function receiving every presence message after
	// the engine applied it to the renderer.
	//
	// Parameters:
	//   - callback: function receiving the message
	SetMessageCallback(callback func(msg presence.Message))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frame runs one frame: presence messages queued since the last frame are applied,
	// the frame callback runs, then every program is drawn.
	//
	// Parameters:
	//   - now: monotonic frame timestamp
	//
	// Returns:
	//   - error: the joined per-program draw errors
	Frame(now time.Duration) error

	// MouseDown handles a button press at a window position in pixels.
	MouseDown(button window.MouseButton, x, y float64)

	// MouseUp handles a button release at a window position in pixels.
	MouseUp(button window.MouseButton, x, y float64)

	// MouseMove handles cursor movement to a window position in pixels.
	MouseMove(x, y float64)

	// KeyDown handles a key press. Shift switches dragging to orbiting and Escape quits.
	KeyDown(keyCode uint32)

	// KeyUp handles a key release.
	KeyUp(keyCode uint32)

	// Scroll zooms the camera by changing its field of view.
	Scroll(delta float32)

	// Resize handles a framebuffer size change in pixels.
	Resize(width, height int)

	// Run wires the window callbacks and drives frames until the window closes.
	// Blocks; must be called on the thread that created the window.
	Run()

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()
}

// NewEngine creates an Engine driving r.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - r: the renderer to drive
//   - options: functional options for engine configuration (window, presence, profiling)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		renderer: r,
		profiler: profiler.NewProfiler(time.Second),
		quit:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.orbit == nil {
		e.orbit = camera.NewOrbit(r.Camera(), 0.005)
	}
	if e.window != nil {
		e.renderer.SetResolution(int32(e.window.Width()), int32(e.window.Height()))
	}
	return e
}

func logger() *zap.Logger {
	return logging.Named("engine")
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Orbit() *camera.Orbit {
	return e.orbit
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(deltaTime float32)) {
	e.frameCallback = callback
}

func (e *engine) SetMessageCallback(callback func(msg presence.Message)) {
	e.messageCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frame(now time.Duration) error {
	e.drainPresence()

	if e.frameCallback != nil {
		e.frameCallback(e.renderer.Frame().TimeDelta)
	}

	err := e.renderer.Draw(now)
	if err != nil {
		logger().Debug("frame completed with errors", zap.Error(err))
	}

	if e.profilingEnabled {
		e.profiler.Tick(now, zap.Int("programs", len(e.renderer.Programs())))
	}
	return err
}

// drainPresence applies every message queued by the presence client without blocking.
func (e *engine) drainPresence() {
	if e.presence == nil {
		return
	}
	for {
		select {
		case msg, ok := <-e.presence.Messages():
			if !ok {
				logger().Warn("presence connection closed")
				e.presence = nil
				return
			}
			if err := presence.ApplyRoomUpdate(e.renderer, e.presenceProgram, msg); err != nil {
				logger().Warn("room update not applied", zap.String("program", e.presenceProgram), zap.Error(err))
			}
			if e.messageCallback != nil {
				e.messageCallback(msg)
			}
		default:
			return
		}
	}
}

func (e *engine) MouseDown(button window.MouseButton, x, y float64) {
	if button != window.MouseButtonLeft {
		return
	}
	e.buttonDown = true
	e.lastX, e.lastY = x, y
	e.renderer.SetCursor(x, y)
	e.renderer.SetClick(true)
}

func (e *engine) MouseUp(button window.MouseButton, x, y float64) {
	if button != window.MouseButtonLeft {
		return
	}
	e.buttonDown = false
	e.renderer.SetClick(false)
	e.sendIntersect(presence.Intersect{})
}

func (e *engine) MouseMove(x, y float64) {
	dx, dy := x-e.lastX, y-e.lastY
	e.lastX, e.lastY = x, y
	e.renderer.SetCursor(x, y)
	if !e.buttonDown {
		return
	}
	if e.shiftDown {
		e.orbit.Drag(float32(dx), float32(dy))
		e.renderer.CameraChanged()
		return
	}
	e.sendIntersect(e.cursorIntersect())
}

// cursorIntersect returns the cursor's hit on the unit sphere with the click flag in W,
// or the zero value when the ray misses.
func (e *engine) cursorIntersect() presence.Intersect {
	mouse := e.renderer.Frame().Mouse
	origin, dir := e.renderer.Camera().CursorRay(mouse)
	hit, ok := camera.IntersectUnitSphere(origin, dir)
	if !ok {
		return presence.Intersect{}
	}
	var click float32
	if e.buttonDown {
		click = 1
	}
	return presence.Intersect{hit[0], hit[1], hit[2], click}
}

func (e *engine) sendIntersect(i presence.Intersect) {
	if e.presence == nil {
		return
	}
	err := e.presence.SendIntersect(i)
	switch {
	case err == nil:
	case errors.Is(err, presence.ErrOutboxFull):
		logger().Debug("intersect dropped", zap.Error(err))
	default:
		logger().Warn("intersect not sent", zap.Error(err))
	}
}

func (e *engine) KeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyLeftShift, common.KeyRightShift:
		e.shiftDown = true
	case common.KeyEsc:
		e.Quit()
	}
}

func (e *engine) KeyUp(keyCode uint32) {
	if keyCode == common.KeyLeftShift || keyCode == common.KeyRightShift {
		e.shiftDown = false
	}
}

func (e *engine) Scroll(delta float32) {
	fov := e.renderer.Camera().Fov() - delta*fovStep
	e.renderer.SetFOV(mgl32.Clamp(fov, minFOV, maxFOV))
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.SetResolution(int32(width), int32(height))
}

func (e *engine) Run() {
	if e.window == nil {
		logger().Error("engine has no window")
		return
	}
	w := e.window
	w.SetResizeCallback(e.Resize)
	w.SetScrollCallback(e.Scroll)
	w.SetKeyDownCallback(e.KeyDown)
	w.SetKeyUpCallback(e.KeyUp)
	w.SetMouseDownCallback(e.MouseDown)
	w.SetMouseUpCallback(e.MouseUp)
	w.SetMouseMoveCallback(e.MouseMove)

	start := time.Now()
	closed := false
	shutdown := func() {
		if closed {
			return
		}
		closed = true
		if e.presence != nil {
			if err := e.presence.Close(); err != nil {
				logger().Debug("presence close failed", zap.Error(err))
			}
		}
		// GL objects must be deleted while the context is still current.
		e.renderer.Release()
		if err := w.Close(); err != nil {
			logger().Warn("window close failed", zap.Error(err))
		}
	}
	w.SetUpdateCallback(func() {
		select {
		case <-e.quit:
			shutdown()
			return
		default:
		}
		frameStart := time.Now()
		_ = e.Frame(time.Duration(w.Time() * float64(time.Second)))
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})

	logger().Info("engine running")
	w.ProcessMessages()
	shutdown()
	logger().Info("engine stopped", zap.Duration("uptime", time.Since(start)))
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}
