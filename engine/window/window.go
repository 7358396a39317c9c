// Package window opens a GLFW window with an OpenGL 4.1 core context and forwards its
// input events to callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// MouseButton identifies a mouse button in button callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

var mouseButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// Window owns the GL context and delivers input. Every method must be called from the
// goroutine that created the window.
type Window interface {
	// SetUpdateCallback sets the function run once per loop iteration, after events were
	// delivered and before the back buffer is presented.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function receiving the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function receiving vertical wheel movement, positive upwards.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function receiving key presses and repeats.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function receiving key releases.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the function receiving button presses with the cursor
	// position in screen coordinates, top-left origin.
	SetMouseDownCallback(callback func(button MouseButton, x, y float64))

	// SetMouseUpCallback sets the function receiving button releases.
	SetMouseUpCallback(callback func(button MouseButton, x, y float64))

	// SetMouseMoveCallback sets the function receiving cursor movement.
	SetMouseMoveCallback(callback func(x, y float64))

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// Time returns the seconds elapsed since the window was opened.
	Time() float64

	// IsRunning reports whether the window is open and no close was requested.
	IsRunning() bool

	// ProcessMessages runs the event loop until the window is closed.
	ProcessMessages()

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title     string
	width     int
	height    int
	vsync     bool
	samples   int
	resizable bool

	win *glfw.Window

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseDown func(button MouseButton, x, y float64)
	onMouseUp   func(button MouseButton, x, y float64)
	onMouseMove func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow opens a window with a current OpenGL 4.1 core context. The calling goroutine
// is locked to its OS thread and must keep driving the window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if GLFW or the context cannot be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-gl",
		width:     1280,
		height:    720,
		vsync:     true,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Transform feedback and uniform blocks need 4.1 core. macOS only grants core
	// profiles with forward compatibility.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))
	glfw.WindowHint(glfw.Samples, w.samples)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.MakeContextCurrent()
	if w.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	w.win = win
	w.registerCallbacks()

	// The framebuffer differs from the window size on high-DPI displays. Viewports and
	// the resolution uniform are in framebuffer pixels.
	w.width, w.height = win.GetFramebufferSize()

	logging.Named("window").Info("window opened",
		zap.String("title", w.title),
		zap.Int("width", w.width),
		zap.Int("height", w.height),
		zap.Bool("vsync", w.vsync),
	)
	return w, nil
}

func glfwBool(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}

// registerCallbacks forwards GLFW events to the configured callbacks. The callbacks are
// read at event time, so setters may be called after the window opened.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window
func (w *engineWindow) registerCallbacks() {
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch {
		case action == glfw.Release && w.onKeyUp != nil:
			w.onKeyUp(uint32(key))
		case action != glfw.Release && w.onKeyDown != nil:
			w.onKeyDown(uint32(key))
		}
	})

	w.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	w.win.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := mouseButtons[button]
		if !ok {
			return
		}
		x, y := win.GetCursorPos()
		if action == glfw.Press && w.onMouseDown != nil {
			w.onMouseDown(b, x, y)
		} else if action == glfw.Release && w.onMouseUp != nil {
			w.onMouseUp(b, x, y)
		}
	})

	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(x, y)
		}
	})

	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
}

func (w *engineWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *engineWindow) SetScrollCallback(callback func(delta float32))     { w.onScroll = callback }
func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32))   { w.onKeyDown = callback }
func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32))     { w.onKeyUp = callback }
func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64))   { w.onMouseMove = callback }

func (w *engineWindow) SetMouseDownCallback(callback func(button MouseButton, x, y float64)) {
	w.onMouseDown = callback
}

func (w *engineWindow) SetMouseUpCallback(callback func(button MouseButton, x, y float64)) {
	w.onMouseUp = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	if w.win != nil {
		w.win.SetTitle(title)
	}
}

func (w *engineWindow) Time() float64 {
	return glfw.GetTime()
}

func (w *engineWindow) IsRunning() bool {
	return w.win != nil && !w.win.ShouldClose()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		glfw.PollEvents()
		if !w.IsRunning() {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		// The update callback may have closed the window.
		if w.win == nil {
			break
		}
		w.win.SwapBuffers()
	}
}

func (w *engineWindow) Close() error {
	if w.win == nil {
		return fmt.Errorf("window is not open")
	}
	w.win.SetShouldClose(true)
	w.win.Destroy()
	glfw.Terminate()
	w.win = nil
	logging.Named("window").Info("window closed", zap.String("title", w.title))
	return nil
}

func (w *engineWindow) Width() int  { return w.width }
func (w *engineWindow) Height() int { return w.height }
