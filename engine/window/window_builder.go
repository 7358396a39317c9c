package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size in screen coordinates. Non-positive values keep
// the default.
//
// Parameters:
//   - width: initial width
//   - height: initial height
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithVSync sets whether buffer swaps wait for the vertical blank.
//
// Parameters:
//   - vsync: true to cap the frame rate to the display refresh rate
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithVSync(vsync bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.vsync = vsync
	}
}

// WithSamples requests a multisampled default framebuffer. Zero disables multisampling.
func WithSamples(samples int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.samples = samples
	}
}

// WithResizable sets whether the user can resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}
