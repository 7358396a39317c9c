package common

// Key codes delivered by the window's key callbacks. They match the GLFW key codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyEsc        = 256
	KeyLeftShift  = 340
	KeyRightShift = 344
)
