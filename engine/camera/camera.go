// Package camera provides the perspective look-at camera that feeds the projection and
// view uniforms, plus the cursor ray used to pick points on the unit sphere.
package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
}

// Camera holds the perspective settings and the eye of the scene. Matrices are recomputed
// whenever a setter changes an input, so reads are always current.
type Camera interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current look-at matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current perspective matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// SetPosition moves the eye.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// SetTarget changes the look-at target.
	//
	// Parameters:
	//   - t: the new target
	SetTarget(t mgl32.Vec3)

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// CursorRay returns the world-space ray from the eye through a cursor position given
	// in normalized device coordinates.
	//
	// Parameters:
	//   - ndc: the cursor in [-1, 1] on both axes, +Y up
	//
	// Returns:
	//   - origin: the ray origin (the eye)
	//   - dir: the normalized ray direction
	CursorRay(ndc mgl32.Vec2) (origin, dir mgl32.Vec3)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 2) looking at the origin with a 45 degree field of
// view, aspect 1 and clipping planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 2},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      mgl32.DegToRad(45),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// SphericalPosition returns the point at the given radius from the origin with polar angle
// theta and azimuth phi, both in radians.
func SphericalPosition(radius, theta, phi float64) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(radius * math.Sin(theta) * math.Cos(phi)),
		float32(radius * math.Sin(theta) * math.Sin(phi)),
		float32(radius * math.Cos(theta)),
	}
}

// updateMatrices recomputes view and projection. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) CursorRay(ndc mgl32.Vec2) (origin, dir mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv := c.projectionMatrix.Mul4(c.viewMatrix).Inv()
	far := inv.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 1, 1})
	if far[3] != 0 {
		far = far.Mul(1 / far[3])
	}
	return c.position, far.Vec3().Sub(c.position).Normalize()
}

// IntersectUnitSphere returns the nearest point where a ray enters the sphere of radius 1
// centered at the origin. A ray starting inside the sphere hits on the way out.
//
// Parameters:
//   - origin: the ray origin
//   - dir: the normalized ray direction
//
// Returns:
//   - mgl32.Vec3: the hit point
//   - bool: false when the ray misses or the sphere lies behind the origin
func IntersectUnitSphere(origin, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	b := origin.Dot(dir)
	c := origin.Dot(origin) - 1
	disc := b*b - c
	if disc < 0 {
		return mgl32.Vec3{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}
