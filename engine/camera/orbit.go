package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit drives a camera around its target on a sphere. Cursor drags change azimuth and
// elevation; the distance to the target is preserved.
type Orbit struct {
	camera Camera

	radius    float32
	azimuth   float32
	elevation float32

	minElevation float32
	maxElevation float32

	sensitivity float32
}

// NewOrbit creates an orbit that starts from the camera's current eye.
//
// Parameters:
//   - c: the camera to drive
//   - sensitivity: radians per pixel of cursor movement
//
// Returns:
//   - *Orbit: the orbit
func NewOrbit(c Camera, sensitivity float32) *Orbit {
	o := &Orbit{
		camera:       c,
		minElevation: -math.Pi/2 + 0.05,
		maxElevation: math.Pi/2 - 0.05,
		sensitivity:  sensitivity,
	}
	o.Sync()
	return o
}

// Sync re-reads the spherical coordinates from the camera, after the eye was moved by
// something other than the orbit.
func (o *Orbit) Sync() {
	offset := o.camera.Position().Sub(o.camera.Target())
	o.radius = offset.Len()
	if o.radius == 0 {
		return
	}
	o.azimuth = float32(math.Atan2(float64(offset[0]), float64(offset[2])))
	o.elevation = float32(math.Asin(float64(offset[1] / o.radius)))
}

// Drag rotates the eye by a cursor movement in pixels.
func (o *Orbit) Drag(dx, dy float32) {
	o.azimuth -= dx * o.sensitivity
	o.elevation = mgl32.Clamp(o.elevation+dy*o.sensitivity, o.minElevation, o.maxElevation)
	o.apply()
}

// Radius returns the distance from the eye to the target.
func (o *Orbit) Radius() float32 { return o.radius }

// Azimuth returns the horizontal angle around the target's Y axis.
func (o *Orbit) Azimuth() float32 { return o.azimuth }

// Elevation returns the angle above the target's horizontal plane.
func (o *Orbit) Elevation() float32 { return o.elevation }

func (o *Orbit) apply() {
	cosElev := float32(math.Cos(float64(o.elevation)))
	sinElev := float32(math.Sin(float64(o.elevation)))
	cosAzim := float32(math.Cos(float64(o.azimuth)))
	sinAzim := float32(math.Sin(float64(o.azimuth)))

	offset := mgl32.Vec3{
		o.radius * cosElev * sinAzim,
		o.radius * sinElev,
		o.radius * cosElev * cosAzim,
	}
	o.camera.SetPosition(o.camera.Target().Add(offset))
}
