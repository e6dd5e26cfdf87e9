// Package orbit implements damped orbit camera controls: the camera circles
// a target on a sphere and every input is an impulse that springs back to
// rest.
package orbit

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

const (
	// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
	springFrequency = 4.0
	springDamping   = 1.0
)

// Axis tracks position and velocity for one degree of freedom. Velocity
// decays toward 0 through a harmonica spring.
type Axis struct {
	Position float64
	Velocity float64

	spring harmonica.Spring
	accel  float64 // spring velocity of Velocity itself
}

// NewAxis creates a resting axis at position for a loop running at fps.
func NewAxis(fps int, position float64) Axis {
	return Axis{
		Position: position,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
	}
}

// Update applies velocity to position, then decays velocity.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// Stop zeroes the velocity, leaving the position as is.
func (a *Axis) Stop() {
	a.Velocity, a.accel = 0, 0
}

// Limits bounds the orbit. Polar angles are measured from +Y, in radians.
type Limits struct {
	MinDistance, MaxDistance float64
	MinPolar, MaxPolar       float64
}

// Controls orbits a camera around Target.
type Controls struct {
	Target math3d.Vec3
	Limits Limits

	Azimuth  Axis // about +Y, 0 looks from +Z
	Polar    Axis
	Distance Axis

	panRight, panUp Axis

	fps  int
	home struct {
		target, position math3d.Vec3
	}
}

// New creates controls that start with the camera at position looking at
// target. The start pose is clamped to limits and kept for Reset.
func New(fps int, position, target math3d.Vec3, limits Limits) *Controls {
	c := &Controls{Limits: limits, fps: max(fps, 1)}
	c.home.target, c.home.position = target, position
	c.Reset()
	return c
}

// Reset returns to the start pose with no motion.
func (c *Controls) Reset() {
	c.Target = c.home.target
	offset := c.home.position.Sub(c.home.target)
	dist := offset.Len()

	var polar, azimuth float64
	if dist > 0 {
		polar = math.Acos(min(max(offset.Y/dist, -1), 1))
		azimuth = math.Atan2(offset.X, offset.Z)
	}

	c.Azimuth = NewAxis(c.fps, azimuth)
	c.Polar = NewAxis(c.fps, polar)
	c.Distance = NewAxis(c.fps, dist)
	c.panRight = NewAxis(c.fps, 0)
	c.panUp = NewAxis(c.fps, 0)
	c.clamp()
}

// Rotate adds angular velocity, in radians per frame.
func (c *Controls) Rotate(azimuth, polar float64) {
	c.Azimuth.Velocity += azimuth
	c.Polar.Velocity += polar
}

// Zoom adds radial velocity. Positive values move the camera closer.
func (c *Controls) Zoom(delta float64) {
	c.Distance.Velocity -= delta
}

// Pan adds velocity to the target in the view plane, in world units per
// frame scaled by the current distance.
func (c *Controls) Pan(right, up float64) {
	c.panRight.Velocity += right
	c.panUp.Velocity += up
}

// Fit aims at center and sets the distance at which a sphere of radius just
// fills a vertical field of view of fov radians. The viewing angle is kept
// and all motion stops.
func (c *Controls) Fit(center math3d.Vec3, radius, fov float64) {
	if radius <= 0 || fov <= 0 || fov >= math.Pi {
		return
	}
	c.Target = center
	c.Distance.Position = radius / math.Sin(fov/2)
	for _, a := range []*Axis{&c.Azimuth, &c.Polar, &c.Distance, &c.panRight, &c.panUp} {
		a.Stop()
	}
	c.clamp()
}

// Update advances every axis by one frame and enforces the limits.
func (c *Controls) Update() {
	right, up := c.basis()
	scale := c.Distance.Position
	c.Target = c.Target.
		Add(right.Scale(c.panRight.Velocity * scale)).
		Add(up.Scale(c.panUp.Velocity * scale))
	c.panRight.Update()
	c.panUp.Update()

	c.Azimuth.Update()
	c.Polar.Update()
	c.Distance.Update()
	c.clamp()
}

// Settled reports whether all motion has decayed below eps.
func (c *Controls) Settled(eps float64) bool {
	for _, a := range []*Axis{&c.Azimuth, &c.Polar, &c.Distance, &c.panRight, &c.panUp} {
		if math.Abs(a.Velocity) > eps {
			return false
		}
	}
	return true
}

// Position returns the camera position on the orbit sphere.
func (c *Controls) Position() math3d.Vec3 {
	return c.Target.Add(c.direction().Scale(c.Distance.Position))
}

// Apply moves cam to the orbit position, looking at the target.
func (c *Controls) Apply(cam *render.Camera) {
	cam.SetPosition(c.Position())
	cam.LookAt(c.Target)
}

// direction is the unit vector from the target to the camera.
func (c *Controls) direction() math3d.Vec3 {
	sinP, cosP := math.Sincos(c.Polar.Position)
	sinA, cosA := math.Sincos(c.Azimuth.Position)
	return math3d.V3(sinP*sinA, cosP, sinP*cosA)
}

// basis returns the screen right and up vectors.
func (c *Controls) basis() (right, up math3d.Vec3) {
	sinA, cosA := math.Sincos(c.Azimuth.Position)
	right = math3d.V3(cosA, 0, -sinA)
	forward := c.direction().Scale(-1)
	up = right.Cross(forward).Normalize()
	return right, up
}

// minDistance keeps the camera off the target when no MinDistance is set.
const minDistance = 1e-3

func (c *Controls) clamp() {
	l := c.Limits
	maxDistance := math.Inf(1)
	if l.MaxDistance > 0 {
		maxDistance = l.MaxDistance
	}
	clampAxis(&c.Distance, max(l.MinDistance, minDistance), maxDistance)

	maxPolar := math.Pi
	if l.MaxPolar > 0 {
		maxPolar = l.MaxPolar
	}
	clampAxis(&c.Polar, max(l.MinPolar, 0), maxPolar)
}

func clampAxis(a *Axis, lo, hi float64) {
	if a.Position < lo {
		a.Position = lo
		a.Stop()
	} else if a.Position > hi {
		a.Position = hi
		a.Stop()
	}
}
