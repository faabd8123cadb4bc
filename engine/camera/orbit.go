package camera

import (
	"github.com/Carmen-Shannon/skygen/common"
	"github.com/chewxy/math32"
)

// Orbit places a camera on a sphere around a target using spherical coordinates. Radius and
// elevation are clamped to their bounds.
type Orbit struct {
	target common.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32
}

// OrbitBuilderOption is a functional option used to configure an Orbit during construction.
type OrbitBuilderOption func(*Orbit)

// NewOrbit creates an Orbit around the origin at radius 10 and a 30 degree elevation.
//
// Parameters:
//   - opts: a variadic list of OrbitBuilderOption functions to configure the orbit
//
// Returns:
//   - *Orbit: the orbit
func NewOrbit(opts ...OrbitBuilderOption) *Orbit {
	o := &Orbit{
		radius:       10,
		elevation:    math32.Pi / 6,
		minRadius:    1,
		maxRadius:    1000,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.clamp()
	return o
}

// WithOrbitTarget sets the pivot point.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - OrbitBuilderOption: a function that sets the pivot
func WithOrbitTarget(x, y, z float32) OrbitBuilderOption {
	return func(o *Orbit) {
		o.target = common.Vec3{x, y, z}
	}
}

// WithRadius sets the distance from the pivot.
//
// Parameters:
//   - radius: the distance
//
// Returns:
//   - OrbitBuilderOption: a function that sets the radius
func WithRadius(radius float32) OrbitBuilderOption {
	return func(o *Orbit) {
		o.radius = radius
	}
}

// WithRadiusBounds sets the radius limits.
//
// Parameters:
//   - min, max: the radius range
//
// Returns:
//   - OrbitBuilderOption: a function that sets the radius bounds
func WithRadiusBounds(min, max float32) OrbitBuilderOption {
	return func(o *Orbit) {
		o.minRadius, o.maxRadius = min, max
	}
}

// WithAngles sets the azimuth around +Y and the elevation above the horizontal plane, in radians.
//
// Parameters:
//   - azimuth: horizontal angle
//   - elevation: vertical angle
//
// Returns:
//   - OrbitBuilderOption: a function that sets both angles
func WithAngles(azimuth, elevation float32) OrbitBuilderOption {
	return func(o *Orbit) {
		o.azimuth, o.elevation = azimuth, elevation
	}
}

// Rotate adds to the azimuth and elevation, in radians.
func (o *Orbit) Rotate(dAzimuth, dElevation float32) {
	o.azimuth += dAzimuth
	o.elevation += dElevation
	o.clamp()
}

// Zoom moves toward the pivot by delta. Negative values move away.
func (o *Orbit) Zoom(delta float32) {
	o.radius -= delta
	o.clamp()
}

// Radius returns the distance from the pivot.
func (o *Orbit) Radius() float32 {
	return o.radius
}

// Position returns the world-space point on the sphere.
func (o *Orbit) Position() common.Vec3 {
	sinElev, cosElev := math32.Sincos(o.elevation)
	sinAzim, cosAzim := math32.Sincos(o.azimuth)
	return o.target.Add(common.Vec3{
		o.radius * cosElev * sinAzim,
		o.radius * sinElev,
		o.radius * cosElev * cosAzim,
	})
}

// Apply points c from the orbit position at the pivot.
func (o *Orbit) Apply(c *Camera) {
	c.Position = o.Position()
	c.Target = o.target
	c.Mode = ModeLookAt
}

func (o *Orbit) clamp() {
	o.radius = max(o.minRadius, min(o.maxRadius, o.radius))
	o.elevation = max(o.minElevation, min(o.maxElevation, o.elevation))
}
