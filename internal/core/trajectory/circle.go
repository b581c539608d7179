package trajectory

import (
	"math"

	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

var _ ParametricTrajectory = (*Circle)(nil)

// Circle is a full circle traversed once as gamma goes from 0 to 1.
//
// The circle is parameterized in the canonical XY plane, rotated into the
// plane given by the normal, and then translated to the center. Radius and
// speed are not validated: a zero radius collapses the circle onto its center
// and a negative radius mirrors it. The sign of speed selects the direction of
// travel.
type Circle struct {
	center physics.Vec3
	normal physics.Vec3
	radius float64
	speed  float64
	frame  physics.Frame
}

// NewCircle builds a circle. The normal does not need to be unit length.
func NewCircle(center, normal physics.Vec3, radius, speed float64) *Circle {
	return &Circle{
		center: center,
		normal: normal.Normalize(),
		radius: radius,
		speed:  speed,
		frame:  physics.BuildFrame(normal),
	}
}

func (c *Circle) Center() physics.Vec3 { return c.center }
func (c *Circle) Normal() physics.Vec3 { return c.normal }
func (c *Circle) Radius() float64      { return c.radius }
func (c *Circle) Speed() float64       { return c.speed }
func (c *Circle) Frame() physics.Frame { return c.frame }

func (c *Circle) Bounds() Bounds { return UnitBounds }

func (c *Circle) Position(gamma float64) physics.Vec3 {
	sin, cos := math.Sincos(2 * math.Pi * gamma)
	// Offset after rotating, otherwise the center would be rotated too.
	return c.frame.Apply(physics.V(c.radius*cos, c.radius*sin, 0)).Add(c.center)
}

func (c *Circle) Velocity(gamma float64) physics.Vec3 {
	sin, cos := math.Sincos(2 * math.Pi * gamma)
	k := 2 * math.Pi * c.radius
	return c.frame.Apply(physics.V(-k*sin, k*cos, 0))
}

func (c *Circle) Acceleration(gamma float64) physics.Vec3 {
	sin, cos := math.Sincos(2 * math.Pi * gamma)
	k := math.Pow(2*math.Pi, 2) * c.radius
	return c.frame.Apply(physics.V(-k*cos, -k*sin, 0))
}

func (c *Circle) Jerk(gamma float64) physics.Vec3 {
	sin, cos := math.Sincos(2 * math.Pi * gamma)
	k := math.Pow(2*math.Pi, 3) * c.radius
	return c.frame.Apply(physics.V(k*sin, -k*cos, 0))
}

// Yaw points from the current position towards the center.
func (c *Circle) Yaw(gamma float64) float64 {
	toCenter := c.center.Sub(c.Position(gamma))
	return math.Atan2(toCenter.Y, toCenter.X)
}

// YawRate is reported as zero. The heading does turn with gamma, but followers
// of this segment treat the rate as negligible.
func (c *Circle) YawRate(float64) float64 { return 0 }

func (c *Circle) VehicleSpeed(float64) float64 { return c.speed }

func (c *Circle) ProgressRate(gamma float64) float64 {
	return progressRate(c.speed, c.Velocity(gamma).Norm())
}
