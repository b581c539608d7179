// Package trajectory implements the static path segments an autopilot follows.
//
// Every segment is indexed by a scalar progress value gamma rather than by time
// or arc length. A control loop queries the segment at each tick for the
// desired position and its derivatives with respect to gamma, the heading, and
// how fast gamma has to advance to keep the vehicle at its commanded speed.
//
// Segments are immutable once built and safe for concurrent evaluation.
package trajectory

import (
	"math"

	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

// MinProgressRate is returned by ProgressRate when the physical speed cannot be
// converted into a finite progress rate, e.g. for a circle of zero radius.
const MinProgressRate = 1e-8

// ParametricTrajectory is the contract every segment shape satisfies.
type ParametricTrajectory interface {
	// Bounds is the progress interval the segment is defined over.
	Bounds() Bounds

	// Position is the desired position at gamma.
	Position(gamma float64) physics.Vec3
	// Velocity is the first derivative of Position with respect to gamma.
	Velocity(gamma float64) physics.Vec3
	// Acceleration is the second derivative of Position with respect to gamma.
	Acceleration(gamma float64) physics.Vec3
	// Jerk is the third derivative of Position with respect to gamma.
	Jerk(gamma float64) physics.Vec3

	// Yaw is the desired heading in radians.
	Yaw(gamma float64) float64
	// YawRate is the derivative of Yaw with respect to gamma.
	YawRate(gamma float64) float64

	// VehicleSpeed is the physical speed the vehicle should hold at gamma.
	VehicleSpeed(gamma float64) float64
	// ProgressRate is the rate of change of gamma that sustains VehicleSpeed.
	// It is always finite.
	ProgressRate(gamma float64) float64
}

// Bounds is a closed progress interval.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// UnitBounds is the [0, 1] interval used by the built-in shapes.
var UnitBounds = Bounds{Min: 0, Max: 1}

// Contains reports whether gamma lies within b.
func (b Bounds) Contains(gamma float64) bool { return gamma >= b.Min && gamma <= b.Max }

// Clamp limits gamma to b.
func (b Bounds) Clamp(gamma float64) float64 { return math.Max(b.Min, math.Min(b.Max, gamma)) }

// Sample is every evaluator of a segment taken at one gamma.
type Sample struct {
	Gamma        float64      `json:"gamma"`
	Position     physics.Vec3 `json:"position"`
	Velocity     physics.Vec3 `json:"velocity"`
	Acceleration physics.Vec3 `json:"acceleration"`
	Jerk         physics.Vec3 `json:"jerk"`
	Yaw          float64      `json:"yaw"`
	YawRate      float64      `json:"yaw_rate"`
	VehicleSpeed float64      `json:"vehicle_speed"`
	ProgressRate float64      `json:"progress_rate"`
}

// Evaluate samples t at gamma.
func Evaluate(t ParametricTrajectory, gamma float64) Sample {
	return Sample{
		Gamma:        gamma,
		Position:     t.Position(gamma),
		Velocity:     t.Velocity(gamma),
		Acceleration: t.Acceleration(gamma),
		Jerk:         t.Jerk(gamma),
		Yaw:          t.Yaw(gamma),
		YawRate:      t.YawRate(gamma),
		VehicleSpeed: t.VehicleSpeed(gamma),
		ProgressRate: t.ProgressRate(gamma),
	}
}

// progressRate converts a physical speed into a progress rate given the norm of
// the path derivative at that point.
func progressRate(speed, derivativeNorm float64) float64 {
	vd := speed / derivativeNorm
	if math.IsNaN(vd) || math.IsInf(vd, 0) {
		return MinProgressRate
	}
	return vd
}
