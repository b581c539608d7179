package trajectory

import (
	"math"

	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

var _ ParametricTrajectory = (*Line)(nil)

// Line is a straight segment from start (gamma 0) to end (gamma 1).
type Line struct {
	start physics.Vec3
	end   physics.Vec3
	speed float64
}

func NewLine(start, end physics.Vec3, speed float64) *Line {
	return &Line{start: start, end: end, speed: speed}
}

func (l *Line) Start() physics.Vec3 { return l.start }
func (l *Line) End() physics.Vec3   { return l.end }
func (l *Line) Speed() float64      { return l.speed }

func (l *Line) Bounds() Bounds { return UnitBounds }

func (l *Line) Position(gamma float64) physics.Vec3 {
	return l.start.Add(l.direction().Mul(gamma))
}

func (l *Line) Velocity(float64) physics.Vec3     { return l.direction() }
func (l *Line) Acceleration(float64) physics.Vec3 { return physics.Vec3{} }
func (l *Line) Jerk(float64) physics.Vec3         { return physics.Vec3{} }

// Yaw faces along the segment.
func (l *Line) Yaw(float64) float64 {
	d := l.direction()
	return math.Atan2(d.Y, d.X)
}

func (l *Line) YawRate(float64) float64      { return 0 }
func (l *Line) VehicleSpeed(float64) float64 { return l.speed }

func (l *Line) ProgressRate(gamma float64) float64 {
	return progressRate(l.speed, l.Velocity(gamma).Norm())
}

func (l *Line) direction() physics.Vec3 { return l.end.Sub(l.start) }
