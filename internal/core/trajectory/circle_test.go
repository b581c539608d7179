package trajectory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

const eps = 1e-9

var (
	testNormals = []physics.Vec3{
		physics.V(0, 0, 1),
		physics.V(0, 0, -1),
		physics.V(1, 0, 0),
		physics.V(0, 1, 0),
		physics.V(1, 1, 1),
		physics.V(-0.4, 0.7, 0.2),
	}
	testGammas = []float64{-1.3, -0.5, 0, 0.1, 0.25, 0.33, 0.5, 0.75, 0.999, 1, 2.7}
)

func assertVecNear(t *testing.T, want, got physics.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, 0, got.Sub(want).Norm(), delta, msgAndArgs...)
}

func TestCircleCanonicalPlane(t *testing.T) {
	c := NewCircle(physics.V(0, 0, 0), physics.V(0, 0, 1), 5, 2)

	assertVecNear(t, physics.V(5, 0, 0), c.Position(0), eps)
	assertVecNear(t, physics.V(0, 5, 0), c.Position(0.25), eps)
	assertVecNear(t, physics.V(-5, 0, 0), c.Position(0.5), eps)

	v := c.Velocity(0)
	assertVecNear(t, physics.V(0, 10*math.Pi, 0), v, eps)
	assert.InDelta(t, 31.4159, v.Norm(), 1e-4)

	assert.InDelta(t, 2/(10*math.Pi), c.ProgressRate(0.3), eps)
	assert.Equal(t, 2.0, c.VehicleSpeed(0.7))
	assert.Equal(t, UnitBounds, c.Bounds())
}

func TestCircleZeroRadiusProgressRate(t *testing.T) {
	for _, speed := range []float64{2, 0, -3} {
		c := NewCircle(physics.V(1, 2, 3), physics.V(0, 0, 1), 0, speed)
		for _, g := range testGammas {
			assert.Equal(t, MinProgressRate, c.ProgressRate(g))
			assertVecNear(t, physics.V(1, 2, 3), c.Position(g), 0)
		}
	}
}

func TestCircleTiltedPlane(t *testing.T) {
	center := physics.V(1, 2, 3)
	c := NewCircle(center, physics.V(1, 0, 0), 4, 1)

	require.True(t, c.Frame().IsOrthonormal(eps))

	p := c.Position(0)
	assert.InDelta(t, 4, physics.Distance(center, p), eps)
	assert.InDelta(t, 0, p.Sub(center).X, eps)

	for _, g := range testGammas {
		assert.InDelta(t, 0, c.Position(g).Sub(center).X, eps, "gamma %v leaves the plane", g)
	}
}

func TestCircleTiltedPlaneStartPoint(t *testing.T) {
	// The canonical start (r, 0, 0) maps onto r·u1 with u1 = normal x Z = -Y.
	c := NewCircle(physics.V(1, 2, 3), physics.V(1, 0, 0), 2, 1)
	assert.InDelta(t, 0, c.Position(0).Sub(physics.V(1, 0, 3)).Norm(), eps)
	assert.InDelta(t, 0, c.Position(0.25).Sub(physics.V(1, 2, 1)).Norm(), eps)
}

func TestCircleCanonicalNormalUsesIdentity(t *testing.T) {
	for _, n := range []physics.Vec3{physics.V(0, 0, 1), physics.V(0, 0, -1)} {
		c := NewCircle(physics.Vec3{}, n, 1, 1)
		assert.True(t, c.Frame().IsIdentity(0))
	}
}

func TestCircleGeometry(t *testing.T) {
	center := physics.V(-3, 0.5, 10)
	const radius = 2.5

	for _, n := range testNormals {
		c := NewCircle(center, n, radius, 1.5)
		require.True(t, c.Frame().IsOrthonormal(eps), "normal %v", n)

		for _, g := range testGammas {
			p := c.Position(g)
			r := p.Sub(center)

			assert.InDelta(t, radius, r.Norm(), eps, "radius at %v", g)
			assert.InDelta(t, 0, r.Dot(n.Normalize()), eps, "plane at %v", g)
			assertVecNear(t, p, c.Position(g+1), 1e-8, "periodicity at %v", g)

			v := c.Velocity(g)
			assert.InDelta(t, 0, v.Dot(r), 1e-8, "tangent at %v", g)
			assert.InDelta(t, 2*math.Pi*radius, v.Norm(), 1e-8)

			a := c.Acceleration(g)
			assertVecNear(t, r.Mul(-4*math.Pi*math.Pi), a, 1e-8, "centripetal at %v", g)

			j := c.Jerk(g)
			assert.InDelta(t, 0, j.Dot(a), 1e-6, "jerk orthogonal at %v", g)
			assertVecNear(t, v.Mul(-4*math.Pi*math.Pi), j, 1e-6)

			assert.Equal(t, 0.0, c.YawRate(g))
			assert.False(t, math.IsInf(c.ProgressRate(g), 0) || math.IsNaN(c.ProgressRate(g)))
		}
	}
}

func TestCircleYawPointsToCenter(t *testing.T) {
	c := NewCircle(physics.V(0, 0, 0), physics.V(0, 0, 1), 5, 2)

	assert.InDelta(t, math.Pi, c.Yaw(0), eps)
	assert.InDelta(t, -math.Pi/2, c.Yaw(0.25), eps)
	assert.InDelta(t, math.Pi/2, c.Yaw(0.75), eps)

	for _, g := range testGammas {
		yaw := c.Yaw(g)
		assert.True(t, yaw > -math.Pi-eps && yaw <= math.Pi)
	}
}

func TestCircleNegativeRadiusMirrors(t *testing.T) {
	c := NewCircle(physics.Vec3{}, physics.V(0, 0, 1), -2, 1)
	assertVecNear(t, physics.V(-2, 0, 0), c.Position(0), eps)
	assert.InDelta(t, 1/(4*math.Pi), c.ProgressRate(0), eps)
}

func TestCircleNegativeSpeed(t *testing.T) {
	c := NewCircle(physics.Vec3{}, physics.V(0, 0, 1), 1, -2)
	assert.Equal(t, -2.0, c.VehicleSpeed(0))
	assert.InDelta(t, -1/math.Pi, c.ProgressRate(0), eps)
}

func TestCircleAccessors(t *testing.T) {
	c := NewCircle(physics.V(1, 2, 3), physics.V(0, 2, 0), 7, 3)
	assert.Equal(t, physics.V(1, 2, 3), c.Center())
	assertVecNear(t, physics.V(0, 1, 0), c.Normal(), eps)
	assert.Equal(t, 7.0, c.Radius())
	assert.Equal(t, 3.0, c.Speed())
}

func TestCircleConcurrentEvaluation(t *testing.T) {
	c := NewCircle(physics.V(1, 1, 1), physics.V(1, 2, 3), 3, 2)
	want := Evaluate(c, 0.42)

	done := make(chan Sample, 16)
	for i := 0; i < cap(done); i++ {
		go func() { done <- Evaluate(c, 0.42) }()
	}
	for i := 0; i < cap(done); i++ {
		assert.Equal(t, want, <-done)
	}
}
