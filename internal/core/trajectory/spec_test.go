package trajectory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/autopilot/internal/core/systems/physics"
)

func TestSpecBuild(t *testing.T) {
	traj, err := CircleSpec(physics.V(1, 2, 3), physics.V(0, 0, 1), 5, 2).Build()
	require.NoError(t, err)
	c, ok := traj.(*Circle)
	require.True(t, ok)
	assert.Equal(t, 5.0, c.Radius())
	assert.Equal(t, physics.V(1, 2, 3), c.Center())

	traj, err = LineSpec(physics.V(0, 0, 0), physics.V(1, 0, 0), 1).Build()
	require.NoError(t, err)
	_, ok = traj.(*Line)
	assert.True(t, ok)

	_, err = Spec{Kind: "lemniscate"}.Build()
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSpecFingerprint(t *testing.T) {
	a := CircleSpec(physics.V(1, 2, 3), physics.V(0, 0, 1), 5, 2)
	b := CircleSpec(physics.V(1, 2, 3), physics.V(0, 0, 1), 5, 2)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Radius = 5.0001
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	// Fields a circle does not read do not change its identity.
	b = a
	b.Start = [3]float64{9, 9, 9}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	l := LineSpec(physics.V(1, 2, 3), physics.V(0, 0, 1), 2)
	assert.NotEqual(t, a.Fingerprint(), l.Fingerprint())
}

func TestSpecCheckFinite(t *testing.T) {
	assert.NoError(t, CircleSpec(physics.Vec3{}, physics.V(0, 0, 1), 0, 0).CheckFinite())

	s := CircleSpec(physics.Vec3{}, physics.V(0, 0, 1), math.Inf(1), 1)
	assert.ErrorIs(t, s.CheckFinite(), ErrNonFinite)

	s = LineSpec(physics.Vec3{}, physics.V(math.NaN(), 0, 0), 1)
	assert.ErrorIs(t, s.CheckFinite(), ErrNonFinite)
}
