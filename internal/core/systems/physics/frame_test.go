package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

func TestBuildFrameCanonicalNormal(t *testing.T) {
	for _, n := range []Vec3{V(0, 0, 1), V(0, 0, -1), V(0, 0, 3), V(1e-6, 0, 1)} {
		f := BuildFrame(n)
		assert.True(t, f.IsIdentity(0), "normal %v", n)
	}
}

func TestBuildFrameOrthonormal(t *testing.T) {
	normals := []Vec3{
		V(1, 0, 0),
		V(0, 1, 0),
		V(-1, 0, 0),
		V(1, 1, 1),
		V(0.3, -0.2, 0.9),
		V(5, -2, -7),
	}
	for _, n := range normals {
		f := BuildFrame(n)
		require.True(t, f.IsOrthonormal(tol), "normal %v", n)
		assert.InDelta(t, 0, f.Axis(2).Sub(n.Normalize()).Norm(), tol, "third axis follows the normal")
		assert.InDelta(t, 0, f.Axis(0).Dot(n), tol)
		assert.InDelta(t, 0, f.Axis(1).Dot(n), tol)
	}
}

func TestBuildFrameAxes(t *testing.T) {
	f := BuildFrame(V(1, 0, 0))

	// u3 = x, u1 = x cross z = -y, u2 = x cross -y = -z
	assert.InDelta(t, 0, f.Axis(0).Sub(V(0, -1, 0)).Norm(), tol)
	assert.InDelta(t, 0, f.Axis(1).Sub(V(0, 0, -1)).Norm(), tol)
	assert.InDelta(t, 0, f.Axis(2).Sub(V(1, 0, 0)).Norm(), tol)
	assert.Equal(t, -1.0, f.At(1, 0))
}

func TestFrameApply(t *testing.T) {
	f := BuildFrame(V(1, 0, 0))
	got := f.Apply(V(2, 0, 0))
	assert.InDelta(t, 0, got.Sub(V(0, -2, 0)).Norm(), tol)

	var zero Frame
	assert.Equal(t, V(1, 2, 3), zero.Apply(V(1, 2, 3)))
	assert.True(t, zero.IsIdentity(0))
}

func TestFrameApplyMatchesMatrixProduct(t *testing.T) {
	for _, n := range []Vec3{V(1, 1, 1), V(0.3, -0.2, 0.9), V(5, -2, -7)} {
		f := BuildFrame(n)
		v := V(1.5, -2, 0.25)

		var want mat.VecDense
		want.MulVec(f.Matrix(), mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
		got := f.Apply(v)
		assert.InDelta(t, want.AtVec(0), got.X, tol)
		assert.InDelta(t, want.AtVec(1), got.Y, tol)
		assert.InDelta(t, want.AtVec(2), got.Z, tol)
	}
}

func TestFrameApplyDoesNotAllocate(t *testing.T) {
	f := BuildFrame(V(1, 1, 1))
	v := V(1, 2, 3)
	var out Vec3
	allocs := testing.AllocsPerRun(100, func() { out = f.Apply(v) })
	assert.Zero(t, allocs)
	assert.True(t, IsFinite(out))
}

func TestFrameMatrixIsCopy(t *testing.T) {
	f := IdentityFrame()
	m := f.Matrix()
	m.Set(0, 0, 42)
	assert.Equal(t, 1.0, f.At(0, 0))
}

func TestBuildFrameZeroNormal(t *testing.T) {
	f := BuildFrame(Vec3{})
	assert.False(t, f.IsOrthonormal(tol))
	assert.Equal(t, Vec3{}, f.Apply(V(1, 1, 1)))
}

func TestVectorHelpers(t *testing.T) {
	assert.Equal(t, V(1, 2, 3), FromArray([3]float64{1, 2, 3}))
	assert.Equal(t, [3]float64{4, 5, 6}, ToArray(V(4, 5, 6)))
	assert.True(t, IsFinite(V(1, 2, 3)))
	assert.False(t, IsFinite(V(math.NaN(), 0, 0)))
	assert.False(t, IsFinite(V(0, math.Inf(-1), 0)))
	assert.InDelta(t, 5, Distance(V(0, 0, 0), V(3, 4, 0)), tol)
}
