package physics

import (
	"gonum.org/v1/gonum/mat"
)

// FrameTolerance is how close |normal| must be to the canonical normal for
// BuildFrame to skip the rotation.
const FrameTolerance = 1e-4

// Frame is an orthonormal 3x3 rotation. Column i is the world-frame direction
// of canonical axis i, so Apply maps canonical-plane coordinates into the plane
// whose normal is the third axis.
//
// The zero Frame behaves as the identity. Entries are cached in a fixed array
// so that Apply does not allocate; gonum is used to build and check frames.
type Frame struct {
	r   [3][3]float64
	set bool
}

// IdentityFrame returns the frame that leaves vectors unchanged.
func IdentityFrame() Frame {
	return frameOf(identity())
}

func frameOf(m mat.Matrix) Frame {
	var f Frame
	for i := range 3 {
		for j := range 3 {
			f.r[i][j] = m.At(i, j)
		}
	}
	f.set = true
	return f
}

// BuildFrame derives the rotation that takes the canonical XY plane into the
// plane with the given normal.
//
// When the normal is (anti)parallel to UnitZ within FrameTolerance the identity
// is returned: no rotation is needed and the cross product below would be
// close to zero. Otherwise the axes are
//
//	u3 = normalize(normal)
//	u1 = normalize(u3 x UnitZ)
//	u2 = normalize(u3 x u1)
//
// A zero normal produces an all-zero frame; it is not rejected.
func BuildFrame(normal Vec3) Frame {
	u3 := normal.Normalize()
	if u3.Abs().Sub(UnitZ).Norm() <= FrameTolerance {
		return IdentityFrame()
	}

	u1 := u3.Cross(UnitZ).Normalize()
	u2 := u3.Cross(u1).Normalize()

	return frameOf(mat.NewDense(3, 3, []float64{
		u1.X, u2.X, u3.X,
		u1.Y, u2.Y, u3.Y,
		u1.Z, u2.Z, u3.Z,
	}))
}

// Apply rotates v by the frame.
func (f Frame) Apply(v Vec3) Vec3 {
	if !f.set {
		return v
	}
	r := &f.r
	return Vec3{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Axis returns the world-frame direction of canonical axis i.
func (f Frame) Axis(i int) Vec3 {
	return Vec3{X: f.At(0, i), Y: f.At(1, i), Z: f.At(2, i)}
}

// At returns the element at row i, column j.
func (f Frame) At(i, j int) float64 {
	if !f.set {
		if i == j {
			return 1
		}
		return 0
	}
	return f.r[i][j]
}

// Matrix returns the frame as a new gonum matrix.
func (f Frame) Matrix() *mat.Dense {
	return f.dense()
}

// IsIdentity reports whether f equals the identity within tol.
func (f Frame) IsIdentity(tol float64) bool {
	return mat.EqualApprox(f.dense(), identity(), tol)
}

// IsOrthonormal reports whether f·fᵀ equals the identity within tol.
func (f Frame) IsOrthonormal(tol float64) bool {
	m := f.dense()
	var prod mat.Dense
	prod.Mul(m, m.T())
	return mat.EqualApprox(&prod, identity(), tol)
}

func (f Frame) dense() *mat.Dense {
	if !f.set {
		return identity()
	}
	return mat.NewDense(3, 3, []float64{
		f.r[0][0], f.r[0][1], f.r[0][2],
		f.r[1][0], f.r[1][1], f.r[1][2],
		f.r[2][0], f.r[2][1], f.r[2][2],
	})
}

func identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
