// Package physics holds the vector and rotation-frame math shared by the
// trajectory primitives. Vectors are golang/geo r3 values; rotation frames are
// 3x3 gonum matrices built once and then only read.
package physics

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vec3 is a 3D vector in the world frame.
type Vec3 = r3.Vector

var (
	// UnitX is the world x axis.
	UnitX = Vec3{X: 1}
	// UnitZ is the canonical plane normal.
	UnitZ = Vec3{Z: 1}
)

// V is shorthand for building a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// FromArray converts a wire-friendly [x, y, z] triple.
func FromArray(a [3]float64) Vec3 { return Vec3{X: a[0], Y: a[1], Z: a[2]} }

// ToArray is the inverse of FromArray.
func ToArray(v Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// IsFinite reports whether every component is neither NaN nor infinite.
func IsFinite(v Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Distance computes the Euclidean distance between two points.
func Distance(a, b Vec3) float64 { return b.Sub(a).Norm() }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
