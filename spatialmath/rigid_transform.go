// Package spatialmath defines the rigid transforms and plane equations used to express
// tracked planes relative to a camera.
package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// RigidTransform is a 4x4 homogeneous transform made only of a rotation and a translation.
// The upper-left 3x3 block is expected to be orthonormal; nothing in this package enforces it.
type RigidTransform struct {
	mat mgl32.Mat4
}

// NewIdentityTransform returns the transform which maps every point to itself.
func NewIdentityTransform() RigidTransform {
	return RigidTransform{mgl32.Ident4()}
}

// NewRigidTransform builds a transform from a rotation block and a translation.
func NewRigidTransform(rotation mgl32.Mat3, translation mgl32.Vec3) RigidTransform {
	return RigidTransform{mgl32.Mat4FromCols(
		rotation.Col(0).Vec4(0),
		rotation.Col(1).Vec4(0),
		rotation.Col(2).Vec4(0),
		translation.Vec4(1),
	)}
}

// NewRigidTransformFromMat4 wraps an existing homogeneous matrix. The bottom row is reset to
// (0, 0, 0, 1) so that only the rotation and translation parts are kept.
func NewRigidTransformFromMat4(m mgl32.Mat4) RigidTransform {
	m.SetRow(3, mgl32.Vec4{0, 0, 0, 1})
	return RigidTransform{m}
}

// NewTranslation returns a transform with no rotation that moves points by (x, y, z).
func NewTranslation(x, y, z float32) RigidTransform {
	return RigidTransform{mgl32.Translate3D(x, y, z)}
}

// NewRigidTransformFromAxisAngle returns the transform rotating by theta radians about axis
// and then translating by translation. A zero axis yields no rotation.
func NewRigidTransformFromAxisAngle(axis r3.Vector, theta float64, translation r3.Vector) RigidTransform {
	q := quat.Number{Real: 1}
	if norm := axis.Norm(); norm != 0 {
		axis = axis.Mul(1 / norm)
		sinA := math.Sin(theta / 2)
		q = quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * sinA, Jmag: axis.Y * sinA, Kmag: axis.Z * sinA}
	}
	return NewRigidTransform(quatToMat3(q), r3ToVec3(translation))
}

// quatToMat3 converts a unit quaternion to its rotation matrix.
// See: https://www.euclideanspace.com/maths/geometry/rotations/conversions/quaternionToMatrix/index.htm
func quatToMat3(q quat.Number) mgl32.Mat3 {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	// mgl32 matrices are column-major
	return mgl32.Mat3{
		float32(1 - 2*(y*y+z*z)), float32(2 * (x*y + z*w)), float32(2 * (x*z - y*w)),
		float32(2 * (x*y - z*w)), float32(1 - 2*(x*x+z*z)), float32(2 * (y*z + x*w)),
		float32(2 * (x*z + y*w)), float32(2 * (y*z - x*w)), float32(1 - 2*(x*x+y*y)),
	}
}

// Matrix returns the underlying homogeneous matrix.
func (rt RigidTransform) Matrix() mgl32.Mat4 {
	return rt.mat
}

// Rotation returns the upper-left 3x3 rotation block.
func (rt RigidTransform) Rotation() mgl32.Mat3 {
	return rt.mat.Mat3()
}

// Translation returns the translation column, which is also the position of the local origin.
func (rt RigidTransform) Translation() mgl32.Vec3 {
	return rt.mat.Col(3).Vec3()
}

// Up returns the local Y axis (second rotation column). For a plane anchor this is the plane
// normal in the parent frame.
func (rt RigidTransform) Up() mgl32.Vec3 {
	return rt.mat.Col(1).Vec3()
}

// Column returns column i of the matrix.
func (rt RigidTransform) Column(i int) mgl32.Vec4 {
	return rt.mat.Col(i)
}

// Inverse returns the inverse transform. For a rigid transform [R|t] this is [Rᵀ|-Rᵀt],
// so no general matrix inversion is performed.
func (rt RigidTransform) Inverse() RigidTransform {
	rotT := rt.Rotation().Transpose()
	return NewRigidTransform(rotT, rotT.Mul3x1(rt.Translation()).Mul(-1))
}

// Compose returns the transform applying other first and then rt.
func (rt RigidTransform) Compose(other RigidTransform) RigidTransform {
	return RigidTransform{rt.mat.Mul4(other.mat)}
}

// TransformPoint applies the full transform (rotation then translation) to a point.
func (rt RigidTransform) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return rt.mat.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies only the rotation to a direction vector. Directions such as
// normals must never pick up the translation.
func (rt RigidTransform) TransformDirection(v mgl32.Vec3) mgl32.Vec3 {
	return rt.Rotation().Mul3x1(v)
}

// IsRigid reports whether the rotation block is orthonormal with a positive determinant and
// the bottom row is (0, 0, 0, 1), all within epsilon.
func (rt RigidTransform) IsRigid(epsilon float32) bool {
	bottom := rt.mat.Row(3)
	if !withinEpsilon(bottom[:], []float32{0, 0, 0, 1}, epsilon) {
		return false
	}
	rot := rt.Rotation()
	gram := rot.Transpose().Mul3(rot)
	ident := mgl32.Ident3()
	if !withinEpsilon(gram[:], ident[:], epsilon) {
		return false
	}
	return rot.Det() > 0
}

// ApproxEqual reports whether every matrix entry is within epsilon of other's.
func (rt RigidTransform) ApproxEqual(other RigidTransform, epsilon float32) bool {
	return withinEpsilon(rt.mat[:], other.mat[:], epsilon)
}

// withinEpsilon compares absolute differences. mgl32's ApproxEqualThreshold switches to a
// squared threshold next to zero, which is too strict for float32 rotations.
func withinEpsilon(a, b []float32, epsilon float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > float64(epsilon) {
			return false
		}
	}
	return true
}

// Slice returns the 16 matrix entries in column-major order.
func (rt RigidTransform) Slice() []float32 {
	out := make([]float32, len(rt.mat))
	copy(out, rt.mat[:])
	return out
}

func r3ToVec3(v r3.Vector) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func vec3ToR3(v mgl32.Vec3) r3.Vector {
	return r3.Vector{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}
