package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// DegenerateNormalEpsilon is the smallest rotated normal length SolvePlaneEquation will normalize.
const DegenerateNormalEpsilon = 1e-6

// ErrDegenerateNormal is returned when the plane normal collapses to (nearly) zero length,
// which only happens for transforms that are not rigid.
var ErrDegenerateNormal = errors.New("plane normal has near-zero length")

// PlaneEquation holds the coefficients of a·x + b·y + c·z + d = 0. (A, B, C) is a unit normal
// and D is the signed offset of the plane from the origin of the frame it is expressed in.
type PlaneEquation struct {
	A, B, C, D float32
}

// SolvePlaneEquation expresses the plane described by planeTransform in the frame of the camera
// described by cameraTransform. Both transforms map local coordinates to world coordinates.
// The plane normal is the local up axis of planeTransform and its origin is the translation.
func SolvePlaneEquation(planeTransform, cameraTransform RigidTransform) (PlaneEquation, error) {
	normalWorld := planeTransform.Up()
	originWorld := planeTransform.Translation()

	worldToCamera := cameraTransform.Inverse()
	originCamera := worldToCamera.TransformPoint(originWorld)

	normalCamera := worldToCamera.TransformDirection(normalWorld)
	length := normalCamera.Len()
	if length < DegenerateNormalEpsilon {
		return PlaneEquation{}, ErrDegenerateNormal
	}
	normalCamera = normalCamera.Mul(1 / length)

	return PlaneEquation{
		A: normalCamera[0],
		B: normalCamera[1],
		C: normalCamera[2],
		D: -normalCamera.Dot(originCamera),
	}, nil
}

// NewPlaneEquation builds an equation from a normal and any point on the plane. The normal is
// normalized; a zero normal returns ErrDegenerateNormal.
func NewPlaneEquation(normal, point mgl32.Vec3) (PlaneEquation, error) {
	length := normal.Len()
	if length < DegenerateNormalEpsilon {
		return PlaneEquation{}, ErrDegenerateNormal
	}
	normal = normal.Mul(1 / length)
	return PlaneEquation{normal[0], normal[1], normal[2], -normal.Dot(point)}, nil
}

// Normal returns (a, b, c).
func (pe PlaneEquation) Normal() r3.Vector {
	return vec3ToR3(mgl32.Vec3{pe.A, pe.B, pe.C})
}

// Coefficients returns a, b, c and d in order.
func (pe PlaneEquation) Coefficients() [4]float32 {
	return [4]float32{pe.A, pe.B, pe.C, pe.D}
}

// Evaluate returns a·x + b·y + c·z + d, the signed distance of p from the plane.
func (pe PlaneEquation) Evaluate(p mgl32.Vec3) float32 {
	return pe.A*p[0] + pe.B*p[1] + pe.C*p[2] + pe.D
}

// Contains reports whether p lies within tolerance of the plane.
func (pe PlaneEquation) Contains(p mgl32.Vec3, tolerance float32) bool {
	return float32(math.Abs(float64(pe.Evaluate(p)))) <= tolerance
}

// Intersect returns the point where the line through p0 and p1 crosses the plane,
// or nil if the line is parallel to it.
func (pe PlaneEquation) Intersect(p0, p1 r3.Vector) *r3.Vector {
	normal := pe.Normal()
	line := p1.Sub(p0)
	denom := normal.Dot(line)
	if math.Abs(denom) < DegenerateNormalEpsilon {
		return nil
	}
	t := -(normal.Dot(p0) + float64(pe.D)) / denom
	result := p0.Add(line.Mul(t))
	return &result
}

// String formats the coefficients the way the debug console prints them.
func (pe PlaneEquation) String() string {
	return fmt.Sprintf("a = %v, b = %v, c = %v, d = %v", pe.A, pe.B, pe.C, pe.D)
}
