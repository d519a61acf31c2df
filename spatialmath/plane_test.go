package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"
)

const floatTolerance = 1e-5

func assertPlaneAlmostEqual(t *testing.T, got, want PlaneEquation) {
	t.Helper()
	test.That(t, cmp.Diff(want, got, cmpopts.EquateApprox(0, floatTolerance)), test.ShouldBeEmpty)
}

func randomRigidTransform(rnd *rand.Rand) RigidTransform {
	axis := r3.Vector{X: rnd.Float64()*2 - 1, Y: rnd.Float64()*2 - 1, Z: rnd.Float64()*2 - 1}
	translation := r3.Vector{X: rnd.Float64()*10 - 5, Y: rnd.Float64()*10 - 5, Z: rnd.Float64()*10 - 5}
	return NewRigidTransformFromAxisAngle(axis, rnd.Float64()*2*math.Pi, translation)
}

func TestSolvePlaneEquationTranslatedCamera(t *testing.T) {
	plane := NewIdentityTransform()
	camera := NewTranslation(0, 1, -2)

	eq, err := SolvePlaneEquation(plane, camera)
	test.That(t, err, test.ShouldBeNil)
	assertPlaneAlmostEqual(t, eq, PlaneEquation{A: 0, B: 1, C: 0, D: 1})
}

func TestSolvePlaneEquationIdentityCamera(t *testing.T) {
	plane := NewRigidTransformFromAxisAngle(r3.Vector{X: 1, Y: 0, Z: 1}, math.Pi/5, r3.Vector{X: 1, Y: -2, Z: 4})
	eq, err := SolvePlaneEquation(plane, NewIdentityTransform())
	test.That(t, err, test.ShouldBeNil)

	up := plane.Up()
	test.That(t, eq.A, test.ShouldAlmostEqual, up.X(), floatTolerance)
	test.That(t, eq.B, test.ShouldAlmostEqual, up.Y(), floatTolerance)
	test.That(t, eq.C, test.ShouldAlmostEqual, up.Z(), floatTolerance)
	test.That(t, eq.D, test.ShouldAlmostEqual, -up.Dot(plane.Translation()), floatTolerance)
}

func TestSolvePlaneEquationRotatedCamera(t *testing.T) {
	plane := NewIdentityTransform()
	camera := NewRigidTransformFromAxisAngle(r3.Vector{X: 1}, math.Pi/2, r3.Vector{})

	eq, err := SolvePlaneEquation(plane, camera)
	test.That(t, err, test.ShouldBeNil)
	// world +Y is the camera's -Z axis
	expected := camera.Rotation().Transpose().Mul3x1(mgl32.Vec3{0, 1, 0})
	test.That(t, eq.A, test.ShouldAlmostEqual, expected.X(), floatTolerance)
	test.That(t, eq.B, test.ShouldAlmostEqual, expected.Y(), floatTolerance)
	test.That(t, eq.C, test.ShouldAlmostEqual, expected.Z(), floatTolerance)
	assertPlaneAlmostEqual(t, eq, PlaneEquation{C: -1})
}

func TestSolvePlaneEquationNormalized(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		eq, err := SolvePlaneEquation(randomRigidTransform(rnd), randomRigidTransform(rnd))
		test.That(t, err, test.ShouldBeNil)
		sumSq := eq.A*eq.A + eq.B*eq.B + eq.C*eq.C
		test.That(t, sumSq, test.ShouldAlmostEqual, 1, floatTolerance)
	}
}

func TestSolvePlaneEquationConcurrent(t *testing.T) {
	const pairs = 64
	rnd := rand.New(rand.NewSource(3))
	planes := make([]RigidTransform, pairs)
	cameras := make([]RigidTransform, pairs)
	want := make([]PlaneEquation, pairs)
	for i := range planes {
		planes[i], cameras[i] = randomRigidTransform(rnd), randomRigidTransform(rnd)
		var err error
		want[i], err = SolvePlaneEquation(planes[i], cameras[i])
		test.That(t, err, test.ShouldBeNil)
	}

	got := make([][]PlaneEquation, 8)
	var group errgroup.Group
	for w := range got {
		got[w] = make([]PlaneEquation, pairs)
		group.Go(func() error {
			for i := range planes {
				eq, err := SolvePlaneEquation(planes[i], cameras[i])
				if err != nil {
					return err
				}
				got[w][i] = eq
			}
			return nil
		})
	}
	test.That(t, group.Wait(), test.ShouldBeNil)
	for _, results := range got {
		test.That(t, results, test.ShouldResemble, want)
	}
}

func TestSolvePlaneEquationCameraTranslation(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	plane := NewRigidTransformFromAxisAngle(r3.Vector{X: 1}, 0.3, r3.Vector{X: 1, Y: 1, Z: 1})
	rotation := randomRigidTransform(rnd).Rotation()

	eq1, err := SolvePlaneEquation(plane, NewRigidTransform(rotation, mgl32.Vec3{0.5, -1, 3}))
	test.That(t, err, test.ShouldBeNil)
	eq2, err := SolvePlaneEquation(plane, NewRigidTransform(rotation, mgl32.Vec3{-4, 2, 0.25}))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cmp.Equal(eq1.Normal(), eq2.Normal(), cmpopts.EquateApprox(0, floatTolerance)), test.ShouldBeTrue)
	test.That(t, math.Abs(float64(eq1.D-eq2.D)), test.ShouldBeGreaterThan, 1e-3)
}

func TestSolvePlaneEquationMembership(t *testing.T) {
	plane := NewRigidTransformFromAxisAngle(r3.Vector{X: 1, Y: 1}, math.Pi/6, r3.Vector{X: 1, Y: 2, Z: 3})
	camera := NewRigidTransformFromAxisAngle(r3.Vector{Y: 1, Z: 1}, 1.2, r3.Vector{X: -1, Y: 0.5, Z: 2})

	eq, err := SolvePlaneEquation(plane, camera)
	test.That(t, err, test.ShouldBeNil)

	// general inverse, independent of the rigid shortcut used by the solver
	worldToCamera := camera.Matrix().Inv()
	for _, local := range []mgl32.Vec3{{0, 0, 0}, {2, 0, -1.5}, {-3, 0, 0.75}} {
		world := plane.TransformPoint(local)
		inCamera := worldToCamera.Mul4x1(world.Vec4(1)).Vec3()
		test.That(t, eq.Evaluate(inCamera), test.ShouldAlmostEqual, 0, 1e-4)
		test.That(t, eq.Contains(inCamera, 1e-4), test.ShouldBeTrue)
	}

	// a point one unit along the normal sits one unit away from the plane
	above := camera.Inverse().TransformPoint(plane.TransformPoint(mgl32.Vec3{0, 1, 0}))
	test.That(t, eq.Evaluate(above), test.ShouldAlmostEqual, 1, 1e-4)
}

func TestSolvePlaneEquationDegenerate(t *testing.T) {
	plane := NewRigidTransformFromMat4(mgl32.Mat4{})
	_, err := SolvePlaneEquation(plane, NewIdentityTransform())
	test.That(t, err, test.ShouldBeError, ErrDegenerateNormal)
}

func TestNewPlaneEquation(t *testing.T) {
	eq, err := NewPlaneEquation(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{5, 5, 3})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, eq.Coefficients(), test.ShouldResemble, [4]float32{0, 0, 1, -3})
	test.That(t, eq.Normal(), test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, eq.String(), test.ShouldEqual, "a = 0, b = 0, c = 1, d = -3")

	_, err = NewPlaneEquation(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	test.That(t, err, test.ShouldBeError, ErrDegenerateNormal)
}

func TestPlaneEquationIntersect(t *testing.T) {
	// plane at z = 0
	plane := PlaneEquation{C: 1}
	p0, p1 := r3.Vector{X: 4, Y: 9, Z: 22}, r3.Vector{X: 4, Y: 9, Z: 12.3}
	result := plane.Intersect(p0, p1)
	test.That(t, result, test.ShouldNotBeNil)
	test.That(t, result.X, test.ShouldAlmostEqual, 4.0)
	test.That(t, result.Y, test.ShouldAlmostEqual, 9.0)
	test.That(t, result.Z, test.ShouldAlmostEqual, 0.0)

	// parallel
	p0, p1 = r3.Vector{X: 4, Y: 9, Z: 4}, r3.Vector{X: 22, Y: -3, Z: 4}
	test.That(t, plane.Intersect(p0, p1), test.ShouldBeNil)

	// slope of 1, order of the points does not matter
	p0, p1 = r3.Vector{X: 4, Y: 9, Z: 2}, r3.Vector{X: 3, Y: 9, Z: 1}
	for _, pts := range [][2]r3.Vector{{p0, p1}, {p1, p0}} {
		result = plane.Intersect(pts[0], pts[1])
		test.That(t, result, test.ShouldNotBeNil)
		test.That(t, result.X, test.ShouldAlmostEqual, 2.0)
		test.That(t, result.Y, test.ShouldAlmostEqual, 9.0)
		test.That(t, result.Z, test.ShouldAlmostEqual, 0.0)
	}
}
