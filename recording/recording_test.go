package recording

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"go.viam.com/test"

	"go.viam.com/arplane/anchor"
	"go.viam.com/arplane/spatialmath"
)

func TestRoundTrip(t *testing.T) {
	plane := &anchor.PlaneAnchor{
		AnchorID:  uuid.New(),
		Pose:      spatialmath.NewRigidTransformFromAxisAngle(r3.Vector{X: 1}, math.Pi/2, r3.Vector{Y: -1}),
		Center:    mgl32.Vec3{0.1, 0, -0.2},
		Extent:    anchor.Extent{Width: 1.5, Height: 0.75, RotationOnYAxis: 0.25},
		Alignment: anchor.Vertical,
		Geometry:  anchor.Geometry{VertexCount: 12, TriangleCount: 10},
	}
	other := &anchor.Generic{AnchorID: uuid.New(), Pose: spatialmath.NewTranslation(1, 2, 3)}
	frame := &anchor.Frame{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Camera:    spatialmath.NewTranslation(0, 1, -2),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	test.That(t, w.Record(anchor.Added, []anchor.Anchor{plane, other}, frame), test.ShouldBeNil)
	test.That(t, w.Record(anchor.Updated, []anchor.Anchor{plane}, nil), test.ShouldBeNil)
	test.That(t, strings.Count(buf.String(), "\n"), test.ShouldEqual, 2)

	r := NewReader(&buf)
	ev, err := r.Next()
	test.That(t, err, test.ShouldBeNil)

	kind, err := ev.EventKind()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kind, test.ShouldEqual, anchor.Added)

	gotFrame, err := ev.Frame()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotFrame.Timestamp.Equal(frame.Timestamp), test.ShouldBeTrue)
	test.That(t, gotFrame.Camera, test.ShouldResemble, frame.Camera)

	anchors, err := ev.ToAnchors()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, anchors, test.ShouldHaveLength, 2)
	test.That(t, anchors[0], test.ShouldResemble, plane)
	test.That(t, anchors[1], test.ShouldResemble, other)

	ev, err = r.Next()
	test.That(t, err, test.ShouldBeNil)
	kind, err = ev.EventKind()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, kind, test.ShouldEqual, anchor.Updated)
	gotFrame, err = ev.Frame()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gotFrame, test.ShouldBeNil)

	_, err = r.Next()
	test.That(t, err, test.ShouldEqual, io.EOF)
	test.That(t, r.Count(), test.ShouldEqual, 2)
}

func TestReadHandWritten(t *testing.T) {
	id := uuid.New()
	line := `{"kind":"updated","camera":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,1,-2,1],` +
		`"anchors":[{"id":"` + id.String() + `","type":"plane",` +
		`"transform":[1,0,0,0, 0,1,0,0, 0,0,1,0, 0,0,0,1],"alignment":"horizontal"}]}`

	ev, err := NewReader(strings.NewReader(line)).Next()
	test.That(t, err, test.ShouldBeNil)

	anchors, err := ev.ToAnchors()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, anchors, test.ShouldHaveLength, 1)
	plane, ok := anchors[0].(*anchor.PlaneAnchor)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, plane.ID(), test.ShouldEqual, id)
	test.That(t, plane.Alignment, test.ShouldEqual, anchor.Horizontal)

	frame, err := ev.Frame()
	test.That(t, err, test.ShouldBeNil)
	eq, err := spatialmath.SolvePlaneEquation(plane.Transform(), frame.Camera)
	test.That(t, err, test.ShouldBeNil)
	for i, want := range []float32{0, 1, 0, 1} {
		test.That(t, eq.Coefficients()[i], test.ShouldAlmostEqual, want, 1e-6)
	}
}

func TestReadErrors(t *testing.T) {
	r := NewReader(strings.NewReader(`{"kind":"added","anchors":[]}` + "\n" + `{"kind":`))
	_, err := r.Next()
	test.That(t, err, test.ShouldBeNil)
	_, err = r.Next()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode event 2")

	_, err = NewReader(strings.NewReader(`{"kind":"added","color":"red"}`)).Next()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Event{Kind: "removed"}.EventKind()
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Event{Camera: []float32{1, 2, 3}}.Frame()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "transform must have 16 values, got 3")

	identity := spatialmath.NewIdentityTransform().Slice()
	for _, rec := range []AnchorRecord{
		{Type: TypePlane, Transform: identity[:4]},
		{Type: "face", Transform: identity},
		{Type: TypePlane, Transform: identity, Alignment: "diagonal"},
		{Type: TypePlane, Transform: identity, Center: []float32{1}},
	} {
		_, err := Event{Anchors: []AnchorRecord{rec}}.ToAnchors()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "anchor 0")
	}
}

func TestTransformFromSliceDropsProjectiveRow(t *testing.T) {
	values := spatialmath.NewTranslation(1, 2, 3).Slice()
	values[3] = 5
	tf, err := TransformFromSlice(values)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.IsRigid(1e-6), test.ShouldBeTrue)
	test.That(t, tf.Translation(), test.ShouldResemble, mgl32.Vec3{1, 2, 3})
}
