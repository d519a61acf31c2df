// Package recording reads and writes anchor sessions as JSON lines, one event per line, so that
// sessions captured on a device can be replayed through an anchor.Processor.
package recording

import (
	"encoding/json"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/arplane/anchor"
	"go.viam.com/arplane/spatialmath"
)

// Anchor types stored in recordings.
const (
	TypePlane = "plane"
	TypeOther = "other"
)

// Event is one recorded anchor callback.
type Event struct {
	Kind      string     `json:"kind"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	// Camera is the column-major camera transform, or nil when no frame was current.
	Camera  []float32      `json:"camera"`
	Anchors []AnchorRecord `json:"anchors"`
}

// AnchorRecord is a recorded anchor. Plane only fields are omitted for other anchor types.
type AnchorRecord struct {
	ID            uuid.UUID     `json:"id"`
	Type          string        `json:"type"`
	Transform     []float32     `json:"transform"`
	Center        []float32     `json:"center,omitempty"`
	Extent        *ExtentRecord `json:"extent,omitempty"`
	Alignment     string        `json:"alignment,omitempty"`
	VertexCount   int           `json:"vertex_count,omitempty"`
	TriangleCount int           `json:"triangle_count,omitempty"`
}

// ExtentRecord is a recorded plane extent.
type ExtentRecord struct {
	Width           float32 `json:"width"`
	Height          float32 `json:"height"`
	RotationOnYAxis float32 `json:"rotation_on_y_axis"`
}

// NewEvent records an anchor callback.
func NewEvent(kind anchor.EventKind, anchors []anchor.Anchor, frame *anchor.Frame) Event {
	ev := Event{
		Kind: kindName(kind),
		Anchors: lo.Map(anchors, func(a anchor.Anchor, _ int) AnchorRecord {
			return newAnchorRecord(a)
		}),
	}
	if frame != nil {
		ev.Camera = frame.Camera.Slice()
		if !frame.Timestamp.IsZero() {
			ts := frame.Timestamp
			ev.Timestamp = &ts
		}
	}
	return ev
}

func kindName(kind anchor.EventKind) string {
	if kind == anchor.Updated {
		return "updated"
	}
	return "added"
}

func newAnchorRecord(a anchor.Anchor) AnchorRecord {
	rec := AnchorRecord{
		ID:        a.ID(),
		Type:      TypeOther,
		Transform: a.Transform().Slice(),
	}
	plane, ok := a.(*anchor.PlaneAnchor)
	if !ok {
		return rec
	}
	rec.Type = TypePlane
	rec.Center = []float32{plane.Center.X(), plane.Center.Y(), plane.Center.Z()}
	rec.Extent = &ExtentRecord{
		Width:           plane.Extent.Width,
		Height:          plane.Extent.Height,
		RotationOnYAxis: plane.Extent.RotationOnYAxis,
	}
	rec.Alignment = plane.Alignment.String()
	rec.VertexCount = plane.Geometry.VertexCount
	rec.TriangleCount = plane.Geometry.TriangleCount
	return rec
}

// EventKind parses the recorded kind.
func (e Event) EventKind() (anchor.EventKind, error) {
	return anchor.EventKindFromString(e.Kind)
}

// Frame returns the recorded camera frame, or nil if none was current.
func (e Event) Frame() (*anchor.Frame, error) {
	if e.Camera == nil {
		return nil, nil
	}
	camera, err := TransformFromSlice(e.Camera)
	if err != nil {
		return nil, errors.Wrap(err, "bad camera transform")
	}
	frame := &anchor.Frame{Camera: camera}
	if e.Timestamp != nil {
		frame.Timestamp = *e.Timestamp
	}
	return frame, nil
}

// ToAnchors converts the recorded anchors, keeping their order.
func (e Event) ToAnchors() ([]anchor.Anchor, error) {
	anchors := make([]anchor.Anchor, 0, len(e.Anchors))
	for i, rec := range e.Anchors {
		a, err := rec.ToAnchor()
		if err != nil {
			return nil, errors.Wrapf(err, "anchor %d", i)
		}
		anchors = append(anchors, a)
	}
	return anchors, nil
}

// ToAnchor converts the record into a *anchor.PlaneAnchor or an *anchor.Generic.
func (rec AnchorRecord) ToAnchor() (anchor.Anchor, error) {
	pose, err := TransformFromSlice(rec.Transform)
	if err != nil {
		return nil, errors.Wrapf(err, "bad transform for anchor %s", rec.ID)
	}
	switch rec.Type {
	case TypePlane:
	case TypeOther, "":
		return &anchor.Generic{AnchorID: rec.ID, Pose: pose}, nil
	default:
		return nil, errors.Errorf("unknown anchor type %q", rec.Type)
	}

	plane := &anchor.PlaneAnchor{
		AnchorID: rec.ID,
		Pose:     pose,
		Geometry: anchor.Geometry{VertexCount: rec.VertexCount, TriangleCount: rec.TriangleCount},
	}
	if rec.Alignment != "" {
		if plane.Alignment, err = anchor.AlignmentFromString(rec.Alignment); err != nil {
			return nil, err
		}
	}
	switch len(rec.Center) {
	case 0:
	case 3:
		plane.Center = mgl32.Vec3{rec.Center[0], rec.Center[1], rec.Center[2]}
	default:
		return nil, errors.Errorf("center must have 3 values, got %d", len(rec.Center))
	}
	if rec.Extent != nil {
		plane.Extent = anchor.Extent{
			Width:           rec.Extent.Width,
			Height:          rec.Extent.Height,
			RotationOnYAxis: rec.Extent.RotationOnYAxis,
		}
	}
	return plane, nil
}

// TransformFromSlice builds a rigid transform from 16 column-major values.
func TransformFromSlice(values []float32) (spatialmath.RigidTransform, error) {
	var m mgl32.Mat4
	if len(values) != len(m) {
		return spatialmath.RigidTransform{}, errors.Errorf("transform must have %d values, got %d", len(m), len(values))
	}
	copy(m[:], values)
	return spatialmath.NewRigidTransformFromMat4(m), nil
}

// Reader reads events from a recording.
type Reader struct {
	decoder *json.Decoder
	count   int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return &Reader{decoder: decoder}
}

// Next returns the next event, or io.EOF once the recording is exhausted.
func (r *Reader) Next() (Event, error) {
	var ev Event
	if err := r.decoder.Decode(&ev); err != nil {
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		return Event{}, errors.Wrapf(err, "cannot decode event %d", r.count+1)
	}
	r.count++
	return ev, nil
}

// Count returns how many events have been read.
func (r *Reader) Count() int {
	return r.count
}

// Writer appends events to a recording.
type Writer struct {
	encoder *json.Encoder
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{encoder: json.NewEncoder(w)}
}

// Write appends one event as a single line.
func (w *Writer) Write(ev Event) error {
	return w.encoder.Encode(ev)
}

// Record appends an anchor callback.
func (w *Writer) Record(kind anchor.EventKind, anchors []anchor.Anchor, frame *anchor.Frame) error {
	return w.Write(NewEvent(kind, anchors, frame))
}
