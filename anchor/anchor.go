// Package anchor handles the anchor events delivered by an AR session: anchors being added or
// updated while a camera frame is current. Plane anchors are turned into camera-space plane
// equations and reported to a debug sink.
package anchor

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/arplane/spatialmath"
)

// An Anchor is a tracked pose in the world.
type Anchor interface {
	ID() uuid.UUID
	// Transform maps anchor-local coordinates to world coordinates.
	Transform() spatialmath.RigidTransform
}

// Alignment is the orientation of a detected plane relative to gravity.
type Alignment int

// Known plane alignments.
const (
	Horizontal Alignment = iota
	Vertical
)

// String returns the lower-case name of the alignment.
func (a Alignment) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

// AlignmentFromString parses "horizontal" or "vertical", ignoring case.
func AlignmentFromString(s string) (Alignment, error) {
	switch strings.ToLower(s) {
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, errors.Errorf("unknown plane alignment %q", s)
}

// Extent is the estimated size of a plane, in meters, in the plane's local frame.
type Extent struct {
	Width           float32
	Height          float32
	RotationOnYAxis float32
}

// Geometry summarizes the mesh estimated for a plane.
type Geometry struct {
	VertexCount   int
	TriangleCount int
}

// PlaneAnchor is a detected planar surface. Its transform's local Y axis is the plane normal.
type PlaneAnchor struct {
	AnchorID  uuid.UUID
	Pose      spatialmath.RigidTransform
	Center    mgl32.Vec3
	Extent    Extent
	Alignment Alignment
	Geometry  Geometry
}

// NewPlaneAnchor returns a plane anchor with a fresh random ID.
func NewPlaneAnchor(pose spatialmath.RigidTransform, alignment Alignment) *PlaneAnchor {
	return &PlaneAnchor{AnchorID: uuid.New(), Pose: pose, Alignment: alignment}
}

// ID returns the anchor ID.
func (p *PlaneAnchor) ID() uuid.UUID {
	return p.AnchorID
}

// Transform returns the plane pose in world space.
func (p *PlaneAnchor) Transform() spatialmath.RigidTransform {
	return p.Pose
}

// Describe returns a human readable summary of the plane, one property per line.
func (p *PlaneAnchor) Describe() []string {
	return []string{
		fmt.Sprintf("Center: (%v, %v, %v)", p.Center.X(), p.Center.Y(), p.Center.Z()),
		fmt.Sprintf("PlaneExtent: width: %v, height: %v, rotationOnYAxis: %v",
			p.Extent.Width, p.Extent.Height, p.Extent.RotationOnYAxis),
		fmt.Sprintf("Alignment: %s", p.Alignment),
		fmt.Sprintf("Geometry: vertices=%d, triangles=%d", p.Geometry.VertexCount, p.Geometry.TriangleCount),
	}
}

// Generic is any anchor that is not a plane, such as an image or mesh anchor.
type Generic struct {
	AnchorID uuid.UUID
	Pose     spatialmath.RigidTransform
}

// ID returns the anchor ID.
func (g *Generic) ID() uuid.UUID {
	return g.AnchorID
}

// Transform returns the anchor pose in world space.
func (g *Generic) Transform() spatialmath.RigidTransform {
	return g.Pose
}

// Frame is the camera state at the time anchors were delivered.
type Frame struct {
	Timestamp time.Time
	// Camera maps camera coordinates to world coordinates.
	Camera spatialmath.RigidTransform
}

// EventKind tells whether anchors were just added or updated.
type EventKind int

// Anchor event kinds.
const (
	Added EventKind = iota
	Updated
)

// String returns the name used in debug lines.
func (k EventKind) String() string {
	switch k {
	case Added:
		return "didAdd"
	case Updated:
		return "didUpdate"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Marker returns the symbol prefixed to the event's header line.
func (k EventKind) Marker() string {
	if k == Updated {
		return "🔄"
	}
	return "🔹"
}

// EventKindFromString parses "added" or "updated" (or the didAdd/didUpdate names).
func EventKindFromString(s string) (EventKind, error) {
	switch strings.ToLower(s) {
	case "added", "didadd":
		return Added, nil
	case "updated", "didupdate":
		return Updated, nil
	}
	return Added, errors.Errorf("unknown anchor event kind %q", s)
}
