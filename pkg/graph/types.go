package graph

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// NodeID
// ---------------------------------------------------------------------------

// NodeID is a deterministic identifier derived from a node's path in the
// source program (e.g. "defpart/front"). Re-evaluating the same program
// yields the same IDs, which keeps picks stable across edits.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// nodeNamespace scopes the name-based UUIDs to this graph format.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lignin:design-graph"))

// NewNodeID derives a NodeID from a node path.
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(nodeNamespace, []byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first 6 bytes in hex, for logs and error messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:6])
}

func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// ---------------------------------------------------------------------------
// Vec3
// ---------------------------------------------------------------------------

// Vec3 is a point or displacement in millimetres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------------
// Axis
// ---------------------------------------------------------------------------

// Axis names one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "x", "y" or "z" in either case.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("graph: invalid axis %q, expected x, y, or z", s)
}
