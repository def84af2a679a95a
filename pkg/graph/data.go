package graph

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialSpec describes the intended material. Advisory only.
type MaterialSpec struct {
	Species   string  `json:"species,omitempty"`   // e.g. "white-oak", "walnut"
	Thickness float64 `json:"thickness,omitempty"` // nominal thickness in mm
	Grade     string  `json:"grade,omitempty"`     // e.g. "FAS", "select"
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBoard PrimitiveKind = iota // rectangular solid
	PrimDowel                      // cylindrical solid
	PrimBall                       // sphere (knobs, finials)
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBoard:
		return "board"
	case PrimDowel:
		return "dowel"
	case PrimBall:
		return "ball"
	default:
		return "unknown"
	}
}

// BoardData represents a rectangular piece of lumber. Its minimum corner
// sits at the part origin.
type BoardData struct {
	PrimKind   PrimitiveKind `json:"prim_kind"`
	Dimensions Vec3          `json:"dimensions"` // length x width x thickness in mm
	Grain      Axis          `json:"grain"`      // dominant grain direction
	Material   MaterialSpec  `json:"material"`
}

func (BoardData) nodeData() {}

// DowelData represents a cylindrical piece (dowel rod, turned stock),
// centered on the part origin with its axis along Z.
type DowelData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Diameter float64       `json:"diameter"` // mm
	Length   float64       `json:"length"`   // mm
	Grain    Axis          `json:"grain"`
	Material MaterialSpec  `json:"material"`
}

func (DowelData) nodeData() {}

// BallData represents a sphere centered on the part origin.
type BallData struct {
	PrimKind PrimitiveKind `json:"prim_kind"`
	Diameter float64       `json:"diameter"` // mm
	Material MaterialSpec  `json:"material"`
}

func (BallData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) Lisp form. Rotation is applied before
// translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees, applied X then Y then Z
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) Lisp form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
