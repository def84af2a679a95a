package intersect

import "github.com/go-gl/mathgl/mgl32"

// Data is a read-only typed array handed to an intersector. The concrete type
// is the runtime type tag: intersectors downcast and treat a mismatch as
// "no intersection". ElementType names the tag in diagnostics.
type Data interface {
	Len() int
	ElementType() string
}

// DataList is the set of vertex arrays bound to a draw. Positions are always
// the first entry.
type DataList []Data

// Vec3Array holds single-precision 3-component positions.
type Vec3Array []mgl32.Vec3

func (a Vec3Array) Len() int            { return len(a) }
func (a Vec3Array) ElementType() string { return "vec3" }

// UshortArray holds 16-bit indices.
type UshortArray []uint16

func (a UshortArray) Len() int            { return len(a) }
func (a UshortArray) ElementType() string { return "uint16" }

// UintArray holds 32-bit indices.
type UintArray []uint32

func (a UintArray) Len() int            { return len(a) }
func (a UintArray) ElementType() string { return "uint32" }

// FloatArray holds scalar attributes (texture coordinates, weights).
// It is never a valid position or index buffer.
type FloatArray []float32

func (a FloatArray) Len() int            { return len(a) }
func (a FloatArray) ElementType() string { return "float32" }

// Vec3ArrayFromFlat packs a flat [x0,y0,z0, x1,y1,z1, ...] slice into
// positions. Trailing components that do not form a full vertex are dropped.
func Vec3ArrayFromFlat(flat []float32) Vec3Array {
	out := make(Vec3Array, len(flat)/3)
	for i := range out {
		out[i] = mgl32.Vec3{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}

// indexReader gives uniform access to either index width.
type indexReader interface {
	Data
	at(i int) uint32
}

func (a UshortArray) at(i int) uint32 { return uint32(a[i]) }
func (a UintArray) at(i int) uint32   { return a[i] }

// positions returns the position array of arrays, or nil when it is absent
// or of the wrong type.
func positions(arrays DataList) Vec3Array {
	if len(arrays) == 0 || arrays[0] == nil {
		return nil
	}
	vertices, ok := arrays[0].(Vec3Array)
	if !ok || len(vertices) == 0 {
		return nil
	}
	return vertices
}

// indexBuffer downcasts indices to a supported index width, or returns nil.
func indexBuffer(indices Data) indexReader {
	switch ix := indices.(type) {
	case UshortArray:
		if len(ix) > 0 {
			return ix
		}
	case UintArray:
		if len(ix) > 0 {
			return ix
		}
	}
	return nil
}
