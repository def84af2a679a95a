package intersect

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Intersector is the capability set a scene traversal needs from a query.
// Other query shapes (points, frusta) implement the same interface.
type Intersector interface {
	// Transform returns a new intersector carried into the frame described
	// by m. The receiver is not modified.
	Transform(m mgl64.Mat4) Intersector

	// IntersectsSphere is the cheap culling test run before any triangle.
	IntersectsSphere(bs Sphere) bool

	// Intersect tests non-indexed geometry.
	Intersect(topology Topology, arrays DataList, firstVertex, vertexCount uint32) bool

	// IntersectIndexed tests geometry addressed through an index buffer.
	IntersectIndexed(topology Topology, arrays DataList, indices Data, firstIndex, indexCount uint32) bool
}

// Intersection records one triangle hit.
type Intersection struct {
	// LocalPoint is the hit point in the frame of the intersector that
	// produced the record.
	LocalPoint mgl64.Vec3
	// Ratio is the normalized distance along the segment. Affine transforms
	// preserve it, so ratios from different frames are comparable.
	Ratio float64
	// Barycentric weights of the triangle's three vertices; they sum to 1.
	Barycentric [3]float64
	// Indices are the vertex indices of the triangle.
	Indices [3]uint32
	// IndexOffset is the position of the triangle's first index in the
	// index buffer, or of its first vertex for non-indexed geometry.
	IndexOffset uint32
}

// Compile-time interface check.
var _ Intersector = (*LineSegmentIntersector)(nil)

// LineSegmentIntersector is a single pick query along the segment from Start
// to End. Records accumulate in Intersections in traversal order; nothing is
// sorted or deduplicated here.
//
// An instance is owned by one traversal branch. Transform hands out
// independent instances, so parallel subtrees never share one.
type LineSegmentIntersector struct {
	Start, End mgl64.Vec3

	// Epsilon is passed on to every TriangleIntersector.
	Epsilon float32

	// Logger, when set, receives notes about unsupported topologies.
	Logger *log.Logger

	Intersections []Intersection
}

// NewLineSegmentIntersector returns a query for the segment from start to end.
func NewLineSegmentIntersector(start, end mgl64.Vec3) *LineSegmentIntersector {
	return &LineSegmentIntersector{
		Start:   start,
		End:     end,
		Epsilon: DefaultEpsilon,
	}
}

// Transform returns a new intersector whose endpoints are m·Start and m·End.
// Settings carry over; records do not.
func (ls *LineSegmentIntersector) Transform(m mgl64.Mat4) Intersector {
	return &LineSegmentIntersector{
		Start:   mgl64.TransformCoordinate(ls.Start, m),
		End:     mgl64.TransformCoordinate(ls.End, m),
		Epsilon: ls.Epsilon,
		Logger:  ls.Logger,
	}
}

// IntersectsSphere reports whether the segment overlaps bs. It solves
// |Start + s(End-Start) - Center|² = Radius² for s and checks the roots
// against the segment's [0,1] parameter range.
func (ls *LineSegmentIntersector) IntersectsSphere(bs Sphere) bool {
	if !bs.Valid() {
		return false
	}

	sm := ls.Start.Sub(bs.Center)
	c := sm.LenSqr() - bs.Radius*bs.Radius
	if c < 0 {
		// start is inside the sphere
		return true
	}

	se := ls.End.Sub(ls.Start)
	a := se.LenSqr()
	if a == 0 {
		return false
	}
	b := sm.Dot(se) * 2
	d := b*b - 4*a*c
	if d < 0 {
		return false
	}

	d = math.Sqrt(d)
	div := 1 / (2 * a)

	r1 := (-b - d) * div
	r2 := (-b + d) * div

	if r1 <= 0 && r2 <= 0 {
		return false
	}
	if r1 >= 1 && r2 >= 1 {
		return false
	}
	return true
}

// Intersect tests non-indexed geometry: vertices [firstVertex,
// firstVertex+vertexCount) of the position array. Only TriangleList is
// supported, as consecutive vertex triples.
func (ls *LineSegmentIntersector) Intersect(topology Topology, arrays DataList, firstVertex, vertexCount uint32) bool {
	if len(arrays) == 0 || vertexCount == 0 {
		return false
	}
	vertices := positions(arrays)
	if vertices == nil {
		ls.mistyped("position", arrays[0])
		return false
	}

	previous := len(ls.Intersections)

	switch topology {
	case TriangleList:
		ti := ls.triangleIntersector()
		end := clampEnd(firstVertex, vertexCount, len(vertices))
		for i := int(firstVertex); i+2 < end; i += 3 {
			i0, i1, i2 := uint32(i), uint32(i+1), uint32(i+2)
			if hit, ok := ti.Intersect(vertices[i0], vertices[i1], vertices[i2]); ok {
				ls.add(hit, [3]uint32{i0, i1, i2}, uint32(i))
			}
		}
	default:
		ls.unsupported(topology)
	}

	return len(ls.Intersections) != previous
}

// IntersectIndexed tests indices [firstIndex, firstIndex+indexCount) of
// indices against the position array, the first entry of arrays. The
// position array must be a Vec3Array and the index buffer a UshortArray or
// UintArray; anything else is no intersection. Only TriangleList is
// supported. It returns true iff at least one record was appended.
func (ls *LineSegmentIntersector) IntersectIndexed(topology Topology, arrays DataList, indices Data, firstIndex, indexCount uint32) bool {
	if len(arrays) == 0 || indices == nil || indexCount == 0 {
		return false
	}

	vertices := positions(arrays)
	if vertices == nil {
		ls.mistyped("position", arrays[0])
		return false
	}
	ix := indexBuffer(indices)
	if ix == nil {
		ls.mistyped("index", indices)
		return false
	}

	previous := len(ls.Intersections)

	switch topology {
	case TriangleList:
		ti := ls.triangleIntersector()
		end := clampEnd(firstIndex, indexCount, ix.Len())
		n := uint32(len(vertices))
		for i := int(firstIndex); i+2 < end; i += 3 {
			i0, i1, i2 := ix.at(i), ix.at(i+1), ix.at(i+2)
			if i0 >= n || i1 >= n || i2 >= n {
				continue
			}
			if hit, ok := ti.Intersect(vertices[i0], vertices[i1], vertices[i2]); ok {
				ls.add(hit, [3]uint32{i0, i1, i2}, uint32(i))
			}
		}
	default:
		ls.unsupported(topology)
	}

	return len(ls.Intersections) != previous
}

// triangleIntersector reduces the segment to single precision.
func (ls *LineSegmentIntersector) triangleIntersector() *TriangleIntersector {
	ti := NewTriangleIntersector(toVec32(ls.Start), toVec32(ls.End))
	ti.Epsilon = ls.Epsilon
	return ti
}

func (ls *LineSegmentIntersector) add(hit TriangleHit, indices [3]uint32, offset uint32) {
	ratio := float64(hit.Ratio)
	ls.Intersections = append(ls.Intersections, Intersection{
		LocalPoint:  ls.Start.Add(ls.End.Sub(ls.Start).Mul(ratio)),
		Ratio:       ratio,
		Barycentric: [3]float64{float64(hit.R0), float64(hit.R1), float64(hit.R2)},
		Indices:     indices,
		IndexOffset: offset,
	})
}

func (ls *LineSegmentIntersector) unsupported(topology Topology) {
	if ls.Logger != nil {
		ls.Logger.Printf("intersect: %s topology not supported, skipped", topology)
	}
}

// mistyped logs a non-empty buffer whose element type cannot serve role.
func (ls *LineSegmentIntersector) mistyped(role string, d Data) {
	if ls.Logger != nil && d != nil && d.Len() > 0 {
		ls.Logger.Printf("intersect: %s buffer of %s elements not supported, skipped", role, d.ElementType())
	}
}

// clampEnd returns min(first+count, n) without overflowing uint32.
func clampEnd(first, count uint32, n int) int {
	end := uint64(first) + uint64(count)
	if end > uint64(n) {
		return n
	}
	return int(end)
}
