package intersect

import (
	"bytes"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad is a unit square in the XY plane made of two triangles sharing the
// edge 1-2: (0,1,2) covers x+y<1, (2,1,3) covers x+y>1.
var (
	quadVertices = Vec3Array{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	quadIndices  = UshortArray{0, 1, 2, 2, 1, 3}
)

func downSegment(x, y float64) *LineSegmentIntersector {
	return NewLineSegmentIntersector(mgl64.Vec3{x, y, 1}, mgl64.Vec3{x, y, -1})
}

// assertVecNear compares component-wise with an absolute tolerance.
func assertVecNear(t *testing.T, want, got mgl64.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

func TestIntersectIndexedUnitTriangle(t *testing.T) {
	tri := Vec3Array{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	idx := UshortArray{0, 1, 2}

	ls := downSegment(0.2, 0.2)
	require.True(t, ls.IntersectIndexed(TriangleList, DataList{tri}, idx, 0, 3))
	require.Len(t, ls.Intersections, 1)

	rec := ls.Intersections[0]
	assert.InDelta(t, 0.5, rec.Ratio, 1e-6)
	assert.InDelta(t, 0.6, rec.Barycentric[0], 1e-6)
	assert.InDelta(t, 0.2, rec.Barycentric[1], 1e-6)
	assert.InDelta(t, 0.2, rec.Barycentric[2], 1e-6)
	assert.Equal(t, [3]uint32{0, 1, 2}, rec.Indices)
	assertVecNear(t, mgl64.Vec3{0.2, 0.2, 0}, rec.LocalPoint, 1e-6, "local point %v", rec.LocalPoint)

	miss := downSegment(0.9, 0.9)
	assert.False(t, miss.IntersectIndexed(TriangleList, DataList{tri}, idx, 0, 3))
	assert.Empty(t, miss.Intersections)
}

func TestIntersectIndexedSecondTriangle(t *testing.T) {
	ls := downSegment(0.8, 0.7)

	ok := ls.IntersectIndexed(TriangleList, DataList{quadVertices}, quadIndices, 0, uint32(len(quadIndices)))
	require.True(t, ok)
	require.Len(t, ls.Intersections, 1)

	rec := ls.Intersections[0]
	assert.Equal(t, [3]uint32{2, 1, 3}, rec.Indices)
	assert.Equal(t, uint32(3), rec.IndexOffset)
	assert.InDelta(t, 0.5, rec.Ratio, 1e-6)
	assertVecNear(t, mgl64.Vec3{0.8, 0.7, 0}, rec.LocalPoint, 1e-6, "local point %v", rec.LocalPoint)

	// The weights map back onto the winning triangle's vertices.
	var p mgl64.Vec3
	for i, idx := range rec.Indices {
		p = p.Add(toVec64(quadVertices[idx]).Mul(rec.Barycentric[i]))
	}
	assertVecNear(t, rec.LocalPoint, p, 1e-6, "barycentric point %v", p)
	assert.InDelta(t, 1, rec.Barycentric[0]+rec.Barycentric[1]+rec.Barycentric[2], 1e-9)
}

func TestIntersectIndexedAccumulates(t *testing.T) {
	ls := downSegment(0.2, 0.2)
	arrays := DataList{quadVertices}

	assert.True(t, ls.IntersectIndexed(TriangleList, arrays, quadIndices, 0, 6))
	assert.True(t, ls.IntersectIndexed(TriangleList, arrays, quadIndices, 0, 6))
	assert.Len(t, ls.Intersections, 2, "records append in call order")

	// A call that finds nothing reports false even though records exist.
	assert.False(t, ls.IntersectIndexed(TriangleList, arrays, quadIndices, 3, 3))
	assert.Len(t, ls.Intersections, 2)
}

func TestIntersectIndexedRange(t *testing.T) {
	tests := []struct {
		name              string
		first, count      uint32
		x, y              float64
		wantHit           bool
		wantIndexOffset   uint32
		wantRecordIndices [3]uint32
	}{
		{"first triangle only", 0, 3, 0.2, 0.2, true, 0, [3]uint32{0, 1, 2}},
		{"first triangle excluded", 3, 3, 0.2, 0.2, false, 0, [3]uint32{}},
		{"second triangle only", 3, 3, 0.8, 0.8, true, 3, [3]uint32{2, 1, 3}},
		{"count past end is clamped", 3, 300, 0.8, 0.8, true, 3, [3]uint32{2, 1, 3}},
		{"first past end", 60, 3, 0.8, 0.8, false, 0, [3]uint32{}},
		{"incomplete triple", 0, 2, 0.2, 0.2, false, 0, [3]uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := downSegment(tt.x, tt.y)
			got := ls.IntersectIndexed(TriangleList, DataList{quadVertices}, quadIndices, tt.first, tt.count)
			require.Equal(t, tt.wantHit, got)
			if tt.wantHit {
				require.Len(t, ls.Intersections, 1)
				assert.Equal(t, tt.wantIndexOffset, ls.Intersections[0].IndexOffset)
				assert.Equal(t, tt.wantRecordIndices, ls.Intersections[0].Indices)
			} else {
				assert.Empty(t, ls.Intersections)
			}
		})
	}
}

func TestIntersectIndexedUint32(t *testing.T) {
	ls := downSegment(0.8, 0.7)
	indices := UintArray{0, 1, 2, 2, 1, 3}
	assert.True(t, ls.IntersectIndexed(TriangleList, DataList{quadVertices}, indices, 0, 6))
	assert.Equal(t, [3]uint32{2, 1, 3}, ls.Intersections[0].Indices)
}

func TestIntersectIndexedSoftFailures(t *testing.T) {
	tests := []struct {
		name     string
		topology Topology
		arrays   DataList
		indices  Data
		count    uint32
	}{
		{"no arrays", TriangleList, nil, quadIndices, 6},
		{"nil position array", TriangleList, DataList{nil}, quadIndices, 6},
		{"empty positions", TriangleList, DataList{Vec3Array{}}, quadIndices, 6},
		{"nil indices", TriangleList, DataList{quadVertices}, nil, 6},
		{"empty indices", TriangleList, DataList{quadVertices}, UshortArray{}, 6},
		{"zero count", TriangleList, DataList{quadVertices}, quadIndices, 0},
		{"positions mistyped", TriangleList, DataList{FloatArray{0, 0, 0}}, quadIndices, 6},
		{"indices mistyped", TriangleList, DataList{quadVertices}, FloatArray{0, 1, 2}, 3},
		{"indices are positions", TriangleList, DataList{quadVertices}, quadVertices, 3},
		{"out of range index", TriangleList, DataList{quadVertices}, UshortArray{0, 1, 9}, 3},
		{"triangle strip", TriangleStrip, DataList{quadVertices}, quadIndices, 6},
		{"triangle fan", TriangleFan, DataList{quadVertices}, quadIndices, 6},
		{"line list", LineList, DataList{quadVertices}, quadIndices, 6},
		{"point list", PointList, DataList{quadVertices}, quadIndices, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := downSegment(0.2, 0.2)
			assert.NotPanics(t, func() {
				assert.False(t, ls.IntersectIndexed(tt.topology, tt.arrays, tt.indices, 0, tt.count))
			})
			assert.Empty(t, ls.Intersections)
		})
	}
}

func TestIntersectNonIndexed(t *testing.T) {
	// Same quad, triangles spelled out vertex by vertex.
	soup := Vec3Array{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		{0, 1, 0}, {1, 0, 0}, {1, 1, 0},
	}

	ls := downSegment(0.8, 0.7)
	require.True(t, ls.Intersect(TriangleList, DataList{soup}, 0, 6))
	require.Len(t, ls.Intersections, 1)
	assert.Equal(t, [3]uint32{3, 4, 5}, ls.Intersections[0].Indices)
	assert.Equal(t, uint32(3), ls.Intersections[0].IndexOffset)

	ls = downSegment(0.8, 0.7)
	assert.False(t, ls.Intersect(TriangleList, DataList{soup}, 0, 3))
	assert.False(t, ls.Intersect(TriangleStrip, DataList{soup}, 0, 6))
	assert.False(t, ls.Intersect(TriangleList, nil, 0, 6))
	assert.False(t, ls.Intersect(TriangleList, DataList{FloatArray{1, 2, 3}}, 0, 1))
	assert.False(t, ls.Intersect(TriangleList, DataList{soup}, 0, 0))
	assert.Empty(t, ls.Intersections)
}

func TestIntersectDegenerateSegment(t *testing.T) {
	p := mgl64.Vec3{0.2, 0.2, 0}
	ls := NewLineSegmentIntersector(p, p)
	assert.False(t, ls.IntersectIndexed(TriangleList, DataList{quadVertices}, quadIndices, 0, 6))
}

func TestUnsupportedTopologyLogged(t *testing.T) {
	var buf bytes.Buffer
	ls := downSegment(0.2, 0.2)
	ls.Logger = log.New(&buf, "", 0)

	ls.IntersectIndexed(TriangleStrip, DataList{quadVertices}, quadIndices, 0, 6)
	assert.Contains(t, buf.String(), "triangle-strip")
}

func TestMistypedBuffersLogged(t *testing.T) {
	tests := []struct {
		name    string
		arrays  DataList
		indices Data
		want    string
	}{
		{"float positions", DataList{FloatArray{0, 0, 0, 1, 0, 0, 0, 1, 0}}, quadIndices, "position buffer of float32"},
		{"vec3 indices", DataList{quadVertices}, quadVertices, "index buffer of vec3"},
		{"float indices", DataList{quadVertices}, FloatArray{0, 1, 2}, "index buffer of float32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ls := downSegment(0.2, 0.2)
			ls.Logger = log.New(&buf, "", 0)

			assert.False(t, ls.IntersectIndexed(TriangleList, tt.arrays, tt.indices, 0, 6))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	ls := downSegment(0.2, 0.2)
	ls.Logger = log.New(&buf, "", 0)
	assert.False(t, ls.Intersect(TriangleList, DataList{UintArray{0, 1, 2}}, 0, 3))
	assert.Contains(t, buf.String(), "position buffer of uint32")

	buf.Reset()
	assert.False(t, ls.IntersectIndexed(TriangleList, DataList{quadVertices}, UshortArray{}, 0, 6))
	assert.Empty(t, buf.String(), "empty buffers are not reported")
}

func TestTransform(t *testing.T) {
	parent := downSegment(0.2, 0.2)
	parent.Epsilon = 1e-6
	parent.Intersections = append(parent.Intersections, Intersection{Ratio: 0.25})

	m := mgl64.Translate3D(10, 0, 0)
	child, ok := parent.Transform(m).(*LineSegmentIntersector)
	require.True(t, ok)

	assert.Equal(t, mgl64.Vec3{10.2, 0.2, 1}, child.Start)
	assert.Equal(t, mgl64.Vec3{10.2, 0.2, -1}, child.End)
	assert.Equal(t, float32(1e-6), child.Epsilon)
	assert.Empty(t, child.Intersections, "records stay with the parent")

	// The receiver keeps its own frame.
	assert.Equal(t, mgl64.Vec3{0.2, 0.2, 1}, parent.Start)
	assert.Equal(t, mgl64.Vec3{0.2, 0.2, -1}, parent.End)
	assert.Len(t, parent.Intersections, 1)

	// Records on the child do not leak into the parent.
	child.Intersections = append(child.Intersections, Intersection{})
	assert.Len(t, parent.Intersections, 1)
}

func TestTransformIntoLocalFrame(t *testing.T) {
	// The quad placed at x=10 and rotated a quarter turn about Z.
	world := mgl64.Translate3D(10, 0, 0).Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(90)))

	// World point (10-0.7, 0.8) is local (0.8, 0.7): inside the second triangle.
	ls := NewLineSegmentIntersector(mgl64.Vec3{9.3, 0.8, 1}, mgl64.Vec3{9.3, 0.8, -1})
	local := ls.Transform(world.Inv()).(*LineSegmentIntersector)

	require.True(t, local.IntersectIndexed(TriangleList, DataList{quadVertices}, quadIndices, 0, 6))
	rec := local.Intersections[0]
	assert.Equal(t, [3]uint32{2, 1, 3}, rec.Indices)
	assert.InDelta(t, 0.5, rec.Ratio, 1e-6)
	assertVecNear(t, mgl64.Vec3{0.8, 0.7, 0}, rec.LocalPoint, 1e-6, "local point %v", rec.LocalPoint)

	// The ratio maps the hit back into the world frame.
	worldPoint := ls.Start.Add(ls.End.Sub(ls.Start).Mul(rec.Ratio))
	assertVecNear(t, mgl64.Vec3{9.3, 0.8, 0}, worldPoint, 1e-6)
}
