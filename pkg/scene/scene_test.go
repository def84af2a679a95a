package scene

import (
	"testing"

	"github.com/chazu/ligninpick/pkg/intersect"
	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quad returns a unit square in the XY plane at the origin.
func quad(part string) *Geometry {
	return NewGeometry(part,
		intersect.Vec3Array{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		intersect.UshortArray{0, 1, 2, 2, 1, 3})
}

type leafHit struct {
	names   []string
	records []intersect.Intersection
}

// collect runs a vertical segment through (x, y) and gathers per-leaf records.
func collect(t *testing.T, root Node, x, y float64) []leafHit {
	t.Helper()
	var hits []leafHit
	ls := intersect.NewLineSegmentIntersector(mgl64.Vec3{x, y, 5}, mgl64.Vec3{x, y, -5})
	Intersect(root, ls, func(path NodePath, g *Geometry, isect intersect.Intersector) {
		local := isect.(*intersect.LineSegmentIntersector)
		before := len(local.Intersections)
		if g.IntersectWith(local) {
			hits = append(hits, leafHit{path.Names(), local.Intersections[before:]})
		}
	})
	return hits
}

// assertVecNear compares component-wise with an absolute tolerance.
func assertVecNear(t *testing.T, want, got mgl64.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}

func TestGeometryBound(t *testing.T) {
	g := quad("q")
	bs := g.Bound()
	require.True(t, bs.Valid())
	assertVecNear(t, mgl64.Vec3{0.5, 0.5, 0}, bs.Center, 1e-6)
	assert.InDelta(t, 0.7071, bs.Radius, 1e-3)

	// Hand-assembled geometry computes its bound on demand.
	hand := &Geometry{Arrays: intersect.DataList{intersect.Vec3Array{{2, 0, 0}}}}
	assert.True(t, hand.Bound().Valid())

	assert.False(t, (&Geometry{}).Bound().Valid())
}

func TestTransformBound(t *testing.T) {
	tr := NewTransform("t", mgl64.Translate3D(10, 0, 0).Mul4(mgl64.Scale3D(1, 3, 1)), quad("q"))
	bs := tr.Bound()
	require.True(t, bs.Valid())
	assertVecNear(t, mgl64.Vec3{10.5, 1.5, 0}, bs.Center, 1e-6, "center %v", bs.Center)
	assert.InDelta(t, 3*0.7071, bs.Radius, 1e-3)

	assert.False(t, NewTransform("empty", mgl64.Ident4()).Bound().Valid())
}

func TestGroupBound(t *testing.T) {
	g := NewGroup("g",
		quad("a"),
		NewTransform("t", mgl64.Translate3D(4, 0, 0), quad("b")),
	)
	bs := g.Bound()
	require.True(t, bs.Valid())
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {5, 1, 0}, {4, 0, 0}, {1, 1, 0}} {
		assert.LessOrEqual(t, p.Sub(bs.Center).Len(), bs.Radius+1e-9, "point %v outside bound", p)
	}
	assert.False(t, NewGroup("empty").Bound().Valid())
}

func TestBoundCachedUntilDirty(t *testing.T) {
	tr := NewTransform("t", mgl64.Ident4(), quad("a"))
	g := NewGroup("g", tr)
	before := g.Bound()

	// Direct edits are invisible until the ancestors are dirtied.
	tr.Matrix = mgl64.Translate3D(100, 0, 0)
	assert.Equal(t, before, g.Bound())

	tr.DirtyBound()
	g.DirtyBound()
	assert.InDelta(t, 100.5, g.Bound().Center.X(), 1e-6)

	// Add drops the cache on its own.
	g.Add(quad("b"))
	assert.Greater(t, g.Bound().Radius, 50.0)
}

func TestNilChildrenIgnored(t *testing.T) {
	root := NewGroup("root", nil, NewTransform("t", mgl64.Ident4(), nil, quad("a")))
	require.NotPanics(t, func() { root.Bound() })
	assert.True(t, root.Bound().Valid())

	hits := collect(t, root, 0.2, 0.2)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"root", "t", "a"}, hits[0].names)
}

func TestIntersectThroughTransforms(t *testing.T) {
	root := NewGroup("root",
		NewTransform("left", mgl64.Translate3D(-3, 0, 0), quad("a")),
		NewTransform("right", mgl64.Translate3D(3, 0, 0),
			NewTransform("lifted", mgl64.Translate3D(0, 0, 1), quad("b"))),
	)

	hits := collect(t, root, 3.8, 0.7)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"root", "right", "lifted", "b"}, hits[0].names)
	require.Len(t, hits[0].records, 1)

	rec := hits[0].records[0]
	assert.Equal(t, [3]uint32{2, 1, 3}, rec.Indices)
	assertVecNear(t, mgl64.Vec3{0.8, 0.7, 0}, rec.LocalPoint, 1e-6, "local %v", rec.LocalPoint)
	// z=1 on a segment from z=5 to z=-5
	assert.InDelta(t, 0.4, rec.Ratio, 1e-6)

	assert.Empty(t, collect(t, root, 0, 0.5), "gap between the quads")
}

func TestIntersectCullsBeforeLeaves(t *testing.T) {
	root := NewGroup("root",
		NewTransform("near", mgl64.Ident4(), quad("a")),
		NewTransform("far", mgl64.Translate3D(100, 0, 0), quad("b")),
	)

	var visited []string
	ls := intersect.NewLineSegmentIntersector(mgl64.Vec3{0.5, 0.5, 5}, mgl64.Vec3{0.5, 0.5, -5})
	Intersect(root, ls, func(path NodePath, g *Geometry, _ intersect.Intersector) {
		visited = append(visited, g.Part)
	})
	assert.Equal(t, []string{"a"}, visited)
}

func TestIntersectSkipsSingularTransform(t *testing.T) {
	root := NewGroup("root",
		NewTransform("flat", mgl64.Scale3D(1, 1, 0), quad("a")),
		quad("b"),
	)
	hits := collect(t, root, 0.2, 0.2)
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"root", "b"}, hits[0].names)
}

func TestIntersectDefaultVisit(t *testing.T) {
	root := NewGroup("root", quad("a"))
	ls := intersect.NewLineSegmentIntersector(mgl64.Vec3{0.2, 0.2, 1}, mgl64.Vec3{0.2, 0.2, -1})
	Intersect(root, ls, nil)
	assert.Len(t, ls.Intersections, 1, "untransformed leaves record on the root query")

	assert.NotPanics(t, func() { Intersect(nil, ls, nil) })
	assert.NotPanics(t, func() { Intersect(root, nil, nil) })
}

func TestGeometryNonIndexed(t *testing.T) {
	g := &Geometry{
		Part:     "soup",
		Topology: intersect.TriangleList,
		Arrays:   intersect.DataList{intersect.Vec3Array{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
	}
	ls := intersect.NewLineSegmentIntersector(mgl64.Vec3{0.2, 0.2, 1}, mgl64.Vec3{0.2, 0.2, -1})
	assert.True(t, g.IntersectWith(ls))
	assert.Equal(t, [3]uint32{0, 1, 2}, ls.Intersections[0].Indices)
}

func TestNewGeometryFromMesh(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
		PartName: "panel",
	}
	g := NewGeometryFromMesh(m)
	assert.Equal(t, "panel", g.Name())
	assert.Len(t, g.Positions(), 3)
	assert.Len(t, g.Normals(), 3)
	assert.Equal(t, uint32(3), g.IndexCount)
	assert.True(t, g.Bound().Valid())
}

func TestFlatten(t *testing.T) {
	withNormals := quad("b")
	withNormals.Arrays = append(withNormals.Arrays,
		intersect.Vec3Array{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})

	root := NewGroup("root",
		quad("a"),
		NewTransform("t", mgl64.Translate3D(10, 0, 0),
			NewTransform("r", mgl64.HomogRotate3DX(mgl64.DegToRad(90)), withNormals)),
	)

	meshes := Flatten(root)
	require.Len(t, meshes, 2)
	assert.Equal(t, "a", meshes[0].PartName)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, meshes[0].Indices)
	assert.Empty(t, meshes[0].Normals)

	b := meshes[1]
	assert.Equal(t, "b", b.PartName)
	require.Len(t, b.Vertices, 12)
	// vertex 2 (0,1,0) rotates onto +Z then shifts along X
	assert.InDelta(t, 10, b.Vertices[6], 1e-5)
	assert.InDelta(t, 0, b.Vertices[7], 1e-5)
	assert.InDelta(t, 1, b.Vertices[8], 1e-5)
	// normals follow the rotation only
	require.Len(t, b.Normals, 12)
	assert.InDelta(t, 0, b.Normals[0], 1e-5)
	assert.InDelta(t, -1, b.Normals[1], 1e-5)
	assert.InDelta(t, 0, b.Normals[2], 1e-5)
}

func TestFlattenIndexRange(t *testing.T) {
	g := quad("a")
	g.FirstIndex, g.IndexCount = 3, 3
	meshes := Flatten(g)
	require.Len(t, meshes, 1)
	assert.Equal(t, []uint32{2, 1, 3}, meshes[0].Indices)

	g.Topology = intersect.TriangleStrip
	assert.Empty(t, Flatten(g))
	assert.Empty(t, Flatten(nil))
}

func TestMatrixStack(t *testing.T) {
	ms := &matrixStack{}
	assert.Equal(t, mgl64.Ident4(), ms.top())

	ms.push(mgl64.Translate3D(1, 0, 0))
	ms.push(mgl64.Translate3D(0, 2, 0))
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, mgl64.TransformCoordinate(mgl64.Vec3{}, ms.top()))

	ms.pop()
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, mgl64.TransformCoordinate(mgl64.Vec3{}, ms.top()))
	ms.pop()
	ms.pop()
	assert.Equal(t, mgl64.Ident4(), ms.top())
}
