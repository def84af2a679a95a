// Package scene holds the hierarchical scene graph a pick query walks:
// groups, transforms and drawable geometry, each carrying a bounding sphere
// used for culling.
package scene

import (
	"math"

	"github.com/chazu/ligninpick/pkg/intersect"
	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Node is an element of the scene graph. Bound is expressed in the frame of
// the node's parent. Groups and transforms cache their bound on first use;
// after editing a subtree in place, call DirtyBound on every ancestor.
type Node interface {
	Name() string
	Bound() intersect.Sphere
}

// NodePath is the chain of nodes from the traversal root down to a leaf.
type NodePath []Node

// Names returns the non-empty names along the path, root first.
func (p NodePath) Names() []string {
	names := make([]string, 0, len(p))
	for _, n := range p {
		if name := n.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// Group gathers children without changing their frame.
type Group struct {
	Label    string
	Children []Node

	bound    intersect.Sphere
	boundSet bool
}

// NewGroup returns a group holding children.
func NewGroup(label string, children ...Node) *Group {
	return &Group{Label: label, Children: children}
}

func (g *Group) Name() string { return g.Label }

// Add appends children to the group.
func (g *Group) Add(children ...Node) {
	g.Children = append(g.Children, children...)
	g.DirtyBound()
}

// DirtyBound drops the cached bound.
func (g *Group) DirtyBound() { g.boundSet = false }

// Bound is the union of the children's bounds.
func (g *Group) Bound() intersect.Sphere {
	if !g.boundSet {
		g.bound = unionBound(g.Children)
		g.boundSet = true
	}
	return g.bound
}

// unionBound merges the bounds of the non-nil children.
func unionBound(children []Node) intersect.Sphere {
	var bs intersect.Sphere
	for _, c := range children {
		if c != nil {
			bs.ExpandBySphere(c.Bound())
		}
	}
	return bs
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// Transform places its children in the parent frame: a point p in the
// children's frame is Matrix·p in the parent frame.
type Transform struct {
	Label    string
	Matrix   mgl64.Mat4
	Children []Node

	bound    intersect.Sphere
	boundSet bool
}

// NewTransform returns a transform node holding children.
func NewTransform(label string, m mgl64.Mat4, children ...Node) *Transform {
	return &Transform{Label: label, Matrix: m, Children: children}
}

func (t *Transform) Name() string { return t.Label }

// Add appends children to the transform.
func (t *Transform) Add(children ...Node) {
	t.Children = append(t.Children, children...)
	t.DirtyBound()
}

// DirtyBound drops the cached bound, after Matrix or Children change.
func (t *Transform) DirtyBound() { t.boundSet = false }

// Invertible reports whether the matrix can carry a query into the
// children's frame.
func (t *Transform) Invertible() bool {
	det := t.Matrix.Det()
	return det != 0 && !math.IsNaN(det) && !math.IsInf(det, 0)
}

// Bound maps the children's bound into the parent frame. The radius is
// scaled by the largest axis scale so the result stays conservative under
// non-uniform scaling.
func (t *Transform) Bound() intersect.Sphere {
	if !t.boundSet {
		t.bound = t.computeBound()
		t.boundSet = true
	}
	return t.bound
}

func (t *Transform) computeBound() intersect.Sphere {
	local := unionBound(t.Children)
	if !local.Valid() {
		return local
	}

	center := mgl64.TransformCoordinate(local.Center, t.Matrix)
	scale := math.Max(t.Matrix.Col(0).Vec3().Len(),
		math.Max(t.Matrix.Col(1).Vec3().Len(), t.Matrix.Col(2).Vec3().Len()))
	return intersect.NewSphere(center, local.Radius*scale)
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// Geometry is a drawable leaf: vertex arrays plus an optional index buffer.
// Arrays[0] holds positions; Arrays[1], when present, holds per-vertex
// normals. A nil Indices makes the draw non-indexed, in which case FirstIndex
// and IndexCount address vertices directly.
type Geometry struct {
	Part       string
	Topology   intersect.Topology
	Arrays     intersect.DataList
	Indices    intersect.Data
	FirstIndex uint32
	IndexCount uint32

	bound intersect.Sphere
}

// NewGeometry builds an indexed triangle-list leaf over the whole index
// buffer and caches its bound.
func NewGeometry(part string, positions intersect.Vec3Array, indices intersect.Data) *Geometry {
	g := &Geometry{
		Part:     part,
		Topology: intersect.TriangleList,
		Arrays:   intersect.DataList{positions},
		Indices:  indices,
	}
	if indices != nil {
		g.IndexCount = uint32(indices.Len())
	}
	g.ComputeBound()
	return g
}

// NewGeometryFromMesh wraps a kernel mesh. Vertex data is shared, not copied.
func NewGeometryFromMesh(m *kernel.Mesh) *Geometry {
	g := NewGeometry(m.PartName, intersect.Vec3ArrayFromFlat(m.Vertices), intersect.UintArray(m.Indices))
	if len(m.Normals) > 0 {
		g.Arrays = append(g.Arrays, intersect.Vec3ArrayFromFlat(m.Normals))
	}
	return g
}

func (g *Geometry) Name() string { return g.Part }

// Positions returns the position array, or nil when it is missing or not a
// Vec3Array.
func (g *Geometry) Positions() intersect.Vec3Array {
	if len(g.Arrays) == 0 {
		return nil
	}
	p, _ := g.Arrays[0].(intersect.Vec3Array)
	return p
}

// Normals returns the normal array, or nil.
func (g *Geometry) Normals() intersect.Vec3Array {
	if len(g.Arrays) < 2 {
		return nil
	}
	n, _ := g.Arrays[1].(intersect.Vec3Array)
	return n
}

// ComputeBound recomputes the cached bound after the positions change.
func (g *Geometry) ComputeBound() {
	g.bound = intersect.SphereFromPoints(g.Positions())
}

// Bound returns the cached bound, falling back to computing it when the
// geometry was assembled by hand.
func (g *Geometry) Bound() intersect.Sphere {
	if g.bound.Valid() {
		return g.bound
	}
	return intersect.SphereFromPoints(g.Positions())
}

// IntersectWith runs isect against this draw, choosing the indexed or
// non-indexed test.
func (g *Geometry) IntersectWith(isect intersect.Intersector) bool {
	if g.Indices != nil {
		return isect.IntersectIndexed(g.Topology, g.Arrays, g.Indices, g.FirstIndex, g.IndexCount)
	}
	count := g.IndexCount
	if count == 0 {
		count = uint32(len(g.Positions()))
	}
	return isect.Intersect(g.Topology, g.Arrays, g.FirstIndex, count)
}
