// Package tessellate walks a design graph and builds a pickable scene graph
// using a geometry kernel. Each part is tessellated once in its own frame;
// placements become transform nodes.
package tessellate

import (
	"fmt"

	"github.com/chazu/ligninpick/pkg/graph"
	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/chazu/ligninpick/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// RootLabel names the group that holds every graph root.
const RootLabel = "design"

// CylinderSegments is passed to Kernel.Cylinder for dowels.
const CylinderSegments = 32

// builder carries the per-build state. Parts referenced from several places
// share one geometry leaf.
type builder struct {
	g     *graph.DesignGraph
	k     kernel.Kernel
	parts map[graph.NodeID]*scene.Geometry
}

// Build turns the design graph into a scene graph. The graph is read-only
// and never mutated. A nil graph yields an empty scene. A graph with no
// roots previews each of its parts at its own origin.
func Build(g *graph.DesignGraph, k kernel.Kernel) (*scene.Group, error) {
	root := scene.NewGroup(RootLabel)
	if g == nil {
		return root, nil
	}

	roots := g.Roots
	if len(roots) == 0 {
		for _, p := range g.Parts() {
			roots = append(roots, p.ID)
		}
	}

	b := &builder{g: g, k: k, parts: make(map[graph.NodeID]*scene.Geometry)}
	for _, rootID := range roots {
		n := g.Get(rootID)
		if n == nil {
			continue
		}
		child, err := b.walkNode(n)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		if child != nil {
			root.Add(child)
		}
	}
	// fill the bound caches before the scene is shared with pickers
	root.Bound()
	return root, nil
}

// Tessellate builds the scene and flattens it into one world-space mesh per
// placed part, for rendering.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	root, err := Build(g, k)
	if err != nil {
		return nil, err
	}
	return scene.Flatten(root), nil
}

// walkNode recursively converts a node and its children.
func (b *builder) walkNode(n *graph.Node) (scene.Node, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return b.handlePrimitive(n)
	case graph.NodeTransform:
		return b.handleTransform(n)
	case graph.NodeGroup:
		return b.handleGroup(n)
	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive creates geometry for a primitive node.
func (b *builder) handlePrimitive(n *graph.Node) (scene.Node, error) {
	if geom, ok := b.parts[n.ID]; ok {
		return geom, nil
	}

	var solid kernel.Solid
	switch data := n.Data.(type) {
	case graph.BoardData:
		solid = b.k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z)
	case graph.DowelData:
		solid = b.k.Cylinder(data.Length, data.Diameter/2, CylinderSegments)
	case graph.BallData:
		solid = b.k.Sphere(data.Diameter / 2)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	mesh, err := b.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.PartName = n.Label()

	geom := scene.NewGeometryFromMesh(mesh)
	b.parts[n.ID] = geom
	return geom, nil
}

// handleTransform wraps the children in a transform node.
func (b *builder) handleTransform(n *graph.Node) (scene.Node, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	t := scene.NewTransform(n.Name, Matrix(td))
	for _, child := range b.g.Children(n) {
		c, err := b.walkNode(child)
		if err != nil {
			return nil, err
		}
		t.Add(c)
	}
	return t, nil
}

// handleGroup wraps the children in a group node.
func (b *builder) handleGroup(n *graph.Node) (scene.Node, error) {
	grp := scene.NewGroup(n.Name)
	for _, child := range b.g.Children(n) {
		c, err := b.walkNode(child)
		if err != nil {
			return nil, err
		}
		grp.Add(c)
	}
	return grp, nil
}

// Matrix returns the local-to-parent matrix of a placement: rotate about X,
// then Y, then Z (degrees), then translate.
func Matrix(td graph.TransformData) mgl64.Mat4 {
	m := mgl64.Ident4()
	if td.Translation != nil {
		m = mgl64.Translate3D(td.Translation.X, td.Translation.Y, td.Translation.Z)
	}
	if r := td.Rotation; r != nil && !r.IsZero() {
		rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z)).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X)))
		m = m.Mul4(rot)
	}
	return m
}
