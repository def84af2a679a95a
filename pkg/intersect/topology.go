// Package intersect tests directed line segments against bounding spheres
// and triangulated geometry addressed by vertex and index buffers. It is the
// numeric core of picking: a screen-space pick becomes a world-space segment,
// the segment is carried into each node's local frame with Transform, nodes
// whose bounds cannot be hit are culled with IntersectsSphere, and surviving
// geometry is walked triangle by triangle.
//
// Nothing in this package returns an error. Degenerate, unsupported or
// mistyped input always resolves to "no intersection" so that picking can run
// continuously against arbitrary scene content without aborting traversal.
package intersect

import "fmt"

// Topology identifies how a flat vertex or index buffer groups into
// primitives. Values mirror VkPrimitiveTopology.
type Topology uint32

const (
	PointList Topology = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
	TriangleFan
	LineListWithAdjacency
	LineStripWithAdjacency
	TriangleListWithAdjacency
	TriangleStripWithAdjacency
	PatchList
)

func (t Topology) String() string {
	switch t {
	case PointList:
		return "point-list"
	case LineList:
		return "line-list"
	case LineStrip:
		return "line-strip"
	case TriangleList:
		return "triangle-list"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	case LineListWithAdjacency:
		return "line-list-with-adjacency"
	case LineStripWithAdjacency:
		return "line-strip-with-adjacency"
	case TriangleListWithAdjacency:
		return "triangle-list-with-adjacency"
	case TriangleStripWithAdjacency:
		return "triangle-strip-with-adjacency"
	case PatchList:
		return "patch-list"
	default:
		return fmt.Sprintf("Topology(%d)", uint32(t))
	}
}
