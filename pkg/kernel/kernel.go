// Package kernel defines the abstract geometry kernel interface.
// A kernel builds primitive solids in their local frame and tessellates
// them into indexed triangle meshes; placement is left to the scene graph.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box has its minimum corner at the origin.
	Box(x, y, z float64) Solid
	// Cylinder is centered on the origin with its axis along Z.
	Cylinder(height, radius float64, segments int) Solid
	// Sphere is centered on the origin.
	Sphere(radius float64) Solid

	// ToMesh tessellates s into an indexed triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
