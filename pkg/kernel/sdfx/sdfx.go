// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	// MeshCells is the number of marching cubes cells along the longest
	// side of a solid's bounding box.
	MeshCells int
}

// New returns a new SdfxKernel at the default resolution.
func New() *SdfxKernel {
	return &SdfxKernel{MeshCells: DefaultMeshCells}
}

// NewWithCells returns a kernel tessellating at the given resolution.
// Non-positive values fall back to DefaultMeshCells.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{MeshCells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok || ss == nil {
		return nil, fmt.Errorf("sdfx: solid %T was not built by this kernel", s)
	}
	return ss.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively: (place :at (vec3 10 0 0)) puts the board's corner at x=10.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder with the given height and radius.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// ToMesh converts a solid to an indexed triangle mesh using marching cubes.
// Coincident vertices are welded so triangles share indices, and each
// vertex normal is the normalized sum of its faces' normals.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	cells := k.MeshCells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	w := newWelder(len(triangles))
	for _, tri := range triangles {
		n := tri.Normal()
		var idx [3]uint32
		for j := 0; j < 3; j++ {
			idx[j] = w.vertex(tri[j], n)
		}
		// welding can collapse slivers to a line or a point
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		w.indices = append(w.indices, idx[0], idx[1], idx[2])
	}

	return w.mesh(), nil
}

// welder deduplicates vertices by their single-precision position.
type welder struct {
	index    map[[3]float32]uint32
	vertices []float32
	normals  []float64
	indices  []uint32
}

func newWelder(triangles int) *welder {
	return &welder{
		index:    make(map[[3]float32]uint32, triangles/2),
		vertices: make([]float32, 0, triangles*3/2),
		normals:  make([]float64, 0, triangles*3/2),
		indices:  make([]uint32, 0, triangles*3),
	}
}

func (w *welder) vertex(p, n v3.Vec) uint32 {
	key := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
	i, ok := w.index[key]
	if !ok {
		i = uint32(len(w.vertices) / 3)
		w.index[key] = i
		w.vertices = append(w.vertices, key[0], key[1], key[2])
		w.normals = append(w.normals, 0, 0, 0)
	}
	w.normals[3*i] += n.X
	w.normals[3*i+1] += n.Y
	w.normals[3*i+2] += n.Z
	return i
}

func (w *welder) mesh() *kernel.Mesh {
	normals := make([]float32, len(w.normals))
	for i := 0; i+2 < len(w.normals); i += 3 {
		x, y, z := w.normals[i], w.normals[i+1], w.normals[i+2]
		if l := math.Sqrt(x*x + y*y + z*z); l > 0 {
			x, y, z = x/l, y/l, z/l
		}
		normals[i], normals[i+1], normals[i+2] = float32(x), float32(y), float32(z)
	}
	return &kernel.Mesh{
		Vertices: w.vertices,
		Normals:  normals,
		Indices:  w.indices,
	}
}
