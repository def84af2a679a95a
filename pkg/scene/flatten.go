package scene

import (
	"github.com/chazu/ligninpick/pkg/intersect"
	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// matrixStack accumulates transforms during traversal. The top is the
// product of every matrix pushed so far.
type matrixStack struct {
	matrices []mgl64.Mat4
}

func (ms *matrixStack) top() mgl64.Mat4 {
	if len(ms.matrices) == 0 {
		return mgl64.Ident4()
	}
	return ms.matrices[len(ms.matrices)-1]
}

func (ms *matrixStack) push(m mgl64.Mat4) {
	ms.matrices = append(ms.matrices, ms.top().Mul4(m))
}

func (ms *matrixStack) pop() {
	if len(ms.matrices) > 0 {
		ms.matrices = ms.matrices[:len(ms.matrices)-1]
	}
}

// Flatten bakes every triangle-list leaf under root into a world-space mesh
// for rendering, in traversal order. Leaves with other topologies or without
// positions are skipped.
func Flatten(root Node) []*kernel.Mesh {
	var meshes []*kernel.Mesh
	ms := &matrixStack{}

	var walk func(n Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Geometry:
			if m := bake(n, ms.top()); m != nil {
				meshes = append(meshes, m)
			}
		case *Transform:
			ms.push(n.Matrix)
			for _, c := range n.Children {
				walk(c)
			}
			ms.pop()
		case *Group:
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	if root != nil {
		walk(root)
	}
	return meshes
}

func bake(g *Geometry, world mgl64.Mat4) *kernel.Mesh {
	positions := g.Positions()
	if g.Topology != intersect.TriangleList || len(positions) == 0 {
		return nil
	}

	mesh := &kernel.Mesh{
		Vertices: make([]float32, 0, len(positions)*3),
		PartName: g.Part,
	}
	for _, p := range positions {
		w := mgl64.TransformCoordinate(mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}, world)
		mesh.Vertices = append(mesh.Vertices, float32(w[0]), float32(w[1]), float32(w[2]))
	}

	if normals := g.Normals(); len(normals) == len(positions) {
		nm := world.Mat3().Inv().Transpose()
		mesh.Normals = make([]float32, 0, len(normals)*3)
		for _, n := range normals {
			w := nm.Mul3x1(mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
			if l := w.Len(); l > 0 {
				w = w.Mul(1 / l)
			}
			mesh.Normals = append(mesh.Normals, float32(w[0]), float32(w[1]), float32(w[2]))
		}
	}

	mesh.Indices = flatIndices(g, len(positions))
	return mesh
}

// flatIndices returns the draw's triangles as 32-bit indices, dropping any
// triangle that references a missing vertex.
func flatIndices(g *Geometry, vertexCount int) []uint32 {
	var at func(i int) uint32
	var n int
	switch ix := g.Indices.(type) {
	case intersect.UintArray:
		at, n = func(i int) uint32 { return ix[i] }, len(ix)
	case intersect.UshortArray:
		at, n = func(i int) uint32 { return uint32(ix[i]) }, len(ix)
	case nil:
		at, n = func(i int) uint32 { return uint32(i) }, vertexCount
	default:
		return nil
	}

	first := int(g.FirstIndex)
	end := n
	if g.IndexCount > 0 && first+int(g.IndexCount) < end {
		end = first + int(g.IndexCount)
	}

	out := make([]uint32, 0, max(end-first, 0))
	for i := first; i+2 < end; i += 3 {
		a, b, c := at(i), at(i+1), at(i+2)
		if int(a) >= vertexCount || int(b) >= vertexCount || int(c) >= vertexCount {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}
