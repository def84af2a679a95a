package scene

import "github.com/chazu/ligninpick/pkg/intersect"

// LeafFunc is called for every geometry leaf whose bound the query touches.
// isect is already expressed in the leaf's frame. path ends with g and is
// owned by the callee.
type LeafFunc func(path NodePath, g *Geometry, isect intersect.Intersector)

// Intersect walks root depth-first, culling every subtree whose bound the
// query misses. Transforms hand their children a copy of the query carried
// into the child frame; subtrees under a singular matrix are skipped. A nil
// visit runs Geometry.IntersectWith on each leaf.
func Intersect(root Node, isect intersect.Intersector, visit LeafFunc) {
	if root == nil || isect == nil {
		return
	}
	if visit == nil {
		visit = func(_ NodePath, g *Geometry, isect intersect.Intersector) {
			g.IntersectWith(isect)
		}
	}
	walk(root, isect, nil, visit)
}

func walk(n Node, isect intersect.Intersector, path NodePath, visit LeafFunc) {
	if !isect.IntersectsSphere(n.Bound()) {
		return
	}
	path = append(path, n)

	switch n := n.(type) {
	case *Geometry:
		leaf := make(NodePath, len(path))
		copy(leaf, path)
		visit(leaf, n, isect)

	case *Transform:
		if !n.Invertible() {
			return
		}
		local := isect.Transform(n.Matrix.Inv())
		for _, c := range n.Children {
			if c != nil {
				walk(c, local, path, visit)
			}
		}

	case *Group:
		for _, c := range n.Children {
			if c != nil {
				walk(c, isect, path, visit)
			}
		}
	}
}
