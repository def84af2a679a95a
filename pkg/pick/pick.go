// Package pick answers "what is under this ray" for a scene graph: it runs a
// line segment query through the scene and turns the per-leaf records into
// world-space hits ordered nearest first.
package pick

import (
	"log"
	"sort"

	"github.com/chazu/ligninpick/pkg/intersect"
	"github.com/chazu/ligninpick/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Hit is one triangle intersection resolved back into world space.
type Hit struct {
	intersect.Intersection

	// Path runs from the picked root down to the geometry leaf.
	Path scene.NodePath
	// Part names the geometry that was hit.
	Part string
	// WorldPoint is the hit in the frame of the pick segment.
	WorldPoint mgl64.Vec3
	// Distance from the segment start to WorldPoint.
	Distance float64
}

// Picker runs pick queries against a scene.
type Picker struct {
	Root scene.Node

	// Epsilon overrides intersect.DefaultEpsilon when non-zero.
	Epsilon float32

	Logger *log.Logger
}

// NewPicker returns a picker over root with default settings.
func NewPicker(root scene.Node) *Picker {
	return &Picker{Root: root}
}

// PickSegment intersects the world-space segment from start to end with the
// scene and returns every hit sorted by ratio along the segment.
func (p *Picker) PickSegment(start, end mgl64.Vec3) []Hit {
	ls := intersect.NewLineSegmentIntersector(start, end)
	if p.Epsilon != 0 {
		ls.Epsilon = p.Epsilon
	}
	ls.Logger = p.Logger

	dir := end.Sub(start)
	length := dir.Len()

	var hits []Hit
	scene.Intersect(p.Root, ls, func(path scene.NodePath, g *scene.Geometry, isect intersect.Intersector) {
		local, ok := isect.(*intersect.LineSegmentIntersector)
		if !ok {
			return
		}
		before := len(local.Intersections)
		if !g.IntersectWith(local) {
			return
		}
		for _, rec := range local.Intersections[before:] {
			hits = append(hits, Hit{
				Intersection: rec,
				Path:         path,
				Part:         g.Part,
				WorldPoint:   start.Add(dir.Mul(rec.Ratio)),
				Distance:     rec.Ratio * length,
			})
		}
	})

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Ratio < hits[j].Ratio
	})
	return hits
}

// Pick intersects the scene with the segment under window pixel (x, y).
func (p *Picker) Pick(camera Camera, x, y float64) ([]Hit, error) {
	start, end, err := camera.Segment(x, y)
	if err != nil {
		return nil, err
	}
	return p.PickSegment(start, end), nil
}

// Nearest returns the hit closest to the segment start.
func Nearest(hits []Hit) (Hit, bool) {
	if len(hits) == 0 {
		return Hit{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Ratio < best.Ratio {
			best = h
		}
	}
	return best, true
}

// Parts returns the distinct part names among hits, in hit order.
func Parts(hits []Hit) []string {
	return lo.Uniq(lo.Map(hits, func(h Hit, _ int) string { return h.Part }))
}
