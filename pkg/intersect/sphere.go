package intersect

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Sphere is a bounding volume. The zero value is the empty bound: it is not
// Valid and is never hit. ExpandBySphere initializes it.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64

	initialized bool
}

// NewSphere returns a sphere with the given center and radius.
func NewSphere(center mgl64.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius, initialized: true}
}

// Valid reports whether the sphere describes a real bound.
func (s Sphere) Valid() bool {
	if !s.initialized || s.Radius < 0 || math.IsNaN(s.Radius) {
		return false
	}
	for _, c := range s.Center {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ExpandBySphere grows the sphere to contain other. Invalid spheres on
// either side are ignored.
func (s *Sphere) ExpandBySphere(other Sphere) *Sphere {
	if !other.Valid() {
		return s
	}
	if !s.Valid() {
		*s = other
		return s
	}

	dv := other.Center.Sub(s.Center)
	d := dv.Len()

	// other already inside s
	if d+other.Radius <= s.Radius {
		return s
	}
	// s inside other
	if d+s.Radius <= other.Radius {
		*s = other
		return s
	}

	radius := (s.Radius + d + other.Radius) / 2
	s.Center = s.Center.Add(dv.Mul((radius - s.Radius) / d))
	s.Radius = radius
	return s
}

// SphereFromPoints returns a sphere centered on the axis-aligned bounds of
// pts with a radius reaching the farthest point. It is empty when pts is.
func SphereFromPoints(pts []mgl32.Vec3) Sphere {
	if len(pts) == 0 {
		return Sphere{}
	}

	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	center := toVec64(lo.Add(hi).Mul(0.5))

	var r2 float64
	for _, p := range pts {
		r2 = max(r2, toVec64(p).Sub(center).LenSqr())
	}
	return NewSphere(center, math.Sqrt(r2))
}

func toVec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func toVec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
