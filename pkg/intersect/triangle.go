package intersect

import "github.com/go-gl/mathgl/mgl32"

// DefaultEpsilon is the determinant threshold below which a segment is
// treated as parallel to a triangle's plane. It interacts with the scale of
// the scene's geometry, so intersectors carry it as a tunable field.
const DefaultEpsilon float32 = 1e-10

// TriangleHit is the payload of a successful triangle test.
type TriangleHit struct {
	// Ratio is the normalized distance along the segment, 0 at the start
	// and 1 at the end.
	Ratio float32
	// R0, R1 and R2 are the barycentric weights of v0, v1 and v2.
	R0, R1, R2 float32
}

// TriangleIntersector tests one segment against many triangles. The segment
// is precomputed once at construction; Intersect is then called per triangle
// in a tight loop, which is why it works in single precision.
//
// A TriangleIntersector should not be shared between goroutines.
type TriangleIntersector struct {
	Start, End mgl32.Vec3
	Epsilon    float32

	d             mgl32.Vec3
	length        float32
	inverseLength float32
}

// NewTriangleIntersector precomputes the normalized direction and length of
// the segment from start to end. A zero-length segment gets a zero direction
// and an inverse length of 0, and never hits anything.
func NewTriangleIntersector(start, end mgl32.Vec3) *TriangleIntersector {
	ti := &TriangleIntersector{
		Start:   start,
		End:     end,
		Epsilon: DefaultEpsilon,
	}

	ti.d = end.Sub(start)
	ti.length = ti.d.Len()
	if ti.length != 0 {
		ti.inverseLength = 1 / ti.length
	}
	ti.d = ti.d.Mul(ti.inverseLength)

	return ti
}

// Intersect tests the segment against the triangle (v0, v1, v2). The test is
// double-sided: either winding order is accepted. ok is false when the
// segment misses, is parallel to the triangle's plane, the triangle is
// degenerate, or the hit lies outside the segment.
func (ti *TriangleIntersector) Intersect(v0, v1, v2 mgl32.Vec3) (hit TriangleHit, ok bool) {
	if ti.inverseLength == 0 {
		return TriangleHit{}, false
	}

	T := ti.Start.Sub(v0)
	E1 := v1.Sub(v0)
	E2 := v2.Sub(v0)

	P := ti.d.Cross(E2)
	det := P.Dot(E1)

	var u, v float32
	var Q mgl32.Vec3

	switch {
	case det > ti.Epsilon:
		u = P.Dot(T)
		if u < 0 || u > det {
			return TriangleHit{}, false
		}

		Q = T.Cross(E1)
		v = Q.Dot(ti.d)
		if v < 0 || v > det {
			return TriangleHit{}, false
		}

		if u+v > det {
			return TriangleHit{}, false
		}

	case det < -ti.Epsilon:
		u = P.Dot(T)
		if u > 0 || u < det {
			return TriangleHit{}, false
		}

		Q = T.Cross(E1)
		v = Q.Dot(ti.d)
		if v > 0 || v < det {
			return TriangleHit{}, false
		}

		if u+v < det {
			return TriangleHit{}, false
		}

	default:
		return TriangleHit{}, false
	}

	invDet := 1 / det
	t := Q.Dot(E2) * invDet
	if t < 0 || t > ti.length {
		return TriangleHit{}, false
	}

	u *= invDet
	v *= invDet

	return TriangleHit{
		Ratio: t * ti.inverseLength,
		R0:    1 - u - v,
		R1:    u,
		R2:    v,
	}, true
}
