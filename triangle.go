package arp

import (
	"github.com/soypat/glgl/math/ms3"
)

// Triangle is a triangle in 3D space named by its corners. Corner order is
// significant: corner levels are always given as (top, left, right).
type Triangle struct {
	Top   ms3.Vec
	Left  ms3.Vec
	Right ms3.Vec
}

// CanonicalTriangle is the reference triangle all patterns are generated in.
// Its corners are the unit axes, so a pattern vertex is directly the
// barycentric weight triple (right, top, left) of the point it represents.
var CanonicalTriangle = Triangle{
	Top:   ms3.Vec{X: 0, Y: 1, Z: 0},
	Left:  ms3.Vec{X: 0, Y: 0, Z: 1},
	Right: ms3.Vec{X: 1, Y: 0, Z: 0},
}

// Subdivide splits t into four similar triangles using its edge midpoints.
// Children are returned in order top, left, center, right. The center
// child is inverted: (midLeftRight, midTopRight, midTopLeft).
func (t Triangle) Subdivide() [4]Triangle {
	mTL := midpoint(t.Top, t.Left)
	mTR := midpoint(t.Top, t.Right)
	mLR := midpoint(t.Left, t.Right)
	return [4]Triangle{
		{Top: t.Top, Left: mTL, Right: mTR},
		{Top: mTL, Left: t.Left, Right: mLR},
		{Top: mLR, Left: mTR, Right: mTL},
		{Top: mTR, Left: mLR, Right: t.Right},
	}
}

// Vertices returns the corners in (top, left, right) order.
func (t Triangle) Vertices() [3]ms3.Vec {
	return [3]ms3.Vec{t.Top, t.Left, t.Right}
}

// MS3 converts t to a ms3.Triangle with the same vertex order.
func (t Triangle) MS3() ms3.Triangle {
	return ms3.Triangle{t.Top, t.Left, t.Right}
}

func midpoint(a, b ms3.Vec) ms3.Vec {
	return ms3.Scale(0.5, ms3.Add(a, b))
}
