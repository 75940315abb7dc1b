// Package mesh holds the read-only geometry snapshot of a source model:
// vertex positions, per-vertex normals and a triangle list.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/arp/dedup"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrEmptyMesh = errors.New("mesh: no triangles")
)

// Triangle is a triangle given by its vertices in counter-clockwise order.
type Triangle [3]r3.Vec

// Normal returns the unit normal of t. Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if n == (r3.Vec{}) {
		return n
	}
	return r3.Unit(n)
}

// Mesh is an indexed triangle mesh. Normals is either empty or holds one
// normal per position.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	// Indices holds 3 entries per triangle.
	Indices []uint32
}

// FromTriangles returns an unwelded mesh: every triangle gets its own three
// vertices, each carrying the triangle's face normal.
func FromTriangles(triangles []Triangle) Mesh {
	m := Mesh{
		Positions: make([]r3.Vec, 0, 3*len(triangles)),
		Normals:   make([]r3.Vec, 0, 3*len(triangles)),
		Indices:   make([]uint32, 0, 3*len(triangles)),
	}
	for _, t := range triangles {
		n := t.Normal()
		for _, v := range t {
			m.Indices = append(m.Indices, uint32(len(m.Positions)))
			m.Positions = append(m.Positions, v)
			m.Normals = append(m.Normals, n)
		}
	}
	return m
}

// NumTriangles returns the number of triangles in the mesh.
func (m Mesh) NumTriangles() int { return len(m.Indices) / 3 }

// Triangle returns the ith triangle's vertex indices.
func (m Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

// Validate checks the mesh is non-empty and its indices are consistent.
func (m Mesh) Validate() error {
	if len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("mesh: %d normals for %d positions", len(m.Normals), len(m.Positions))
	}
	if int64(len(m.Positions)) > math.MaxUint32 {
		return errors.New("mesh: too many positions for 32 bit indices")
	}
	np := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= np {
			return fmt.Errorf("mesh: index %d references vertex %d of %d", i, idx, np)
		}
	}
	return nil
}

// MergeNormals replaces the normal of every vertex with the normalized sum
// of the normals of all vertices at exactly the same position, giving smooth
// shading across faces that do not share vertices. Positions and indices
// are not modified.
func (m *Mesh) MergeNormals() {
	if len(m.Normals) != len(m.Positions) {
		return
	}
	var set dedup.Set[r3.Vec]
	group := make([]int, len(m.Positions))
	var sums []r3.Vec
	for i, p := range m.Positions {
		g, added := set.Add(p)
		if added {
			sums = append(sums, r3.Vec{})
		}
		group[i] = g
		sums[g] = r3.Add(sums[g], m.Normals[i])
	}
	// Normalize only once every contributor has been summed.
	for g := range sums {
		if sums[g] != (r3.Vec{}) {
			sums[g] = r3.Unit(sums[g])
		}
	}
	for i := range m.Normals {
		m.Normals[i] = sums[group[i]]
	}
}

// Weld returns a mesh where vertices at exactly the same position are shared.
// The normal of a shared vertex is the merged normal of its contributors,
// as computed by MergeNormals.
func (m Mesh) Weld() Mesh {
	var set dedup.Set[r3.Vec]
	remap := make([]uint32, len(m.Positions))
	for i, p := range m.Positions {
		g, _ := set.Add(p)
		remap[i] = uint32(g)
	}
	out := Mesh{
		Positions: append([]r3.Vec(nil), set.Values()...),
		Indices:   make([]uint32, len(m.Indices)),
	}
	for i, idx := range m.Indices {
		out.Indices[i] = remap[idx]
	}
	if len(m.Normals) == len(m.Positions) {
		merged := Mesh{Positions: m.Positions, Normals: append([]r3.Vec(nil), m.Normals...)}
		merged.MergeNormals()
		out.Normals = make([]r3.Vec, len(out.Positions))
		for i, n := range merged.Normals {
			// Every contributor of a group carries the same merged normal.
			out.Normals[remap[i]] = n
		}
	}
	return out
}

// Bounds returns the axis aligned bounding box of the mesh positions.
func (m Mesh) Bounds() r3.Box {
	if len(m.Positions) == 0 {
		return r3.Box{}
	}
	bb := r3.Box{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		bb.Min = r3.Vec{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)}
		bb.Max = r3.Vec{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)}
	}
	return bb
}

// Placement positions a mesh in world space. Positions are scaled, then
// rotated by Angle radians about Axis, then translated.
// The zero value is the identity placement.
type Placement struct {
	// Scale of zero is interpreted as 1.
	Scale       float64
	Axis        r3.Vec
	Angle       float64
	Translation r3.Vec
}

// World transforms a model space position to world space.
func (pl Placement) World(v r3.Vec) r3.Vec {
	if pl.Scale != 0 {
		v = r3.Scale(pl.Scale, v)
	}
	if pl.Angle != 0 && pl.Axis != (r3.Vec{}) {
		v = r3.NewRotation(pl.Angle, r3.Unit(pl.Axis)).Rotate(v)
	}
	return r3.Add(v, pl.Translation)
}

// WorldPositions appends the world space positions of m to dst[:0] in
// single precision, ready for tag assignment and rendering.
func (pl Placement) WorldPositions(dst []ms3.Vec, m Mesh) []ms3.Vec {
	dst = dst[:0]
	var rot r3.Rotation
	rotate := pl.Angle != 0 && pl.Axis != (r3.Vec{})
	if rotate {
		rot = r3.NewRotation(pl.Angle, r3.Unit(pl.Axis))
	}
	for _, p := range m.Positions {
		if pl.Scale != 0 {
			p = r3.Scale(pl.Scale, p)
		}
		if rotate {
			p = rot.Rotate(p)
		}
		p = r3.Add(p, pl.Translation)
		dst = append(dst, ms3.Vec{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)})
	}
	return dst
}

// WorldNormals appends the world space normals of m to dst[:0]. Normals are
// only rotated: a positive Scale and the translation do not change them.
// A mesh without normals yields an empty result.
func (pl Placement) WorldNormals(dst []ms3.Vec, m Mesh) []ms3.Vec {
	dst = dst[:0]
	rotate := pl.Angle != 0 && pl.Axis != (r3.Vec{})
	var rot r3.Rotation
	if rotate {
		rot = r3.NewRotation(pl.Angle, r3.Unit(pl.Axis))
	}
	for _, n := range m.Normals {
		if rotate {
			n = rot.Rotate(n)
		}
		if pl.Scale < 0 {
			n = r3.Scale(-1, n)
		}
		dst = append(dst, ms3.Vec{X: float32(n.X), Y: float32(n.Y), Z: float32(n.Z)})
	}
	return dst
}
