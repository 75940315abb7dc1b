package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/arp"
	"github.com/soypat/glgl/math/ms3"
)

var (
	// ErrDegenerate is returned when the canonical triangle has no area.
	ErrDegenerate = errors.New("render: degenerate canonical triangle")
)

// Weights holds the barycentric weights of a point relative to the
// top, left and right corners of a triangle.
type Weights struct {
	Top, Left, Right float32
}

// Barycentric returns the weights of p relative to t. p is assumed to
// lie in the plane of t.
func Barycentric(t arp.Triangle, p ms3.Vec) (Weights, error) {
	n := ms3.Cross(ms3.Sub(t.Left, t.Top), ms3.Sub(t.Right, t.Top))
	nn := ms3.Dot(n, n)
	if nn == 0 {
		return Weights{}, ErrDegenerate
	}
	wTop := ms3.Dot(n, ms3.Cross(ms3.Sub(t.Left, p), ms3.Sub(t.Right, p))) / nn
	wLeft := ms3.Dot(n, ms3.Cross(ms3.Sub(t.Right, p), ms3.Sub(t.Top, p))) / nn
	return Weights{Top: wTop, Left: wLeft, Right: 1 - wTop - wLeft}, nil
}

// Apply returns the point with weights w relative to the corners (top, left, right).
func (w Weights) Apply(top, left, right ms3.Vec) ms3.Vec {
	return ms3.Add(ms3.Add(ms3.Scale(w.Top, top), ms3.Scale(w.Left, left)), ms3.Scale(w.Right, right))
}

// TessellatorConfig describes the mesh to be tessellated.
type TessellatorConfig struct {
	Table *arp.Table
	// Canonical is the triangle Table was built from.
	Canonical arp.Triangle
	// Positions are the world space mesh positions.
	Positions []ms3.Vec
	// Indices holds 3 entries per mesh triangle. The vertices of each
	// triangle are its top, left and right corners in that order.
	Indices []uint32
	// Tags holds one corner level per position, as returned by arp.AssignTags.
	Tags []int
	// Normals optionally holds one world space normal per position. When
	// present, pattern vertex normals are interpolated from them.
	Normals []ms3.Vec
}

// ShadedTriangle is a tessellated triangle with one normal per corner.
type ShadedTriangle struct {
	Triangle ms3.Triangle
	Normals  [3]ms3.Vec
}

// Tessellator is a Renderer that emits, for every mesh triangle, the
// pattern selected by the tags of its vertices.
type Tessellator struct {
	cfg     TessellatorConfig
	weights []Weights // one per table vertex.
	// Read position: mesh triangle and triangle within its pattern.
	tri int
	sub int
}

var _ Renderer = (*Tessellator)(nil)

// NewTessellator validates cfg and precomputes the barycentric weights of
// the table's vertices.
func NewTessellator(cfg TessellatorConfig) (*Tessellator, error) {
	if cfg.Table == nil {
		return nil, errors.New("render: nil pattern table")
	}
	if len(cfg.Indices)%3 != 0 {
		return nil, fmt.Errorf("render: index count %d not a multiple of 3", len(cfg.Indices))
	}
	if cfg.Canonical.MS3().IsDegenerate(0) {
		return nil, ErrDegenerate
	}
	if len(cfg.Tags) != len(cfg.Positions) {
		return nil, fmt.Errorf("render: %d tags for %d positions", len(cfg.Tags), len(cfg.Positions))
	}
	if len(cfg.Normals) != 0 && len(cfg.Normals) != len(cfg.Positions) {
		return nil, fmt.Errorf("render: %d normals for %d positions", len(cfg.Normals), len(cfg.Positions))
	}
	for i, idx := range cfg.Indices {
		if int(idx) >= len(cfg.Positions) {
			return nil, fmt.Errorf("render: index %d references vertex %d of %d", i, idx, len(cfg.Positions))
		}
	}
	n := cfg.Table.MaxDepth()
	for i, tag := range cfg.Tags {
		if tag < 0 || tag >= n {
			return nil, fmt.Errorf("render: vertex %d tag %d out of range [0,%d)", i, tag, n)
		}
	}
	verts := cfg.Table.Vertices()
	weights := make([]Weights, len(verts))
	for i, v := range verts {
		w, err := Barycentric(cfg.Canonical, v)
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}
	return &Tessellator{cfg: cfg, weights: weights}, nil
}

// ReadTriangles fills dst with tessellated triangles, resuming where the
// previous call stopped.
func (ts *Tessellator) ReadTriangles(dst []ms3.Triangle) (n int, err error) {
	pos := ts.cfg.Positions
	return ts.read(len(dst), func(i int, corners [3]uint32, w [3]Weights) {
		p0, p1, p2 := pos[corners[0]], pos[corners[1]], pos[corners[2]]
		for c := range w {
			dst[i][c] = w[c].Apply(p0, p1, p2)
		}
	})
}

// ReadShaded is like ReadTriangles but also interpolates corner normals.
// Without configured normals every corner gets the face normal.
func (ts *Tessellator) ReadShaded(dst []ShadedTriangle) (n int, err error) {
	pos := ts.cfg.Positions
	normals := ts.cfg.Normals
	return ts.read(len(dst), func(i int, corners [3]uint32, w [3]Weights) {
		p0, p1, p2 := pos[corners[0]], pos[corners[1]], pos[corners[2]]
		st := &dst[i]
		for c := range w {
			st.Triangle[c] = w[c].Apply(p0, p1, p2)
		}
		if len(normals) == 0 {
			face := unitOrZero(st.Triangle.Normal())
			st.Normals = [3]ms3.Vec{face, face, face}
			return
		}
		n0, n1, n2 := normals[corners[0]], normals[corners[1]], normals[corners[2]]
		for c := range w {
			st.Normals[c] = unitOrZero(w[c].Apply(n0, n1, n2))
		}
	})
}

// read walks the tessellation, calling emit for at most limit pattern
// triangles with the mesh corner indices and the weights of the pattern
// triangle's vertices.
func (ts *Tessellator) read(limit int, emit func(i int, corners [3]uint32, w [3]Weights)) (n int, err error) {
	if limit == 0 {
		return 0, io.ErrShortBuffer
	}
	var (
		indices  = ts.cfg.Indices
		tags     = ts.cfg.Tags
		pindices = ts.cfg.Table.Indices()
	)
	for n < limit {
		if 3*ts.tri >= len(indices) {
			return n, io.EOF
		}
		corners := [3]uint32{indices[3*ts.tri], indices[3*ts.tri+1], indices[3*ts.tri+2]}
		off, cnt := ts.cfg.Table.Lookup(tags[corners[0]], tags[corners[1]], tags[corners[2]])
		pattern := pindices[off : off+cnt]
		for ; 3*ts.sub < len(pattern) && n < limit; ts.sub++ {
			sub := pattern[3*ts.sub : 3*ts.sub+3]
			emit(n, corners, [3]Weights{ts.weights[sub[0]], ts.weights[sub[1]], ts.weights[sub[2]]})
			n++
		}
		if 3*ts.sub == len(pattern) {
			ts.tri++
			ts.sub = 0
		}
	}
	return n, nil
}

func unitOrZero(v ms3.Vec) ms3.Vec {
	if v == (ms3.Vec{}) {
		return v
	}
	return ms3.Unit(v)
}

// Tessellate returns all triangles of the tessellated mesh.
func Tessellate(cfg TessellatorConfig) ([]ms3.Triangle, error) {
	ts, err := NewTessellator(cfg)
	if err != nil {
		return nil, err
	}
	return RenderAll(ts)
}

// TessellateShaded returns all triangles of the tessellated mesh with
// interpolated corner normals.
func TessellateShaded(cfg TessellatorConfig) ([]ShadedTriangle, error) {
	ts, err := NewTessellator(cfg)
	if err != nil {
		return nil, err
	}
	var (
		result = make([]ShadedTriangle, 0, 1024)
		buf    = make([]ShadedTriangle, 1024)
	)
	for {
		nt, err := ts.ReadShaded(buf)
		result = append(result, buf[:nt]...)
		if err == io.EOF {
			return result, nil
		} else if err != nil {
			return result, err
		}
	}
}
