package arp

import (
	"errors"
	"reflect"
	"testing"

	"github.com/soypat/arp/dedup"
	"github.com/soypat/glgl/math/ms3"
)

func TestBuildDepth2Scenario(t *testing.T) {
	tb, err := Build(2, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	verts := tb.Vertices()

	// (0,0,0) is the canonical triangle as is.
	got := patternVertices(tb, 0, 0, 0)
	want := []ms3.Vec{CanonicalTriangle.Top, CanonicalTriangle.Left, CanonicalTriangle.Right}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("(0,0,0) vertices: got %v, want %v", got, want)
	}
	if p := tb.Pattern(0, 0, 0); p[0] == p[1] || p[1] == p[2] || p[0] == p[2] {
		t.Errorf("(0,0,0) indices must be distinct, got %v", p)
	}

	// (1,1,1) is one subdivision: 4 triangles over 3 corners and 3 midpoints.
	p := tb.Pattern(1, 1, 1)
	if len(p) != 12 {
		t.Fatalf("(1,1,1) indices: got %d, want 12", len(p))
	}
	distinct := map[uint32]bool{}
	for _, idx := range p {
		distinct[idx] = true
	}
	if len(distinct) != 6 {
		t.Errorf("(1,1,1) distinct vertices: got %d, want 6", len(distinct))
	}
	mids := []ms3.Vec{
		{X: 0, Y: 0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0},
		{X: 0.5, Y: 0, Z: 0.5},
	}
	for _, mid := range mids {
		if dedup.Find(verts, mid) < 0 {
			t.Errorf("midpoint %v missing from vertex buffer", mid)
		}
	}

	// Minimum level governs: (0,1,1) draws the same as (0,0,0).
	if !reflect.DeepEqual(patternVertices(tb, 0, 1, 1), patternVertices(tb, 0, 0, 0)) {
		t.Error("(0,1,1) must match (0,0,0)")
	}
	if !reflect.DeepEqual(tb.Pattern(0, 1, 1), tb.Pattern(0, 0, 0)) {
		t.Error("(0,1,1) indices must reuse (0,0,0) vertices")
	}

	// 7 single-triangle patterns precede (1,1,1).
	off, cnt := tb.Lookup(1, 1, 1)
	if off != 21 || cnt != 12 {
		t.Errorf("(1,1,1) lookup: got (%d,%d), want (21,12)", off, cnt)
	}
	if len(verts) != 6 {
		t.Errorf("unique vertices: got %d, want 6", len(verts))
	}
	if len(tb.Indices()) != 33 {
		t.Errorf("indices: got %d, want 33", len(tb.Indices()))
	}
}

func TestBuildTriangleCountLaw(t *testing.T) {
	for depth := 1; depth <= MaxDepthLimit; depth++ {
		tb, err := Build(depth, CanonicalTriangle)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < depth; i++ {
			for j := 0; j < depth; j++ {
				for k := 0; k < depth; k++ {
					_, cnt := tb.Lookup(i, j, k)
					want := 3 * (1 << (2 * min(i, j, k)))
					if cnt != want {
						t.Fatalf("depth %d (%d,%d,%d): count %d, want %d", depth, i, j, k, cnt, want)
					}
					if cnt <= 0 || cnt%3 != 0 {
						t.Fatalf("depth %d (%d,%d,%d): bad count %d", depth, i, j, k, cnt)
					}
				}
			}
		}
	}
}

func TestBuildIndicesAndDedup(t *testing.T) {
	const depth = 4
	tb, err := Build(depth, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	verts := tb.Vertices()
	for i, idx := range tb.Indices() {
		if int(idx) >= len(verts) {
			t.Fatalf("index %d: %d out of range of %d vertices", i, idx, len(verts))
		}
	}
	for i := range verts {
		if j := dedup.Find(verts, verts[i]); j != i {
			t.Fatalf("vertex %d %v duplicated at %d", i, verts[i], j)
		}
	}
	// Every raw vertex maps to an equal buffer entry.
	var leaves []Triangle
	for i := 0; i < depth; i++ {
		for j := 0; j < depth; j++ {
			for k := 0; k < depth; k++ {
				leaves = Refine(leaves[:0], CanonicalTriangle, i, j, k)
				p := tb.Pattern(i, j, k)
				for l, leaf := range leaves {
					for c, v := range leaf.Vertices() {
						if got := verts[p[3*l+c]]; got != v {
							t.Fatalf("(%d,%d,%d) leaf %d corner %d: got %v, want %v", i, j, k, l, c, got, v)
						}
					}
				}
			}
		}
	}
	// Vertices of a depth 3 subdivision are the lattice points with
	// 8ths as barycentric coordinates: (8+1)(8+2)/2.
	if len(verts) != 45 {
		t.Errorf("unique vertices: got %d, want 45", len(verts))
	}
}

func TestBuildOffsetsMonotonic(t *testing.T) {
	const depth = 5
	tb, err := Build(depth, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	offsets, counts := tb.Offsets(), tb.Counts()
	if offsets[0] != 0 {
		t.Fatalf("first offset %d, want 0", offsets[0])
	}
	for c := 1; c < len(offsets); c++ {
		if offsets[c] != offsets[c-1]+counts[c-1] {
			t.Fatalf("combination %d: offset %d, want %d", c, offsets[c], offsets[c-1]+counts[c-1])
		}
	}
	last := len(offsets) - 1
	if offsets[last]+counts[last] != len(tb.Indices()) {
		t.Error("patterns do not cover the index buffer")
	}
	// Flattened layout.
	off, cnt := tb.Lookup(2, 3, 4)
	idx := 2*depth*depth + 3*depth + 4
	if offsets[idx] != off || counts[idx] != cnt {
		t.Error("flattened tables do not match Lookup")
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(5, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(5, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Vertices(), b.Vertices()) {
		t.Error("vertex buffers differ between builds")
	}
	if !reflect.DeepEqual(a.Indices(), b.Indices()) {
		t.Error("index buffers differ between builds")
	}
	if !reflect.DeepEqual(a.Offsets(), b.Offsets()) || !reflect.DeepEqual(a.Counts(), b.Counts()) {
		t.Error("lookup tables differ between builds")
	}
}

func TestBuildInvalidDepth(t *testing.T) {
	for _, depth := range []int{-1, 0, MaxDepthLimit + 1, 100} {
		tb, err := Build(depth, CanonicalTriangle)
		if !errors.Is(err, ErrInvalidDepth) {
			t.Errorf("Build(%d): got error %v, want ErrInvalidDepth", depth, err)
		}
		if tb != nil {
			t.Errorf("Build(%d): got non-nil table", depth)
		}
	}
}

func TestClampDepth(t *testing.T) {
	for _, test := range []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {4, 4}, {6, 6}, {7, 6}, {99, 6},
	} {
		if got := ClampDepth(test.in); got != test.want {
			t.Errorf("ClampDepth(%d) = %d, want %d", test.in, got, test.want)
		}
	}
}

func TestLookupOutOfRange(t *testing.T) {
	tb, err := Build(3, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	for _, lv := range [][3]int{{3, 0, 0}, {0, -1, 0}, {0, 0, 3}} {
		if tb.Valid(lv[0], lv[1], lv[2]) {
			t.Errorf("Valid(%v) = true", lv)
		}
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Lookup(%v) did not panic", lv)
				}
			}()
			tb.Lookup(lv[0], lv[1], lv[2])
		}()
	}
}

func TestStats(t *testing.T) {
	tb, err := Build(2, CanonicalTriangle)
	if err != nil {
		t.Fatal(err)
	}
	got := tb.Stats()
	want := Stats{MaxDepth: 2, Patterns: 8, RawVertices: 33, Vertices: 6, Indices: 33, Triangles: 11}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func BenchmarkBuild(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := Build(MaxDepthLimit, CanonicalTriangle)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func patternVertices(tb *Table, i, j, k int) []ms3.Vec {
	var out []ms3.Vec
	for _, idx := range tb.Pattern(i, j, k) {
		out = append(out, tb.Vertices()[idx])
	}
	return out
}
