package arp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/arp/dedup"
	"github.com/soypat/glgl/math/ms3"
)

const (
	// MaxDepthLimit is the largest supported max depth. The number of
	// generated triangles grows as 4^depth for each of depth^3 patterns.
	MaxDepthLimit = 6
)

// ClampDepth clamps a user supplied max depth into [1, MaxDepthLimit].
// It belongs at configuration boundaries; Build itself rejects bad depths.
func ClampDepth(depth int) int {
	return max(1, min(depth, MaxDepthLimit))
}

// Table holds the packed patterns for every corner-level triple of a given
// max depth. A Table is immutable once built and safe for concurrent reads.
type Table struct {
	maxDepth int
	vertices []ms3.Vec
	indices  []uint32
	// offset and count are indexed by Table.index(i,j,k).
	offset []int
	count  []int
	// rawVertices is the number of vertices generated before deduplication.
	rawVertices int
}

// Build generates the pattern table for all maxDepth^3 corner-level triples
// of the canonical triangle. Triples are enumerated with the top level
// outermost and the right level innermost; each pattern's triangles are
// stored contiguously in that order. Vertices shared between any patterns
// are stored once, the first occurrence deciding their index.
//
// maxDepth must be in [1, MaxDepthLimit]. The canonical triangle must not be
// degenerate.
func Build(maxDepth int, canonical Triangle) (*Table, error) {
	if maxDepth <= 0 || maxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", ErrInvalidDepth, maxDepth, MaxDepthLimit)
	}
	start := time.Now()
	n := maxDepth
	ncomb := n * n * n
	tb := &Table{
		maxDepth: n,
		offset:   make([]int, ncomb),
		count:    make([]int, ncomb),
	}
	raw := make([]ms3.Vec, 0, 3*rawTriangles(n))
	var leaves []Triangle
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				leaves = Refine(leaves[:0], canonical, i, j, k)
				idx := tb.index(i, j, k)
				tb.offset[idx] = len(raw)
				for _, leaf := range leaves {
					raw = append(raw, leaf.Top, leaf.Left, leaf.Right)
				}
				tb.count[idx] = len(raw) - tb.offset[idx]
			}
		}
	}
	tb.rawVertices = len(raw)

	// Deduplication only changes the values stored in the index buffer, so
	// the offsets and counts recorded above remain valid.
	set := dedup.NewSet[ms3.Vec](len(raw) / 4)
	tb.indices = make([]uint32, len(raw))
	for i, v := range raw {
		vi, _ := set.Add(v)
		tb.indices[i] = uint32(vi)
	}
	tb.vertices = set.Values()

	Logger().Debug("arp: built pattern table",
		slog.Int("maxDepth", n),
		slog.Int("rawVertices", tb.rawVertices),
		slog.Int("vertices", len(tb.vertices)),
		slog.Int("indices", len(tb.indices)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return tb, nil
}

// rawTriangles returns the total leaf triangles over all triples of depth n.
func rawTriangles(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				total += LeafCount(i, j, k)
			}
		}
	}
	return total
}

// MaxDepth returns the number of levels per corner the table was built for.
func (tb *Table) MaxDepth() int { return tb.maxDepth }

// Vertices returns the packed vertex buffer. It must not be modified.
func (tb *Table) Vertices() []ms3.Vec { return tb.vertices }

// Indices returns the packed index buffer. It must not be modified.
func (tb *Table) Indices() []uint32 { return tb.indices }

// Offsets returns the flattened offset table, indexed by i*n*n + j*n + k
// where n is MaxDepth. It must not be modified.
func (tb *Table) Offsets() []int { return tb.offset }

// Counts returns the flattened count table with the same layout as Offsets.
// It must not be modified.
func (tb *Table) Counts() []int { return tb.count }

// Valid reports whether (top, left, right) is a valid corner-level triple.
func (tb *Table) Valid(top, left, right int) bool {
	n := tb.maxDepth
	return top >= 0 && top < n && left >= 0 && left < n && right >= 0 && right < n
}

// Lookup returns the start of the pattern for corner levels (top, left, right)
// in the index buffer and the number of indices it spans.
//
// All levels must be in [0, MaxDepth). Lookup panics otherwise, as it would
// for an out of range slice index; use Valid to check untrusted input.
func (tb *Table) Lookup(top, left, right int) (offset, count int) {
	if !tb.Valid(top, left, right) {
		panic(fmt.Sprintf("arp: corner levels (%d,%d,%d) out of range for max depth %d", top, left, right, tb.maxDepth))
	}
	idx := tb.index(top, left, right)
	return tb.offset[idx], tb.count[idx]
}

// Pattern returns the index buffer segment for corner levels (top, left, right).
// Lookup's precondition applies.
func (tb *Table) Pattern(top, left, right int) []uint32 {
	off, cnt := tb.Lookup(top, left, right)
	return tb.indices[off : off+cnt : off+cnt]
}

func (tb *Table) index(i, j, k int) int {
	n := tb.maxDepth
	return i*n*n + j*n + k
}

// Stats summarizes the size of a table.
type Stats struct {
	MaxDepth    int
	Patterns    int
	RawVertices int
	Vertices    int
	Indices     int
	Triangles   int
}

// Stats returns size information about the table.
func (tb *Table) Stats() Stats {
	return Stats{
		MaxDepth:    tb.maxDepth,
		Patterns:    len(tb.offset),
		RawVertices: tb.rawVertices,
		Vertices:    len(tb.vertices),
		Indices:     len(tb.indices),
		Triangles:   len(tb.indices) / 3,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("depth=%d patterns=%d triangles=%d vertices=%d (raw %d) indices=%d",
		s.MaxDepth, s.Patterns, s.Triangles, s.Vertices, s.RawVertices, s.Indices)
}
