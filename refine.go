package arp

import "fmt"

// Refine appends to dst the leaf triangles that tile t for the corner levels
// (top, left, right) and returns the extended slice.
//
// Detail is governed by the minimum of the three levels: t is uniformly
// subdivided to depth m = min(top, left, right), producing 4^m leaves. Corners
// with a higher level receive the same density as the rest of the triangle,
// which keeps the tiling free of T-junctions. When m is 0 t is appended as is.
//
// Leaves are emitted depth first, visiting children in the order top, left,
// center, right. The order is stable across calls.
func Refine(dst []Triangle, t Triangle, top, left, right int) []Triangle {
	m := min(top, left, right)
	if m < 0 {
		panic(fmt.Sprintf("arp: negative refinement level (%d,%d,%d)", top, left, right))
	}
	type node struct {
		t   Triangle
		lvl int
	}
	// Worklist holds at most 3 pending siblings per level plus the node being expanded.
	stack := make([]node, 1, 3*m+1)
	stack[0] = node{t: t}
	for len(stack) > 0 {
		last := len(stack) - 1
		n := stack[last]
		stack = stack[:last]
		if n.lvl == m {
			dst = append(dst, n.t)
			continue
		}
		children := n.t.Subdivide()
		// Push in reverse so the top child is expanded first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, node{t: children[i], lvl: n.lvl + 1})
		}
	}
	return dst
}

// LeafCount returns the number of triangles Refine emits for the given levels.
func LeafCount(top, left, right int) int {
	return 1 << (2 * min(top, left, right))
}
