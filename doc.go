// Package arp precomputes adaptive refinement patterns (ARP) for per-triangle
// tessellation.
//
// For every triple of corner levels (top, left, right) in [0, MaxDepth) a
// pattern of triangles tiling a canonical triangle is generated. All patterns
// share one packed vertex buffer and one index buffer, and a Table maps each
// triple to the segment of the index buffer holding its triangles. At draw
// time a renderer looks up the pattern selected by the tags of a mesh
// triangle's three vertices and maps the pattern's vertices, which are
// barycentric coordinates, onto that triangle.
//
//	tb, err := arp.Build(4, arp.CanonicalTriangle)
//	if err != nil {
//		return err
//	}
//	tags := arp.AssignTags(nil, worldPositions, eye, arp.TagConfig{
//		Mode:     arp.TagDistance,
//		MaxDepth: tb.MaxDepth(),
//	})
//	offset, count := tb.Lookup(tags[i0], tags[i1], tags[i2])
package arp
