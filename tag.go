package arp

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// TagMode selects how per-vertex detail tags are computed.
type TagMode uint8

const (
	// TagUniform assigns the same configured level to every vertex.
	TagUniform TagMode = iota
	// TagDistance assigns more detail to vertices closer to the viewpoint.
	TagDistance
)

func (m TagMode) String() string {
	switch m {
	case TagUniform:
		return "uniform"
	case TagDistance:
		return "distance"
	}
	return fmt.Sprintf("TagMode(%d)", uint8(m))
}

// ParseTagMode parses the names returned by TagMode.String.
func ParseTagMode(s string) (TagMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform":
		return TagUniform, nil
	case "distance":
		return TagDistance, nil
	}
	return 0, fmt.Errorf("arp: unknown tag mode %q", s)
}

// ComputeTag returns the detail tag of a vertex at world position vertex as
// seen from viewpoint.
//
// In TagUniform mode the tag is uniformLevel. In TagDistance mode, with
// d the distance between both points, the tag is 0 for d >= maxDepth and
// floor(|maxDepth - d|) otherwise. At d == 0 the result equals maxDepth,
// one past the largest valid corner level; callers indexing a Table must
// clamp it, as AssignTags does.
func ComputeTag(mode TagMode, vertex, viewpoint ms3.Vec, maxDepth, uniformLevel int) int {
	switch mode {
	case TagUniform:
		return uniformLevel
	case TagDistance:
		d := ms3.Norm(ms3.Sub(viewpoint, vertex))
		md := float32(maxDepth)
		if d >= md {
			return 0
		}
		return int(math32.Floor(math32.Abs(md - d)))
	}
	panic("arp: unknown tag mode " + mode.String())
}

// TagConfig holds the per-frame tag assignment settings.
type TagConfig struct {
	Mode TagMode
	// MaxDepth is the max depth of the table tags will index.
	MaxDepth int
	// UniformLevel is the tag used in TagUniform mode.
	UniformLevel int
}

// AssignTags computes the tag of each world-space position, appending them to
// dst[:0] and returning the result. Every returned tag is clamped into
// [0, cfg.MaxDepth-1] so it can be used directly as a Table corner level.
func AssignTags(dst []int, positions []ms3.Vec, viewpoint ms3.Vec, cfg TagConfig) []int {
	dst = dst[:0]
	hi := cfg.MaxDepth - 1
	for _, p := range positions {
		tag := ComputeTag(cfg.Mode, p, viewpoint, cfg.MaxDepth, cfg.UniformLevel)
		dst = append(dst, max(0, min(tag, hi)))
	}
	return dst
}
