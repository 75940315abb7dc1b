package arp

import (
	"testing"

	"github.com/soypat/glgl/math/ms3"
)

func TestComputeTagDistance(t *testing.T) {
	const maxDepth = 4
	eye := ms3.Vec{}
	for _, test := range []struct {
		d    float32
		want int
	}{
		{d: 0, want: maxDepth}, // one past the largest corner level.
		{d: 0.5, want: 3},
		{d: 1, want: 3},
		{d: 2.25, want: 1},
		{d: 3.9, want: 0},
		{d: maxDepth, want: 0},
		{d: maxDepth + 0.001, want: 0},
		{d: 1000, want: 0},
	} {
		v := ms3.Vec{X: test.d}
		got := ComputeTag(TagDistance, v, eye, maxDepth, 2)
		if got != test.want {
			t.Errorf("d=%g: got tag %d, want %d", test.d, got, test.want)
		}
	}
}

func TestComputeTagUniform(t *testing.T) {
	got := ComputeTag(TagUniform, ms3.Vec{X: 100}, ms3.Vec{}, 4, 2)
	if got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestAssignTagsClamps(t *testing.T) {
	positions := []ms3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 1.5, Z: 0},
		{X: 0, Y: 0, Z: 10},
	}
	eye := ms3.Vec{}
	got := AssignTags(nil, positions, eye, TagConfig{Mode: TagDistance, MaxDepth: 3})
	want := []int{2, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d: got tag %d, want %d", i, got[i], want[i])
		}
	}

	dst := make([]int, 10)
	got = AssignTags(dst, positions, eye, TagConfig{Mode: TagUniform, MaxDepth: 3, UniformLevel: 5})
	if len(got) != len(positions) {
		t.Fatalf("got %d tags, want %d", len(got), len(positions))
	}
	for i, tag := range got {
		if tag != 2 {
			t.Errorf("vertex %d: uniform level above range must clamp to 2, got %d", i, tag)
		}
	}
}

func TestParseTagMode(t *testing.T) {
	for _, mode := range []TagMode{TagUniform, TagDistance} {
		got, err := ParseTagMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseTagMode(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseTagMode("nearest"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
