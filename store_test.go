package arp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/soypat/glgl/math/ms3"
)

func TestStoreRebuild(t *testing.T) {
	s, err := NewStore(2)
	if err != nil {
		t.Fatal(err)
	}
	first := s.Load()
	if first.MaxDepth() != 2 {
		t.Fatalf("got depth %d, want 2", first.MaxDepth())
	}
	if err := s.Rebuild(2); err != nil {
		t.Fatal(err)
	}
	if s.Load() != first {
		t.Error("rebuild with same depth must keep the table")
	}
	if err := s.Rebuild(3); err != nil {
		t.Fatal(err)
	}
	if s.Load() == first || s.Load().MaxDepth() != 3 {
		t.Error("rebuild did not swap in new table")
	}
	// Readers holding the old table keep a valid, unchanged table.
	if off, cnt := first.Lookup(1, 1, 1); off != 21 || cnt != 12 {
		t.Errorf("old table changed: got (%d,%d)", off, cnt)
	}
}

func TestStoreFailedRebuildKeepsTable(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := NewStore(3, WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	before := s.Load()
	err = s.Rebuild(MaxDepthLimit + 1)
	if !errors.Is(err, ErrInvalidDepth) {
		t.Fatalf("got %v, want ErrInvalidDepth", err)
	}
	if s.Load() != before {
		t.Error("failed rebuild replaced the table")
	}
	if !strings.Contains(buf.String(), "rebuild rejected") {
		t.Errorf("missing warning in log output: %q", buf.String())
	}
}

func TestNewStoreInvalid(t *testing.T) {
	s, err := NewStore(0)
	if err == nil || s != nil {
		t.Errorf("NewStore(0) = %v, %v; want error", s, err)
	}
}

func TestStoreWithCanonical(t *testing.T) {
	tri := Triangle{
		Top:   ms3.Vec{Y: 2},
		Left:  ms3.Vec{X: -2},
		Right: ms3.Vec{X: 2},
	}
	s, err := NewStore(1, WithCanonical(tri))
	if err != nil {
		t.Fatal(err)
	}
	verts := s.Load().Vertices()
	if len(verts) != 3 || verts[0] != tri.Top || verts[1] != tri.Left || verts[2] != tri.Right {
		t.Errorf("got vertices %v, want corners of %v", verts, tri)
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	if _, err := Build(2, CanonicalTriangle); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "built pattern table") || !strings.Contains(out, "vertices=6") {
		t.Errorf("unexpected log output: %q", out)
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) must restore the silent logger")
	}
}
