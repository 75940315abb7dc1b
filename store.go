package arp

import (
	"log/slog"
	"sync/atomic"
)

// StoreOption configures a Store during creation.
type StoreOption func(*storeOptions)

type storeOptions struct {
	canonical Triangle
	logger    *slog.Logger
}

func defaultStoreOptions() storeOptions {
	return storeOptions{canonical: CanonicalTriangle}
}

// WithCanonical sets the triangle patterns are generated in.
// It defaults to CanonicalTriangle.
func WithCanonical(t Triangle) StoreOption {
	return func(o *storeOptions) {
		o.canonical = t
	}
}

// WithLogger sets the logger used for build and swap events.
// It defaults to the package logger returned by Logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = l
	}
}

// Store holds the current pattern table. Readers call Load without locking
// while a writer rebuilds: a new table is built to completion before it
// replaces the current one, and a failed build leaves the current table in
// place.
type Store struct {
	current atomic.Pointer[Table]
	opts    storeOptions
}

// NewStore returns a Store with a table built for maxDepth.
func NewStore(maxDepth int, opts ...StoreOption) (*Store, error) {
	s := &Store{opts: defaultStoreOptions()}
	for _, opt := range opts {
		opt(&s.opts)
	}
	if err := s.Rebuild(maxDepth); err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns the current table. It never returns nil for a Store
// created by NewStore.
func (s *Store) Load() *Table {
	return s.current.Load()
}

// Rebuild builds a table for maxDepth and makes it current. If the depth
// matches the current table nothing is done. On error the current table
// is kept.
func (s *Store) Rebuild(maxDepth int) error {
	log := s.logger()
	old := s.current.Load()
	if old != nil && old.MaxDepth() == maxDepth {
		return nil
	}
	tb, err := Build(maxDepth, s.opts.canonical)
	if err != nil {
		log.Warn("arp: rebuild rejected", slog.Int("maxDepth", maxDepth), slog.Any("err", err))
		return err
	}
	s.current.Store(tb)
	st := tb.Stats()
	log.Info("arp: pattern table ready",
		slog.Int("maxDepth", st.MaxDepth),
		slog.Int("vertices", st.Vertices),
		slog.Int("triangles", st.Triangles),
	)
	return nil
}

func (s *Store) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return Logger()
}
