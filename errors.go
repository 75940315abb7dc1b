package arp

import "errors"

var (
	// ErrInvalidDepth is returned when a maximum depth is outside [1, MaxDepthLimit].
	ErrInvalidDepth = errors.New("arp: invalid max depth")
)
