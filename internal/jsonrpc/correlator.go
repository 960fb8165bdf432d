package jsonrpc

import (
	"sync/atomic"
)

// RequestIDSource hands out request correlation IDs.
// IDs are strictly increasing, never reused within the lifetime of the host
// process, and unique across all servers sharing the same source. The zero
// value is ready to use; the first ID issued is 1.
//
// The source is an explicitly-owned value held by whoever dispatches calls,
// not a package-level singleton, so tests construct fresh counters.
type RequestIDSource struct {
	n atomic.Uint64
}

// NewRequestIDSource returns a fresh source seeded so that Next returns 1 first.
func NewRequestIDSource() *RequestIDSource {
	return &RequestIDSource{}
}

// Next returns the next unique request ID.
// Safe for concurrent use from any number of goroutines.
func (s *RequestIDSource) Next() uint64 {
	return s.n.Add(1)
}
