package tile

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/raster"
)

// LockedSink wraps a raster.Sink with one coarse-grained mutex,
// serializing the underlying driver call per spec §4.1 ("provide a
// locked sink write") and §5 ("a single coarse-grained lock
// serializes raster-driver calls"). Workers still write
// non-overlapping interiors in parallel up to the point of the actual
// driver call; only the I/O call itself is serialized, matching the
// teacher's dual-lock discipline in core/types.go where independent
// structures (vertices vs. edges) get independent locks rather than
// one lock over everything unrelated.
type LockedSink struct {
	mu   sync.Mutex
	sink raster.Sink
}

// NewLockedSink wraps sink for safe concurrent use by tile workers.
func NewLockedSink(sink raster.Sink) *LockedSink {
	return &LockedSink{sink: sink}
}

// WriteWindow writes only the interior of a tile; halos are read-only
// context and must never reach this call.
func (s *LockedSink) WriteWindow(ctx context.Context, x, y, w, h int, data []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.WriteWindow(ctx, x, y, w, h, data)
}
