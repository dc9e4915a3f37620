package tile

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Scheduler drains a plan of tile descriptors across a bounded worker
// pool. It is deliberately thin: the teacher has no tiling concept to
// adapt, so the concurrency idiom here follows the pack's own
// DAG-executor convention of an errgroup.Group with SetLimit bounding
// fan-out, combined with the teacher's context-cancellation style
// (algorithms/dfs.go checks ctx between recursive steps; this checks
// ctx between tile dispatches).
type Scheduler struct {
	Workers int
}

// NewScheduler returns a Scheduler bounded to workers concurrent
// tiles. workers<=0 means "unbounded" (let errgroup run every tile
// concurrently), matching spec §5's "hardware-thread count by
// default" being a caller-supplied policy, not a hardcoded constant.
func NewScheduler(workers int) *Scheduler {
	return &Scheduler{Workers: workers}
}

// TileFunc processes one tile. Returning an error aborts the whole
// Run: per spec §4.1, tile-local algorithmic errors are captured and
// surfaced with the offending tile's descriptor by the caller wrapping
// them in an *hterr.Error before returning.
type TileFunc func(ctx context.Context, d Descriptor) error

// Run executes fn over every descriptor in plan concurrently, bounded
// by s.Workers, and returns the first error encountered (errgroup
// cancels the shared context on first error, which TileFunc
// implementations should observe via ctx.Done()). Tile iteration order
// of *dispatch* is row-major (plan is already sorted that way by
// Plan); completion order is not guaranteed, which is fine because the
// global phase between Run calls is what resolves inter-tile
// dependencies, not finish order.
func (s *Scheduler) Run(ctx context.Context, plan []Descriptor, fn TileFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for _, d := range plan {
		d := d
		g.Go(func() error {
			if Cancelled(gctx) {
				return gctx.Err()
			}
			return fn(gctx, d)
		})
	}
	return g.Wait()
}
