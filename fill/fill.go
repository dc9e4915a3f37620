package fill

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Stage is the exported name used in progress reports and wrapped
// errors for this pipeline stage.
const Stage = "fill"

// Run executes the full three-phase priority-flood fill over src,
// writing the conditioned elevation raster through sink. chunkSize<=1
// selects in-memory single-tile mode per spec §6. No halo is needed:
// the local phase treats each tile's own outer ring as the handoff
// boundary, and all cross-tile resolution happens in the
// single-threaded global phase over the merged spill graph (see
// DESIGN.md).
func Run(ctx context.Context, src raster.Source, sink raster.Sink, cfg Config, chunkSize, workers int, prog tile.Progress) error {
	w, h := src.Width(), src.Height()
	plan := tile.Plan(w, h, chunkSize, 0)

	results := make([]*LocalResult, len(plan))
	var mu sync.Mutex
	done := 0

	sched := tile.NewScheduler(workers)
	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		raw, err := src.ReadWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		elev := make([]float32, len(raw))
		for i, v := range raw {
			elev[i] = float32(v)
		}
		lr := Local(elev, d.W, d.H, 0, 0, d.W, d.H, d.Origin, w, h, d.Index, cfg)
		mu.Lock()
		results[d.Index] = lr
		done++
		if prog != nil {
			prog.Report(Stage, done, len(plan))
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	// Global phase: single-threaded, operates on the merged graph.
	g := Merge(results)
	fillElev := Solve(g)

	// Finalize phase: parallel again, raises cells and writes out.
	lockedSink := tile.NewLockedSink(sink)
	done = 0
	return sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		lr := results[d.Index]
		out := make([]float32, len(lr.Elev))
		Finalize(lr.Elev, lr.Labels, fillElev, out)
		buf := make([]float64, len(out))
		for i, v := range out {
			buf[i] = float64(v)
		}
		if err := lockedSink.WriteWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H, buf); err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		mu.Lock()
		done++
		if prog != nil {
			prog.Report(Stage, done, len(plan))
		}
		mu.Unlock()
		return nil
	})
}
