package accum

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Run executes the three-phase flow accumulation over a direction
// raster, writing the int64 accumulation raster through sink. No halo
// is needed (see LocalResult doc): every cross-tile dependency is
// resolved by the perimeter-link graph between the local and finalize
// passes.
func Run(ctx context.Context, dirSrc raster.Source, sink raster.Sink, chunkSize, workers int, prog tile.Progress) error {
	w, h := dirSrc.Width(), dirSrc.Height()
	plan := tile.Plan(w, h, chunkSize, 0)
	sched := tile.NewScheduler(workers)

	results := make([]*LocalResult, len(plan))
	var mu sync.Mutex
	done := 0

	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		raw, err := dirSrc.ReadWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		dir := make([]raster.Dir, len(raw))
		for i, v := range raw {
			dir[i] = raster.Dir(v)
		}

		lr, lerr, errCell := Local(dir, d.W, d.H, d.Origin)
		if lerr != nil {
			global := raster.Cell{Row: d.Origin.Row + errCell.Row, Col: d.Origin.Col + errCell.Col}
			if errCell.Row < 0 {
				global = hterr.NoCell
			}
			return hterr.New(hterr.InvalidInput, Stage, global, lerr)
		}

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

	offsetIn, serr := Solve(results)
	if serr != nil {
		return hterr.New(hterr.InvalidInput, Stage, hterr.NoCell, serr)
	}

	lockedSink := tile.NewLockedSink(sink)
	done = 0
	return sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		lr := results[d.Index]
		out := make([]int64, lr.W*lr.H)
		Finalize(lr, offsetIn, out)
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
