package basins

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Result is the final outcome of a basin-labeling run: the raster was
// written to sink as a side effect; Ingest and Adjacency are returned
// for the caller (and, for Adjacency, for flowlen's longest-path
// extraction) to inspect.
type Result struct {
	Ingest    *IngestResult
	Adjacency []AdjEdge
}

// Run executes the full three-phase basin labeler over dirSrc,
// seeding from points (validated and optionally snapped against
// accSrc via Ingest), and writes the int64 basin-label raster through
// sink. Halo is 1: the only cross-tile information needed is each
// edge cell's own flow direction, already present one ring out.
func Run(ctx context.Context, dirSrc, accSrc raster.Source, sink raster.Sink, points []DrainagePoint, cfg Config, chunkSize, workers int, prog tile.Progress) (*Result, error) {
	ingestRes, err := Ingest(ctx, points, accSrc, cfg)
	if err != nil {
		return nil, hterr.New(hterr.InvalidInput, Stage, hterr.NoCell, err)
	}

	userPoints := make(map[raster.Cell]int64, len(ingestRes.Points))
	userIDs := make(map[int64]bool, len(ingestRes.Points))
	for _, p := range ingestRes.Points {
		userPoints[p.Cell] = p.BasinID
		userIDs[p.BasinID] = true
	}

	w, h := dirSrc.Width(), dirSrc.Height()
	plan := tile.Plan(w, h, chunkSize, 1)
	sched := tile.NewScheduler(workers)

	results := make([]*LocalResult, len(plan))
	var mu sync.Mutex
	done := 0

	runErr := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		raw, err := dirSrc.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		dir := make([]raster.Dir, len(raw))
		for i, v := range raw {
			dir[i] = raster.Dir(v)
		}

		lr, lerr, errCell := Local(dir, bw, bh, d.Halo, d.Origin, w, h, d.Index, userPoints)
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
	if runErr != nil {
		return nil, runErr
	}

	next, adj := Solve(results)

	lockedSink := tile.NewLockedSink(sink)
	done = 0
	runErr = sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		lr := results[d.Index]
		out := make([]int64, lr.W*lr.H)
		Finalize(lr, next, userIDs, cfg.AllBasins, out)
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
	if runErr != nil {
		return nil, runErr
	}

	return &Result{Ingest: ingestRes, Adjacency: adj}, nil
}
