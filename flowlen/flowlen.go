package flowlen

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Run executes the three-phase flow-length relaxation over dirSrc and
// the already-finalized basin raster basinSrc, seeded from points
// (basins.Ingest's accepted, snapped output) and writing the float32
// length raster through lengthSink. It then extracts the longest flow
// path for every terminal basin in adj (basins.Run's returned
// adjacency graph) and writes each as a polyline through lineSink.
// Halo is 1, same as basins: the only cross-tile context a cell needs
// is its own neighbors' direction and basin membership.
func Run(ctx context.Context, dirSrc, basinSrc raster.Source, lengthSink raster.Sink, lineSink raster.LineSink, layer string, points []basins.DrainagePoint, adj []basins.AdjEdge, chunkSize, workers int, prog tile.Progress) error {
	w, h := dirSrc.Width(), dirSrc.Height()
	gt := dirSrc.GeoTransform()
	projected := dirSrc.CRS().IsProjected

	plan := tile.Plan(w, h, chunkSize, 1)
	sched := tile.NewScheduler(workers)

	results := make([]*LocalResult, len(plan))
	var mu sync.Mutex
	done := 0

	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		bo := d.BufferOrigin()

		rawDir, err := dirSrc.ReadWindow(ctx, bo.Col, bo.Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		dir := make([]raster.Dir, len(rawDir))
		for i, v := range rawDir {
			dir[i] = raster.Dir(v)
		}

		rawBasin, err := basinSrc.ReadWindow(ctx, bo.Col, bo.Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		basin := make([]int64, len(rawBasin))
		for i, v := range rawBasin {
			basin[i] = int64(v)
		}

		lr := Local(dir, basin, bw, bh, d.Halo, d.Origin, w, h, gt, projected, points)

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

	globalClaim, serr := Solve(results)
	if serr != nil {
		return hterr.New(hterr.InvalidInput, Stage, hterr.NoCell, serr)
	}

	lockedSink := tile.NewLockedSink(lengthSink)
	perBasinMax := make(map[int64]BasinMax)
	done = 0

	err = sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		r := results[d.Index]
		length, _, candidates := Finalize(r, globalClaim, gt, projected)

		if err := lockedSink.WriteWindow(ctx, r.Origin.Col, r.Origin.Row, r.W, r.H, length); err != nil {
			return hterr.New(hterr.IoError, Stage, r.Origin, err)
		}

		mu.Lock()
		for _, c := range candidates {
			if cur, ok := perBasinMax[c.Basin]; !ok || c.Length > cur.Length {
				perBasinMax[c.Basin] = c
			}
		}
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

	return LongestPaths(ctx, dirSrc, adj, perBasinMax, lineSink, layer)
}
