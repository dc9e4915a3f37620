package streams

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Result is the final, stitched stream network.
type Result struct {
	Segments  []*Segment
	Junctions []Junction
}

// Run classifies, traces, and stitches the stream network from an
// accumulation and direction raster pair, tile by tile, per spec
// §4.7. Halo is 1: node classification only ever needs one ring of
// context, and cross-tile reach continuation is resolved by Stitch
// rather than a larger halo.
func Run(ctx context.Context, accSrc, dirSrc raster.Source, cfg Config, chunkSize, workers int, prog tile.Progress) (*Result, error) {
	w, h := dirSrc.Width(), dirSrc.Height()
	gt := dirSrc.GeoTransform()
	plan := tile.Plan(w, h, chunkSize, 1)
	sched := tile.NewScheduler(workers)

	results := make([]*LocalResult, len(plan))
	var mu sync.Mutex
	done := 0

	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		rawAcc, err := accSrc.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		rawDir, err := dirSrc.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		acc := make([]int64, len(rawAcc))
		for i, v := range rawAcc {
			acc[i] = int64(v)
		}
		dir := make([]raster.Dir, len(rawDir))
		for i, v := range rawDir {
			dir[i] = raster.Dir(v)
		}

		// FIDs are assigned per-tile starting at a tile-unique stride
		// so merged results never collide, mirroring fill's per-tile
		// label offset trick.
		fid := int64(d.Index) * int64(bw*bh) * 4
		lr := Trace(acc, dir, bw, bh, d.Halo, d.Origin, w, h, cfg.Threshold, gt, &fid)

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
		return nil, err
	}

	var segs []*Segment
	var junctions []Junction
	for _, r := range results {
		segs = append(segs, r.Segments...)
		junctions = append(junctions, r.Junctions...)
	}
	segs = Stitch(segs)

	return &Result{Segments: segs, Junctions: junctions}, nil
}
