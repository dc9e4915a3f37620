// Package flowdir implements D8 steepest-descent flow direction
// assignment (spec §4.4): for every non-nodata cell, the direction of
// maximum positive slope among its 8 neighbors, or DirUndefined if no
// neighbor is downhill. Halo is 1: the one ring of neighbors the
// slope comparison reads.
package flowdir

import (
	"context"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Stage is the exported stage name for progress reports and errors.
const Stage = "flowdir"

// Assign computes the direction code for a single cell given its
// elevation and a neighbor-lookup closure. It is factored out of the
// tiled Run so a cell can be computed on any in-memory buffer without
// going through the scheduler; within this module only Run calls it.
func Assign(z float32, neighbor func(d raster.Dir) (float32, bool)) raster.Dir {
	if raster.IsNoData(z) {
		return raster.DirNoData
	}
	best := raster.DirUndefined
	bestSlope := 0.0
	for d := raster.Dir(0); d < 8; d++ {
		zn, ok := neighbor(d)
		if !ok || raster.IsNoData(zn) {
			continue
		}
		slope := (float64(z) - float64(zn)) / raster.StepDist(d)
		if slope > 0 && slope > bestSlope {
			bestSlope = slope
			best = d
		}
	}
	return best
}

// Run computes D8 directions for the whole raster, tile by tile, and
// writes the byte direction raster through sink.
func Run(ctx context.Context, src raster.Source, sink raster.Sink, chunkSize, workers int, prog tile.Progress) error {
	w, h := src.Width(), src.Height()
	plan := tile.Plan(w, h, chunkSize, 1)
	sched := tile.NewScheduler(workers)
	lockedSink := tile.NewLockedSink(sink)
	done := 0

	return sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		raw, err := src.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		buf := &raster.Buffer[float64]{W: bw, H: bh, Data: raw}

		out := make([]float64, d.W*d.H)
		for row := 0; row < d.H; row++ {
			for col := 0; col < d.W; col++ {
				bc := raster.Cell{Row: row + d.Halo, Col: col + d.Halo}
				z := float32(buf.At(bc))
				code := Assign(z, func(dir raster.Dir) (float32, bool) {
					n := raster.Step(bc, dir)
					if !buf.InBounds(n) {
						return 0, false
					}
					return float32(buf.At(n)), true
				})
				out[row*d.W+col] = float64(code)
			}
		}
		if err := lockedSink.WriteWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H, out); err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		done++
		if prog != nil {
			prog.Report(Stage, done, len(plan))
		}
		return nil
	})
}
