package flatres

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Stage is the exported stage name for progress reports and wrapped
// errors.
const Stage = "flatres"

// DefaultConfig returns the stage's default tuning per spec §6.
func DefaultConfig() Config {
	return Config{FlatChunkMax: 2048}
}

// Run resolves every undefined direction left by flowdir into a
// synthetic drainage gradient. elevSrc supplies elevations, dirSrc the
// byte codes flowdir produced; the result is written to sink. Tiling
// is governed by chunkSize capped at cfg.FlatChunkMax, per spec §4.5 --
// this stage's tile size is itself a tuning knob, since a flat region
// that doesn't fit inside one tile's halo falls back to the slower
// single-threaded global phase.
func Run(ctx context.Context, elevSrc, dirSrc raster.Source, sink raster.Sink, cfg Config, chunkSize, workers int, prog tile.Progress) error {
	w, h := elevSrc.Width(), elevSrc.Height()
	if chunkSize <= 0 || chunkSize > cfg.FlatChunkMax {
		chunkSize = cfg.FlatChunkMax
	}
	halo := chunkSize / 4
	if halo < 2 {
		halo = 2
	}
	plan := tile.Plan(w, h, chunkSize, halo)
	sched := tile.NewScheduler(workers)
	lockedSink := tile.NewLockedSink(sink)

	var mu sync.Mutex
	var leftovers []leftover
	done := 0

	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		rawElev, err := elevSrc.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		rawDir, err := dirSrc.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}

		elev := make([]float32, len(rawElev))
		for i, v := range rawElev {
			elev[i] = float32(v)
		}
		dir := make([]raster.Dir, len(rawDir))
		for i, v := range rawDir {
			dir[i] = raster.Dir(v)
		}

		ResolveBuffer(elev, dir, bw, bh)

		out := make([]float64, d.W*d.H)
		var tileLeftovers []leftover
		for row := 0; row < d.H; row++ {
			for col := 0; col < d.W; col++ {
				bRow, bCol := row+d.Halo, col+d.Halo
				idx := bRow*bw + bCol
				out[row*d.W+col] = float64(dir[idx])
				if dir[idx] == raster.DirUndefined {
					gc := raster.Cell{Row: d.Origin.Row + row, Col: d.Origin.Col + col}
					tileLeftovers = append(tileLeftovers, leftover{Global: gc, Elev: elev[idx]})
				}
			}
		}
		if err := lockedSink.WriteWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H, out); err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}

		mu.Lock()
		leftovers = append(leftovers, tileLeftovers...)
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
	if len(leftovers) == 0 {
		return nil
	}
	if prog != nil {
		prog.Report(Stage+":global", 0, 1)
	}
	return resolveLeftovers(ctx, elevSrc, sink, leftovers)
}
