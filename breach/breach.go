package breach

import (
	"context"
	"sync"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/tile"
)

// Stage is the exported stage name for progress reports and wrapped
// errors.
const Stage = "breach"

// Run carves paths for single-cell pits (Phase A) and multi-cell pits
// via a bounded Dijkstra search (Phase B), tile by tile. The halo
// equals cfg.SearchRadius per spec §4.3. Pits whose search window
// crosses a tile boundary may be breached independently (and
// differently) in both tiles; writing only the interior and letting
// the subsequent fill stage clean up any residual pit is the soundness
// guarantee spec §4.3 documents, so no cross-tile reconciliation is
// needed here (unlike fill, accum, streams, basins).
func Run(ctx context.Context, src raster.Source, sink raster.Sink, cfg Config, chunkSize, workers int, prog tile.Progress) (Metrics, error) {
	w, h := src.Width(), src.Height()
	plan := tile.Plan(w, h, chunkSize, cfg.SearchRadius)

	var mu sync.Mutex
	var total Metrics
	done := 0

	sched := tile.NewScheduler(workers)
	lockedSink := tile.NewLockedSink(sink)

	err := sched.Run(ctx, plan, func(ctx context.Context, d tile.Descriptor) error {
		bw, bh := d.BufferSize()
		raw, err := src.ReadWindow(ctx, d.BufferOrigin().Col, d.BufferOrigin().Row, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		elev := make([]float32, len(raw))
		for i, v := range raw {
			elev[i] = float32(v)
		}
		buf := &raster.Buffer[float32]{W: bw, H: bh, Data: elev}

		unsolved, solvedA := SweepA(buf, cfg)
		solvedB, unsolvedBudget := SweepB(buf, unsolved, cfg)

		mu.Lock()
		total.PhaseASolved += solvedA
		total.PhaseBSolved += solvedB
		total.UnsolvedBudget += unsolvedBudget
		done++
		if prog != nil {
			prog.Report(Stage, done, len(plan))
		}
		mu.Unlock()

		// Write only the interior back out.
		interior := make([]float64, d.W*d.H)
		for row := 0; row < d.H; row++ {
			for col := 0; col < d.W; col++ {
				bc := raster.Cell{Row: row + d.Halo, Col: col + d.Halo}
				interior[row*d.W+col] = float64(buf.At(bc))
			}
		}
		if err := lockedSink.WriteWindow(ctx, d.Origin.Col, d.Origin.Row, d.W, d.H, interior); err != nil {
			return hterr.New(hterr.IoError, Stage, d.Origin, err)
		}
		return nil
	})
	return total, err
}
