package breach

import "github.com/terraflow/hydrotile/raster"

// SweepA runs the Phase A deterministic single-cell sweep over buf in
// row-major order, mutating it in place. It returns the pits that
// remain unsolved (to be handed to SweepB).
func SweepA(buf *raster.Buffer[float32], cfg Config) (unsolved []raster.Cell, solved int) {
	for row := 0; row < buf.H; row++ {
		for col := 0; col < buf.W; col++ {
			c := raster.Cell{Row: row, Col: col}
			z := buf.At(c)
			if raster.IsNoData(z) {
				continue
			}
			if !isPit(buf, c, z) {
				continue
			}
			if solveA(buf, c, z, cfg) {
				solved++
				continue
			}
			unsolved = append(unsolved, c)
		}
	}
	return unsolved, solved
}

// ring2Offset is the full 16-cell Chebyshev-radius-2 ring around a
// pit, in the order of original_source's dx2/dy2 tables: the 8 exact
// D8 diagonal/cardinal radius-2 cells interleaved with the 8 "knight"
// cells ((±2,±1) and (±1,±2)) a plain radius-2 D8 step never reaches.
var ring2Offset = [16]struct{ DRow, DCol int }{
	{-2, 2}, {-1, 2}, {0, 2}, {1, 2}, {2, 2}, {2, 1}, {2, 0}, {2, -1},
	{2, -2}, {1, -2}, {0, -2}, {-1, -2}, {-2, -2}, {-2, -1}, {-2, 0}, {-2, 1},
}

// ring2Intermediate maps each ring2Offset entry to the radius-1
// direction whose cell lies between the pit and that ring cell --
// original_source's breachcell table. Each exact diagonal/cardinal
// direction catches its own ring cell plus the adjacent knight cell
// that has no radius-1 cell of its own along the same line; N's
// second neighbor instead wraps back to NE, matching
// original_source's table exactly rather than a symmetric rule.
var ring2Intermediate = [16]raster.Dir{
	raster.DirNE, raster.DirNE, raster.DirE, raster.DirE,
	raster.DirSE, raster.DirSE, raster.DirS, raster.DirS,
	raster.DirSW, raster.DirSW, raster.DirW, raster.DirW,
	raster.DirNW, raster.DirNW, raster.DirN, raster.DirNE,
}

// solveA inspects all 16 ring2Offset cells around the pit at c and
// breaches the radius-1 intermediate along every direction whose
// radius-2 target is low enough or nodata, per spec §4.3 and
// original_source's breach_single_cell_pits_in_chunk (which applies
// every qualifying breach in the same pass, not just the first).
func solveA(buf *raster.Buffer[float32], c raster.Cell, z float32, cfg Config) bool {
	solved := false
	for k, o := range ring2Offset {
		target := raster.Cell{Row: c.Row + o.DRow, Col: c.Col + o.DCol}
		if !buf.InBounds(target) {
			continue
		}
		zt := buf.At(target)
		nodata := raster.IsNoData(zt)
		if !nodata && zt > z {
			continue
		}
		solved = true
		zTarget := zt
		if nodata {
			zTarget = z - 2*float32(cfg.Epsilon)
		}
		intermediate := raster.Step(c, ring2Intermediate[k])
		buf.Set(intermediate, (z+zTarget)/2)
	}
	return solved
}
