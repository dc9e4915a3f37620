package flowlen

import "github.com/terraflow/hydrotile/raster"

// relaxBFS drains queue, relaxing every upstream neighbor of each
// popped cell against the cell's own claim plus one step's distance,
// same-basin only, keeping the greater of any two competing claims --
// the "confluence rejoin" case spec §4.9 requires a plain BFS to
// revisit a cell for. Shared by Local (seeded from this tile's own
// drainage points) and Finalize (re-seeded from globally-improved
// perimeter claims) so the two phases relax identically.
func relaxBFS(
	dirBuf *raster.Buffer[raster.Dir], basinBuf *raster.Buffer[int64],
	isInterior func(raster.Cell) bool, toGlobal func(raster.Cell) raster.Cell,
	gt raster.GeoTransform, projected bool,
	claimed []bool, length []float64, owner []int64, queue []queueItem,
) {
	claim := func(c raster.Cell, cl Claim) {
		idx := dirBuf.Index(c)
		claimed[idx] = true
		length[idx] = cl.Length
		owner[idx] = cl.Basin
		queue = append(queue, queueItem{cell: c, claim: cl})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for dd := raster.Dir(0); dd < 8; dd++ {
			m := raster.Step(item.cell, dd)
			if !isInterior(m) {
				continue // cross-tile inflow resolved by the sending tile's own Exit
			}
			mIdx := dirBuf.Index(m)
			if dirBuf.Data[mIdx] == raster.DirNoData {
				continue
			}
			if raster.Step(m, dirBuf.Data[mIdx]) != item.cell {
				continue // m does not flow into item.cell
			}
			if basinBuf.At(m) != item.claim.Basin {
				continue // other basin: ignore, per spec §4.9
			}
			dist := StepDistance(gt, projected, toGlobal(item.cell), toGlobal(m))
			candidate := item.claim.Length + dist
			if claimed[mIdx] && length[mIdx] >= candidate {
				continue
			}
			claim(m, Claim{Length: candidate, Basin: item.claim.Basin})
		}
	}
}
