package accum

import "github.com/terraflow/hydrotile/raster"

// Finalize adds each perimeter cell's resolved global offset to every
// interior cell downstream of it within the tile, stopping at the
// next perimeter cell (which is finalized by its own offset) or at
// termination, per spec §4.6. out may alias r.Acc.
func Finalize(r *LocalResult, offsetIn map[raster.Cell]int64, out []int64) {
	copy(out, r.Acc)
	buf := &raster.Buffer[raster.Dir]{W: r.W, H: r.H, Data: r.Dir}

	forEachPerimeter(r.W, r.H, func(start raster.Cell) {
		global := globalOf(r.Origin, start)
		off, ok := offsetIn[global]
		if !ok || off == 0 {
			return
		}
		startIdx := buf.Index(start)
		if out[startIdx] == raster.AccNoData {
			return
		}
		out[startIdx] += off

		cur := start
		for {
			d := buf.At(cur)
			if d == raster.DirNoData {
				return
			}
			n := raster.Step(cur, d)
			if !buf.InBounds(n) {
				return
			}
			if isPerimeter(n, r.W, r.H) {
				return // handled by its own offset
			}
			out[buf.Index(n)] += off
			cur = n
		}
	})
}

func isPerimeter(c raster.Cell, w, h int) bool {
	return c.Row == 0 || c.Row == h-1 || c.Col == 0 || c.Col == w-1
}
