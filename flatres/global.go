package flatres

import (
	"context"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
)

// leftover is a cell that resolveRegion could not assign locally
// because no low edge was reachable inside its tile's buffer
// (interior plus halo) -- the flat region is larger than a single tile's
// context. These are rare (pathological plateaus) and are handled by
// a direct, single-threaded re-read of the region's true extent
// straight from the source, rather than a speculative larger halo
// every tile would pay for.
type leftover struct {
	Global raster.Cell
	Elev   float32
}

// components groups leftover cells into connected (8-way, equal
// elevation) sets using their global coordinates, mirroring the
// adjacency test findRegions applies locally.
func components(items []leftover) [][]leftover {
	byCell := make(map[[2]int]leftover, len(items))
	for _, it := range items {
		byCell[[2]int{it.Global.Row, it.Global.Col}] = it
	}
	seen := make(map[[2]int]bool, len(items))
	var out [][]leftover

	for _, it := range items {
		key := [2]int{it.Global.Row, it.Global.Col}
		if seen[key] {
			continue
		}
		var comp []leftover
		stack := []leftover{it}
		seen[key] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for d := raster.Dir(0); d < 8; d++ {
				n := raster.Step(cur.Global, d)
				nk := [2]int{n.Row, n.Col}
				nb, ok := byCell[nk]
				if !ok || seen[nk] || nb.Elev != cur.Elev {
					continue
				}
				seen[nk] = true
				stack = append(stack, nb)
			}
		}
		out = append(out, comp)
	}
	return out
}

// resolveLeftovers is the single-threaded global phase: for each
// connected component of tile-boundary cells no local pass could
// resolve, it reads that component's true bounding box directly from
// the source (margin cells supply the neighbor elevations needed to
// find the region's real high/low edges) and re-solves it with the
// same resolveRegion used locally.
func resolveLeftovers(ctx context.Context, src raster.Source, sink raster.Sink, items []leftover) error {
	const margin = 2
	w, h := src.Width(), src.Height()

	for _, comp := range components(items) {
		minR, minC, maxR, maxC := comp[0].Global.Row, comp[0].Global.Col, comp[0].Global.Row, comp[0].Global.Col
		for _, c := range comp {
			if c.Global.Row < minR {
				minR = c.Global.Row
			}
			if c.Global.Row > maxR {
				maxR = c.Global.Row
			}
			if c.Global.Col < minC {
				minC = c.Global.Col
			}
			if c.Global.Col > maxC {
				maxC = c.Global.Col
			}
		}
		x0 := max(0, minC-margin)
		y0 := max(0, minR-margin)
		x1 := min(w, maxC+margin+1)
		y1 := min(h, maxR+margin+1)
		bw, bh := x1-x0, y1-y0

		raw, err := src.ReadWindow(ctx, x0, y0, bw, bh)
		if err != nil {
			return hterr.New(hterr.IoError, Stage, raster.Cell{Row: y0, Col: x0}, err)
		}
		elev := make([]float32, len(raw))
		for i, v := range raw {
			elev[i] = float32(v)
		}
		dir := make([]raster.Dir, len(raw))
		for i := range dir {
			dir[i] = raster.DirNoData // placeholder: not part of the leftover region
		}
		for _, c := range comp {
			idx := (c.Global.Row-y0)*bw + (c.Global.Col - x0)
			dir[idx] = raster.DirUndefined
		}

		ResolveBuffer(elev, dir, bw, bh)

		for _, c := range comp {
			idx := (c.Global.Row-y0)*bw + (c.Global.Col - x0)
			if err := sink.WriteWindow(ctx, c.Global.Col, c.Global.Row, 1, 1, []float64{float64(dir[idx])}); err != nil {
				return hterr.New(hterr.IoError, Stage, c.Global, err)
			}
		}
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
