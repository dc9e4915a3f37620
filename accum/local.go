package accum

import (
	"errors"

	"github.com/terraflow/hydrotile/raster"
)

// ErrUndirected is returned by Local when the direction buffer
// contains a DirUndefined cell: accumulation's precondition (spec
// §4.6) requires flat resolution to have already run.
var ErrUndirected = errors.New("accum: direction raster contains an undefined (code 8) cell")

// ErrCycle is returned by Local when the FIFO drain cannot reach every
// non-nodata cell, meaning the direction raster contains a cycle.
var ErrCycle = errors.New("accum: direction raster contains a cycle")

// Local runs the tile-local accumulation drain over a halo-free
// direction buffer (w*h, row-major) and returns the local
// accumulation values plus the cross-tile exit links for every
// perimeter cell. errCell, when err is non-nil, is the tile-local
// cell that triggered it (the caller translates to a global
// coordinate for the wrapped hterr.Error).
func Local(dir []raster.Dir, w, h int, origin raster.Cell) (res *LocalResult, err error, errCell raster.Cell) {
	buf := &raster.Buffer[raster.Dir]{W: w, H: h, Data: dir}
	acc := make([]int64, w*h)
	inflow := make([]int, w*h)

	downstream := func(c raster.Cell) (raster.Cell, bool) {
		d := buf.At(c)
		if d == raster.DirUndefined {
			return raster.Cell{}, false
		}
		if d == raster.DirNoData {
			return raster.Cell{}, false
		}
		n := raster.Step(c, d)
		if !buf.InBounds(n) {
			return raster.Cell{}, false
		}
		if buf.At(n) == raster.DirNoData {
			return raster.Cell{}, false
		}
		return n, true
	}

	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := raster.Cell{Row: row, Col: col}
			idx := buf.Index(c)
			if buf.Data[idx] == raster.DirUndefined {
				return nil, ErrUndirected, c
			}
			if buf.Data[idx] == raster.DirNoData {
				acc[idx] = raster.AccNoData
				continue
			}
			if n, ok := downstream(c); ok {
				inflow[buf.Index(n)]++
			}
		}
	}

	var fifo []raster.Cell
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			c := raster.Cell{Row: row, Col: col}
			idx := buf.Index(c)
			if buf.Data[idx] == raster.DirNoData {
				continue
			}
			if inflow[idx] == 0 {
				fifo = append(fifo, c)
			}
		}
	}

	processed := 0
	for len(fifo) > 0 {
		c := fifo[0]
		fifo = fifo[1:]
		idx := buf.Index(c)
		acc[idx]++
		processed++
		if n, ok := downstream(c); ok {
			ni := buf.Index(n)
			acc[ni] += acc[idx]
			inflow[ni]--
			if inflow[ni] == 0 {
				fifo = append(fifo, n)
			}
		}
	}

	total := 0
	for _, d := range dir {
		if d != raster.DirNoData {
			total++
		}
	}
	if processed != total {
		return nil, ErrCycle, raster.Cell{Row: -1, Col: -1}
	}

	links := traceExitLinks(buf, acc, w, h, origin)
	perimeter := collectPerimeter(acc, w, h, origin)

	return &LocalResult{
		Acc: acc, Dir: dir, W: w, H: h, Origin: origin,
		ExitLinks: links, Perimeter: perimeter,
	}, nil, raster.Cell{}
}

// traceExitLinks computes, for every outer-ring cell of the tile, the
// ExitLink per spec §4.6: follow flow within the tile until it either
// reaches the next perimeter cell (recorded as Exit, a pass-through
// link), or leaves the tile from the start cell itself (Exit equals
// From, with Target the neighboring global cell), or terminates
// (nodata downstream). Cycles are already ruled out above by the
// processed-count check.
func traceExitLinks(buf *raster.Buffer[raster.Dir], acc []int64, w, h int, origin raster.Cell) []ExitLink {
	var out []ExitLink
	forEachPerimeter(w, h, func(start raster.Cell) {
		cur := start
		for {
			d := buf.At(cur)
			if d == raster.DirNoData {
				return // terminates, no edge
			}
			n := raster.Step(cur, d)
			if !buf.InBounds(n) {
				// cur is the crossing cell; n is outside this tile.
				global := raster.Cell{Row: origin.Row + n.Row, Col: origin.Col + n.Col}
				out = append(out, ExitLink{
					From: globalOf(origin, start), Exit: globalOf(origin, cur),
					Target: global, HasTarget: true,
				})
				return
			}
			if isPerimeter(n, w, h) {
				out = append(out, ExitLink{From: globalOf(origin, start), Exit: globalOf(origin, n)})
				return
			}
			cur = n
		}
	})
	return out
}

func globalOf(origin, local raster.Cell) raster.Cell {
	return raster.Cell{Row: origin.Row + local.Row, Col: origin.Col + local.Col}
}

// forEachPerimeter invokes fn once for every outer-ring cell of a
// w*h tile (top/bottom rows, left/right columns), skipping duplicate
// corners.
func forEachPerimeter(w, h int, fn func(c raster.Cell)) {
	for col := 0; col < w; col++ {
		fn(raster.Cell{Row: 0, Col: col})
		if h > 1 {
			fn(raster.Cell{Row: h - 1, Col: col})
		}
	}
	for row := 1; row < h-1; row++ {
		fn(raster.Cell{Row: row, Col: 0})
		if w > 1 {
			fn(raster.Cell{Row: row, Col: w - 1})
		}
	}
}

func collectPerimeter(acc []int64, w, h int, origin raster.Cell) []PerimeterAcc {
	var out []PerimeterAcc
	forEachPerimeter(w, h, func(c raster.Cell) {
		idx := c.Row*w + c.Col
		if acc[idx] == raster.AccNoData {
			return
		}
		out = append(out, PerimeterAcc{Cell: globalOf(origin, c), Acc: acc[idx]})
	})
	return out
}
