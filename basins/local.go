package basins

import (
	"errors"

	"github.com/terraflow/hydrotile/raster"
)

// ErrUndirected is returned by Local when the direction buffer
// contains a DirUndefined cell: basin labeling's precondition, like
// accumulation's, requires flat resolution to have already run.
var ErrUndirected = errors.New("basins: direction raster contains an undefined (code 8) cell")

// ErrCycle is returned by Local when the upstream walk cannot reach
// every non-nodata interior cell, meaning the direction raster
// contains a cycle.
var ErrCycle = errors.New("basins: direction raster contains a cycle")

// queueItem is one pending upstream-walk step: the cell plus the
// label currently propagating into it, mirroring bfs.queueItem's
// (id, parent) shape with depth replaced by label.
type queueItem struct {
	cell  raster.Cell
	label int64
}

// Local runs the tile-local outlet-seeded upstream walk over a
// halo-included direction buffer (bw*bh, row-major). origin is the
// interior's global origin; userPoints maps global cell coordinates
// of accepted drainage points to their externally assigned basin ID.
// errCell, when err is non-nil, is the tile-local cell that triggered
// it.
func Local(dir []raster.Dir, bw, bh, halo int, origin raster.Cell, rasterW, rasterH, tileIndex int, userPoints map[raster.Cell]int64) (res *LocalResult, err error, errCell raster.Cell) {
	buf := &raster.Buffer[raster.Dir]{W: bw, H: bh, Data: dir}
	iw, ih := bw-2*halo, bh-2*halo

	isInterior := func(c raster.Cell) bool {
		return c.Row >= halo && c.Row < halo+ih && c.Col >= halo && c.Col < halo+iw
	}
	toGlobal := func(c raster.Cell) raster.Cell {
		return raster.Cell{Row: origin.Row + c.Row - halo, Col: origin.Col + c.Col - halo}
	}
	// offRaster reports whether a buffer-local cell's global coordinate
	// falls outside the full raster. Checked ahead of any buf.At on a
	// halo cell: a direction step landing outside the raster (e.g. off
	// a raster edge on a less-than-full-height last row of tiles) can
	// still be "in bounds" of an over-sized halo buffer without the
	// driver having filled it with real data, so raster extent --
	// never buffer extent -- is what decides "true terminal".
	offRaster := func(c raster.Cell) bool {
		g := toGlobal(c)
		return g.Row < 0 || g.Row >= rasterH || g.Col < 0 || g.Col >= rasterW
	}

	labels := make([]int64, bw*bh)
	// Tile-local labels are offset by tileIndex*bw*bh so that, once
	// merged across tiles in the global phase, no two tiles can ever
	// mint the same fresh label -- every cell could in the worst case
	// become its own outlet, so bw*bh is a safe per-tile stride (same
	// scheme as fill.Local's nextLabel).
	nextLabel := int64(1) + int64(tileIndex)*int64(bw*bh)

	var queue []queueItem
	var switchEdges []AdjEdge

	for row := halo; row < halo+ih; row++ {
		for col := halo; col < halo+iw; col++ {
			c := raster.Cell{Row: row, Col: col}
			idx := buf.Index(c)
			d := buf.Data[idx]
			if d == raster.DirNoData {
				continue
			}
			if d == raster.DirUndefined {
				return nil, ErrUndirected, c
			}
			n := raster.Step(c, d)
			var outlet bool
			switch {
			case offRaster(n):
				outlet = true
			case isInterior(n):
				outlet = buf.At(n) == raster.DirNoData
			default:
				outlet = true // crosses into a neighboring tile
			}
			if !outlet {
				continue
			}
			label := nextLabel
			nextLabel++
			labels[idx] = label
			queue = append(queue, queueItem{cell: c, label: label})
		}
	}

	processed := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		processed++

		for dd := raster.Dir(0); dd < 8; dd++ {
			m := raster.Step(item.cell, dd)
			if !isInterior(m) {
				continue // cross-tile inflow is resolved by the sending tile's own ExitEdge
			}
			mIdx := buf.Index(m)
			if buf.Data[mIdx] == raster.DirNoData {
				continue
			}
			if raster.Step(m, buf.Data[mIdx]) != item.cell {
				continue // m does not actually flow into item.cell
			}
			if labels[mIdx] != 0 {
				continue // already visited; every interior cell has exactly one downstream
			}

			propagated := item.label
			if userID, ok := userPoints[toGlobal(m)]; ok {
				switchEdges = append(switchEdges, AdjEdge{Upstream: userID, Downstream: item.label})
				propagated = userID
			}
			labels[mIdx] = propagated
			queue = append(queue, queueItem{cell: m, label: propagated})
		}
	}

	total := 0
	for row := halo; row < halo+ih; row++ {
		for col := halo; col < halo+iw; col++ {
			if buf.At(raster.Cell{Row: row, Col: col}) != raster.DirNoData {
				total++
			}
		}
	}
	if processed != total {
		return nil, ErrCycle, raster.Cell{Row: -1, Col: -1}
	}

	interior := make([]int64, iw*ih)
	for row := 0; row < ih; row++ {
		for col := 0; col < iw; col++ {
			interior[row*iw+col] = labels[buf.Index(raster.Cell{Row: row + halo, Col: col + halo})]
		}
	}

	var exits []ExitEdge
	for row := halo; row < halo+ih; row++ {
		for col := halo; col < halo+iw; col++ {
			c := raster.Cell{Row: row, Col: col}
			d := buf.At(c)
			if d == raster.DirNoData {
				continue
			}
			n := raster.Step(c, d)
			if offRaster(n) || isInterior(n) {
				continue // true raster-edge terminal, or stays within the tile
			}
			exits = append(exits, ExitEdge{From: toGlobal(c), Target: toGlobal(n)})
		}
	}

	boundary := collectBoundary(labels, buf, halo, iw, ih, toGlobal)

	return &LocalResult{
		Labels: interior, W: iw, H: ih, Origin: origin,
		Boundary: boundary, Exits: exits, SwitchEdges: switchEdges,
	}, nil, raster.Cell{}
}

func collectBoundary(labels []int64, buf *raster.Buffer[raster.Dir], halo, iw, ih int, toGlobal func(raster.Cell) raster.Cell) []BoundaryLabel {
	var out []BoundaryLabel
	add := func(c raster.Cell) {
		idx := buf.Index(c)
		if buf.Data[idx] == raster.DirNoData {
			return
		}
		out = append(out, BoundaryLabel{Global: toGlobal(c), Label: labels[idx]})
	}
	for col := halo; col < halo+iw; col++ {
		add(raster.Cell{Row: halo, Col: col})
		if ih > 1 {
			add(raster.Cell{Row: halo + ih - 1, Col: col})
		}
	}
	for row := halo + 1; row < halo+ih-1; row++ {
		add(raster.Cell{Row: row, Col: halo})
		if iw > 1 {
			add(raster.Cell{Row: row, Col: halo + iw - 1})
		}
	}
	return out
}
