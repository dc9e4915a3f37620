package flowlen

import "github.com/terraflow/hydrotile/raster"

// Finalize re-seeds this tile's relaxation with any perimeter cell
// whose globally-resolved Claim beats what the local phase found on
// its own, then re-runs relaxBFS to flood that improvement inward,
// per spec §4.9's cross-tile confluence case. It returns the final
// per-interior-cell Length/Basin (row-major, r.W*r.H) plus, per basin
// label this tile actually touched, the cell/length it found to be
// the tile-local maximum -- candidates for the orchestrator's
// across-tile per-basin reduction.
func Finalize(r *LocalResult, globalClaim map[raster.Cell]Claim, gt raster.GeoTransform, projected bool) (length []float64, basin []int64, candidates []BasinMax) {
	bw, bh, halo := r.BW, r.BH, r.Halo
	iw, ih := r.W, r.H
	dirBuf := &raster.Buffer[raster.Dir]{W: bw, H: bh, Data: r.DirBuf}
	basinBuf := &raster.Buffer[int64]{W: bw, H: bh, Data: r.BasinBuf}

	isInterior := func(c raster.Cell) bool {
		return c.Row >= halo && c.Row < halo+ih && c.Col >= halo && c.Col < halo+iw
	}
	toGlobal := func(c raster.Cell) raster.Cell {
		return raster.Cell{Row: r.Origin.Row + c.Row - halo, Col: r.Origin.Col + c.Col - halo}
	}

	claimed := make([]bool, bw*bh)
	buf := make([]float64, bw*bh)
	owner := make([]int64, bw*bh)
	for row := 0; row < ih; row++ {
		for col := 0; col < iw; col++ {
			b := r.Basin[row*iw+col]
			if b == raster.BasinNoData {
				continue
			}
			idx := dirBuf.Index(raster.Cell{Row: row + halo, Col: col + halo})
			claimed[idx] = true
			buf[idx] = r.Length[row*iw+col]
			owner[idx] = b
		}
	}

	var queue []queueItem
	improve := func(c raster.Cell) {
		global := toGlobal(c)
		gc, ok := globalClaim[global]
		if !ok || gc.Basin == raster.BasinNoData {
			return
		}
		idx := dirBuf.Index(c)
		if claimed[idx] && (owner[idx] != gc.Basin || buf[idx] >= gc.Length) {
			return
		}
		claimed[idx] = true
		buf[idx] = gc.Length
		owner[idx] = gc.Basin
		queue = append(queue, queueItem{cell: c, claim: gc})
	}
	for col := halo; col < halo+iw; col++ {
		improve(raster.Cell{Row: halo, Col: col})
		if ih > 1 {
			improve(raster.Cell{Row: halo + ih - 1, Col: col})
		}
	}
	for row := halo + 1; row < halo+ih-1; row++ {
		improve(raster.Cell{Row: row, Col: halo})
		if iw > 1 {
			improve(raster.Cell{Row: row, Col: halo + iw - 1})
		}
	}

	relaxBFS(dirBuf, basinBuf, isInterior, toGlobal, gt, projected, claimed, buf, owner, queue)

	length = make([]float64, iw*ih)
	basin = make([]int64, iw*ih)
	best := make(map[int64]BasinMax)
	for row := 0; row < ih; row++ {
		for col := 0; col < iw; col++ {
			local := raster.Cell{Row: row + halo, Col: col + halo}
			idx := dirBuf.Index(local)
			out := row*iw + col
			if !claimed[idx] {
				length[out] = float64(raster.LengthNoData)
				basin[out] = raster.BasinNoData
				continue
			}
			length[out] = buf[idx]
			basin[out] = owner[idx]
			if cur, ok := best[owner[idx]]; !ok || buf[idx] > cur.Length {
				best[owner[idx]] = BasinMax{Basin: owner[idx], Cell: toGlobal(local), Length: buf[idx]}
			}
		}
	}
	for _, bm := range best {
		candidates = append(candidates, bm)
	}
	return length, basin, candidates
}
