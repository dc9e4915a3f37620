package streams

import "github.com/terraflow/hydrotile/raster"

// classify reports whether the cell at idx is a stream cell (spec
// §4.7's isStream): a valid, non-nodata accumulation at or above
// threshold.
func classify(acc []int64, idx int, threshold int64) bool {
	return acc[idx] != raster.AccNoData && acc[idx] >= threshold
}

// Trace runs the tile-local node detection and reach vectorization.
// acc/dir are halo-included buffers (bw*bh); halo is the buffer's
// halo width (always 1 for this stage -- node classification only
// ever needs one ring of context). origin is the interior's global
// origin; rasterW/rasterH are the full raster dimensions, needed to
// tell a true outlet (flows off the raster edge) from a tile-interior
// stub (flows into a neighboring tile).
func Trace(acc []int64, dir []raster.Dir, bw, bh, halo int, origin raster.Cell, rasterW, rasterH int, threshold int64, gt raster.GeoTransform, nextFID *int64) *LocalResult {
	buf := &raster.Buffer[raster.Dir]{W: bw, H: bh, Data: dir}
	iw, ih := bw-2*halo, bh-2*halo

	isInterior := func(c raster.Cell) bool {
		return c.Row >= halo && c.Row < halo+ih && c.Col >= halo && c.Col < halo+iw
	}
	toGlobal := func(c raster.Cell) raster.Cell {
		return raster.Cell{Row: origin.Row + c.Row - halo, Col: origin.Col + c.Col - halo}
	}

	inflow := func(c raster.Cell) (count int, fromHalo bool) {
		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(c, d)
			if !buf.InBounds(n) {
				continue
			}
			ni := buf.Index(n)
			if !classify(acc, ni, threshold) {
				continue
			}
			if raster.Step(n, buf.At(n)) != c {
				continue
			}
			count++
			if !isInterior(n) {
				fromHalo = true
			}
		}
		return
	}

	isOutlet := func(c raster.Cell) bool {
		g := toGlobal(c)
		d := buf.At(c)
		if d == raster.DirNoData || d == raster.DirUndefined {
			return true
		}
		n := raster.Step(c, d)
		if !buf.InBounds(n) {
			gn := raster.Cell{Row: g.Row + (n.Row - c.Row), Col: g.Col + (n.Col - c.Col)}
			return gn.Row < 0 || gn.Row >= rasterH || gn.Col < 0 || gn.Col >= rasterW
		}
		return !classify(acc, buf.Index(n), threshold)
	}

	res := &LocalResult{}
	var starts []raster.Cell
	startStub := make(map[raster.Cell]bool)

	for row := halo; row < halo+ih; row++ {
		for col := halo; col < halo+iw; col++ {
			c := raster.Cell{Row: row, Col: col}
			idx := buf.Index(c)
			if !classify(acc, idx, threshold) {
				continue
			}
			cnt, fromHalo := inflow(c)
			g := toGlobal(c)
			switch {
			case cnt == 0:
				res.Junctions = append(res.Junctions, Junction{FID: nextFIDVal(nextFID), Global: g, Kind: raster.JunctionSource})
				starts = append(starts, c)
			case cnt >= 2:
				res.Junctions = append(res.Junctions, Junction{FID: nextFIDVal(nextFID), Global: g, Kind: raster.JunctionConfluence})
				starts = append(starts, c)
			case fromHalo:
				starts = append(starts, c)
				startStub[c] = true
			}
			if isOutlet(c) {
				res.Junctions = append(res.Junctions, Junction{FID: nextFIDVal(nextFID), Global: g, Kind: raster.JunctionOutlet})
			}
		}
	}

	for _, s := range starts {
		seg := traceReach(buf, acc, threshold, s, halo, iw, ih, origin, rasterW, rasterH, gt, nextFID)
		if seg != nil {
			if startStub[s] {
				seg.Up.Stub = true
			}
			res.Segments = append(res.Segments, seg)
		}
	}
	for i := range res.Junctions {
		res.Junctions[i].X, res.Junctions[i].Y = gt.CellCenter(res.Junctions[i].Global)
	}
	return res
}

func nextFIDVal(n *int64) int64 {
	v := *n
	*n++
	return v
}

// traceReach walks downstream from start, appending cells until it
// reaches another node (caller handles re-visiting via independent
// per-start traces -- a shared cell can legitimately belong to at
// most one reach since every interior cell has exactly one
// downstream), a non-stream cell, a true outlet, or the tile's own
// halo (a cross-tile stub).
func traceReach(buf *raster.Buffer[raster.Dir], acc []int64, threshold int64, start raster.Cell, halo, iw, ih int, origin raster.Cell, rasterW, rasterH int, gt raster.GeoTransform, nextFID *int64) *Segment {
	isInterior := func(c raster.Cell) bool {
		return c.Row >= halo && c.Row < halo+ih && c.Col >= halo && c.Col < halo+iw
	}
	toGlobal := func(c raster.Cell) raster.Cell {
		return raster.Cell{Row: origin.Row + c.Row - halo, Col: origin.Col + c.Col - halo}
	}

	seg := &Segment{FID: nextFIDVal(nextFID), Up: Endpoint{Global: toGlobal(start), Role: RoleUpstream}}
	cur := start
	for {
		g := toGlobal(cur)
		seg.Cells = append(seg.Cells, g)
		x, y := gt.CellCenter(g)
		seg.Pts = append(seg.Pts, [2]float64{x, y})

		d := buf.At(cur)
		if d == raster.DirNoData || d == raster.DirUndefined {
			seg.Dn = Endpoint{Global: g, Role: RoleDownstream}
			return seg
		}
		n := raster.Step(cur, d)
		if !buf.InBounds(n) || !classify(acc, buf.Index(n), threshold) {
			seg.Dn = Endpoint{Global: g, Role: RoleDownstream}
			return seg
		}
		if !isInterior(n) {
			// Crossing into a neighbor tile: the crossing cell (n, in
			// global coordinates) is the shared stitch key both this
			// tile and the neighbor's own trace will use.
			ng := raster.Cell{Row: g.Row + (n.Row - cur.Row), Col: g.Col + (n.Col - cur.Col)}
			seg.Dn = Endpoint{Global: ng, Role: RoleDownstream, Stub: true}
			return seg
		}
		// Reaching another node mid-walk only happens if this start
		// is itself upstream of a confluence/source we've already
		// planned to trace separately; stop here and let that other
		// trace own the rest.
		if isNodeCell(buf, acc, threshold, n, isInterior) {
			seg.Dn = Endpoint{Global: toGlobal(n), Role: RoleDownstream}
			return seg
		}
		cur = n
	}
}

func isNodeCell(buf *raster.Buffer[raster.Dir], acc []int64, threshold int64, c raster.Cell, isInterior func(raster.Cell) bool) bool {
	if !isInterior(c) {
		return false
	}
	cnt := 0
	for d := raster.Dir(0); d < 8; d++ {
		n := raster.Step(c, d)
		if !buf.InBounds(n) {
			continue
		}
		if !classify(acc, buf.Index(n), threshold) {
			continue
		}
		if raster.Step(n, buf.At(n)) != c {
			continue
		}
		cnt++
	}
	return cnt != 1
}
