package flowlen

import (
	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/raster"
)

// queueItem is one pending relaxation step.
type queueItem struct {
	cell  raster.Cell
	claim Claim
}

// Local runs the tile-local multi-source relaxation over a
// halo-included direction buffer and the finalized basin-label
// buffer (same dims). origin is the interior's global origin;
// gt/projected select the distance metric (StepDistance). seeds are
// every drainage point, filtered here to the ones whose cell lands in
// this tile's interior.
func Local(dir []raster.Dir, basin []int64, bw, bh, halo int, origin raster.Cell, rasterW, rasterH int, gt raster.GeoTransform, projected bool, seeds []basins.DrainagePoint) *LocalResult {
	dirBuf := &raster.Buffer[raster.Dir]{W: bw, H: bh, Data: dir}
	basinBuf := &raster.Buffer[int64]{W: bw, H: bh, Data: basin}
	iw, ih := bw-2*halo, bh-2*halo

	isInterior := func(c raster.Cell) bool {
		return c.Row >= halo && c.Row < halo+ih && c.Col >= halo && c.Col < halo+iw
	}
	toGlobal := func(c raster.Cell) raster.Cell {
		return raster.Cell{Row: origin.Row + c.Row - halo, Col: origin.Col + c.Col - halo}
	}
	offRaster := func(c raster.Cell) bool {
		g := toGlobal(c)
		return g.Row < 0 || g.Row >= rasterH || g.Col < 0 || g.Col >= rasterW
	}

	claimed := make([]bool, bw*bh)
	length := make([]float64, bw*bh)
	owner := make([]int64, bw*bh)

	var queue []queueItem
	for _, s := range seeds {
		local := raster.Cell{Row: s.Cell.Row - origin.Row + halo, Col: s.Cell.Col - origin.Col + halo}
		if !isInterior(local) {
			continue
		}
		idx := dirBuf.Index(local)
		claimed[idx] = true
		length[idx] = 0
		owner[idx] = s.BasinID
		queue = append(queue, queueItem{cell: local, claim: Claim{Length: 0, Basin: s.BasinID}})
	}

	relaxBFS(dirBuf, basinBuf, isInterior, toGlobal, gt, projected, claimed, length, owner, queue)

	interiorLen := make([]float64, iw*ih)
	interiorBasin := make([]int64, iw*ih)
	for row := 0; row < ih; row++ {
		for col := 0; col < iw; col++ {
			idx := dirBuf.Index(raster.Cell{Row: row + halo, Col: col + halo})
			out := row*iw + col
			if claimed[idx] {
				interiorLen[out] = length[idx]
				interiorBasin[out] = owner[idx]
			} else {
				interiorLen[out] = float64(raster.LengthNoData)
				interiorBasin[out] = raster.BasinNoData
			}
		}
	}

	var perimeter []PerimeterClaim
	addPerimeter := func(c raster.Cell) {
		idx := dirBuf.Index(c)
		if !claimed[idx] {
			return
		}
		perimeter = append(perimeter, PerimeterClaim{Cell: toGlobal(c), Claim: Claim{Length: length[idx], Basin: owner[idx]}})
	}
	var exits []ExitEdge
	addExit := func(c raster.Cell) {
		d := dirBuf.At(c)
		if d == raster.DirNoData {
			return
		}
		n := raster.Step(c, d)
		if offRaster(n) || isInterior(n) {
			return
		}
		exits = append(exits, ExitEdge{
			From: toGlobal(c), Target: toGlobal(n),
			Dist: StepDistance(gt, projected, toGlobal(c), toGlobal(n)),
		})
	}
	for col := halo; col < halo+iw; col++ {
		addPerimeter(raster.Cell{Row: halo, Col: col})
		addExit(raster.Cell{Row: halo, Col: col})
		if ih > 1 {
			addPerimeter(raster.Cell{Row: halo + ih - 1, Col: col})
			addExit(raster.Cell{Row: halo + ih - 1, Col: col})
		}
	}
	for row := halo + 1; row < halo+ih-1; row++ {
		addPerimeter(raster.Cell{Row: row, Col: halo})
		addExit(raster.Cell{Row: row, Col: halo})
		if iw > 1 {
			addPerimeter(raster.Cell{Row: row, Col: halo + iw - 1})
			addExit(raster.Cell{Row: row, Col: halo + iw - 1})
		}
	}

	return &LocalResult{
		Length: interiorLen, Basin: interiorBasin, W: iw, H: ih, Origin: origin,
		Perimeter: perimeter, Exits: exits,
		DirBuf: dir, BasinBuf: basin, BW: bw, BH: bh, Halo: halo,
	}
}
