package flatres

import (
	"container/list"

	"github.com/terraflow/hydrotile/raster"
)

// findRegions groups every DirUndefined cell into its connected (8-way,
// equal elevation) flat region.
func findRegions(elev []float32, dir []raster.Dir, w, h int) []region {
	seen := make([]bool, w*h)
	var regions []region

	for start := 0; start < w*h; start++ {
		if seen[start] || dir[start] != raster.DirUndefined {
			continue
		}
		z := elev[start]
		sc := raster.Cell{Row: start / w, Col: start % w}

		reg := region{z: z}
		q := list.New()
		q.PushBack(sc)
		seen[start] = true

		for q.Len() > 0 {
			front := q.Remove(q.Front()).(raster.Cell)
			reg.cells = append(reg.cells, front)
			for d := raster.Dir(0); d < 8; d++ {
				n := raster.Step(front, d)
				if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
					continue
				}
				ni := n.Row*w + n.Col
				if seen[ni] || dir[ni] != raster.DirUndefined || elev[ni] != z {
					continue
				}
				seen[ni] = true
				q.PushBack(n)
			}
		}
		regions = append(regions, reg)
	}
	return regions
}

// exitNeighbor returns, for cell c, the direction of a neighbor the
// flat region can drain straight into: strictly lower, nodata, or an
// equal-elevation cell that already has a real direction of its own
// (it sits at the same elevation but was never part of this undefined
// region, because flowdir already found it a downhill neighbor
// elsewhere). This last case is what lets a plateau drain through its
// own rim rather than only through strictly lower ground -- without
// it a flat cell one hop from the rim would see no exit at all.
func exitNeighbor(elev []float32, dir []raster.Dir, w, h int, c raster.Cell, z float32) (raster.Dir, bool) {
	best := raster.DirUndefined
	bestZ := float32(0)
	found := false
	for d := raster.Dir(0); d < 8; d++ {
		n := raster.Step(c, d)
		if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
			continue
		}
		ni := n.Row*w + n.Col
		nz := elev[ni]
		if raster.IsNoData(nz) {
			return d, true
		}
		qualifies := nz < z || (nz == z && dir[ni] != raster.DirUndefined)
		if qualifies && (!found || nz < bestZ) {
			found = true
			bestZ = nz
			best = d
		}
	}
	return best, found
}

// bfsDistances computes, within the cell-index set `in`, the hop
// distance from the nearest seed in `seeds`. Cells unreachable within
// the region have no entry in the returned map. Edges are the region's internal
//8-adjacency, unweighted, matching the teacher's bfs package shape
// (FIFO queue, OnVisit-style relaxation) generalized to multi-source.
func bfsDistances(w, h int, in map[int]bool, seeds []int) map[int]int {
	dist := make(map[int]int, len(in))
	q := list.New()
	for _, s := range seeds {
		if _, ok := dist[s]; !ok {
			dist[s] = 0
			q.PushBack(s)
		}
	}
	for q.Len() > 0 {
		u := q.Remove(q.Front()).(int)
		uc := raster.Cell{Row: u / w, Col: u % w}
		du := dist[u]
		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(uc, d)
			if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
				continue
			}
			ni := n.Row*w + n.Col
			if !in[ni] {
				continue
			}
			if _, ok := dist[ni]; ok {
				continue
			}
			dist[ni] = du + 1
			q.PushBack(ni)
		}
	}
	return dist
}

// resolveRegion assigns directions for every cell of reg, in place.
// Cells bordering lower terrain or nodata drain there directly; every
// other cell drains toward the same-elevation neighbor minimizing the
// synthetic mask M = 2*gLow + gHigh + K.
func resolveRegion(elev []float32, dir []raster.Dir, w, h int, reg region) {
	in := make(map[int]bool, len(reg.cells))
	for _, c := range reg.cells {
		in[c.Row*w+c.Col] = true
	}

	var highSeeds, lowSeeds []int
	immediate := make(map[int]raster.Dir)

	for idx := range in {
		c := raster.Cell{Row: idx / w, Col: idx % w}
		if d, ok := exitNeighbor(elev, dir, w, h, c, reg.z); ok {
			immediate[idx] = d
			lowSeeds = append(lowSeeds, idx)
			continue
		}
		isHigh := false
		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(c, d)
			if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
				continue
			}
			ni := n.Row*w + n.Col
			if elev[ni] > reg.z {
				isHigh = true
				break
			}
		}
		if isHigh {
			highSeeds = append(highSeeds, idx)
		}
	}

	gHigh := bfsDistances(w, h, in, highSeeds)
	gLow := bfsDistances(w, h, in, lowSeeds)

	mask := func(idx int) (int, bool) {
		gh, okh := gHigh[idx]
		gl, okl := gLow[idx]
		if !okh && !okl {
			return 0, false
		}
		if !okh {
			gh = gl + 1 // region has no high edge at all; treat as far
		}
		if !okl {
			return 0, false // no low edge reachable: leave the region undefined
		}
		return 2*gl + gh + FlatResK, true
	}

	for idx := range in {
		c := raster.Cell{Row: idx / w, Col: idx % w}
		if d, ok := immediate[idx]; ok {
			dir[idx] = d
			continue
		}
		best := raster.DirUndefined
		bestCost := -1.0
		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(c, d)
			if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
				continue
			}
			ni := n.Row*w + n.Col
			if !in[ni] {
				continue
			}
			m, ok := mask(ni)
			if !ok {
				continue
			}
			cost := float64(m) * raster.StepDist(d)
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				best = d
			}
		}
		dir[idx] = best
	}
}

// ResolveBuffer replaces every DirUndefined cell in dir with a
// synthetic drainage direction, operating entirely within the given
// buffer (no cross-tile context). Cells left DirUndefined on return
// belong to a flat region with no low edge reachable inside the
// buffer at all (spec §4.5's "closed basin" degenerate case, or a
// region that continues past the buffer edge in tiled mode — the
// caller is expected to re-resolve those via the global pass).
func ResolveBuffer(elev []float32, dir []raster.Dir, w, h int) {
	for _, reg := range findRegions(elev, dir, w, h) {
		resolveRegion(elev, dir, w, h, reg)
	}
}
