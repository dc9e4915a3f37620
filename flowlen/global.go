package flowlen

import (
	"errors"

	"github.com/terraflow/hydrotile/raster"
)

// ErrCycle is returned by Solve when the exit-edge graph cannot be
// fully ordered, meaning the direction raster contains a cycle --
// basin labeling and accumulation would already have caught this, so
// seeing it here means those stages were skipped.
var ErrCycle = errors.New("flowlen: exit-edge graph contains a cycle")

// Solve resolves, for every perimeter cell that appears anywhere in
// the raster, the best (globally-informed) Claim reaching it -- its
// own tile-local claim, improved by the resolved claim of whatever
// cell it flows downstream into one step farther, one ExitEdge.Dist
// longer, per spec §4.9.
//
// Every perimeter cell has at most one outgoing ExitEdge (its own
// flow direction crosses the tile at most once), so resolving it
// requires exactly one downstream cell to already be final --
// processed here with the same Kahn's-algorithm topological walk
// accum.Solve uses, just turned around: a cell is ready once the one
// cell it depends on (its Exit target) is final, not once every
// inflow has arrived.
func Solve(results []*LocalResult) (map[raster.Cell]Claim, error) {
	claim := make(map[raster.Cell]Claim)
	for _, r := range results {
		for _, p := range r.Perimeter {
			claim[p.Cell] = p.Claim
		}
	}

	type edge struct {
		to   raster.Cell
		dist float64
	}
	next := make(map[raster.Cell]edge)
	for _, r := range results {
		for _, e := range r.Exits {
			if _, ok := claim[e.Target]; !ok {
				continue // off raster, or nodata: From's local claim is already final
			}
			next[e.From] = edge{to: e.Target, dist: e.Dist}
		}
	}

	dependents := make(map[raster.Cell][]raster.Cell)
	outDegree := make(map[raster.Cell]int)
	for c := range claim {
		outDegree[c] = 0
	}
	for from, e := range next {
		outDegree[from] = 1
		dependents[e.to] = append(dependents[e.to], from)
	}

	var queue []raster.Cell
	for c, deg := range outDegree {
		if deg == 0 {
			queue = append(queue, c)
		}
	}

	visited := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		visited++

		vc := claim[v]
		for _, from := range dependents[v] {
			e := next[from]
			fc, hasLocal := claim[from]
			if vc.Basin != raster.BasinNoData {
				if !hasLocal || fc.Basin == raster.BasinNoData {
					claim[from] = Claim{Length: vc.Length + e.dist, Basin: vc.Basin}
				} else if fc.Basin == vc.Basin && vc.Length+e.dist > fc.Length {
					claim[from] = Claim{Length: vc.Length + e.dist, Basin: vc.Basin}
				}
				// different, already-claimed basin: ignore, per spec §4.9
			}
			outDegree[from]--
			if outDegree[from] == 0 {
				queue = append(queue, from)
			}
		}
	}

	if visited != len(outDegree) {
		return nil, ErrCycle
	}
	return claim, nil
}
