package accum

import "github.com/terraflow/hydrotile/raster"

// Solve builds the perimeter-link graph from every tile's exit links
// and resolves, for every perimeter cell that appears anywhere in the
// raster, how much accumulation arrives at it from outside its own
// tile (spec §4.6's "global offset").
//
// Every perimeter cell has at most one outgoing edge: an internal
// edge to another perimeter cell of the same tile (pure pass-through
// of the offset already accumulated, since the local phase already
// folded in everything upstream of it within the tile), or -- when it
// is itself the crossing cell -- an external edge to the
// corresponding cell in the neighboring tile, carrying its full total
// (local + offset) exactly once. Targets that never appear as a known
// perimeter vertex (off the raster, or landed on nodata) are treated
// as terminating: no edge.
func Solve(results []*LocalResult) (map[raster.Cell]int64, error) {
	vertexAcc := make(map[raster.Cell]int64)
	for _, r := range results {
		for _, p := range r.Perimeter {
			vertexAcc[p.Cell] = p.Acc
		}
	}

	type nextHop struct {
		to        raster.Cell
		passOnly  bool // true: forward offset only; false: forward acc+offset
	}
	next := make(map[raster.Cell]nextHop)
	inDegree := make(map[raster.Cell]int)
	for c := range vertexAcc {
		inDegree[c] = 0
	}
	for _, r := range results {
		for _, l := range r.ExitLinks {
			var hop nextHop
			if l.Exit != l.From {
				hop = nextHop{to: l.Exit, passOnly: true}
			} else if l.HasTarget {
				if _, ok := vertexAcc[l.Target]; !ok {
					continue // off-raster or nodata: terminates
				}
				hop = nextHop{to: l.Target, passOnly: false}
			} else {
				continue
			}
			next[l.From] = hop
			inDegree[hop.to]++
		}
	}

	offsetIn := make(map[raster.Cell]int64, len(vertexAcc))
	var queue []raster.Cell
	for c, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, c)
		}
	}

	visited := 0
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		visited++

		hop, ok := next[v]
		if !ok {
			continue
		}
		var val int64
		if hop.passOnly {
			val = offsetIn[v]
		} else {
			val = vertexAcc[v] + offsetIn[v]
		}
		offsetIn[hop.to] += val
		inDegree[hop.to]--
		if inDegree[hop.to] == 0 {
			queue = append(queue, hop.to)
		}
	}

	if visited != len(vertexAcc) {
		return nil, ErrCycle
	}
	return offsetIn, nil
}
