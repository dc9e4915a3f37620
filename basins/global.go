package basins

import "github.com/terraflow/hydrotile/raster"

// Solve builds the directed label graph from every tile's cross-tile
// exit edges plus drainage-point switch edges, and returns it as a
// single-hop "next" map: for every non-terminal label, the one label
// it forwards to. Finalize follows this chain until it reaches a
// known user basin ID or a label with no entry (a true terminal
// outlet).
//
// adj is the basin adjacency graph proper (spec §4.8's "newBasin ->
// previousLabel" edges, flattened across tiles) -- exposed for
// flowlen's longest-path extraction, which reuses the same structure.
func Solve(results []*LocalResult) (next map[int64]int64, adj []AdjEdge) {
	boundaryLabel := make(map[raster.Cell]int64)
	for _, r := range results {
		for _, b := range r.Boundary {
			boundaryLabel[b.Global] = b.Label
		}
	}

	next = make(map[int64]int64)
	for _, r := range results {
		for _, e := range r.Exits {
			fromLabel, ok := boundaryLabel[e.From]
			if !ok {
				continue
			}
			toLabel, ok := boundaryLabel[e.Target]
			if !ok {
				continue // target never appears as a resolved boundary cell: off raster
			}
			if fromLabel == toLabel {
				continue
			}
			next[fromLabel] = toLabel
		}
		for _, s := range r.SwitchEdges {
			adj = append(adj, s)
			if _, exists := next[s.Upstream]; !exists {
				next[s.Upstream] = s.Downstream
			}
		}
	}
	return next, adj
}
