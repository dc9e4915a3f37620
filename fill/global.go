package fill

// Merge builds the global label graph from every tile's local spill
// edges plus the cross-tile stitching edges spec §4.2 describes:
// along each shared tile edge, an edge between adjacent boundary
// cells of neighboring tiles with spill = max(zA,zB). Tiles that
// touch the true raster boundary additionally connect their boundary
// labels to EdgeLabel at spill = -inf, since the watershed is open to
// the outside world there.
func Merge(results []*LocalResult) adjacency {
	g := newAdjacency()
	for _, r := range results {
		for _, e := range r.SpillEdges {
			g.addEdge(e.A, e.B, e.Spill)
		}
	}

	byCell := make(map[[2]int]BoundaryLabel)
	for _, r := range results {
		for _, b := range r.Boundary {
			key := [2]int{b.Global.Row, b.Global.Col}
			byCell[key] = b
			if b.OnEdge {
				g.addEdge(b.Label, EdgeLabel, negInf)
			}
		}
	}

	// Stitch every boundary cell to its 8 global neighbors that also
	// appear in some other tile's boundary set (shared tile edges and
	// corners); within-tile adjacent boundary cells are already
	// connected via SpillEdges from the local sweep, so duplicates
	// here are harmless (addEdge keeps the minimum).
	offsets := [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	for key, b := range byCell {
		for _, o := range offsets {
			nk := [2]int{key[0] + o[0], key[1] + o[1]}
			nb, ok := byCell[nk]
			if !ok || nb.Label == b.Label {
				continue
			}
			spill := b.Elev
			if nb.Elev > spill {
				spill = nb.Elev
			}
			g.addEdge(b.Label, nb.Label, spill)
		}
	}
	return g
}
