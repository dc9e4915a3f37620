// Package basins implements the basin labeler stage (spec §4.8): a
// local phase that seeds every tile-local outlet with a fresh label
// and walks the flow graph upstream to cover the tile's interior, a
// cross-tile phase that links those per-tile labels into one directed
// label graph, and a finalize phase that walks each label forward to
// whichever user-specified drainage point (or terminal outlet) it
// ultimately resolves to.
//
// The upstream walk is grounded in the teacher's bfs package: same
// queue/visited/parent shape, generalized to carry a propagated basin
// label instead of a hop count, and to switch that label when the
// walk crosses a user-supplied drainage point.
package basins

import "github.com/terraflow/hydrotile/raster"

// Stage is the exported stage name for progress reports and errors.
const Stage = "basins"

// DrainagePoint is one externally supplied basin seed: a raster cell
// paired with the basin ID the user wants that drainage point's
// upstream area labeled with.
type DrainagePoint struct {
	Cell    raster.Cell
	BasinID int64
}

// Config controls drainage-point ingestion and finalize behavior.
type Config struct {
	// SnapRadius is the window (in cells) searched around each raw
	// drainage point for the cell of maximum accumulation; 0 disables
	// snapping and uses the point's own cell.
	SnapRadius int
	// AllBasins, when true, retains a tile's terminal outlet label for
	// cells that never resolve to a user drainage point, instead of
	// writing nodata.
	AllBasins bool
}

// IngestResult is the outcome of snapping and validating raw drainage
// points before the tiled run.
type IngestResult struct {
	// Points are the accepted points, snapped cells in place of their
	// original coordinates when SnapRadius>0.
	Points []DrainagePoint
	// Dropped counts points that landed outside the raster or on a
	// nodata cell (and, when snapping, had no valid cell anywhere in
	// their search window either).
	Dropped int
}

// BoundaryLabel records the label resolved for one of a tile's
// interior-edge cells, keyed by global coordinate, so the global
// phase can look up a neighbor tile's label without re-scanning its
// interior (same role as fill.BoundaryLabel).
type BoundaryLabel struct {
	Global raster.Cell
	Label  int64
}

// ExitEdge is a candidate cross-tile label edge: the direction at a
// tile's own edge cell (From) steps into a neighboring tile's cell
// (Target). The global phase resolves Target's label and, if found,
// adds the directed edge label[From] -> label[Target].
type ExitEdge struct {
	From, Target raster.Cell
}

// AdjEdge is one edge of the basin adjacency graph: recorded whenever
// the upstream walk crosses a user drainage point, connecting the
// point's own basin ID to the temporary label that was propagating
// into it from downstream. Exposed for flowlen's longest-path
// extraction (spec §4.9), which reuses this same graph.
type AdjEdge struct {
	Upstream, Downstream int64
}

// LocalResult is the local phase's output for one tile.
type LocalResult struct {
	// Labels is the tile-local basin label per interior cell (w*h, row
	// major, halo excluded); 0 means unassigned (only possible for
	// nodata cells, which basins never labels).
	Labels []int64
	W, H   int
	// Origin is the interior's global origin.
	Origin raster.Cell

	Boundary    []BoundaryLabel
	Exits       []ExitEdge
	SwitchEdges []AdjEdge
}
