// Package fill implements the priority-flood depression-fill stage
// (spec §4.2): a local two-structure (min-heap + FIFO pit queue) sweep
// per tile that both raises pits in place and emits a watershed-label
// raster plus a boundary spill graph; a single-threaded global phase
// that solves the merged spill graph for each label's final fill
// elevation; and a finalize pass that raises every cell to
// max(originalZ, fillElev[label]).
//
// The heap mechanics are grounded directly in the teacher's
// dijkstra package (container/heap, lazy decrease-key, stable
// insertion-order tie-break) generalized from "shortest distance so
// far" to "lowest elevation not yet visited".
package fill

import "github.com/terraflow/hydrotile/raster"

// EdgeLabel is the reserved watershed label representing the raster
// boundary / outside world. Fresh per-cell labels start at 2.
const EdgeLabel int64 = 1

// FirstFreshLabel is the first label assigned to a newly discovered
// watershed during the local sweep.
const FirstFreshLabel int64 = 2

// Config controls the fill stage, per spec §6/§4.2.
type Config struct {
	// FillHoles treats nodata cells encountered on a tile boundary as
	// fillable interior, seeded at the minimum elevation of their
	// valid 8-neighbors instead of at -inf.
	FillHoles bool
}

// SpillEdge is one edge of the cross-watershed spill graph: the pour
// point between label A and label B has elevation Spill, the minimum
// over all adjacent-cell pairs straddling the two watersheds of
// max(zA,zB). Multi-edges between the same pair are reduced to their
// minimum when the edges are merged for the global phase.
type SpillEdge struct {
	A, B  int64
	Spill float32
}

// BoundaryLabel records the label assigned to one cell on a tile's
// outer ring, keyed by its global raster coordinate, so the global phase
// can stitch adjacent tiles' labels together without re-scanning
// interiors.
type BoundaryLabel struct {
	Global raster.Cell // global raster coordinate of the boundary cell
	Label  int64
	Elev   float32
	OnEdge bool // true if Global lies on the true raster boundary
}

// LocalResult is the output of the local phase for one tile.
type LocalResult struct {
	// Elev is the tile's elevation buffer (row-major, W*H, including
	// halo) after in-place pit-queue raising. It is not yet globally
	// resolved: cells may still need raising in Finalize.
	Elev []float32
	// Labels is the per-cell watershed label, same dims as Elev.
	Labels []int64
	W, H   int
	// SpillEdges are the edges discovered while sweeping this tile's
	// interior and halo together.
	SpillEdges []SpillEdge
	// Boundary holds one BoundaryLabel per outer-ring cell of the
	// interior region (not the halo), used by the global phase to
	// connect adjacent tiles.
	Boundary []BoundaryLabel
}
