// Package accum implements the flow accumulation stage (spec §4.6): a
// local Kahn's-algorithm FIFO drain per tile, followed by a
// single-threaded global phase that resolves how much accumulation
// crosses every tile boundary, and a finalize pass that adds those
// cross-tile offsets back into each tile's interior.
//
// The local drain is grounded in the teacher's algorithms.DFS
// topological-order idiom, generalized from recursion to an explicit
// inflow-counted FIFO: a tile can hold a million cells, and a
// stack-recursive walk would blow the goroutine stack long before
// that (see DESIGN.md).
package accum

import "github.com/terraflow/hydrotile/raster"

// Stage is the exported stage name for progress reports and errors.
const Stage = "accum"

// ExitLink records, for one perimeter cell of a tile, where a flow
// path starting at that cell first leaves the tile (or dies inside
// it), per spec §4.6's "exit link" concept.
//
// Exit equals From when the cell itself is the crossing point (its
// own direction steps outside the tile); otherwise Exit is the next
// perimeter cell the path reaches inside the tile. Target is the
// neighboring cell one step across the crossing, in global
// coordinates, and HasTarget is set whenever Exit equals From; Solve
// ignores a Target that is not a known perimeter vertex (off the
// raster, or on nodata).
type ExitLink struct {
	From, Exit raster.Cell
	Target     raster.Cell
	HasTarget  bool
}

// PerimeterAcc is one outer-ring cell's tile-local accumulation value,
// exported so the global phase can look up whether a candidate
// cross-tile target actually exists as a valid (non-nodata) vertex.
type PerimeterAcc struct {
	Cell raster.Cell
	Acc  int64
}

// LocalResult is the local phase's output for one tile.
type LocalResult struct {
	// Acc is the tile-local accumulation buffer (w*h, row-major),
	// ignoring any contribution from outside the tile.
	Acc []int64
	Dir []raster.Dir
	W, H int
	// Origin is this tile's global (row,col) origin (no halo: accum
	// needs none, since cross-tile dependencies are resolved entirely
	// through the perimeter-link graph, not neighbor reads).
	Origin raster.Cell

	ExitLinks []ExitLink
	Perimeter []PerimeterAcc
}
