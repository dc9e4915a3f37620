// Package flowlen implements the flow length & longest path stage
// (spec §4.9): a per-drainage-point multi-source upstream relaxation
// over the flow-direction graph, tiled with the same local/global/
// finalize structure as every other stage, plus longest-flow-path
// polyline extraction through the basin adjacency graph basins builds.
//
// The relaxation loop is grounded in the teacher's bfs package's
// queue/visited shape, generalized to carry a running float64 length
// instead of a hop count and to relax-and-requeue on a strictly
// longer arrival -- the teacher's plain BFS never revisits a visited
// vertex, which this stage's "confluence rejoin" case (spec §4.9)
// requires it to do.
package flowlen

import "github.com/terraflow/hydrotile/raster"

// Stage is the exported stage name for progress reports and errors.
const Stage = "flowlen"

// EarthRadiusMeters is the spherical earth radius used by the
// Haversine distance (open question (c) in SPEC_FULL.md §9: no
// ellipsoidal flattening is modeled, matching the accuracy the rest
// of this module's geographic-CRS support already assumes).
const EarthRadiusMeters = 6371000.0

// Claim is one cell's resolved upstream-flow-length state: the
// longest length reached so far from any same-basin drainage point,
// per spec §4.9.
type Claim struct {
	Length float64
	Basin  int64
}

// PerimeterClaim is one interior-edge cell's resolved Claim, keyed by
// global coordinate, exposed so the global phase can stitch tiles
// together without re-scanning interiors (same role as
// basins.BoundaryLabel).
type PerimeterClaim struct {
	Cell raster.Cell
	Claim
}

// ExitEdge is a candidate cross-tile relaxation edge: cell From (on
// this tile's interior edge) flows downstream into Target (a cell
// owned by a neighboring tile). Length propagates the other way --
// upstream -- so the global phase uses Target's resolved Claim to
// produce a candidate for From, one step longer.
type ExitEdge struct {
	From, Target raster.Cell
	Dist         float64
}

// LocalResult is the local phase's output for one tile.
type LocalResult struct {
	// Length, Basin are the tile-local (possibly incomplete -- see
	// Finalize) resolved values per interior cell, w*h row-major.
	// Length is raster.LengthNoData and Basin is raster.BasinNoData
	// for cells no local seed ever reached.
	Length []float64
	Basin  []int64
	W, H   int
	Origin raster.Cell

	Perimeter []PerimeterClaim
	Exits     []ExitEdge

	// DirBuf, BasinBuf are the halo-included direction and basin-label
	// buffers this tile relaxed over (BW*BH, row-major), kept so
	// Finalize can re-run relaxBFS from any globally-improved perimeter
	// claim without re-reading the source rasters.
	DirBuf       []raster.Dir
	BasinBuf     []int64
	BW, BH, Halo int
}

// BasinMax tracks, per basin, the cell currently known to have the
// greatest upstream flow length -- spec §4.9's "track per-basin the
// cell with maximum length so far".
type BasinMax struct {
	Basin  int64
	Cell   raster.Cell
	Length float64
}
