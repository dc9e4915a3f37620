// Package hydrotile implements a tiled hydrological terrain-analysis
// pipeline: depression filling and breaching, D8 flow direction, flat
// resolution, flow accumulation, stream network extraction, basin
// labeling, and flow length / longest-path tracing, over arbitrarily
// large rasters processed tile by tile with a bounded halo.
//
// Each stage lives in its own subpackage and follows the same
// three-phase shape where the algorithm needs one: a parallel local
// phase that solves each tile's interior from its own haloed buffer,
// a single-threaded global phase that reconciles whatever crosses
// tile boundaries, and a parallel finalize phase that writes the
// tile's final result.
//
//	accum/    — flow accumulation (topological-sort counting)
//	basins/   — basin labeling (upstream BFS from user outlets)
//	breach/   — least-cost pit breaching
//	fill/     — priority-flood depression fill
//	flatres/  — flat resolution (synthetic gradients)
//	flowdir/  — D8 steepest-descent flow direction
//	flowlen/  — flow length and longest-path extraction
//	streams/  — stream network extraction and cross-tile stitching
//	raster/   — shared cell/direction/buffer primitives and the
//	            storage-agnostic Source/Sink abstraction
//	tile/     — tiling plan and bounded-parallelism scheduler
//	hterr/    — coordinate-tagged error taxonomy shared by every stage
//	pipeline/ — wires all nine stages into one end-to-end Run
//
// pipeline.Run is the single entry point most callers want; each
// subpackage's own Run function is also exported for callers who need
// only one stage, e.g. recomputing flow direction after an external
// edit to a conditioned DEM.
package hydrotile
