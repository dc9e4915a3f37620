// Package flatres implements flat resolution (spec §4.5): replacing
// every undefined (code 8) D8 direction left by flowdir with a
// synthetic gradient so that every flat cell eventually drains to
// lower terrain or nodata, with no cycles. The local BFS distance
// fields are grounded in the teacher's bfs package queue/visited
// shape. In tiled mode, a region that no tile buffer can resolve is
// re-read whole from the source by a single-threaded pass and resolved
// with the same local routine; no cross-tile perimeter distance graph
// is built.
package flatres

import "github.com/terraflow/hydrotile/raster"

// FlatResK is the constant added to the synthetic mask
// M = 2*gLow + gHigh + K to keep it strictly positive (spec §4.5).
const FlatResK = 1

// Config controls the flat resolution stage per spec §6.
type Config struct {
	// FlatChunkMax caps the tile size used specifically by this stage;
	// tiles larger than this are subdivided before flat resolution
	// runs, since a huge flat region inside a huge tile is the
	// pathological case spec §4.5 calls out.
	FlatChunkMax int
}

// region is one connected (8-way), equal-elevation set of cells that
// flowdir left undefined.
type region struct {
	cells []raster.Cell
	z     float32
}

const unvisited = -1
