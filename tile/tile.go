// Package tile implements the tile I/O & scheduler component (spec
// §4.1): it splits a raster into square interior tiles with a halo,
// runs a per-tile function across a bounded worker pool while
// preserving deterministic row-major tile order, and exposes a
// locked sink for non-overlapping concurrent interior writes.
package tile

import (
	"context"

	"github.com/terraflow/hydrotile/raster"
)

// Access declares how a stage touches a tile, mirroring spec §4.1's
// read-only / read-modify-write / write-new distinction. It is
// informational only (used by callers to decide how to prime tile
// buffers); the scheduler itself does not enforce it.
type Access int

const (
	ReadOnly Access = iota
	ReadModifyWrite
	WriteNew
)

// Descriptor locates one tile within the full raster: its interior
// origin and size, and the halo width added on every side that the
// stage requested.
type Descriptor struct {
	// Origin is the global (row,col) of the interior's top-left cell.
	Origin raster.Cell
	// W, H are the interior dimensions (equal to chunk size, except
	// for the last row/column of tiles which may be smaller).
	W, H int
	// Halo is the number of extra cells of context on every side.
	Halo int
	// Index is this tile's position in the deterministic row-major
	// iteration order (0-based), stable across runs for fixed chunk
	// size and raster dimensions.
	Index int
	// TilesPerRow is the number of tile columns in the plan. Stages
	// that need globally unique labels mix in Index instead.
	TilesPerRow int
}

// BufferOrigin returns the global origin of the haloed buffer, i.e.
// the interior origin shifted up-left by Halo cells.
func (d Descriptor) BufferOrigin() raster.Cell {
	return raster.Cell{Row: d.Origin.Row - d.Halo, Col: d.Origin.Col - d.Halo}
}

// BufferSize returns the full (w,h) of the haloed buffer.
func (d Descriptor) BufferSize() (w, h int) { return d.W + 2*d.Halo, d.H + 2*d.Halo }

// Plan computes the deterministic, row-major set of tile descriptors
// covering a width*height raster for the given chunk size and halo.
// chunkSize<=1 selects in-memory single-tile mode: one tile covering
// the whole raster with Halo forced to 0 (there is no neighbor to
// read across), matching spec §6's chunk_size option.
func Plan(width, height, chunkSize, halo int) []Descriptor {
	if chunkSize <= 1 {
		return []Descriptor{{
			Origin: raster.Cell{Row: 0, Col: 0}, W: width, H: height, Halo: 0,
			Index: 0, TilesPerRow: 1,
		}}
	}
	cols := (width + chunkSize - 1) / chunkSize
	rows := (height + chunkSize - 1) / chunkSize
	out := make([]Descriptor, 0, rows*cols)
	idx := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ox, oy := c*chunkSize, r*chunkSize
			w := min(chunkSize, width-ox)
			h := min(chunkSize, height-oy)
			out = append(out, Descriptor{
				Origin: raster.Cell{Row: oy, Col: ox}, W: w, H: h, Halo: halo,
				Index: idx, TilesPerRow: cols,
			})
			idx++
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Progress receives (stage, done, total) updates as tiles complete. A
// nil Progress is a valid no-op sink, matching spec §6's "optional
// sink" framing.
type Progress interface {
	Report(stage string, done, total int)
}

// Cancelled reports whether ctx has been cancelled; stages that loop
// over long inner kernels poll this between iterations per spec §5's
// cooperative cancellation.
func Cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
