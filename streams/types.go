// Package streams implements the stream network extractor (spec
// §4.7): classifies stream cells by accumulation threshold, detects
// sources/confluences/outlets, vectorizes reaches tile by tile, and
// stitches partial reaches across tile edges by keying each cross-tile
// endpoint on the integer (row,col) of its crossing cell -- grounded in
// the teacher's gridgraph.vertexID "%d,%d" string-keying idiom, with a
// struct key in place of the string.
package streams

import "github.com/terraflow/hydrotile/raster"

// Stage is the exported stage name for progress reports and errors.
const Stage = "streams"

// Config controls stream classification.
type Config struct {
	// Threshold is the minimum accumulation value for a cell to be
	// classified as a stream cell.
	Threshold int64
}

// JunctionKind tags what kind of network node a Junction is.
type JunctionKind = raster.JunctionKind

// Junction is a point feature: a source, confluence, or outlet, per
// spec §4.7 and the GLOSSARY.
type Junction struct {
	FID    int64
	Global raster.Cell
	X, Y   float64
	Kind   JunctionKind
}

// Role tags which end of a segment an Endpoint describes,
// needed by the stitching table in spec §4.7.
type Role int

const (
	RoleUpstream Role = iota
	RoleDownstream
)

// Endpoint is one end of a partial or complete segment, carried
// through stitching until both world coordinates and orientation are
// resolved.
type Endpoint struct {
	Global raster.Cell
	Role   Role
	// Stub marks an endpoint that terminates on a tile's interior
	// edge rather than at a true source/confluence/outlet; only stubs
	// participate in cross-tile stitching.
	Stub bool
}

// Segment is one traced reach: an ordered polyline of cell-center
// world coordinates from its upstream endpoint to its downstream
// endpoint, per spec §4.7's Data Model entry.
type Segment struct {
	FID     int64
	Cells   []raster.Cell // global coordinates, upstream to downstream
	Pts     [][2]float64  // cell-center world coordinates, same order
	Up, Dn  Endpoint
}

// LocalResult is one tile's traced segments and the junctions found
// strictly within its interior.
type LocalResult struct {
	Segments  []*Segment
	Junctions []Junction
}
