package raster

import "context"

// DType identifies the on-disk pixel type of a raster, as reported by
// a concrete driver. The core never branches on DType beyond plumbing
// it through to Sink.Create; decoding bytes into float32/int64/byte
// buffers is the driver's job.
type DType int

const (
	DTypeFloat32 DType = iota
	DTypeInt64
	DTypeByte
)

// GeoTransform is the affine mapping from (col,row) to world
// coordinates: x = X0 + col*DX + row*0, y = Y0 + col*0 + row*DY.
// This mirrors the standard 6-element GDAL geotransform with the two
// rotation terms fixed at zero, which is all north-up rasters need.
type GeoTransform struct {
	X0, DX, Y0, DY float64
}

// CellCenter returns the world coordinate of the center of cell c.
func (g GeoTransform) CellCenter(c Cell) (x, y float64) {
	x = g.X0 + (float64(c.Col)+0.5)*g.DX
	y = g.Y0 + (float64(c.Row)+0.5)*g.DY
	return x, y
}

// CRS describes just enough of a coordinate reference system for the
// core to pick Euclidean vs. Haversine distance in flowlen; anything
// beyond IsProjected is the raster driver's concern.
type CRS struct {
	IsProjected bool
	WKT         string
}

// Source is the read side of the raster abstraction the core consumes.
// Concrete raster drivers (GDAL, GeoTIFF, etc.) are external
// collaborators; the core never imports one.
type Source interface {
	Width() int
	Height() int
	DType() DType
	NoData() float64
	GeoTransform() GeoTransform
	CRS() CRS
	// ReadWindow reads the w*h window at (x,y) into a float64 buffer in
	// row-major order, regardless of the underlying DType; the caller
	// narrows to the type it needs. x,y,w,h may describe a window that
	// extends past the raster edge (a tile halo); out-of-raster cells
	// must be returned as NoData().
	ReadWindow(ctx context.Context, x, y, w, h int) ([]float64, error)
}

// Sink is the write side of the raster abstraction. Implementations
// must make WriteWindow safe for concurrent use by multiple tile
// workers writing non-overlapping windows.
type Sink interface {
	Create(path string, dtype DType, w, h int, gt GeoTransform, crs CRS, nodata float64) error
	WriteWindow(ctx context.Context, x, y, w, h int, data []float64) error
}

// JunctionKind tags a Junction feature.
type JunctionKind int

const (
	JunctionSource JunctionKind = iota
	JunctionConfluence
	JunctionOutlet
)

// PointSink receives point vector features (junctions, drainage
// points) with an FID and a kind tag.
type PointSink interface {
	CreateLayer(name string) error
	WritePoint(ctx context.Context, layer string, fid int64, x, y float64, kind JunctionKind) error
}

// LineSink receives polyline vector features (stream reaches,
// longest-flow-path traces) with an FID and basin/length attributes.
type LineSink interface {
	CreateLayer(name string) error
	WriteLine(ctx context.Context, layer string, fid int64, basinID int64, length float64, pts [][2]float64) error
}
