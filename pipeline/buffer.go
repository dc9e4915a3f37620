package pipeline

import (
	"context"

	"github.com/terraflow/hydrotile/raster"
)

// memRelay is a flat in-memory raster.Source+raster.Sink, the
// pipeline's default way to hand one stage's output to the next
// stage as a readable raster: the core's raster.Source/Sink pair is
// deliberately storage-agnostic (see raster/io.go), and no concrete
// on-disk driver is in scope here, so the orchestrator needs its own
// minimal relay to round-trip a tile-written buffer back into
// something the next stage can ReadWindow from.
type memRelay struct {
	w, h   int
	data   []float64
	nodata float64
	gt     raster.GeoTransform
	crs    raster.CRS
}

func newMemRelay(w, h int, nodata float64, gt raster.GeoTransform, crs raster.CRS) *memRelay {
	data := make([]float64, w*h)
	for i := range data {
		data[i] = nodata
	}
	return &memRelay{w: w, h: h, data: data, nodata: nodata, gt: gt, crs: crs}
}

func (m *memRelay) Width() int                        { return m.w }
func (m *memRelay) Height() int                       { return m.h }
func (m *memRelay) DType() raster.DType               { return raster.DTypeFloat32 }
func (m *memRelay) NoData() float64                   { return m.nodata }
func (m *memRelay) GeoTransform() raster.GeoTransform { return m.gt }
func (m *memRelay) CRS() raster.CRS                   { return m.crs }

func (m *memRelay) ReadWindow(_ context.Context, x, y, w, h int) ([]float64, error) {
	out := make([]float64, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			gr, gc := y+row, x+col
			idx := row*w + col
			if gr < 0 || gr >= m.h || gc < 0 || gc >= m.w {
				out[idx] = m.nodata
				continue
			}
			out[idx] = m.data[gr*m.w+gc]
		}
	}
	return out, nil
}

func (m *memRelay) Create(string, raster.DType, int, int, raster.GeoTransform, raster.CRS, float64) error {
	return nil
}

func (m *memRelay) WriteWindow(_ context.Context, x, y, w, h int, data []float64) error {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			gr, gc := y+row, x+col
			if gr < 0 || gr >= m.h || gc < 0 || gc >= m.w {
				continue
			}
			m.data[gr*m.w+gc] = data[row*w+col]
		}
	}
	return nil
}

// teeSink writes every call through to both a memRelay (kept for the
// next stage to read) and the caller's own persistent sink (spec §6's
// on-disk layout), so a stage's one WriteWindow call satisfies both
// without the orchestrator re-reading anything back out of the
// persistent sink (raster.Sink has no read side at all).
type teeSink struct {
	mem  *memRelay
	dest raster.Sink
}

func (t teeSink) Create(path string, dtype raster.DType, w, h int, gt raster.GeoTransform, crs raster.CRS, nodata float64) error {
	if err := t.mem.Create(path, dtype, w, h, gt, crs, nodata); err != nil {
		return err
	}
	return t.dest.Create(path, dtype, w, h, gt, crs, nodata)
}

func (t teeSink) WriteWindow(ctx context.Context, x, y, w, h int, data []float64) error {
	if err := t.mem.WriteWindow(ctx, x, y, w, h, data); err != nil {
		return err
	}
	return t.dest.WriteWindow(ctx, x, y, w, h, data)
}

// nopLineSink discards every write; used when a caller leaves
// Outputs.LongestPath nil but flowlen still needs a raster.LineSink to
// write through, since flow length itself is computed regardless of
// whether the caller wants the traced polylines.
type nopLineSink struct{}

func (nopLineSink) CreateLayer(string) error { return nil }

func (nopLineSink) WriteLine(context.Context, string, int64, int64, float64, [][2]float64) error {
	return nil
}
