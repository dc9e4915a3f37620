// Package rastertest provides tiny in-memory raster.Source/raster.Sink
// implementations for tests across every stage package, mirroring the
// teacher's own test-helper convention of a small shared fixture file
// per package (core/test_helpers_test.go) promoted here to an
// internal package since it is shared by many packages' tests.
package rastertest

import (
	"context"
	"math"

	"github.com/terraflow/hydrotile/raster"
)

// MemSource is a fixed in-memory raster.Source backed by a flat
// row-major float64 buffer.
type MemSource struct {
	W, H     int
	Data     []float64
	NoData_  float64
	GT       raster.GeoTransform
	Projected bool
}

func NewMemSource(w, h int, data []float64) *MemSource {
	return &MemSource{W: w, H: h, Data: data, NoData_: math.NaN(), GT: raster.GeoTransform{DX: 1, DY: 1}, Projected: true}
}

func (m *MemSource) Width() int                     { return m.W }
func (m *MemSource) Height() int                    { return m.H }
func (m *MemSource) DType() raster.DType            { return raster.DTypeFloat32 }
func (m *MemSource) NoData() float64                { return m.NoData_ }
func (m *MemSource) GeoTransform() raster.GeoTransform { return m.GT }
func (m *MemSource) CRS() raster.CRS                { return raster.CRS{IsProjected: m.Projected} }

func (m *MemSource) ReadWindow(_ context.Context, x, y, w, h int) ([]float64, error) {
	out := make([]float64, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			gr, gc := y+row, x+col
			idx := row*w + col
			if gr < 0 || gr >= m.H || gc < 0 || gc >= m.W {
				out[idx] = math.NaN()
				continue
			}
			out[idx] = m.Data[gr*m.W+gc]
		}
	}
	return out, nil
}

// MemSink collects writes into a flat row-major float64 buffer the
// same shape as the source it mirrors.
type MemSink struct {
	W, H int
	Data []float64
}

func NewMemSink(w, h int) *MemSink {
	d := make([]float64, w*h)
	for i := range d {
		d[i] = math.NaN()
	}
	return &MemSink{W: w, H: h, Data: d}
}

func (s *MemSink) Create(string, raster.DType, int, int, raster.GeoTransform, raster.CRS, float64) error {
	return nil
}

func (s *MemSink) WriteWindow(_ context.Context, x, y, w, h int, data []float64) error {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			gr, gc := y+row, x+col
			if gr < 0 || gr >= s.H || gc < 0 || gc >= s.W {
				continue
			}
			s.Data[gr*s.W+gc] = data[row*w+col]
		}
	}
	return nil
}
