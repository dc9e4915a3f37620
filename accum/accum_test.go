package accum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/accum"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
)

// TestFunnelSingleTile builds a simple two-stage funnel (every cell
// flows west into column 0, then every column-0 cell flows north into
// the corner) and checks the outlet sees every cell's contribution in
// one untiled pass.
func TestFunnelSingleTile(t *testing.T) {
	const n = 5
	data := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			switch {
			case r == 0 && c == 0:
				data[r*n+c] = float64(raster.DirN) // terminates off-raster
			case c == 0:
				data[r*n+c] = float64(raster.DirN)
			default:
				data[r*n+c] = float64(raster.DirW)
			}
		}
	}
	src := rastertest.NewMemSource(n, n, data)
	sink := rastertest.NewMemSink(n, n)

	require.NoError(t, accum.Run(context.Background(), src, sink, 0, 1, nil))
	assert.Equal(t, float64(n*n), sink.Data[0])
}

// TestFunnelTiled runs the same funnel split across four 2x2-ish
// tiles, exercising the perimeter-link global phase: the outlet must
// still see the full cell count once cross-tile offsets are applied.
func TestFunnelTiled(t *testing.T) {
	const n = 4
	data := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if c == 0 {
				data[r*n+c] = float64(raster.DirN)
			} else {
				data[r*n+c] = float64(raster.DirW)
			}
		}
	}
	src := rastertest.NewMemSource(n, n, data)
	sink := rastertest.NewMemSink(n, n)

	require.NoError(t, accum.Run(context.Background(), src, sink, 2, 2, nil))
	assert.Equal(t, float64(n*n), sink.Data[0])
}

// TestCrossTileAccumulation splits a 1x6 strip into two 1x3 tiles.
// DirW steps (0,-1): every cell but the last points to its left
// neighbor, so column 0 is the outlet. Column w-1 points off the
// raster and terminates on its own, so once the global offset is
// applied the outlet sees the w-1 cells that drain to it.
func TestCrossTileAccumulation(t *testing.T) {
	const w, h = 6, 1
	data := make([]float64, w*h)
	for c := 0; c < w-1; c++ {
		data[c] = float64(raster.DirW)
	}
	data[w-1] = float64(raster.DirN) // steps off a 1-row raster: terminate

	src := rastertest.NewMemSource(w, h, data)
	sink := rastertest.NewMemSink(w, h)

	require.NoError(t, accum.Run(context.Background(), src, sink, 3, 1, nil))
	assert.Equal(t, float64(w-1), sink.Data[0])
}

// TestNoDataPropagates checks a nodata direction cell yields a nodata
// accumulation value rather than participating in any flow path.
func TestNoDataPropagates(t *testing.T) {
	data := []float64{
		float64(raster.DirNoData), float64(raster.DirW),
	}
	src := rastertest.NewMemSource(2, 1, data)
	sink := rastertest.NewMemSink(2, 1)
	require.NoError(t, accum.Run(context.Background(), src, sink, 0, 1, nil))
	assert.Equal(t, float64(raster.AccNoData), sink.Data[0])
	assert.Equal(t, float64(1), sink.Data[1])
}
