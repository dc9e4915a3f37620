package flowdir_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/flowdir"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
)

// TestMonotoneSlope implements the directional part of spec §8
// scenario 2: z[r,c] = r + c on a 5x5 grid. Every non-corner,
// non-edge interior cell should point NW (toward (0,0)), since that
// is the unique direction of maximum slope on a uniform diagonal
// ramp.
func TestMonotoneSlope(t *testing.T) {
	const n = 5
	data := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			data[r*n+c] = float64(r + c)
		}
	}
	src := rastertest.NewMemSource(n, n, data)
	sink := rastertest.NewMemSink(n, n)

	require.NoError(t, flowdir.Run(context.Background(), src, sink, 0, 1, nil))

	for r := 1; r < n-1; r++ {
		for c := 1; c < n-1; c++ {
			got := raster.Dir(sink.Data[r*n+c])
			assert.Equal(t, raster.DirNW, got, "cell (%d,%d)", r, c)
		}
	}
}

// TestNoDownhillIsUndefined checks that a local non-pit flat-topped
// cell with no strictly lower neighbor gets DirUndefined.
func TestNoDownhillIsUndefined(t *testing.T) {
	data := []float64{
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	}
	src := rastertest.NewMemSource(3, 3, data)
	sink := rastertest.NewMemSink(3, 3)
	require.NoError(t, flowdir.Run(context.Background(), src, sink, 0, 1, nil))
	assert.Equal(t, float64(raster.DirUndefined), sink.Data[1*3+1])
}
