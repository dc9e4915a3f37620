package flatres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/flatres"
	"github.com/terraflow/hydrotile/flowdir"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
)

// TestLongFlatResolvesToEnd implements spec §8 scenario 3: a 1x10
// strip, flat except for a drop at the far end, must leave none of the
// flat cells undefined, and the cell beside the drop must point at it.
func TestLongFlatResolvesToEnd(t *testing.T) {
	data := make([]float64, 10)
	for i := 0; i < 9; i++ {
		data[i] = 5
	}
	data[9] = 1

	elevSrc := rastertest.NewMemSource(10, 1, data)
	dirSink := rastertest.NewMemSink(10, 1)
	require.NoError(t, flowdir.Run(context.Background(), elevSrc, dirSink, 0, 1, nil))

	dirSrc := rastertest.NewMemSource(10, 1, dirSink.Data)
	out := rastertest.NewMemSink(10, 1)
	require.NoError(t, flatres.Run(context.Background(), elevSrc, dirSrc, out, flatres.DefaultConfig(), 0, 1, nil))

	for i := 0; i < 9; i++ {
		assert.NotEqual(t, float64(raster.DirUndefined), out.Data[i], "cell %d still undefined", i)
	}
	// Cell 8, directly adjacent to the drop, must drain straight to it.
	assert.Equal(t, float64(raster.DirE), out.Data[8])
}

// TestClosedBasinStaysUndefined checks that a flat region with no
// lower or nodata neighbor anywhere (an enclosed pit plateau) is left
// undefined rather than assigned a meaningless gradient -- fill is
// expected to run before flatres in the pipeline precisely so this
// case does not occur on real input, but flatres itself must not
// invent a direction out of nothing.
func TestClosedBasinStaysUndefined(t *testing.T) {
	data := []float64{
		9, 9, 9,
		9, 5, 9,
		9, 9, 9,
	}
	elevSrc := rastertest.NewMemSource(3, 3, data)
	dirSink := rastertest.NewMemSink(3, 3)
	require.NoError(t, flowdir.Run(context.Background(), elevSrc, dirSink, 0, 1, nil))

	dirSrc := rastertest.NewMemSource(3, 3, dirSink.Data)
	out := rastertest.NewMemSink(3, 3)
	require.NoError(t, flatres.Run(context.Background(), elevSrc, dirSrc, out, flatres.DefaultConfig(), 0, 1, nil))

	assert.Equal(t, float64(raster.DirUndefined), out.Data[1*3+1])
}
