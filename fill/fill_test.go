package fill_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/fill"
	"github.com/terraflow/hydrotile/internal/rastertest"
)

// TestSingleCellPit implements spec §8 scenario 1: a 3x3 grid with a
// pit in the center must be raised to the surrounding elevation.
func TestSingleCellPit(t *testing.T) {
	data := []float64{
		9, 9, 9,
		9, 5, 9,
		9, 9, 9,
	}
	src := rastertest.NewMemSource(3, 3, data)
	sink := rastertest.NewMemSink(3, 3)

	err := fill.Run(context.Background(), src, sink, fill.Config{}, 0, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 9.0, sink.Data[1*3+1], "center pit should be raised to pour-point elevation")
	for i, v := range sink.Data {
		assert.GreaterOrEqualf(t, v, data[i], "fill must never lower a cell (index %d)", i)
	}
}

// TestNeverLowers asserts the general fill invariant: no output cell
// is lower than its input, on a non-trivial monotone-with-a-dip grid.
func TestNeverLowers(t *testing.T) {
	data := []float64{
		10, 9, 8, 7,
		9, 1, 1, 6,
		8, 1, 1, 5,
		7, 6, 5, 4,
	}
	src := rastertest.NewMemSource(4, 4, data)
	sink := rastertest.NewMemSink(4, 4)

	require.NoError(t, fill.Run(context.Background(), src, sink, fill.Config{}, 0, 1, nil))

	for i, v := range sink.Data {
		if math.IsNaN(data[i]) {
			continue
		}
		assert.GreaterOrEqual(t, v, data[i])
	}
}

// TestTiledNeverLowers exercises multi-tile mode (forcing cross-tile
// spill-graph stitching) and checks the same never-lowers invariant
// that single-tile mode must also satisfy.
func TestTiledNeverLowers(t *testing.T) {
	data := []float64{
		10, 9, 8, 7, 6,
		9, 1, 1, 1, 6,
		8, 1, 1, 1, 5,
		7, 1, 1, 1, 4,
		6, 5, 4, 3, 2,
	}
	src := rastertest.NewMemSource(5, 5, data)
	sink := rastertest.NewMemSink(5, 5)
	require.NoError(t, fill.Run(context.Background(), src, sink, fill.Config{}, 2, 2, nil))

	for i, v := range sink.Data {
		assert.GreaterOrEqual(t, v, data[i], "index %d", i)
	}
}
