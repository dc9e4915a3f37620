package breach_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/breach"
	"github.com/terraflow/hydrotile/internal/rastertest"
)

// TestSingleCellBreach checks a low cell next to a nodata cell: it
// drains into the nodata neighbor, so it is not a pit, and breach
// leaves its elevation unchanged.
func TestSingleCellBreach(t *testing.T) {
	nan := math.NaN()
	data := []float64{
		9, 9, 9,
		9, 5, 10,
		9, 9, nan,
	}
	src := rastertest.NewMemSource(3, 3, data)
	sink := rastertest.NewMemSink(3, 3)

	cfg := breach.DefaultConfig()
	_, err := breach.Run(context.Background(), src, sink, cfg, 0, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 5.0, sink.Data[1*3+1], "pit elevation itself must be unchanged by breach")
}

// TestNeverRaises asserts breach.SweepA/SweepB never raise a cell
// above its original elevation.
func TestNeverRaises(t *testing.T) {
	data := []float64{
		10, 9, 8, 7,
		9, 3, 9, 6,
		8, 9, 9, 5,
		7, 6, 5, 4,
	}
	orig := append([]float64(nil), data...)
	src := rastertest.NewMemSource(4, 4, data)
	sink := rastertest.NewMemSink(4, 4)

	cfg := breach.DefaultConfig()
	_, err := breach.Run(context.Background(), src, sink, cfg, 0, 1, nil)
	require.NoError(t, err)

	for i, v := range sink.Data {
		if math.IsNaN(orig[i]) {
			continue
		}
		assert.LessOrEqual(t, v, orig[i], "index %d", i)
	}
}
