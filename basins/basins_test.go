package basins_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
)

func TestIngestDropsOutOfBoundsAndNoData(t *testing.T) {
	acc := rastertest.NewMemSource(3, 3, []float64{
		-1, -1, -1,
		-1, 5, -1,
		-1, -1, -1,
	})
	acc.NoData_ = -1
	points := []basins.DrainagePoint{
		{Cell: raster.Cell{Row: -1, Col: 0}, BasinID: 1}, // OOB
		{Cell: raster.Cell{Row: 0, Col: 0}, BasinID: 2},  // nodata, no snap
	}
	res, err := basins.Ingest(context.Background(), points, acc, basins.Config{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Dropped)
	assert.Empty(t, res.Points)
}

func TestIngestSnapsToMaxAccumulation(t *testing.T) {
	acc := rastertest.NewMemSource(3, 3, []float64{
		1, 2, 1,
		2, 3, 9,
		1, 2, 1,
	})
	acc.NoData_ = -1
	points := []basins.DrainagePoint{
		{Cell: raster.Cell{Row: 1, Col: 1}, BasinID: 42},
	}
	res, err := basins.Ingest(context.Background(), points, acc, basins.Config{SnapRadius: 1})
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, raster.Cell{Row: 1, Col: 2}, res.Points[0].Cell)
	assert.Equal(t, int64(42), res.Points[0].BasinID)
}

// TestRunSingleOutletNoUserPoints checks a plain strip draining to one
// raster-edge outlet resolves every cell to the same terminal label
// under all_basins=true, and to nodata under all_basins=false.
func TestRunSingleOutletNoUserPoints(t *testing.T) {
	const w, h = 4, 1
	dir := []float64{
		float64(raster.DirN), // col 0: terminates off a 1-row raster
		float64(raster.DirW), float64(raster.DirW), float64(raster.DirW),
	}
	dirSrc := rastertest.NewMemSource(w, h, dir)
	accSrc := rastertest.NewMemSource(w, h, make([]float64, w*h))
	accSrc.NoData_ = -1

	sink := rastertest.NewMemSink(w, h)
	_, err := basins.Run(context.Background(), dirSrc, accSrc, sink, nil, basins.Config{AllBasins: false}, 0, 1, nil)
	require.NoError(t, err)
	for _, v := range sink.Data {
		assert.Equal(t, float64(raster.BasinNoData), v)
	}

	sink2 := rastertest.NewMemSink(w, h)
	_, err = basins.Run(context.Background(), dirSrc, accSrc, sink2, nil, basins.Config{AllBasins: true}, 0, 1, nil)
	require.NoError(t, err)
	first := sink2.Data[0]
	assert.NotEqual(t, float64(raster.BasinNoData), first)
	for _, v := range sink2.Data {
		assert.Equal(t, first, v)
	}
}

// TestRunDrainagePointSplitsBasin checks that cells upstream of a
// drainage point resolve to the user's own basin ID, while cells
// downstream of it (between the point and the tile's terminal
// outlet) fall back to nodata when all_basins is false.
func TestRunDrainagePointSplitsBasin(t *testing.T) {
	const w, h = 4, 1
	dir := []float64{
		float64(raster.DirN),
		float64(raster.DirW), float64(raster.DirW), float64(raster.DirW),
	}
	dirSrc := rastertest.NewMemSource(w, h, dir)
	accSrc := rastertest.NewMemSource(w, h, make([]float64, w*h))
	accSrc.NoData_ = -1

	sink := rastertest.NewMemSink(w, h)
	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 2}, BasinID: 99}}
	_, err := basins.Run(context.Background(), dirSrc, accSrc, sink, points, basins.Config{AllBasins: false}, 0, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(raster.BasinNoData), sink.Data[0])
	assert.Equal(t, float64(raster.BasinNoData), sink.Data[1])
	assert.Equal(t, float64(99), sink.Data[2])
	assert.Equal(t, float64(99), sink.Data[3])
}

// TestRunCrossTileDrainagePoint runs the same split-basin scenario as
// TestRunDrainagePointSplitsBasin but over two tiles, exercising the
// cross-tile label graph built by Solve.
func TestRunCrossTileDrainagePoint(t *testing.T) {
	const w, h = 6, 1
	dir := make([]float64, w)
	dir[0] = float64(raster.DirN)
	for c := 1; c < w; c++ {
		dir[c] = float64(raster.DirW)
	}
	dirSrc := rastertest.NewMemSource(w, h, dir)
	accSrc := rastertest.NewMemSource(w, h, make([]float64, w*h))
	accSrc.NoData_ = -1

	sink := rastertest.NewMemSink(w, h)
	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 4}, BasinID: 7}}
	res, err := basins.Run(context.Background(), dirSrc, accSrc, sink, points, basins.Config{AllBasins: false}, 3, 1, nil)
	require.NoError(t, err)

	for c := 0; c < 4; c++ {
		assert.Equal(t, float64(raster.BasinNoData), sink.Data[c])
	}
	assert.Equal(t, float64(7), sink.Data[4])
	assert.Equal(t, float64(7), sink.Data[5])
	require.NotEmpty(t, res.Adjacency)
	assert.Equal(t, int64(7), res.Adjacency[0].Upstream)
}
