package flowlen_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/flowlen"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
)

// lineCall records one WriteLine invocation.
type lineCall struct {
	layer        string
	fid, basinID int64
	length       float64
	pts          [][2]float64
}

// fakeLineSink records WriteLine calls for assertion.
type fakeLineSink struct {
	layers []string
	lines  []lineCall
}

func (f *fakeLineSink) CreateLayer(name string) error {
	f.layers = append(f.layers, name)
	return nil
}

func (f *fakeLineSink) WriteLine(_ context.Context, layer string, fid, basinID int64, length float64, pts [][2]float64) error {
	f.lines = append(f.lines, lineCall{layer, fid, basinID, length, pts})
	return nil
}

// TestLocalAccumulatesUpstreamDistance checks a single-tile strip
// draining west: seeding the outlet at col 0 with length 0, each step
// upstream should add exactly one cell width (DX=1, projected CRS).
func TestLocalAccumulatesUpstreamDistance(t *testing.T) {
	const w, h = 4, 1
	dir := []raster.Dir{
		raster.DirN, // col 0: terminates off a 1-row raster
		raster.DirW, raster.DirW, raster.DirW,
	}
	basin := []int64{1, 1, 1, 1}
	gt := raster.GeoTransform{DX: 1, DY: 1}
	seeds := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 0}, BasinID: 1}}

	lr := flowlen.Local(dir, basin, w, h, 0, raster.Cell{}, w, h, gt, true, seeds)
	require.Equal(t, w, lr.W)
	assert.Equal(t, []float64{0, 1, 2, 3}, lr.Length)
	assert.Equal(t, []int64{1, 1, 1, 1}, lr.Basin)
}

// TestRunSingleTileLongestPath exercises the full Run orchestration
// over one tile and checks both the written length raster and the
// extracted longest-flow-path polyline.
func TestRunSingleTileLongestPath(t *testing.T) {
	const w, h = 4, 1
	dir := []float64{
		float64(raster.DirN),
		float64(raster.DirW), float64(raster.DirW), float64(raster.DirW),
	}
	dirSrc := rastertest.NewMemSource(w, h, dir)
	basinSrc := rastertest.NewMemSource(w, h, []float64{1, 1, 1, 1})
	basinSrc.NoData_ = float64(raster.BasinNoData)

	lengthSink := rastertest.NewMemSink(w, h)
	lineSink := &fakeLineSink{}

	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 0}, BasinID: 1}}
	err := flowlen.Run(context.Background(), dirSrc, basinSrc, lengthSink, lineSink, "longest_path", points, nil, 0, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2, 3}, lengthSink.Data)

	require.Len(t, lineSink.lines, 1)
	path := lineSink.lines[0]
	assert.Equal(t, int64(1), path.basinID)
	assert.Equal(t, 3.0, path.length)
	require.Len(t, path.pts, 4)
	assert.Equal(t, [2]float64{3.5, 0.5}, path.pts[0]) // farthest upstream cell first
	assert.Equal(t, [2]float64{0.5, 0.5}, path.pts[3])  // outlet last
}

// TestRunCrossTileLongestPath runs the same strip split across two
// tiles, exercising the global perimeter-claim propagation in Solve.
func TestRunCrossTileLongestPath(t *testing.T) {
	const w, h = 6, 1
	dir := make([]float64, w)
	dir[0] = float64(raster.DirN)
	for c := 1; c < w; c++ {
		dir[c] = float64(raster.DirW)
	}
	dirSrc := rastertest.NewMemSource(w, h, dir)

	basinVals := make([]float64, w)
	for i := range basinVals {
		basinVals[i] = 1
	}
	basinSrc := rastertest.NewMemSource(w, h, basinVals)
	basinSrc.NoData_ = float64(raster.BasinNoData)

	lengthSink := rastertest.NewMemSink(w, h)
	lineSink := &fakeLineSink{}

	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 0}, BasinID: 1}}
	err := flowlen.Run(context.Background(), dirSrc, basinSrc, lengthSink, lineSink, "longest_path", points, nil, 3, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, lengthSink.Data)

	require.Len(t, lineSink.lines, 1)
	assert.Equal(t, 5.0, lineSink.lines[0].length)
	require.Len(t, lineSink.lines[0].pts, 6)
	assert.Equal(t, [2]float64{5.5, 0.5}, lineSink.lines[0].pts[0])
}
