package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/pipeline"
	"github.com/terraflow/hydrotile/raster"
)

type lineCall struct {
	layer        string
	fid, basinID int64
	length       float64
	pts          [][2]float64
}

type fakeLineSink struct {
	layer string
	lines []lineCall
}

func (f *fakeLineSink) CreateLayer(name string) error { f.layer = name; return nil }

func (f *fakeLineSink) WriteLine(_ context.Context, layer string, fid, basinID int64, length float64, pts [][2]float64) error {
	f.lines = append(f.lines, lineCall{layer, fid, basinID, length, pts})
	return nil
}

type pointCall struct {
	fid  int64
	x, y float64
	kind raster.JunctionKind
}

type fakePointSink struct {
	layer string
	pts   []pointCall
}

func (f *fakePointSink) CreateLayer(name string) error { f.layer = name; return nil }

func (f *fakePointSink) WritePoint(_ context.Context, layer string, fid int64, x, y float64, kind raster.JunctionKind) error {
	f.pts = append(f.pts, pointCall{fid, x, y, kind})
	return nil
}

// TestRunEndToEnd drives the full nine-stage chain over a six-cell
// monotonic strip draining east with no pits, checking that every
// stage's output lands in the expected sink and that the run's
// diagnostic counts come back sane. Flat resolution stays on: the
// outlet at column 5 has no lower in-raster neighbor, so flowdir
// leaves it undefined and accumulation would reject it otherwise.
func TestRunEndToEnd(t *testing.T) {
	const w, h = 6, 1
	elev := []float64{5, 4, 3, 2, 1, 0}
	elevSrc := rastertest.NewMemSource(w, h, elev)

	conditioned := rastertest.NewMemSink(w, h)
	direction := rastertest.NewMemSink(w, h)
	accumulation := rastertest.NewMemSink(w, h)
	basinRaster := rastertest.NewMemSink(w, h)
	flowLength := rastertest.NewMemSink(w, h)
	streamLines := &fakeLineSink{}
	longestPath := &fakeLineSink{}
	junctions := &fakePointSink{}

	outputs := pipeline.Outputs{
		Conditioned:  conditioned,
		Direction:    direction,
		Accumulation: accumulation,
		Basins:       basinRaster,
		FlowLength:   flowLength,
		Streams:      streamLines,
		LongestPath:  longestPath,
		Junctions:    junctions,
	}

	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 5}, BasinID: 1}}

	res, err := pipeline.Run(context.Background(), elevSrc, points, outputs,
		pipeline.WithChunkSize(3),
		pipeline.WithWorkers(1),
		pipeline.WithResolveFlats(true),
		pipeline.WithThreshold(1),
	)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, elev, conditioned.Data) // already monotonic: nothing to breach or fill
	for c := 0; c < w-1; c++ {
		assert.Equal(t, float64(raster.DirE), direction.Data[c])
	}

	require.NotNil(t, res.Basins)
	assert.Equal(t, 0, res.Basins.Ingest.Dropped)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, basinRaster.Data)

	assert.Equal(t, []float64{5, 4, 3, 2, 1, 0}, flowLength.Data)

	require.Len(t, longestPath.lines, 1)
	assert.Equal(t, int64(1), longestPath.lines[0].basinID)
	assert.Equal(t, 5.0, longestPath.lines[0].length)

	require.NotNil(t, res.Streams)
	assert.NotEmpty(t, res.Streams.Segments)
}

// TestRunSkipsNilSinks checks that a caller who only wants the
// conditioned DEM can leave every other Outputs field nil without
// Run panicking or erroring on a missing sink.
func TestRunSkipsNilSinks(t *testing.T) {
	const w, h = 4, 1
	elev := []float64{3, 2, 1, 0}
	elevSrc := rastertest.NewMemSource(w, h, elev)
	conditioned := rastertest.NewMemSink(w, h)

	points := []basins.DrainagePoint{{Cell: raster.Cell{Row: 0, Col: 3}, BasinID: 1}}
	res, err := pipeline.Run(context.Background(), elevSrc, points, pipeline.Outputs{Conditioned: conditioned},
		pipeline.WithResolveFlats(true),
	)
	require.NoError(t, err)
	assert.Equal(t, elev, conditioned.Data)
	assert.NotNil(t, res.Basins)
}
