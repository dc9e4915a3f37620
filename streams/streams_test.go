package streams_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraflow/hydrotile/internal/rastertest"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/streams"
)

func TestStitchDownstreamMeetsUpstream(t *testing.T) {
	join := raster.Cell{Row: 0, Col: 3}
	a := &streams.Segment{
		Cells: []raster.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		Dn:    streams.Endpoint{Global: join, Role: streams.RoleDownstream, Stub: true},
	}
	b := &streams.Segment{
		Cells: []raster.Cell{{Row: 0, Col: 3}, {Row: 0, Col: 4}},
		Up:    streams.Endpoint{Global: join, Role: streams.RoleUpstream, Stub: true},
	}

	out := streams.Stitch([]*streams.Segment{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, []raster.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 3}, {Row: 0, Col: 4}}, out[0].Cells)
}

func TestStitchUpstreamMeetsUpstream(t *testing.T) {
	join := raster.Cell{Row: 0, Col: 0}
	a := &streams.Segment{
		Cells: []raster.Cell{{Row: 0, Col: 2}, {Row: 0, Col: 1}},
		Up:    streams.Endpoint{Global: join, Role: streams.RoleUpstream, Stub: true},
	}
	b := &streams.Segment{
		Cells: []raster.Cell{{Row: 0, Col: 0}, {Row: 0, Col: -1}},
		Up:    streams.Endpoint{Global: join, Role: streams.RoleUpstream, Stub: true},
	}

	out := streams.Stitch([]*streams.Segment{a, b})
	require.Len(t, out, 1)
	// a reversed becomes [col1, col2] before b is appended; exact
	// ordering mechanics are covered by the downstream/upstream case
	// above, so this just checks the merge actually happened.
	assert.Len(t, out[0].Cells, 4)
}

// TestRunCrossTileStream builds a single straight stream line crossing
// a tile boundary and checks it stitches back into one segment
// spanning both tiles, matching spec §8 scenario 5's stitching intent
// (simplified to a single reach rather than a full Y-confluence).
func TestRunCrossTileStream(t *testing.T) {
	const w, h = 6, 1
	acc := make([]float64, w*h)
	dir := make([]float64, w*h)
	for c := 0; c < w; c++ {
		acc[c] = 10
		if c < w-1 {
			dir[c] = float64(raster.DirE)
		} else {
			dir[c] = float64(raster.DirNoData) // outlet: terminates
		}
	}
	accSrc := rastertest.NewMemSource(w, h, acc)
	dirSrc := rastertest.NewMemSource(w, h, dir)

	res, err := streams.Run(context.Background(), accSrc, dirSrc, streams.Config{Threshold: 5}, 3, 1, nil)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Len(t, res.Segments[0].Cells, w)
}
