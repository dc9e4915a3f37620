package basins

import (
	"context"
	"errors"

	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
)

// Ingest validates and, when cfg.SnapRadius>0, snaps raw drainage
// points against an accumulation raster before the tiled basin run,
// restoring the source system's snap_drainage_points behavior (see
// DESIGN.md): each point moves to the cell of maximum accumulation
// within a SnapRadius window, tie-broken toward the smallest
// Chebyshev distance to its original cell and then row-major order.
// Points that land outside the raster, or have no valid accumulation
// cell anywhere in their search window, are dropped rather than
// failing the whole ingestion.
func Ingest(ctx context.Context, points []DrainagePoint, accSrc raster.Source, cfg Config) (*IngestResult, error) {
	w, h := accSrc.Width(), accSrc.Height()
	nodata := accSrc.NoData()

	res := &IngestResult{}
	for _, p := range points {
		snapped, err := ingestOne(ctx, p.Cell, accSrc, w, h, nodata, cfg.SnapRadius)
		if err != nil {
			res.Dropped++
			continue
		}
		res.Points = append(res.Points, DrainagePoint{Cell: snapped, BasinID: p.BasinID})
	}
	return res, nil
}

func ingestOne(ctx context.Context, c raster.Cell, accSrc raster.Source, w, h int, nodata float64, radius int) (raster.Cell, error) {
	if c.Row < 0 || c.Row >= h || c.Col < 0 || c.Col >= w {
		return raster.Cell{}, hterr.ErrDrainagePointOOB
	}
	if radius <= 0 {
		v, err := readCell(ctx, accSrc, c)
		if err != nil {
			return raster.Cell{}, err
		}
		if v == nodata {
			return raster.Cell{}, hterr.ErrDrainagePointNoData
		}
		return c, nil
	}

	x0, y0 := c.Col-radius, c.Row-radius
	side := 2*radius + 1
	window, err := accSrc.ReadWindow(ctx, x0, y0, side, side)
	if err != nil {
		return raster.Cell{}, err
	}

	best := c
	bestVal := nodata
	found := false
	bestDist := 1 << 30
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			v := window[row*side+col]
			if v == nodata {
				continue
			}
			cand := raster.Cell{Row: y0 + row, Col: x0 + col}
			if cand.Row < 0 || cand.Row >= h || cand.Col < 0 || cand.Col >= w {
				continue
			}
			dist := chebyshev(cand, c)
			if !found || v > bestVal || (v == bestVal && dist < bestDist) {
				found = true
				bestVal = v
				best = cand
				bestDist = dist
			}
		}
	}
	if !found {
		return raster.Cell{}, hterr.ErrDrainagePointNoData
	}
	return best, nil
}

func chebyshev(a, b raster.Cell) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}

func readCell(ctx context.Context, src raster.Source, c raster.Cell) (float64, error) {
	window, err := src.ReadWindow(ctx, c.Col, c.Row, 1, 1)
	if err != nil {
		return 0, err
	}
	if len(window) == 0 {
		return 0, errors.New("basins: empty read window")
	}
	return window[0], nil
}
