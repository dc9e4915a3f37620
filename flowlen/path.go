package flowlen

import (
	"context"

	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
)

// LongestPaths traces, for every terminal basin (one with no outgoing
// edge in adj -- spec §4.8's basin adjacency graph, reused here per
// §4.9's "as in §4.8"), the single longest flow path reaching it: the
// basin-maximum cell of whichever basin in its whole upstream-merged
// set has the greatest recorded length, traced cell-by-cell downstream
// through dirSrc to the true outlet, and written as one polyline per
// terminal basin via sink.
func LongestPaths(ctx context.Context, dirSrc raster.Source, adj []basins.AdjEdge, perBasinMax map[int64]BasinMax, sink raster.LineSink, layer string) error {
	upstreamOf := make(map[int64][]int64)
	isUpstream := make(map[int64]bool)
	for _, e := range adj {
		upstreamOf[e.Downstream] = append(upstreamOf[e.Downstream], e.Upstream)
		isUpstream[e.Upstream] = true
	}

	if err := sink.CreateLayer(layer); err != nil {
		return hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
	}

	var fid int64
	for terminal := range perBasinMax {
		if isUpstream[terminal] {
			continue // merges into some other basin: not a terminal outlet
		}

		var best BasinMax
		found := false
		visited := map[int64]bool{}
		queue := []int64{terminal}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if visited[id] {
				continue
			}
			visited[id] = true
			if bm, ok := perBasinMax[id]; ok && (!found || bm.Length > best.Length) {
				best, found = bm, true
			}
			queue = append(queue, upstreamOf[id]...)
		}
		if !found {
			continue
		}

		pts, err := trace(ctx, dirSrc, best.Cell)
		if err != nil {
			return err
		}
		if err := sink.WriteLine(ctx, layer, fid, terminal, best.Length, pts); err != nil {
			return hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		fid++
	}
	return nil
}

// trace walks the direction raster downstream from start, in cell
// centers, until a nodata direction or the raster edge ends the walk.
func trace(ctx context.Context, dirSrc raster.Source, start raster.Cell) ([][2]float64, error) {
	w, h := dirSrc.Width(), dirSrc.Height()
	gt := dirSrc.GeoTransform()

	var pts [][2]float64
	cur := start
	for {
		x, y := gt.CellCenter(cur)
		pts = append(pts, [2]float64{x, y})

		raw, err := dirSrc.ReadWindow(ctx, cur.Col, cur.Row, 1, 1)
		if err != nil {
			return nil, hterr.New(hterr.IoError, Stage, cur, err)
		}
		d := raster.Dir(raw[0])
		if d == raster.DirNoData || d == raster.DirUndefined {
			return pts, nil
		}
		n := raster.Step(cur, d)
		if n.Row < 0 || n.Row >= h || n.Col < 0 || n.Col >= w {
			return pts, nil
		}
		cur = n
	}
}
