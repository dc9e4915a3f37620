package pipeline

import (
	"context"
	"math"

	"github.com/terraflow/hydrotile/accum"
	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/breach"
	"github.com/terraflow/hydrotile/fill"
	"github.com/terraflow/hydrotile/flatres"
	"github.com/terraflow/hydrotile/flowdir"
	"github.com/terraflow/hydrotile/flowlen"
	"github.com/terraflow/hydrotile/hterr"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/streams"
	"github.com/terraflow/hydrotile/tile"
)

// Run executes the full terrain-analysis chain over elevSrc: breach,
// fill, flow direction, optional flat resolution, accumulation,
// streams, basins, and flow length, in that order -- breach before
// fill per breach's own doc comment ("letting the subsequent fill
// stage clean up any residual pit"), contrary to spec §4's
// leaves-first component listing, which orders by dependency depth
// for presentation rather than by execution order.
//
// Each stage's tiled output is captured in an in-memory relay
// (buffer.go) so the next stage can read it as a raster.Source;
// outputs.* sinks, where non-nil, receive a mirrored copy of whichever
// rasters and vector layers spec §6's on-disk layout table names.
func Run(ctx context.Context, elevSrc raster.Source, drainagePoints []basins.DrainagePoint, outputs Outputs, opts ...Option) (*Result, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	w, h := elevSrc.Width(), elevSrc.Height()
	gt := elevSrc.GeoTransform()
	crs := elevSrc.CRS()
	nodata := elevSrc.NoData()

	var prog tile.Progress // nil is a valid no-op, per tile.Progress's doc comment

	breached := newMemRelay(w, h, nodata, gt, crs)
	breachCfg := breach.Config{SearchRadius: cfg.SearchRadius, MaxCost: cfg.MaxCost, Epsilon: cfg.Epsilon}
	metrics, err := breach.Run(ctx, elevSrc, breached, breachCfg, cfg.ChunkSize, cfg.Workers, prog)
	if err != nil {
		return nil, err
	}

	filled := newMemRelay(w, h, nodata, gt, crs)
	var filledSink raster.Sink = filled
	if outputs.Conditioned != nil {
		if err := outputs.Conditioned.Create("conditioned", raster.DTypeFloat32, w, h, gt, crs, nodata); err != nil {
			return nil, hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		filledSink = teeSink{mem: filled, dest: outputs.Conditioned}
	}
	fillCfg := fill.Config{FillHoles: cfg.FillHoles}
	if err := fill.Run(ctx, breached, filledSink, fillCfg, cfg.ChunkSize, cfg.Workers, prog); err != nil {
		return nil, err
	}

	dirNoData := float64(raster.DirNoData)
	dir := newMemRelay(w, h, dirNoData, gt, crs)
	var dirSink raster.Sink = dir
	if outputs.Direction != nil {
		if err := outputs.Direction.Create("direction", raster.DTypeByte, w, h, gt, crs, dirNoData); err != nil {
			return nil, hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		dirSink = teeSink{mem: dir, dest: outputs.Direction}
	}
	if err := flowdir.Run(ctx, filled, dirSink, cfg.ChunkSize, cfg.Workers, prog); err != nil {
		return nil, err
	}

	var dirFinal raster.Source = dir
	if cfg.ResolveFlats {
		resolved := newMemRelay(w, h, dirNoData, gt, crs)
		var resolvedSink raster.Sink = resolved
		if outputs.Direction != nil {
			// Direction was already Create'd above; flatres's corrected
			// codes overwrite the same on-disk layer window by window.
			resolvedSink = teeSink{mem: resolved, dest: outputs.Direction}
		}
		flatCfg := flatres.Config{FlatChunkMax: cfg.FlatChunkMax}
		if err := flatres.Run(ctx, filled, dir, resolvedSink, flatCfg, cfg.ChunkSize, cfg.Workers, prog); err != nil {
			return nil, err
		}
		dirFinal = resolved
	}

	accNoData := float64(raster.AccNoData)
	acc := newMemRelay(w, h, accNoData, gt, crs)
	var accSink raster.Sink = acc
	if outputs.Accumulation != nil {
		if err := outputs.Accumulation.Create("accumulation", raster.DTypeInt64, w, h, gt, crs, accNoData); err != nil {
			return nil, hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		accSink = teeSink{mem: acc, dest: outputs.Accumulation}
	}
	if err := accum.Run(ctx, dirFinal, accSink, cfg.ChunkSize, cfg.Workers, prog); err != nil {
		return nil, err
	}

	streamsCfg := streams.Config{Threshold: cfg.Threshold}
	streamsRes, err := streams.Run(ctx, acc, dirFinal, streamsCfg, cfg.ChunkSize, cfg.Workers, prog)
	if err != nil {
		return nil, err
	}
	if err := writeStreamNetwork(ctx, streamsRes, outputs); err != nil {
		return nil, err
	}

	basinNoData := float64(raster.BasinNoData)
	basinBuf := newMemRelay(w, h, basinNoData, gt, crs)
	var basinSink raster.Sink = basinBuf
	if outputs.Basins != nil {
		if err := outputs.Basins.Create("basins", raster.DTypeInt64, w, h, gt, crs, basinNoData); err != nil {
			return nil, hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		basinSink = teeSink{mem: basinBuf, dest: outputs.Basins}
	}
	basinsCfg := basins.Config{SnapRadius: cfg.SnapRadius, AllBasins: cfg.AllBasins}
	basinsRes, err := basins.Run(ctx, dirFinal, acc, basinSink, drainagePoints, basinsCfg, cfg.ChunkSize, cfg.Workers, prog)
	if err != nil {
		return nil, err
	}

	lengthNoData := float64(raster.LengthNoData)
	length := newMemRelay(w, h, lengthNoData, gt, crs)
	var lengthSink raster.Sink = length
	if outputs.FlowLength != nil {
		if err := outputs.FlowLength.Create("flow_length", raster.DTypeFloat32, w, h, gt, crs, lengthNoData); err != nil {
			return nil, hterr.New(hterr.IoError, Stage, hterr.NoCell, err)
		}
		lengthSink = teeSink{mem: length, dest: outputs.FlowLength}
	}
	lineSink := outputs.LongestPath
	if lineSink == nil {
		lineSink = nopLineSink{}
	}
	if err := flowlen.Run(ctx, dirFinal, basinBuf, lengthSink, lineSink, "longest_path", basinsRes.Ingest.Points, basinsRes.Adjacency, cfg.ChunkSize, cfg.Workers, prog); err != nil {
		return nil, err
	}

	return &Result{Breach: metrics, Basins: basinsRes, Streams: streamsRes}, nil
}

// writeStreamNetwork replays streams.Run's in-memory result through
// outputs.Streams/outputs.Junctions: unlike every other stage,
// streams.Run never touches a sink itself, since a vectorized network
// is stitched across tiles only after every tile's segments are in
// hand (spec §4.7), so there is nothing to write incrementally during
// the tiled pass.
func writeStreamNetwork(ctx context.Context, res *streams.Result, outputs Outputs) error {
	if outputs.Streams != nil {
		if err := outputs.Streams.CreateLayer("streams"); err != nil {
			return hterr.New(hterr.IoError, streams.Stage, hterr.NoCell, err)
		}
		for _, seg := range res.Segments {
			basinID := int64(raster.BasinNoData)
			length := 0.0
			for i := 1; i < len(seg.Pts); i++ {
				length += dist2D(seg.Pts[i-1], seg.Pts[i])
			}
			if err := outputs.Streams.WriteLine(ctx, "streams", seg.FID, basinID, length, seg.Pts); err != nil {
				return hterr.New(hterr.IoError, streams.Stage, hterr.NoCell, err)
			}
		}
	}
	if outputs.Junctions != nil {
		if err := outputs.Junctions.CreateLayer("junctions"); err != nil {
			return hterr.New(hterr.IoError, streams.Stage, hterr.NoCell, err)
		}
		for _, j := range res.Junctions {
			if err := outputs.Junctions.WritePoint(ctx, "junctions", j.FID, j.X, j.Y, j.Kind); err != nil {
				return hterr.New(hterr.IoError, streams.Stage, hterr.NoCell, err)
			}
		}
	}
	return nil
}

func dist2D(a, b [2]float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	return math.Sqrt(dx*dx + dy*dy)
}
