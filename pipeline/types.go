// Package pipeline wires the nine components into the single
// end-to-end run spec §2's overview describes: breach, fill, flow
// direction, optional flat resolution, accumulation, streams, basins,
// and flow length, each stage's output handed to the next through an
// in-memory relay (buffer.go) while also mirroring to the caller's
// own persistent sinks (spec §6's on-disk layouts).
//
// Config follows the teacher's dijkstra package functional-option
// convention (an Options struct, an Option func(*Options), and WithX
// constructors) rather than this module's usual plain-struct-literal
// Config, because this is the one place a long, mostly-optional
// options table (spec §6) needs sane defaults a caller can override
// piecemeal instead of repeating every field.
package pipeline

import (
	"github.com/terraflow/hydrotile/basins"
	"github.com/terraflow/hydrotile/breach"
	"github.com/terraflow/hydrotile/raster"
	"github.com/terraflow/hydrotile/streams"
)

// Stage is the exported name used in progress reports for the
// orchestrator's own (non-per-component) bookkeeping.
const Stage = "pipeline"

// Config holds every pipeline-level option from spec §6's
// configuration table.
type Config struct {
	ChunkSize    int
	Workers      int
	SearchRadius int
	MaxCost      float64
	Epsilon      float64
	ResolveFlats bool
	FlatChunkMax int
	FillHoles    bool
	Threshold    int64
	SnapRadius   int
	AllBasins    bool
	WorkingDir   string
}

// DefaultConfig returns the spec's suggested defaults, seeded from
// breach.DefaultConfig() for the fields the two packages share.
func DefaultConfig() Config {
	bc := breach.DefaultConfig()
	return Config{
		ChunkSize:    0,
		Workers:      0,
		SearchRadius: bc.SearchRadius,
		MaxCost:      bc.MaxCost,
		Epsilon:      bc.Epsilon,
		ResolveFlats: true,
		FlatChunkMax: 512,
		FillHoles:    false,
		Threshold:    100,
		SnapRadius:   0,
		AllBasins:    false,
	}
}

// Option configures a Config, applied over DefaultConfig() in Run.
type Option func(*Config)

// WithChunkSize sets the tile side in cells; <=1 selects a single
// whole-raster tile.
func WithChunkSize(s int) Option { return func(c *Config) { c.ChunkSize = s } }

// WithWorkers bounds the scheduler's concurrent tile count; <=0 means
// unbounded.
func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithSearchRadius sets breach's Dijkstra window radius (also its
// tile halo).
func WithSearchRadius(r int) Option { return func(c *Config) { c.SearchRadius = r } }

// WithMaxCost caps breach's accepted total path cost.
func WithMaxCost(m float64) Option { return func(c *Config) { c.MaxCost = m } }

// WithEpsilon sets breach's small nodata gradient constant (spec §9
// Open Question (b)).
func WithEpsilon(e float64) Option { return func(c *Config) { c.Epsilon = e } }

// WithResolveFlats toggles §4.5 flat resolution after flow direction.
func WithResolveFlats(on bool) Option { return func(c *Config) { c.ResolveFlats = on } }

// WithFlatChunkMax caps the tile size flat resolution uses.
func WithFlatChunkMax(s int) Option { return func(c *Config) { c.FlatChunkMax = s } }

// WithFillHoles treats nodata as fillable interior in §4.2.
func WithFillHoles(on bool) Option { return func(c *Config) { c.FillHoles = on } }

// WithThreshold sets the accumulation threshold for stream
// classification.
func WithThreshold(t int64) Option { return func(c *Config) { c.Threshold = t } }

// WithSnapRadius sets the drainage-point snap window, in cells.
func WithSnapRadius(r int) Option { return func(c *Config) { c.SnapRadius = r } }

// WithAllBasins labels non-user outlets too, instead of leaving their
// upstream area nodata.
func WithAllBasins(on bool) Option { return func(c *Config) { c.AllBasins = on } }

// WithWorkingDir sets a scratch directory a persistent driver behind
// Outputs may use for its own tile spills; the in-memory relay this
// package uses internally ignores it.
func WithWorkingDir(dir string) Option { return func(c *Config) { c.WorkingDir = dir } }

// Outputs bundles every persistent sink spec §6's on-disk layout table
// names. Run mirrors each named intermediate raster or vector layer
// to its sink as soon as the stage that produces it finishes; a nil
// field simply skips that mirroring (the in-memory relay chain still
// carries the data forward to later stages either way).
type Outputs struct {
	Conditioned  raster.Sink // hydrologically-corrected elevation
	Direction    raster.Sink // D8 flow direction
	Accumulation raster.Sink // flow accumulation
	Basins       raster.Sink // basin labels
	FlowLength   raster.Sink // flow length

	Streams     raster.LineSink  // stream reach polylines
	LongestPath raster.LineSink  // per-basin longest-flow-path polylines
	Junctions   raster.PointSink // sources/confluences/outlets
}

// Result summarizes one Run: the diagnostic counts spec §7 calls out
// as non-error outcomes, plus the basin adjacency graph a caller may
// want to inspect directly.
type Result struct {
	Breach  breach.Metrics
	Basins  *basins.Result
	Streams *streams.Result
}
