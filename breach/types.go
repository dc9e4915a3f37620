// Package breach implements the least-cost breach stage (spec §4.3):
// a deterministic single-cell sweep for simple pits (Phase A), falling
// back to a bounded-window Dijkstra search for pits Phase A cannot
// solve (Phase B). Phase B reuses the teacher's dijkstra package heap
// shape (container/heap, lazy decrease-key) generalized from
// non-negative int64 distances to float64 costs that may be negative,
// since cost here depends only on the destination cell's elevation
// relative to the fixed pit elevation, never on the path taken to
// reach it (spec's justification for "no negative cycles").
package breach

import "github.com/terraflow/hydrotile/raster"

// Config controls the breach stage per spec §6/§4.3.
type Config struct {
	// SearchRadius bounds the Phase B Dijkstra window (also the
	// stage's required tile halo).
	SearchRadius int
	// MaxCost caps the accepted total Phase B path cost; pits whose
	// cheapest breach exceeds this remain unsolved for fill to handle.
	MaxCost float64
	// Epsilon is the small gradient used when a breach path ends at a
	// nodata cell (a Phase A target or a Phase B path end), per spec
	// §9 Open Question (b): tunable, not a fixed constant.
	Epsilon float64
}

// DefaultConfig returns the spec's suggested defaults.
func DefaultConfig() Config {
	return Config{SearchRadius: 20, MaxCost: 1e9, Epsilon: 1e-5}
}

// Metrics reports counts that are not errors per spec §7: pit
// resolution outcomes are a diagnostic, not a failure.
type Metrics struct {
	PhaseASolved   int
	PhaseBSolved   int
	UnsolvedBudget int // exceeded MaxCost or SearchRadius; left for fill
}

// isPit reports whether c is a strict pit: all 8 neighbors have
// elevation >= z, with at least one strictly greater (so an all-equal
// flat cell is not a pit). A neighbor that is nodata or outside the
// buffer is not >= z, so a cell beside one is never a pit.
func isPit(buf *raster.Buffer[float32], c raster.Cell, z float32) bool {
	anyGreater := false
	for d := raster.Dir(0); d < 8; d++ {
		n := raster.Step(c, d)
		if !buf.InBounds(n) {
			return false
		}
		nz := buf.At(n)
		if raster.IsNoData(nz) {
			return false
		}
		if nz < z {
			return false
		}
		if nz > z {
			anyGreater = true
		}
	}
	return anyGreater
}
