package basins

import "github.com/terraflow/hydrotile/raster"

// Finalize resolves every interior cell's tile-local label to its
// terminal basin ID and writes the result into out (int64, w*h,
// row-major), per spec §4.8's finalize rule: walk the label graph
// forward until reaching a known user basin ID (write it) or running
// out of edges (a true terminal outlet -- write it when allBasins,
// else raster.BasinNoData).
func Finalize(r *LocalResult, next map[int64]int64, userIDs map[int64]bool, allBasins bool, out []int64) {
	bound := len(next) + 1
	for i, label := range r.Labels {
		out[i] = resolve(label, next, userIDs, allBasins, bound)
	}
}

func resolve(label int64, next map[int64]int64, userIDs map[int64]bool, allBasins bool, bound int) int64 {
	// label 0 is local.go's zero-initialized sentinel for a cell whose
	// direction was nodata and that never got seeded with a real
	// tile-local label (spec §3: "Basin ID ... 0 means unlabeled"). It
	// is never a key in next or userIDs, so it must be masked here
	// before the allBasins fallback below would otherwise write it
	// straight through as a fake basin ID.
	if label == 0 {
		return raster.BasinNoData
	}
	cur := label
	for steps := 0; steps < bound; steps++ {
		if userIDs[cur] {
			return cur
		}
		n, ok := next[cur]
		if !ok {
			if allBasins {
				return cur
			}
			return raster.BasinNoData
		}
		cur = n
	}
	// Exceeded the graph's own size without resolving: a cycle slipped
	// through, which Local/Solve should already have ruled out.
	return raster.BasinNoData
}
