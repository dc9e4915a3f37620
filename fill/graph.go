package fill

import "container/heap"

// graphItem is a pending label in the global priority-flood, ordered
// by its current best fill elevation (the same lazy decrease-key
// heap shape as Local's cellHeap and the teacher's dijkstra.nodePQ).
type graphItem struct {
	label int64
	fill  float32
	seq   int
}

type labelHeap []*graphItem

func (h labelHeap) Len() int { return len(h) }
func (h labelHeap) Less(i, j int) bool {
	if h[i].fill != h[j].fill {
		return h[i].fill < h[j].fill
	}
	return h[i].seq < h[j].seq
}
func (h labelHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *labelHeap) Push(x interface{}) { *h = append(*h, x.(*graphItem)) }
func (h *labelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// adjacency is a flat adjacency list over watershed labels, built by
// merging every tile's SpillEdges plus the cross-tile stitching edges
// the global phase adds for shared tile borders. A generic
// *core.Graph (string-keyed, map-of-maps) was tried here and dropped:
// label counts scale with raster size, and the string formatting /
// map-of-maps overhead it carries is wasted on what is, underneath,
// just an int64-keyed edge list (see DESIGN.md).
type adjacency map[int64][]labelEdge

type labelEdge struct {
	to    int64
	spill float32
}

func newAdjacency() adjacency { return make(adjacency) }

func (g adjacency) addEdge(a, b int64, spill float32) {
	if a == b {
		return
	}
	g[a] = appendMin(g[a], b, spill)
	g[b] = appendMin(g[b], a, spill)
}

// appendMin appends an edge to to, merging with any existing parallel
// edge to the same neighbor by keeping the minimum spill, per spec
// §4.2's "multi-edges retained at min".
func appendMin(edges []labelEdge, to int64, spill float32) []labelEdge {
	for i := range edges {
		if edges[i].to == to {
			if spill < edges[i].spill {
				edges[i].spill = spill
			}
			return edges
		}
	}
	return append(edges, labelEdge{to: to, spill: spill})
}

// Solve runs a priority-flood over the merged label graph, seeded at
// EdgeLabel with an effectively -infinite fill elevation. For every
// other label its final fill elevation is the minimum, over all paths
// to EdgeLabel, of the maximum spill elevation along that path — a
// bottleneck-shortest-path problem solved with the same lazy
// decrease-key Dijkstra shape the teacher uses for ordinary shortest
// paths, with the relax rule changed from addition to max.
func Solve(g adjacency) map[int64]float32 {
	fillElev := make(map[int64]float32)
	var pq labelHeap
	heap.Init(&pq)
	seq := 0
	push := func(label int64, fill float32) {
		heap.Push(&pq, &graphItem{label: label, fill: fill, seq: seq})
		seq++
	}
	push(EdgeLabel, negInf)
	for pq.Len() > 0 {
		it := heap.Pop(&pq).(*graphItem)
		if prev, ok := fillElev[it.label]; ok && prev <= it.fill {
			continue
		}
		fillElev[it.label] = it.fill
		for _, e := range g[it.label] {
			cand := it.fill
			if e.spill > cand {
				cand = e.spill
			}
			if prev, ok := fillElev[e.to]; !ok || cand < prev {
				push(e.to, cand)
			}
		}
	}
	return fillElev
}
