package fill

import (
	"container/heap"

	"github.com/terraflow/hydrotile/raster"
)

// heapItem is one pending cell in the min-heap, ordered by elevation
// with ties broken by insertion sequence (stable), exactly the
// teacher's dijkstra.nodePQ convention.
type heapItem struct {
	cell raster.Cell
	z    float32
	seq  int
}

type cellHeap []*heapItem

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	if h[i].z != h[j].z {
		return h[i].z < h[j].z
	}
	return h[i].seq < h[j].seq
}
func (h cellHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *cellHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Local runs the priority-flood local phase over a single tile's
// elevation buffer (w*h, row-major, halo included). elev is mutated
// in place by the pit-queue raising step. interiorRow/interiorCol/
// interiorW/interiorH describe the interior sub-rectangle within the buffer
// (excluding halo) whose outer ring feeds BoundaryLabel output;
// globalOrigin is the buffer's (row,col) position in the full raster,
// used to detect true raster-edge cells.
func Local(elev []float32, w, h int, interiorRow, interiorCol, interiorW, interiorH int, globalOrigin raster.Cell, rasterW, rasterH, tileIndex int, cfg Config) *LocalResult {
	buf := &raster.Buffer[float32]{W: w, H: h, Data: elev}
	labels := make([]int64, w*h)

	var pq cellHeap
	heap.Init(&pq)
	var pit []raster.Cell
	seq := 0

	push := func(c raster.Cell, z float32) {
		heap.Push(&pq, &heapItem{cell: c, z: z, seq: seq})
		seq++
	}

	// Seed the heap with the buffer's outer ring.
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if row != 0 && row != h-1 && col != 0 && col != w-1 {
				continue
			}
			c := raster.Cell{Row: row, Col: col}
			z := buf.At(c)
			if raster.IsNoData(z) {
				if cfg.FillHoles {
					if mn, ok := minValidNeighbor(buf, c); ok {
						push(c, mn)
						continue
					}
				}
				push(c, float32(negInf))
				continue
			}
			push(c, z)
		}
	}

	// Every tile runs its own fresh labeling starting at 2; to keep
	// labels globally unique once merged in the global phase, offset
	// by tileIndex*w*h (every cell could in the worst
	// case become its own watershed, so w*h is a safe per-tile stride).
	nextLabel := FirstFreshLabel + int64(tileIndex)*int64(w*h)
	var edges []SpillEdge
	addEdge := func(a, b int64, spill float32) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		edges = append(edges, SpillEdge{A: a, B: b, Spill: spill})
	}

	visited := make([]bool, w*h)
	visit := func(c raster.Cell, label int64) {
		idx := buf.Index(c)
		visited[idx] = true
		labels[idx] = label
	}

	process := func(c raster.Cell, z float32) {
		idx := buf.Index(c)
		if visited[idx] {
			return
		}
		var label int64
		if labels[idx] != 0 {
			// already assigned by a neighbor inheriting into it before
			// it was popped; keep that label.
			label = labels[idx]
		} else {
			label = nextLabel
			nextLabel++
		}
		visit(c, label)

		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(c, d)
			if !buf.InBounds(n) {
				continue
			}
			nIdx := buf.Index(n)
			if visited[nIdx] {
				if labels[nIdx] != label {
					nz := buf.At(n)
					spill := z
					if nz > spill {
						spill = nz
					}
					addEdge(label, labels[nIdx], spill)
				}
				continue
			}
			nz := buf.At(n)
			if raster.IsNoData(nz) {
				continue
			}
			labels[nIdx] = label
			if nz <= z {
				buf.Set(n, z)
				pit = append(pit, n)
			} else {
				push(n, nz)
			}
		}
	}

	for pq.Len() > 0 || len(pit) > 0 {
		if len(pit) > 0 {
			c := pit[0]
			pit = pit[1:]
			process(c, buf.At(c))
			continue
		}
		item := heap.Pop(&pq).(*heapItem)
		process(item.cell, item.z)
	}

	boundary := collectBoundary(elev, labels, w, h, interiorRow, interiorCol, interiorW, interiorH, globalOrigin, rasterW, rasterH)

	return &LocalResult{
		Elev: elev, Labels: labels, W: w, H: h,
		SpillEdges: edges, Boundary: boundary,
	}
}

const negInf = float32(-1e30)

func minValidNeighbor(buf *raster.Buffer[float32], c raster.Cell) (float32, bool) {
	var best float32
	found := false
	for d := raster.Dir(0); d < 8; d++ {
		n := raster.Step(c, d)
		if !buf.InBounds(n) {
			continue
		}
		z := buf.At(n)
		if raster.IsNoData(z) {
			continue
		}
		if !found || z < best {
			best = z
			found = true
		}
	}
	return best, found
}

func collectBoundary(elev []float32, labels []int64, w, h, ir, ic, iw, ih int, globalOrigin raster.Cell, rasterW, rasterH int) []BoundaryLabel {
	var out []BoundaryLabel
	add := func(row, col int) {
		idx := row*w + col
		g := raster.Cell{Row: globalOrigin.Row + row, Col: globalOrigin.Col + col}
		onEdge := g.Row == 0 || g.Col == 0 || g.Row == rasterH-1 || g.Col == rasterW-1
		out = append(out, BoundaryLabel{Global: g, Label: labels[idx], Elev: elev[idx], OnEdge: onEdge})
	}
	for col := ic; col < ic+iw; col++ {
		add(ir, col)
		add(ir+ih-1, col)
	}
	for row := ir; row < ir+ih; row++ {
		add(row, ic)
		add(row, ic+iw-1)
	}
	return out
}
