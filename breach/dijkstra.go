package breach

import (
	"container/heap"

	"github.com/terraflow/hydrotile/raster"
)

type pqItem struct {
	cell raster.Cell
	cost float64
	seq  int
}

type costHeap []*pqItem

func (h costHeap) Len() int { return len(h) }
func (h costHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h costHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *costHeap) Push(x interface{}) { *h = append(*h, x.(*pqItem)) }
func (h *costHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// SweepB runs Phase B for every pit SweepA could not resolve. buf is
// mutated in place for every pit whose cheapest breach path costs no
// more than cfg.MaxCost; pits beyond that budget are counted in
// Metrics.UnsolvedBudget and left for the fill stage, per spec §4.3's
// documented "bound".
func SweepB(buf *raster.Buffer[float32], pits []raster.Cell, cfg Config) (solved, unsolvedBudget int) {
	for _, pit := range pits {
		if breachOne(buf, pit, cfg) {
			solved++
		} else {
			unsolvedBudget++
		}
	}
	return solved, unsolvedBudget
}

// breachOne runs single-source Dijkstra from pit within a
// (2r+1)x(2r+1) window, terminating the moment it pops a cell whose
// elevation is below zPit or is nodata. Edge cost c->n is
// w*(zn-zPit), w=1 cardinal or sqrt2 diagonal; nodata neighbors cost
// 0 (treated as -inf elevation numerically per spec).
func breachOne(buf *raster.Buffer[float32], pit raster.Cell, cfg Config) bool {
	r := cfg.SearchRadius
	zPit := buf.At(pit)

	dist := make(map[raster.Cell]float64)
	prev := make(map[raster.Cell]raster.Cell)
	visited := make(map[raster.Cell]bool)

	var pq costHeap
	heap.Init(&pq)
	seq := 0
	push := func(c raster.Cell, cost float64) {
		heap.Push(&pq, &pqItem{cell: c, cost: cost, seq: seq})
		seq++
	}
	dist[pit] = 0
	push(pit, 0)

	inWindow := func(c raster.Cell) bool {
		return c.Row >= pit.Row-r && c.Row <= pit.Row+r && c.Col >= pit.Col-r && c.Col <= pit.Col+r
	}

	var term raster.Cell
	found := false
	for pq.Len() > 0 {
		it := heap.Pop(&pq).(*pqItem)
		if visited[it.cell] {
			continue
		}
		if it.cost > dist[it.cell] {
			continue
		}
		visited[it.cell] = true

		if it.cell != pit {
			z := buf.At(it.cell)
			if raster.IsNoData(z) || z < zPit {
				term = it.cell
				found = true
				break
			}
		}

		for d := raster.Dir(0); d < 8; d++ {
			n := raster.Step(it.cell, d)
			if !buf.InBounds(n) || !inWindow(n) || visited[n] {
				continue
			}
			zn := buf.At(n)
			w := raster.StepDist(d)
			var cost float64
			if raster.IsNoData(zn) {
				cost = 0
			} else {
				cost = w * (float64(zn) - float64(zPit))
			}
			cand := it.cost + cost
			if cur, ok := dist[n]; !ok || cand < cur {
				dist[n] = cand
				prev[n] = it.cell
				push(n, cand)
			}
		}
	}

	if !found || dist[term] > cfg.MaxCost {
		return false
	}

	// Reconstruct path pit -> term.
	path := []raster.Cell{term}
	cur := term
	for cur != pit {
		cur = prev[cur]
		path = append(path, cur)
	}
	// Reverse so path[0]==pit, path[len-1]==term.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	termNoData := raster.IsNoData(buf.At(term))
	zTerm := buf.At(term)
	L := len(path) - 1
	for i := 1; i < L; i++ {
		c := path[i]
		cur := buf.At(c)
		if cur == zPit {
			continue // flat cells at pit elevation are left unchanged
		}
		var interp float32
		if termNoData {
			interp = zPit - float32(i)*float32(cfg.Epsilon)
		} else {
			t := float32(i) / float32(L)
			interp = zPit + t*(zTerm-zPit)
		}
		if interp < cur {
			buf.Set(c, interp)
		}
	}
	return true
}
