package pathfind

import (
	"container/heap"
	"math"

	"pursuit/grid"
)

// bestFirst is A* with Euclidean step costs and the distance to the closest
// goal as heuristic.
func bestFirst(b Board, start grid.Position, goals []grid.Position, targets map[grid.Position]struct{}) Result {
	h := func(p grid.Position) float64 {
		best := math.Inf(1)
		for _, g := range goals {
			if d := euclidean(p, g); d < best {
				best = d
			}
		}
		return best
	}

	open := &priorityQueue{}
	heap.Init(open)
	items := map[grid.Position]*queueItem{}
	parent := map[grid.Position]grid.Position{start: start}
	closed := map[grid.Position]bool{}
	seq := 0

	push := func(p grid.Position, g float64) {
		it := &queueItem{pos: p, gScore: g, fCost: g + h(p), seq: seq}
		seq++
		items[p] = it
		heap.Push(open, it)
	}
	push(start, 0)

	expanded := 0
	for open.Len() > 0 {
		cur := heap.Pop(open).(*queueItem)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true
		expanded++

		if _, ok := targets[cur.pos]; ok {
			next, dist := firstStep(parent, start, cur.pos)
			return Result{Next: next, Found: true, Distance: dist, Expanded: expanded}
		}

		for _, d := range grid.Directions {
			n := cur.pos.Add(d)
			if closed[n] || !b.InBounds(n) || !b.Walkable(n) {
				continue
			}
			g := cur.gScore + stepCost(d)
			if it, ok := items[n]; ok {
				if g >= it.gScore {
					continue
				}
				it.gScore = g
				it.fCost = g + h(n)
				parent[n] = cur.pos
				heap.Fix(open, it.index)
				continue
			}
			parent[n] = cur.pos
			push(n, g)
		}
	}
	return Result{Expanded: expanded}
}

func stepCost(d grid.Direction) float64 {
	if d.DRow != 0 && d.DCol != 0 {
		return math.Sqrt2
	}
	return 1
}

func euclidean(a, b grid.Position) float64 {
	return math.Hypot(float64(a.Row-b.Row), float64(a.Col-b.Col))
}
