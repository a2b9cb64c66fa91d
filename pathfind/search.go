// Package pathfind finds the next step of a shortest 8-connected path from a
// start cell to the nearest reachable goal. Only the first step is returned:
// the board changes every cycle, so callers re-plan from scratch each time.
package pathfind

import (
	"fmt"
	"strings"

	"pursuit/grid"
)

// Board is the view of the grid a search runs against
type Board interface {
	InBounds(p grid.Position) bool
	Walkable(p grid.Position) bool
}

// Strategy selects the search algorithm
type Strategy int

const (
	BreadthFirst Strategy = iota
	BestFirst
)

func (s Strategy) String() string {
	switch s {
	case BreadthFirst:
		return "bfs"
	case BestFirst:
		return "astar"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name onto a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bfs", "breadth-first":
		return BreadthFirst, nil
	case "astar", "a*", "best-first":
		return BestFirst, nil
	}
	return BreadthFirst, fmt.Errorf("unknown search algorithm %q", name)
}

// Result is the outcome of one search. Found is false when no goal is
// reachable; Next and Distance are meaningless in that case.
type Result struct {
	Next     grid.Position
	Found    bool
	Distance int
	Expanded int
}

type options struct {
	strategy Strategy
}

type Option func(*options)

// WithStrategy overrides the default breadth-first search
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// Search explores the board from start and returns the first step of a
// shortest path to the nearest reachable goal. A start that is itself a goal
// yields Found with a zero distance and Next == start.
func Search(b Board, start grid.Position, goals []grid.Position, opts ...Option) Result {
	o := options{strategy: BreadthFirst}
	for _, opt := range opts {
		opt(&o)
	}
	if len(goals) == 0 {
		return Result{}
	}

	targets := make(map[grid.Position]struct{}, len(goals))
	for _, g := range goals {
		targets[g] = struct{}{}
	}
	if _, ok := targets[start]; ok {
		return Result{Next: start, Found: true, Expanded: 1}
	}

	switch o.strategy {
	case BestFirst:
		return bestFirst(b, start, goals, targets)
	default:
		return breadthFirst(b, start, targets)
	}
}

// NextStep is Search reduced to the step itself
func NextStep(b Board, start grid.Position, goals []grid.Position, opts ...Option) (grid.Position, bool) {
	r := Search(b, start, goals, opts...)
	return r.Next, r.Found
}

func breadthFirst(b Board, start grid.Position, targets map[grid.Position]struct{}) Result {
	parent := map[grid.Position]grid.Position{start: start}
	queue := []grid.Position{start}
	expanded := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		expanded++

		if _, ok := targets[cur]; ok {
			next, dist := firstStep(parent, start, cur)
			return Result{Next: next, Found: true, Distance: dist, Expanded: expanded}
		}

		for _, d := range grid.Directions {
			n := cur.Add(d)
			if _, seen := parent[n]; seen {
				continue
			}
			if !b.InBounds(n) || !b.Walkable(n) {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return Result{Expanded: expanded}
}

// firstStep walks the predecessor chain back from end and returns the cell
// directly after start together with the path length.
func firstStep(parent map[grid.Position]grid.Position, start, end grid.Position) (grid.Position, int) {
	step, dist := end, 0
	for cur := end; cur != start; {
		prev := parent[cur]
		step = cur
		cur = prev
		dist++
	}
	return step, dist
}
