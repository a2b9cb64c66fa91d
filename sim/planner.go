package sim

import (
	"pursuit/grid"
	"pursuit/pathfind"
)

// Planner picks the next cell for an entity. It is called with the grid guard
// held; ok is false when the entity should stay where it is.
type Planner interface {
	Plan(g *grid.Grid, self *grid.Entity) (next grid.Position, ok bool)
}

// PlannerFunc adapts a function to the Planner interface
type PlannerFunc func(g *grid.Grid, self *grid.Entity) (grid.Position, bool)

func (f PlannerFunc) Plan(g *grid.Grid, self *grid.Entity) (grid.Position, bool) {
	return f(g, self)
}

// Stay never moves
var Stay = PlannerFunc(func(*grid.Grid, *grid.Entity) (grid.Position, bool) {
	return grid.Position{}, false
})

// SeekerPlanner heads for the nearest reachable goal
type SeekerPlanner struct {
	Strategy pathfind.Strategy
}

func (p SeekerPlanner) Plan(g *grid.Grid, self *grid.Entity) (grid.Position, bool) {
	if g.Captured() {
		return grid.Position{}, false
	}
	r := pathfind.Search(g, self.Position(), g.Goals(), pathfind.WithStrategy(p.Strategy))
	if !r.Found || r.Distance == 0 {
		return grid.Position{}, false
	}
	return r.Next, true
}

// ChaserPlanner heads for the seeker's current cell
type ChaserPlanner struct {
	Strategy pathfind.Strategy
}

func (p ChaserPlanner) Plan(g *grid.Grid, self *grid.Entity) (grid.Position, bool) {
	s := g.Seeker()
	if s == nil || g.Captured() {
		return grid.Position{}, false
	}
	target := s.Position()
	view := chaseView{Grid: g, target: target}
	r := pathfind.Search(view, self.Position(), []grid.Position{target}, pathfind.WithStrategy(p.Strategy))
	if !r.Found || r.Distance == 0 {
		return grid.Position{}, false
	}
	return r.Next, true
}

// chaseView is the grid as a chaser sees it: the seeker's cell is enterable
type chaseView struct {
	*grid.Grid
	target grid.Position
}

func (v chaseView) Walkable(p grid.Position) bool {
	return p == v.target || v.Grid.Walkable(p)
}
