// Package grid holds the shared board state of a pursuit simulation: a fixed
// matrix of cells, the goal list, the seeker and the chasers, together with the
// single guard every mover must hold while it reads and then moves.
package grid

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrNotAdjacent = errors.New("move is not a single step")
	ErrBlocked     = errors.New("target cell is not walkable")
	ErrOccupied    = errors.New("cell already occupied")
	ErrInvalid     = errors.New("invalid grid")
	ErrCaptured    = errors.New("seeker already captured")
)

// Grid represents the 2D space where the seeker and chasers move
type Grid struct {
	rows, cols int
	cells      [][]Cell
	goals      []Position
	seeker     *Entity
	chasers    []*Entity
	nextID     int
	mu         sync.Mutex
}

// New creates an empty rows x cols grid
func New(rows, cols int) *Grid {
	g := &Grid{rows: rows, cols: cols}
	g.cells = make([][]Cell, rows)
	for r := 0; r < rows; r++ {
		g.cells[r] = make([]Cell, cols)
	}
	return g
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// InBounds checks if the position lies inside the grid
func (g *Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// At returns the kind stored at p. Out-of-bounds positions are a programming
// error and panic.
func (g *Grid) At(p Position) CellKind {
	if !g.InBounds(p) {
		panic(fmt.Sprintf("grid: At%v outside %dx%d grid", p, g.rows, g.cols))
	}
	return g.cells[p.Row][p.Col].Kind
}

// Walkable reports whether a mover may step onto p: empty and goal cells only.
func (g *Grid) Walkable(p Position) bool {
	if !g.InBounds(p) {
		return false
	}
	k := g.cells[p.Row][p.Col].Kind
	return k == Empty || k == Goal
}

// IsGoal reports whether p is one of the goal cells
func (g *Grid) IsGoal(p Position) bool {
	return g.InBounds(p) && g.cells[p.Row][p.Col].goal
}

// GetCell returns the cell at the specified position
func (g *Grid) GetCell(p Position) *Cell {
	if g.InBounds(p) {
		return &g.cells[p.Row][p.Col]
	}
	return nil
}

// Exclusive runs fn while holding the grid-wide guard. The guard is released on
// every exit path, including a panic inside fn.
func (g *Grid) Exclusive(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

// Move steps the entity onto to. The target must be in bounds, one step away,
// and walkable, except that a chaser may step onto the seeker's cell.
func (g *Grid) Move(e *Entity, to Position) error {
	from := e.position
	if !g.InBounds(to) {
		return fmt.Errorf("%s move %v -> %v: %w", e.Name(), from, to, ErrOutOfBounds)
	}
	if !from.IsAdjacent(to) {
		return fmt.Errorf("%s move %v -> %v: %w", e.Name(), from, to, ErrNotAdjacent)
	}
	if e.Kind == Seeker && g.Captured() {
		return fmt.Errorf("%s move %v -> %v: %w", e.Name(), from, to, ErrCaptured)
	}
	capture := e.Kind == Chaser && g.seeker != nil && g.seeker.position == to && g.At(to) == Seeker
	if !capture && !g.Walkable(to) {
		return fmt.Errorf("%s move %v -> %v (%s): %w", e.Name(), from, to, g.At(to), ErrBlocked)
	}

	g.cells[from.Row][from.Col].OnExit(e)
	e.position = to
	g.cells[to.Row][to.Col].OnEnter(e)
	return nil
}

// Captured reports whether a chaser stands on the seeker's cell
func (g *Grid) Captured() bool {
	if g.seeker == nil {
		return false
	}
	return g.GetCell(g.seeker.position).Kind == Chaser
}

// Seeker returns the seeker entity, or nil before one is placed
func (g *Grid) Seeker() *Entity { return g.seeker }

// Chasers returns the chaser entities in placement order
func (g *Grid) Chasers() []*Entity {
	out := make([]*Entity, len(g.chasers))
	copy(out, g.chasers)
	return out
}

// Goals returns a copy of the goal positions in insertion order
func (g *Grid) Goals() []Position {
	out := make([]Position, len(g.goals))
	copy(out, g.goals)
	return out
}

// EmptyCells lists every empty cell in row-major order
func (g *Grid) EmptyCells() []Position {
	var out []Position
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.cells[r][c].Kind == Empty {
				out = append(out, Position{Row: r, Col: c})
			}
		}
	}
	return out
}

func (g *Grid) placeable(p Position) error {
	if !g.InBounds(p) {
		return fmt.Errorf("place at %v: %w", p, ErrOutOfBounds)
	}
	if k := g.cells[p.Row][p.Col].Kind; k != Empty {
		return fmt.Errorf("place at %v (%s): %w", p, k, ErrOccupied)
	}
	return nil
}

// PlaceObstacle marks p as an obstacle
func (g *Grid) PlaceObstacle(p Position) error {
	if err := g.placeable(p); err != nil {
		return err
	}
	g.cells[p.Row][p.Col].Kind = Obstacle
	return nil
}

// PlaceGoal marks p as a goal cell
func (g *Grid) PlaceGoal(p Position) error {
	if err := g.placeable(p); err != nil {
		return err
	}
	g.cells[p.Row][p.Col] = Cell{Kind: Goal, goal: true}
	g.goals = append(g.goals, p)
	return nil
}

// PlaceSeeker puts the single seeker at p
func (g *Grid) PlaceSeeker(p Position) (*Entity, error) {
	if g.seeker != nil {
		return nil, fmt.Errorf("place seeker at %v: seeker already at %v: %w", p, g.seeker.position, ErrInvalid)
	}
	e, err := g.placeMover(Seeker, p)
	if err != nil {
		return nil, err
	}
	g.seeker = e
	return e, nil
}

// PlaceChaser adds a chaser at p
func (g *Grid) PlaceChaser(p Position) (*Entity, error) {
	e, err := g.placeMover(Chaser, p)
	if err != nil {
		return nil, err
	}
	g.chasers = append(g.chasers, e)
	return e, nil
}

func (g *Grid) placeMover(kind CellKind, p Position) (*Entity, error) {
	if err := g.placeable(p); err != nil {
		return nil, err
	}
	e := &Entity{ID: g.nextID, Kind: kind, position: p}
	g.nextID++
	g.cells[p.Row][p.Col].OnEnter(e)
	return e, nil
}

// Validate checks the population a simulation needs: exactly one seeker, at
// least one chaser and at least one goal.
func (g *Grid) Validate() error {
	switch {
	case g.rows <= 0 || g.cols <= 0:
		return fmt.Errorf("size %dx%d: %w", g.rows, g.cols, ErrInvalid)
	case g.seeker == nil:
		return fmt.Errorf("no seeker placed: %w", ErrInvalid)
	case len(g.chasers) == 0:
		return fmt.Errorf("no chaser placed: %w", ErrInvalid)
	case len(g.goals) == 0:
		return fmt.Errorf("no goal placed: %w", ErrInvalid)
	}
	return nil
}

// CheckInvariant verifies that every mover's cell carries its kind and that no
// two movers share a cell, apart from a chaser standing on the captured seeker.
func (g *Grid) CheckInvariant() error {
	seen := make(map[Position]*Entity)
	movers := append([]*Entity{}, g.chasers...)
	if g.seeker != nil {
		movers = append(movers, g.seeker)
	}
	for _, e := range movers {
		p := e.position
		if !g.InBounds(p) {
			return fmt.Errorf("%s at %v: %w", e.Name(), p, ErrOutOfBounds)
		}
		if other, ok := seen[p]; ok {
			if !isCapture(other, e) {
				return fmt.Errorf("%s and %s share %v: %w", other.Name(), e.Name(), p, ErrInvalid)
			}
			continue
		}
		seen[p] = e
	}
	for p, e := range seen {
		k := g.GetCell(p).Kind
		if k == e.Kind {
			continue
		}
		// the captured seeker's cell shows the chaser standing on it
		if e.Kind == Seeker && k == Chaser {
			continue
		}
		return fmt.Errorf("cell %v holds %s, want %s: %w", p, k, e.Kind, ErrInvalid)
	}
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			p := Position{Row: r, Col: c}
			if cell := g.GetCell(p); cell.IsOccupied() && seen[p] == nil {
				return fmt.Errorf("cell %v holds %s with no entity: %w", p, cell.Kind, ErrInvalid)
			}
		}
	}
	return nil
}

func isCapture(a, b *Entity) bool {
	return (a.Kind == Seeker && b.Kind == Chaser) || (a.Kind == Chaser && b.Kind == Seeker)
}
