package grid

import (
	"fmt"
	"strings"
)

// CellKind identifies what currently occupies a cell
type CellKind int

const (
	Empty CellKind = iota
	Obstacle
	Goal
	Seeker
	Chaser
)

// Symbol returns the single character used when printing the board
func (k CellKind) Symbol() byte {
	switch k {
	case Obstacle:
		return '#'
	case Goal:
		return 'T'
	case Seeker:
		return 'A'
	case Chaser:
		return 'B'
	default:
		return '.'
	}
}

func (k CellKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Obstacle:
		return "obstacle"
	case Goal:
		return "goal"
	case Seeker:
		return "seeker"
	case Chaser:
		return "chaser"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// IsMover reports whether the kind belongs to an agent-driven entity
func (k CellKind) IsMover() bool {
	return k == Seeker || k == Chaser
}

// ParseCellKind converts a kind name back into a CellKind
func ParseCellKind(s string) (CellKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "empty":
		return Empty, nil
	case "obstacle":
		return Obstacle, nil
	case "goal":
		return Goal, nil
	case "seeker":
		return Seeker, nil
	case "chaser":
		return Chaser, nil
	}
	return Empty, fmt.Errorf("unknown cell kind %q", s)
}

// Cell represents a single cell in the grid
type Cell struct {
	Kind CellKind
	// goal remembers that the cell is a goal even while a mover stands on it
	goal bool
}

// IsOccupied checks if a mover currently stands on this cell
func (c *Cell) IsOccupied() bool {
	return c.Kind.IsMover()
}

// OnEnter handles an entity entering this cell
func (c *Cell) OnEnter(e *Entity) {
	c.Kind = e.Kind
}

// OnExit handles an entity leaving this cell
func (c *Cell) OnExit(_ *Entity) {
	if c.goal {
		c.Kind = Goal
		return
	}
	c.Kind = Empty
}
