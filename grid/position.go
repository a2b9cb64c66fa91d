package grid

import "fmt"

// Position represents a (row, col) coordinate on the grid
type Position struct {
	Row int
	Col int
}

// Direction is a single 8-directional step
type Direction struct {
	DRow, DCol int
}

// Directions lists the 8 neighbor offsets in exploration order:
// N, S, W, E, NW, NE, SE, SW.
var Directions = [8]Direction{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, 1}, {1, -1},
}

// Add returns the position one step away in direction d
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// IsAdjacent reports whether q is exactly one 8-directional step from p
func (p Position) IsAdjacent(q Position) bool {
	dr, dc := abs(p.Row-q.Row), abs(p.Col-q.Col)
	return p != q && dr <= 1 && dc <= 1
}

// DirectionTo returns the step leading from p to an adjacent q
func (p Position) DirectionTo(q Position) (Direction, bool) {
	if !p.IsAdjacent(q) {
		return Direction{}, false
	}
	return Direction{DRow: q.Row - p.Row, DCol: q.Col - p.Col}, true
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Label converts a direction to a short compass string for display
func (d Direction) Label() string {
	switch d {
	case Direction{-1, 0}:
		return "N"
	case Direction{1, 0}:
		return "S"
	case Direction{0, -1}:
		return "W"
	case Direction{0, 1}:
		return "E"
	case Direction{-1, -1}:
		return "NW"
	case Direction{-1, 1}:
		return "NE"
	case Direction{1, 1}:
		return "SE"
	case Direction{1, -1}:
		return "SW"
	default:
		return "--" // Stay
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
