// Package layout builds the starting board of a run, either by scattering
// obstacles, goals and movers at random or by reading a board file.
package layout

import (
	"errors"
	"fmt"
	"math/rand"

	"pursuit/grid"
)

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrBoardFull     = errors.New("no empty cell left")
)

const placementAttempts = 100

// Spec describes a random board
type Spec struct {
	Rows      int
	Cols      int
	Obstacles int
	Goals     int
	Chasers   int
}

// DefaultSpec is a 10x10 board with 7 obstacles, one goal and two chasers
func DefaultSpec() Spec {
	return Spec{Rows: 10, Cols: 10, Obstacles: 7, Goals: 1, Chasers: 2}
}

// Validate checks that the spec describes a playable board that fits
func (s Spec) Validate() error {
	switch {
	case s.Rows <= 0 || s.Cols <= 0:
		return fmt.Errorf("board size %dx%d: %w", s.Rows, s.Cols, ErrInvalidLayout)
	case s.Obstacles < 0:
		return fmt.Errorf("negative obstacle count %d: %w", s.Obstacles, ErrInvalidLayout)
	case s.Goals < 1:
		return fmt.Errorf("at least one goal required: %w", ErrInvalidLayout)
	case s.Chasers < 1:
		return fmt.Errorf("at least one chaser required: %w", ErrInvalidLayout)
	}
	if need := s.Obstacles + s.Goals + s.Chasers + 1; need > s.Rows*s.Cols {
		return fmt.Errorf("%d items do not fit a %dx%d board: %w", need, s.Rows, s.Cols, ErrBoardFull)
	}
	return nil
}

// Random places obstacles, goals, the seeker and the chasers, in that order,
// on empty cells drawn from rng.
func Random(rng *rand.Rand, spec Spec) (*grid.Grid, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	g := grid.New(spec.Rows, spec.Cols)

	for i := 0; i < spec.Obstacles; i++ {
		p, err := emptyCell(rng, g)
		if err != nil {
			return nil, err
		}
		if err := g.PlaceObstacle(p); err != nil {
			return nil, err
		}
	}
	for i := 0; i < spec.Goals; i++ {
		p, err := emptyCell(rng, g)
		if err != nil {
			return nil, err
		}
		if err := g.PlaceGoal(p); err != nil {
			return nil, err
		}
	}

	p, err := emptyCell(rng, g)
	if err != nil {
		return nil, err
	}
	if _, err := g.PlaceSeeker(p); err != nil {
		return nil, err
	}

	for i := 0; i < spec.Chasers; i++ {
		p, err := emptyCell(rng, g)
		if err != nil {
			return nil, err
		}
		if _, err := g.PlaceChaser(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// emptyCell tries random cells first and falls back to a scan when the board
// is crowded.
func emptyCell(rng *rand.Rand, g *grid.Grid) (grid.Position, error) {
	for attempts := 0; attempts < placementAttempts; attempts++ {
		p := grid.Position{Row: rng.Intn(g.Rows()), Col: rng.Intn(g.Cols())}
		if g.At(p) == grid.Empty {
			return p, nil
		}
	}
	free := g.EmptyCells()
	if len(free) == 0 {
		return grid.Position{}, ErrBoardFull
	}
	return free[rng.Intn(len(free))], nil
}
