package grid

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	g := New(10, 8)
	if g.Rows() != 10 || g.Cols() != 8 {
		t.Fatalf("Expected 10x8 grid, got %dx%d", g.Rows(), g.Cols())
	}
	if got := len(g.EmptyCells()); got != 80 {
		t.Errorf("Expected 80 empty cells, got %d", got)
	}
}

func TestInBounds(t *testing.T) {
	g := New(10, 10)
	tests := []struct {
		p    Position
		want bool
	}{
		{Position{0, 0}, true},
		{Position{9, 9}, true},
		{Position{-1, 0}, false},
		{Position{0, -1}, false},
		{Position{10, 0}, false},
		{Position{0, 10}, false},
	}
	for _, tt := range tests {
		if got := g.InBounds(tt.p); got != tt.want {
			t.Errorf("InBounds(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestWalkable(t *testing.T) {
	g := New(10, 10)
	mustPlace(t, g.PlaceObstacle(Position{0, 1}))
	mustPlace(t, g.PlaceGoal(Position{1, 1}))
	if _, err := g.PlaceSeeker(Position{3, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.PlaceChaser(Position{2, 2}); err != nil {
		t.Fatal(err)
	}

	if !g.Walkable(Position{0, 0}) {
		t.Error("Empty cell should be walkable")
	}
	if g.Walkable(Position{0, 1}) {
		t.Error("Obstacle should not be walkable")
	}
	if !g.Walkable(Position{1, 1}) {
		t.Error("Goal cell should be walkable")
	}
	if g.Walkable(Position{2, 2}) {
		t.Error("Chaser cell should not be walkable")
	}
	if g.Walkable(Position{3, 3}) {
		t.Error("Seeker cell should not be walkable")
	}
	if g.Walkable(Position{-1, 3}) {
		t.Error("Out-of-bounds cell should not be walkable")
	}
}

func TestAtPanicsOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected At to panic for an out-of-bounds position")
		}
	}()
	New(3, 3).At(Position{3, 0})
}

func TestGetCell(t *testing.T) {
	g := New(3, 3)
	mustPlace(t, g.PlaceGoal(Position{1, 2}))
	c := g.GetCell(Position{1, 2})
	if c == nil || c.Kind != Goal {
		t.Fatalf("GetCell(1,2) = %+v, want goal cell", c)
	}
	if g.GetCell(Position{3, 0}) != nil {
		t.Error("Out-of-bounds GetCell should return nil")
	}
}

func TestMove(t *testing.T) {
	g := New(10, 10)
	start, dest := Position{5, 5}, Position{5, 6}
	e, err := g.PlaceSeeker(start)
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Move(e, dest); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if g.At(start) != Empty {
		t.Errorf("Original cell should be empty, got %s", g.At(start))
	}
	if g.At(dest) != Seeker {
		t.Errorf("New cell should hold the seeker, got %s", g.At(dest))
	}
	if e.Position() != dest {
		t.Errorf("Entity position should be %v, got %v", dest, e.Position())
	}
}

func TestMoveRestoresGoal(t *testing.T) {
	g := New(4, 4)
	goal := Position{1, 1}
	mustPlace(t, g.PlaceGoal(goal))
	c, err := g.PlaceChaser(Position{0, 0})
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Move(c, goal); err != nil {
		t.Fatal(err)
	}
	if g.At(goal) != Chaser {
		t.Fatalf("Expected chaser on goal, got %s", g.At(goal))
	}
	if err := g.Move(c, Position{2, 2}); err != nil {
		t.Fatal(err)
	}
	if g.At(goal) != Goal {
		t.Errorf("Goal cell should be restored after the chaser left, got %s", g.At(goal))
	}
}

func TestMoveRejectsInvalidTargets(t *testing.T) {
	g := New(5, 5)
	mustPlace(t, g.PlaceObstacle(Position{0, 1}))
	s, err := g.PlaceSeeker(Position{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.PlaceChaser(Position{1, 0}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		e    *Entity
		to   Position
		want error
	}{
		{"out of bounds", s, Position{-1, 0}, ErrOutOfBounds},
		{"two cells away", s, Position{2, 0}, ErrNotAdjacent},
		{"same cell", s, Position{0, 0}, ErrNotAdjacent},
		{"obstacle", s, Position{0, 1}, ErrBlocked},
		{"seeker onto chaser", s, Position{1, 0}, ErrBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Move(tt.e, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("Move(%v) error = %v, want %v", tt.to, err, tt.want)
			}
		})
	}
	if err := g.CheckInvariant(); err != nil {
		t.Errorf("Rejected moves must leave the grid intact: %v", err)
	}
}

func TestCapture(t *testing.T) {
	g := New(5, 5)
	s, _ := g.PlaceSeeker(Position{2, 2})
	c1, _ := g.PlaceChaser(Position{1, 1})
	c2, _ := g.PlaceChaser(Position{3, 3})

	if err := g.Move(c1, s.Position()); err != nil {
		t.Fatalf("Chaser should be able to step onto the seeker: %v", err)
	}
	if !g.Captured() {
		t.Fatal("Expected capture after the chaser stepped onto the seeker")
	}
	if c1.Position() != s.Position() {
		t.Errorf("Chaser at %v, seeker at %v", c1.Position(), s.Position())
	}
	if err := g.CheckInvariant(); err != nil {
		t.Errorf("Capture state should satisfy the invariant: %v", err)
	}

	if err := g.Move(s, Position{2, 3}); !errors.Is(err, ErrCaptured) {
		t.Errorf("Captured seeker move error = %v, want ErrCaptured", err)
	}
	if err := g.Move(c2, s.Position()); !errors.Is(err, ErrBlocked) {
		t.Errorf("Second chaser onto captured cell error = %v, want ErrBlocked", err)
	}
}

func TestPlaceRejectsOccupied(t *testing.T) {
	g := New(3, 3)
	mustPlace(t, g.PlaceObstacle(Position{1, 1}))
	if err := g.PlaceGoal(Position{1, 1}); !errors.Is(err, ErrOccupied) {
		t.Errorf("Expected ErrOccupied, got %v", err)
	}
	if _, err := g.PlaceChaser(Position{3, 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if _, err := g.PlaceSeeker(Position{0, 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.PlaceSeeker(Position{0, 2}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Second seeker should be rejected, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	g := New(3, 3)
	if err := g.Validate(); err == nil {
		t.Error("Empty grid should not validate")
	}
	g.PlaceSeeker(Position{0, 0})
	g.PlaceChaser(Position{2, 2})
	if err := g.Validate(); err == nil {
		t.Error("Grid without goals should not validate")
	}
	mustPlace(t, g.PlaceGoal(Position{0, 2}))
	if err := g.Validate(); err != nil {
		t.Errorf("Expected valid grid, got %v", err)
	}
	if goals := g.Goals(); len(goals) != 1 || goals[0] != (Position{0, 2}) {
		t.Errorf("Unexpected goals %v", goals)
	}
}

func TestExclusiveReleasesOnPanic(t *testing.T) {
	g := New(2, 2)
	func() {
		defer func() { recover() }()
		g.Exclusive(func() { panic("boom") })
	}()

	done := make(chan struct{})
	go g.Exclusive(func() { close(done) })
	<-done
}

func TestDirectionLabels(t *testing.T) {
	from := Position{5, 5}
	for i, d := range Directions {
		to := from.Add(d)
		got, ok := from.DirectionTo(to)
		if !ok || got != d {
			t.Errorf("DirectionTo(%v) = %v, %v; want %v", to, got, ok, d)
		}
		if d.Label() == "--" {
			t.Errorf("Direction %d has no label", i)
		}
	}
	if _, ok := from.DirectionTo(Position{7, 5}); ok {
		t.Error("Non-adjacent position should have no direction")
	}
}

func TestParseCellKind(t *testing.T) {
	for _, k := range []CellKind{Empty, Obstacle, Goal, Seeker, Chaser} {
		got, err := ParseCellKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseCellKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseCellKind("phone"); err == nil {
		t.Error("Expected an error for an unknown kind")
	}
}

func mustPlace(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
}
