package grid

import "fmt"

// Entity is a seeker or chaser placed on the grid. It is owned by the agent that
// drives it; only Grid.Move changes its position.
type Entity struct {
	ID       int
	Kind     CellKind
	position Position
}

// Position returns the entity's current cell. Callers must hold the grid guard
// while other agents may be moving.
func (e *Entity) Position() Position {
	return e.position
}

// Name returns a stable label such as "seeker-0" or "chaser-2"
func (e *Entity) Name() string {
	return fmt.Sprintf("%s-%d", e.Kind, e.ID)
}
