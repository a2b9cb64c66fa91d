// Package shared contains the JSON shapes exchanged between the simulation,
// its renderers and its remote viewers: board snapshots, entity states and the
// per-cycle event.
package shared

import "time"

// Position represents a cell coordinate on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// EntityState represents the current state of a seeker or chaser
type EntityState struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Kind             string        `json:"kind"`
	Position         Position      `json:"position"`
	LastMove         string        `json:"last_move"`
	LastDecisionTime time.Duration `json:"last_decision_time"`
	Moves            int64         `json:"moves"`
	IdleCycles       int64         `json:"idle_cycles"`
}

// BoardState is a snapshot of the board. Cells holds one string per board row
// using the cell symbols, so it can be printed as-is.
type BoardState struct {
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Cells    []string      `json:"cells"`
	Goals    []Position    `json:"goals"`
	Entities []EntityState `json:"entities"`
}

// CycleEvent is published once per completed cycle
type CycleEvent struct {
	RunID     string     `json:"run_id"`
	Cycle     int        `json:"cycle"`
	Timestamp time.Time  `json:"timestamp"`
	Outcome   string     `json:"outcome,omitempty"`
	Message   string     `json:"message,omitempty"`
	Board     BoardState `json:"board"`
}

// Final reports whether the event closes the run
func (e CycleEvent) Final() bool { return e.Outcome != "" }

// RunStatus is served by the status endpoint
type RunStatus struct {
	RunID     string     `json:"run_id"`
	Running   bool       `json:"running"`
	Cycle     int        `json:"cycle"`
	Outcome   string     `json:"outcome,omitempty"`
	Message   string     `json:"message,omitempty"`
	Algorithm string     `json:"algorithm"`
	Board     BoardState `json:"board"`
}
