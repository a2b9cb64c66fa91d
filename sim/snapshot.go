package sim

import (
	"strings"

	"pursuit/grid"
	"pursuit/shared"
)

// snapshot copies the board into its wire form. The grid guard must be held.
func snapshot(g *grid.Grid, agents []*Agent) shared.BoardState {
	st := shared.BoardState{
		Rows:  g.Rows(),
		Cols:  g.Cols(),
		Cells: make([]string, g.Rows()),
	}

	var b strings.Builder
	for r := 0; r < g.Rows(); r++ {
		b.Reset()
		for c := 0; c < g.Cols(); c++ {
			b.WriteByte(g.At(grid.Position{Row: r, Col: c}).Symbol())
		}
		st.Cells[r] = b.String()
	}

	for _, p := range g.Goals() {
		st.Goals = append(st.Goals, toShared(p))
	}

	for _, a := range agents {
		e := a.Entity()
		stats := a.Stats()
		st.Entities = append(st.Entities, shared.EntityState{
			ID:               e.ID,
			Name:             e.Name(),
			Kind:             e.Kind.String(),
			Position:         toShared(e.Position()),
			LastMove:         stats.LastMove,
			LastDecisionTime: stats.LastDecisionTime,
			Moves:            stats.Moves,
			IdleCycles:       stats.IdleCycles,
		})
	}
	return st
}

func toShared(p grid.Position) shared.Position {
	return shared.Position{Row: p.Row, Col: p.Col}
}
