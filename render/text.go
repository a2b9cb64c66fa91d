// Package render prints boards as text: to any writer, to a file that is
// rewritten every cycle, or to a terminal.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pursuit/shared"
)

// Renderer consumes cycle events
type Renderer interface {
	Render(ev shared.CycleEvent) error
}

// Text writes the board one row per line with the cell symbols separated by
// spaces, followed by one line per entity.
func Text(w io.Writer, st shared.BoardState) error {
	bw := bufio.NewWriter(w)
	for _, row := range st.Cells {
		for i := 0; i < len(row); i++ {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteByte(row[i])
		}
		bw.WriteByte('\n')
	}
	for _, e := range st.Entities {
		fmt.Fprintf(bw, "%-9s (%d,%d) last=%-2s moves=%d idle=%d decided in %v\n",
			e.Name, e.Position.Row, e.Position.Col, e.LastMove, e.Moves, e.IdleCycles, e.LastDecisionTime)
	}
	return bw.Flush()
}

// String renders the board into a string
func String(st shared.BoardState) string {
	var b strings.Builder
	Text(&b, st)
	return b.String()
}

func header(w io.Writer, ev shared.CycleEvent) {
	fmt.Fprintf(w, "Run %s, cycle %d:\n", ev.RunID, ev.Cycle)
}

func footer(w io.Writer, ev shared.CycleEvent) {
	if ev.Final() {
		fmt.Fprintln(w, ev.Message)
	}
}
