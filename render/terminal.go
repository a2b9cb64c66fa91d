package render

import (
	"bufio"
	"io"

	"pursuit/shared"
)

const clearScreen = "\033[H\033[2J"

// Terminal prints each board below the previous one, or in place when Clear
// is set.
type Terminal struct {
	W     io.Writer
	Clear bool
}

func (t Terminal) Render(ev shared.CycleEvent) error {
	w := bufio.NewWriter(t.W)
	if t.Clear {
		w.WriteString(clearScreen)
	}
	header(w, ev)
	if err := Text(w, ev.Board); err != nil {
		return err
	}
	footer(w, ev)
	if !t.Clear {
		w.WriteByte('\n')
	}
	return w.Flush()
}
