package sim

import "fmt"

// Outcome is the terminal verdict of a run. None means the run continues.
type Outcome int

const (
	None Outcome = iota
	SeekerWins
	ChasersWin
	Stalemate
	CycleLimit
)

func (o Outcome) String() string {
	switch o {
	case None:
		return ""
	case SeekerWins:
		return "seeker_wins"
	case ChasersWin:
		return "chasers_win"
	case Stalemate:
		return "stalemate"
	case CycleLimit:
		return "cycle_limit"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Announcement is the line shown to the user when the run ends
func (o Outcome) Announcement() string {
	switch o {
	case SeekerWins:
		return "Seeker reached a goal. Seeker wins!"
	case ChasersWin:
		return "A chaser caught the seeker. Chasers win!"
	case Stalemate:
		return "Seeker has no path to any goal. Game over."
	case CycleLimit:
		return "Cycle limit reached. No winner."
	}
	return ""
}

// Winner names the winning side, empty when nobody won
func (o Outcome) Winner() string {
	switch o {
	case SeekerWins:
		return "seeker"
	case ChasersWin:
		return "chasers"
	}
	return ""
}
