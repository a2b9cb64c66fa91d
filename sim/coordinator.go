package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pursuit/barrier"
	"pursuit/grid"
	"pursuit/pathfind"
	"pursuit/shared"
)

// Coordinator is the extra barrier party that judges the board after every
// cycle and tears the agents down once the run is decided.
type Coordinator struct {
	grid      *grid.Grid
	barrier   *barrier.Barrier
	agents    []*Agent
	strategy  pathfind.Strategy
	maxCycles int
	timeout   time.Duration
	logger    *log.Logger

	// observe is called under the grid guard once per cycle after evaluation
	observe func(cycle int, o Outcome, board shared.BoardState)

	entries, exits int64
}

// Run drives cycles until an outcome is reached or a rendezvous fails. It
// always returns with every agent goroutine finished.
func (c *Coordinator) Run(ctx context.Context) (Outcome, int, error) {
	cycle := 0
	for {
		if err := rendezvous(ctx, c.barrier, c.timeout); err != nil {
			return None, cycle, c.shutdown(err)
		}
		c.entries++
		if err := rendezvous(ctx, c.barrier, c.timeout); err != nil {
			return None, cycle, c.shutdown(err)
		}
		c.exits++

		var outcome Outcome
		c.grid.Exclusive(func() {
			cycle++
			outcome = c.evaluate(cycle)
			if c.observe != nil {
				c.observe(cycle, outcome, snapshot(c.grid, c.agents))
			}
		})

		if outcome != None {
			c.logger.Printf("[Coordinator] cycle %d: %s", cycle, outcome.Announcement())
			return outcome, cycle, c.shutdown(nil)
		}
	}
}

// evaluate applies the terminal checks in priority order: capture, goal
// reached, stalemate, then the optional cycle limit.
func (c *Coordinator) evaluate(cycle int) Outcome {
	s := c.grid.Seeker()
	switch {
	case c.grid.Captured():
		return ChasersWin
	case c.grid.IsGoal(s.Position()):
		return SeekerWins
	case !pathfind.Search(c.grid, s.Position(), c.grid.Goals(), pathfind.WithStrategy(c.strategy)).Found:
		return Stalemate
	case c.maxCycles > 0 && cycle >= c.maxCycles:
		return CycleLimit
	}
	return None
}

// shutdown stops every agent, breaks the barrier so nobody stays parked in a
// rendezvous, and waits for all agent goroutines to return.
func (c *Coordinator) shutdown(cause error) error {
	for _, a := range c.agents {
		a.Stop()
	}
	c.barrier.Break()
	for _, a := range c.agents {
		<-a.Done()
	}

	for _, a := range c.agents {
		if err := a.Err(); err != nil {
			return err
		}
	}
	switch {
	case cause == nil:
		return nil
	case errors.Is(cause, barrier.ErrBroken):
		return fmt.Errorf("coordinator: %w", cause)
	default:
		c.logger.Printf("[Coordinator] aborting: %v", cause)
		return cause
	}
}

// Rendezvous returns the completed entry and exit rendezvous of the
// coordinator. Only meaningful once Run has returned.
func (c *Coordinator) Rendezvous() (entries, exits int64) {
	return c.entries, c.exits
}
