package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"pursuit/barrier"
	"pursuit/grid"
)

// AgentStats counts what an agent has done so far
type AgentStats struct {
	Entries          int64
	Exits            int64
	Moves            int64
	IdleCycles       int64
	LastMove         string
	LastDecisionTime time.Duration
}

// Agent drives one entity: every cycle it meets the other parties at the entry
// rendezvous, plans and applies a single step under the grid guard, and meets
// them again at the exit rendezvous.
type Agent struct {
	entity  *grid.Entity
	grid    *grid.Grid
	planner Planner
	barrier *barrier.Barrier
	delay   time.Duration
	timeout time.Duration
	logger  *log.Logger

	running atomic.Bool
	done    chan struct{}

	mu    sync.Mutex
	stats AgentStats
	err   error
}

// NewAgent creates an agent for e. It does not start it.
func NewAgent(e *grid.Entity, g *grid.Grid, p Planner, b *barrier.Barrier, cfg Config) *Agent {
	return &Agent{
		entity:  e,
		grid:    g,
		planner: p,
		barrier: b,
		delay:   cfg.CycleDelay,
		timeout: cfg.RendezvousTimeout,
		logger:  cfg.logger(),
		done:    make(chan struct{}),
		stats:   AgentStats{LastMove: "--"},
	}
}

func (a *Agent) Entity() *grid.Entity { return a.entity }
func (a *Agent) Name() string         { return a.entity.Name() }

// Start begins the agent's cycle loop in its own goroutine
func (a *Agent) Start(ctx context.Context) {
	if !a.running.CompareAndSwap(false, true) {
		return
	}
	go a.run(ctx)
}

// Stop asks the agent to leave its loop before the next cycle. It does not
// release an agent parked in a rendezvous; breaking the barrier does that.
func (a *Agent) Stop() {
	a.running.Store(false)
}

// Done is closed once the agent's goroutine has returned
func (a *Agent) Done() <-chan struct{} { return a.done }

// Err returns the error that ended the agent, nil for a normal stop
func (a *Agent) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Stats returns a copy of the agent's counters
func (a *Agent) Stats() AgentStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Agent) run(ctx context.Context) {
	defer close(a.done)
	a.logger.Printf("[Agent %s] started at %v", a.Name(), a.entity.Position())

	for a.running.Load() {
		if err := rendezvous(ctx, a.barrier, a.timeout); err != nil {
			a.finish(err)
			return
		}
		a.count(func(s *AgentStats) { s.Entries++ })

		if err := a.step(); err != nil {
			a.fail(err)
			return
		}

		if err := rendezvous(ctx, a.barrier, a.timeout); err != nil {
			a.finish(err)
			return
		}
		a.count(func(s *AgentStats) { s.Exits++ })

		if !sleep(ctx, a.delay) {
			a.finish(ctx.Err())
			return
		}
	}
	a.logger.Printf("[Agent %s] stopped", a.Name())
}

// step plans and applies one move while holding the grid guard
func (a *Agent) step() error {
	var err error
	a.grid.Exclusive(func() {
		start := time.Now()
		from := a.entity.Position()
		next, ok := a.planner.Plan(a.grid, a.entity)
		if ok && next != from {
			err = a.grid.Move(a.entity, next)
		} else {
			ok = false
		}
		elapsed := time.Since(start)

		a.count(func(s *AgentStats) {
			s.LastDecisionTime = elapsed
			if err != nil || !ok {
				s.IdleCycles++
				s.LastMove = "--"
				return
			}
			s.Moves++
			d, _ := from.DirectionTo(next)
			s.LastMove = d.Label()
		})
		if ok && err == nil {
			a.logger.Printf("[Agent %s] %v -> %v", a.Name(), from, next)
		}
	})
	return err
}

func (a *Agent) count(fn func(*AgentStats)) {
	a.mu.Lock()
	fn(&a.stats)
	a.mu.Unlock()
}

// finish classifies the error that ended a rendezvous. A broken barrier or a
// cancelled run is a normal stop; a timed-out rendezvous is recorded.
func (a *Agent) finish(err error) {
	switch {
	case errors.Is(err, barrier.ErrBroken), errors.Is(err, context.Canceled):
		a.logger.Printf("[Agent %s] stopping: %v", a.Name(), err)
	case errors.Is(err, ErrRendezvousTimeout):
		a.logger.Printf("[Agent %s] rendezvous timed out", a.Name())
		a.setErr(err)
	default:
		a.logger.Printf("[Agent %s] stopping: %v", a.Name(), err)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.setErr(err)
		}
	}
	a.running.Store(false)
}

// fail records a fatal move error and breaks the barrier so no peer waits on
// this agent again.
func (a *Agent) fail(err error) {
	a.logger.Printf("[Agent %s] move failed: %v", a.Name(), err)
	a.setErr(fmt.Errorf("agent %s: %w", a.Name(), err))
	a.running.Store(false)
	a.barrier.Break()
}

func (a *Agent) setErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err == nil {
		a.err = err
	}
}

// rendezvous waits at b, bounded by timeout when it is positive. A wait that
// runs out of time reports ErrRendezvousTimeout; the barrier is broken either way.
func rendezvous(ctx context.Context, b *barrier.Barrier, timeout time.Duration) error {
	wctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, err := b.Wait(wctx)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("after %v: %w", timeout, ErrRendezvousTimeout)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
