// Package sim runs a pursuit: one goroutine per seeker or chaser plus a
// coordinator, all meeting at a shared barrier twice per cycle. Between the two
// rendezvous each agent plans and applies exactly one step under the grid
// guard; after the second one the coordinator decides whether the run is over.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pursuit/barrier"
	"pursuit/grid"
	"pursuit/pathfind"
	"pursuit/shared"
)

var (
	ErrRendezvousTimeout = errors.New("rendezvous timed out")
	ErrAlreadyRun        = errors.New("simulation already run")
)

// Config tunes a simulation. The zero value runs breadth-first planners with
// no pause between cycles, unbounded rendezvous waits and no cycle limit.
type Config struct {
	Strategy          pathfind.Strategy
	CycleDelay        time.Duration
	RendezvousTimeout time.Duration
	MaxCycles         int
	Logger            *log.Logger

	// SeekerPlanner and ChaserPlanner replace the path-following defaults
	SeekerPlanner Planner
	ChaserPlanner Planner
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Report summarises a finished run
type Report struct {
	RunID    string
	Outcome  Outcome
	Cycles   int
	Winner   string
	Duration time.Duration
}

// Simulation wires a grid, its agents and the coordinator together
type Simulation struct {
	runID  string
	grid   *grid.Grid
	cfg    Config
	logger *log.Logger

	barrier     *barrier.Barrier
	agents      []*Agent
	coordinator *Coordinator
	bus         *eventBus

	started atomic.Bool
	running atomic.Bool
	cycle   atomic.Int64

	mu      sync.Mutex
	outcome Outcome
}

// New prepares a run over g. The grid must hold one seeker, at least one
// chaser and at least one goal.
func New(g *grid.Grid, cfg Config) (*Simulation, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("new simulation: %w", err)
	}
	if cfg.MaxCycles < 0 {
		return nil, fmt.Errorf("new simulation: negative cycle limit %d", cfg.MaxCycles)
	}

	s := &Simulation{
		runID:  uuid.NewString(),
		grid:   g,
		cfg:    cfg,
		logger: cfg.logger(),
	}
	seekerPlanner, chaserPlanner := cfg.SeekerPlanner, cfg.ChaserPlanner
	if seekerPlanner == nil {
		seekerPlanner = SeekerPlanner{Strategy: cfg.Strategy}
	}
	if chaserPlanner == nil {
		chaserPlanner = ChaserPlanner{Strategy: cfg.Strategy}
	}

	chasers := g.Chasers()
	s.barrier = barrier.New(2 + len(chasers))
	s.agents = append(s.agents, NewAgent(g.Seeker(), g, seekerPlanner, s.barrier, cfg))
	for _, c := range chasers {
		s.agents = append(s.agents, NewAgent(c, g, chaserPlanner, s.barrier, cfg))
	}

	s.bus = newEventBus(s.logger)
	s.coordinator = &Coordinator{
		grid:      g,
		barrier:   s.barrier,
		agents:    s.agents,
		strategy:  cfg.Strategy,
		maxCycles: cfg.MaxCycles,
		timeout:   cfg.RendezvousTimeout,
		logger:    s.logger,
		observe:   s.observe,
	}
	return s, nil
}

func (s *Simulation) RunID() string             { return s.runID }
func (s *Simulation) Grid() *grid.Grid          { return s.grid }
func (s *Simulation) Agents() []*Agent          { return s.agents }
func (s *Simulation) Running() bool             { return s.running.Load() }
func (s *Simulation) Cycle() int                { return int(s.cycle.Load()) }
func (s *Simulation) Config() Config            { return s.cfg }
func (s *Simulation) Coordinator() *Coordinator { return s.coordinator }

// Outcome returns the verdict so far, None while the run is undecided
func (s *Simulation) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Subscribe returns a channel of cycle events, closed when the run ends
func (s *Simulation) Subscribe() <-chan shared.CycleEvent {
	return s.bus.subscribe()
}

// Snapshot returns the current board under the grid guard
func (s *Simulation) Snapshot() shared.BoardState {
	var st shared.BoardState
	s.grid.Exclusive(func() {
		st = snapshot(s.grid, s.agents)
	})
	return st
}

// Status bundles the run state for the serving surfaces
func (s *Simulation) Status() shared.RunStatus {
	o := s.Outcome()
	return shared.RunStatus{
		RunID:     s.runID,
		Running:   s.Running(),
		Cycle:     s.Cycle(),
		Outcome:   o.String(),
		Message:   o.Announcement(),
		Algorithm: s.cfg.Strategy.String(),
		Board:     s.Snapshot(),
	}
}

// Run starts every agent and coordinates cycles until the run is decided, ctx
// ends or an agent fails. A simulation runs once.
func (s *Simulation) Run(ctx context.Context) (Report, error) {
	if !s.started.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRun
	}
	s.running.Store(true)
	defer s.running.Store(false)
	defer s.bus.close()

	start := time.Now()
	s.logger.Printf("[Coordinator] run %s: %dx%d board, %d agents, %d barrier parties, %s search",
		s.runID, s.grid.Rows(), s.grid.Cols(), len(s.agents), s.barrier.Parties(), s.cfg.Strategy)

	for _, a := range s.agents {
		a.Start(ctx)
	}
	outcome, cycles, err := s.coordinator.Run(ctx)

	report := Report{
		RunID:    s.runID,
		Outcome:  outcome,
		Cycles:   cycles,
		Winner:   outcome.Winner(),
		Duration: time.Since(start),
	}
	if err != nil {
		s.logger.Printf("[Coordinator] run %s failed after %d cycles: %v", s.runID, cycles, err)
		return report, err
	}
	return report, nil
}

func (s *Simulation) observe(cycle int, o Outcome, board shared.BoardState) {
	s.cycle.Store(int64(cycle))
	if o != None {
		s.mu.Lock()
		s.outcome = o
		s.mu.Unlock()
	}
	s.bus.publish(shared.CycleEvent{
		RunID:     s.runID,
		Cycle:     cycle,
		Timestamp: time.Now(),
		Outcome:   o.String(),
		Message:   o.Announcement(),
		Board:     board,
	})
}
