// Package barrier provides a reusable rendezvous point for a fixed number of
// goroutines. Every call to Wait blocks until all parties have arrived, after
// which the barrier opens a fresh generation on its own.
//
// A barrier can be broken: by Break, or by a waiter whose context ends before
// the rendezvous completes. A broken barrier releases every current waiter with
// ErrBroken and fails all later waits until Reset is called.
package barrier

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrBroken = errors.New("barrier broken")

type generation struct {
	id     int64
	done   chan struct{}
	broken bool
}

// Barrier is an N-party cyclic barrier
type Barrier struct {
	parties int

	mu      sync.Mutex
	count   int
	current *generation
}

// New returns a barrier for the given number of parties
func New(parties int) *Barrier {
	if parties < 1 {
		panic(fmt.Sprintf("barrier: invalid party count %d", parties))
	}
	return &Barrier{
		parties: parties,
		current: &generation{done: make(chan struct{})},
	}
}

func (b *Barrier) Parties() int { return b.parties }

// Waiting returns the number of parties currently blocked in Wait
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Broken reports whether the current generation is broken
func (b *Barrier) Broken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.broken
}

// Wait blocks until all parties have called Wait, the barrier is broken, or
// ctx ends. It returns the generation that was completed. When ctx ends first
// the barrier is broken for everyone else and ctx.Err() is returned.
func (b *Barrier) Wait(ctx context.Context) (int64, error) {
	b.mu.Lock()
	g := b.current
	if g.broken {
		b.mu.Unlock()
		return g.id, ErrBroken
	}

	b.count++
	if b.count == b.parties {
		b.count = 0
		b.current = &generation{id: g.id + 1, done: make(chan struct{})}
		close(g.done)
		b.mu.Unlock()
		return g.id, nil
	}
	b.mu.Unlock()

	select {
	case <-g.done:
		return b.outcome(g)
	case <-ctx.Done():
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-g.done:
		// released or broken while we were giving up
		if g.broken {
			return g.id, ErrBroken
		}
		return g.id, nil
	default:
	}
	b.breakLocked()
	return g.id, ctx.Err()
}

func (b *Barrier) outcome(g *generation) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.broken {
		return g.id, ErrBroken
	}
	return g.id, nil
}

// Break puts the barrier into the broken state and releases all waiters
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLocked()
}

func (b *Barrier) breakLocked() {
	g := b.current
	if g.broken {
		return
	}
	g.broken = true
	b.count = 0
	close(g.done)
}

// Reset breaks any waiting parties and starts a new, unbroken generation
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.breakLocked()
	b.current = &generation{id: b.current.id + 1, done: make(chan struct{})}
}
