package barrier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReleasesWhenAllArrive(t *testing.T) {
	const parties = 5
	b := New(parties)
	var arrived, released atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < parties-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Add(1)
			if _, err := b.Wait(context.Background()); err != nil {
				t.Errorf("Wait: %v", err)
			}
			released.Add(1)
		}()
	}

	waitFor(t, func() bool { return b.Waiting() == parties-1 })
	if released.Load() != 0 {
		t.Fatal("No party may pass before the last one arrives")
	}

	gen, err := b.Wait(context.Background())
	if err != nil {
		t.Fatalf("Last party Wait: %v", err)
	}
	if gen != 0 {
		t.Errorf("First generation = %d, want 0", gen)
	}
	wg.Wait()
	if released.Load() != parties-1 {
		t.Errorf("Released %d parties, want %d", released.Load(), parties-1)
	}
}

func TestReusableAcrossGenerations(t *testing.T) {
	const parties, rounds = 4, 50
	b := New(parties)
	var wg sync.WaitGroup
	gens := make([][]int64, parties)

	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				gen, err := b.Wait(context.Background())
				if err != nil {
					t.Errorf("party %d round %d: %v", p, r, err)
					return
				}
				gens[p] = append(gens[p], gen)
			}
		}(p)
	}
	wg.Wait()

	for p := range gens {
		if len(gens[p]) != rounds {
			t.Fatalf("party %d completed %d rounds, want %d", p, len(gens[p]), rounds)
		}
		for r, gen := range gens[p] {
			if gen != int64(r) {
				t.Errorf("party %d round %d saw generation %d", p, r, gen)
			}
		}
	}
	if b.Waiting() != 0 {
		t.Errorf("Waiting = %d after all rounds", b.Waiting())
	}
}

func TestBreakReleasesWaiters(t *testing.T) {
	b := New(3)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := b.Wait(context.Background())
			errs <- err
		}()
	}
	waitFor(t, func() bool { return b.Waiting() == 2 })

	b.Break()
	for i := 0; i < 2; i++ {
		if err := <-errs; !errors.Is(err, ErrBroken) {
			t.Errorf("waiter error = %v, want ErrBroken", err)
		}
	}
	if _, err := b.Wait(context.Background()); !errors.Is(err, ErrBroken) {
		t.Errorf("Wait on broken barrier = %v, want ErrBroken", err)
	}
	if !b.Broken() {
		t.Error("Barrier should report broken")
	}
}

func TestContextTimeoutBreaks(t *testing.T) {
	b := New(3)
	peer := make(chan error, 1)
	go func() {
		_, err := b.Wait(context.Background())
		peer <- err
	}()
	waitFor(t, func() bool { return b.Waiting() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("timed-out waiter error = %v, want DeadlineExceeded", err)
	}

	select {
	case err := <-peer:
		if !errors.Is(err, ErrBroken) {
			t.Errorf("peer error = %v, want ErrBroken", err)
		}
	case <-time.After(time.Second):
		t.Fatal("peer was not released by the timeout")
	}
}

func TestReset(t *testing.T) {
	b := New(2)
	b.Break()
	b.Reset()
	if b.Broken() {
		t.Fatal("Reset should clear the broken state")
	}

	done := make(chan error, 1)
	go func() {
		_, err := b.Wait(context.Background())
		done <- err
	}()
	if _, err := b.Wait(context.Background()); err != nil {
		t.Fatalf("Wait after Reset: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("peer Wait after Reset: %v", err)
	}
}

func TestSingleParty(t *testing.T) {
	b := New(1)
	for i := int64(0); i < 3; i++ {
		gen, err := b.Wait(context.Background())
		if err != nil || gen != i {
			t.Errorf("Wait = %d, %v; want %d", gen, err, i)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
