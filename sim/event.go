package sim

import (
	"log"
	"sync"

	"pursuit/shared"
)

const subscriberBuffer = 256

// eventBus fans cycle events out to subscribers. Publishing never blocks the
// coordinator for long: a subscriber whose buffer is full misses the event.
type eventBus struct {
	in     chan shared.CycleEvent
	logger *log.Logger

	mu     sync.Mutex
	subs   []chan shared.CycleEvent
	closed bool
	done   chan struct{}
}

func newEventBus(logger *log.Logger) *eventBus {
	b := &eventBus{
		in:     make(chan shared.CycleEvent, 100),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.processEvents()
	return b
}

// subscribe returns a channel receiving every later event. It is closed after
// the final event. Subscribing after the bus closed yields a closed channel.
func (b *eventBus) subscribe() <-chan shared.CycleEvent {
	ch := make(chan shared.CycleEvent, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

func (b *eventBus) publish(ev shared.CycleEvent) {
	b.in <- ev
}

// close flushes pending events and closes all subscriber channels
func (b *eventBus) close() {
	close(b.in)
	<-b.done
}

func (b *eventBus) processEvents() {
	b.logger.Println("[EventBus] Starting event processor...")
	defer close(b.done)
	for ev := range b.in {
		b.mu.Lock()
		for i, ch := range b.subs {
			select {
			case ch <- ev:
			default:
				b.logger.Printf("[EventBus] Subscriber %d is full, dropping cycle %d", i, ev.Cycle)
			}
		}
		b.mu.Unlock()
	}

	b.mu.Lock()
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
	b.logger.Println("[EventBus] Stopping event processor...")
}
