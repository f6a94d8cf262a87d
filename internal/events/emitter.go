package events

import "sync"

// subscriberBuffer is the per-subscriber channel capacity. A slow subscriber
// that falls this far behind starts losing events rather than stalling the
// pipeline; generation must never block on a UI.
const subscriberBuffer = 64

// Emitter fans pipeline events out to any number of subscribers.
// Emit never blocks: each subscriber has a bounded buffer and events are
// dropped per-subscriber once it is full.
//
// The zero value is not usable; construct with NewEmitter. A nil *Emitter is
// safe to emit on (no-op), so pipeline code does not need nil checks at every
// call site.
type Emitter struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	closed  bool
	dropped int
}

// NewEmitter creates an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. The channel is closed on cancel or when the emitter closes.
func (e *Emitter) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := e.nextID
	e.nextID++
	ch := make(chan Event, subscriberBuffer)
	e.subs[id] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Emit delivers an event to every subscriber without blocking.
func (e *Emitter) Emit(ev Event) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.dropped++
		}
	}
}

// Close shuts down the emitter and closes all subscriber channels.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}

// Dropped reports how many events were discarded due to slow subscribers.
func (e *Emitter) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}
