package session

import (
	"sync"
	"sync/atomic"
)

// DefaultBusBuffer is the per-subscriber buffer bound.
const DefaultBusBuffer = 64

// Bus is the per-session event fan-out. Publishing never blocks: each
// subscriber owns a bounded buffer and a pump goroutine that feeds its
// channel at the consumer's pace. When a buffer is full the oldest
// StateUpdate in it is dropped; ActionApplied and Terminal events are
// never dropped, so a buffer holding only those may exceed the bound
// rather than lose history.
type Bus struct {
	limit   int
	dropped atomic.Uint64

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBus creates a bus with the given per-subscriber buffer bound.
func NewBus(limit int) *Bus {
	if limit <= 0 {
		limit = DefaultBusBuffer
	}
	return &Bus{limit: limit, subs: make(map[*Subscription]struct{})}
}

// Subscription is one subscriber's end of the bus. Read from C; call
// Close when done. C is closed once all buffered events have been
// delivered after the bus shuts down.
type Subscription struct {
	bus   *Bus
	out   chan Event
	wake  chan struct{}
	abort chan struct{}

	mu        sync.Mutex
	buf       []Event
	closing   bool // bus closed: deliver what is buffered, then finish
	aborted   bool // consumer gone: stop immediately
	abortOnce sync.Once
}

// C returns the subscriber's event channel.
func (s *Subscription) C() <-chan Event { return s.out }

// Close detaches the subscriber and stops delivery. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.bus.remove(s)
	s.mu.Lock()
	s.aborted = true
	s.mu.Unlock()
	s.abortOnce.Do(func() { close(s.abort) })
}

// push enqueues one event, applying the drop policy.
func (s *Subscription) push(ev Event, limit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing || s.aborted {
		return
	}
	if len(s.buf) >= limit {
		for i, old := range s.buf {
			if old.Kind == EventStateUpdate {
				s.buf = append(s.buf[:i], s.buf[i+1:]...)
				s.bus.dropped.Add(1)
				break
			}
		}
	}
	s.buf = append(s.buf, ev)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// markClosing tells the pump to finish once the buffer drains.
func (s *Subscription) markClosing() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump moves events from the buffer to the channel, blocking only on
// the consumer.
func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.buf) == 0 {
			if s.closing || s.aborted {
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.abort:
			}
			s.mu.Lock()
		}
		if s.aborted {
			s.mu.Unlock()
			return
		}
		ev := s.buf[0]
		s.buf = s.buf[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.abort:
			return
		}
	}
}

// Subscribe attaches a new subscriber. Returns nil when the bus is
// already closed.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	s := &Subscription{
		bus:   b,
		out:   make(chan Event),
		wake:  make(chan struct{}, 1),
		abort: make(chan struct{}),
	}
	b.subs[s] = struct{}{}
	go s.pump()
	return s
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// Publish fans the event out to every subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	limit := b.limit
	b.mu.Unlock()

	for _, s := range subs {
		s.push(ev, limit)
	}
}

// Dropped counts StateUpdate events discarded across all subscribers
// since the bus was created.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

// Closed reports whether the bus has shut down.
func (b *Bus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close shuts the bus down. Subscribers that keep reading still receive
// everything buffered before the close, ending with the channel close.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.subs = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, s := range subs {
		s.markClosing()
	}
}
