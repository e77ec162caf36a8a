// Package broadcast is an in-process publish/subscribe feed.
//
// Every subscriber receives every published value in publish order; a slow
// subscriber buffers instead of dropping. A replaying broadcaster also hands
// the most recent value to each new subscriber before anything else.
package broadcast

import (
	"context"
	"sync"
)

type options struct {
	replay bool
}

// Option configures a Broadcaster.
type Option func(*options)

// WithReplay makes new subscribers receive the latest published value first.
func WithReplay() Option {
	return func(o *options) {
		o.replay = true
	}
}

// Broadcaster fans published values out to subscribers. Published values are
// shared between subscribers and must be treated as read-only.
type Broadcaster[T any] struct {
	mu        sync.Mutex
	subs      map[uint64]*Subscription[T]
	nextID    uint64
	replay    bool
	latest    T
	hasLatest bool
	closed    bool
}

// New creates a Broadcaster.
func New[T any](opts ...Option) *Broadcaster[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Broadcaster[T]{
		subs:   make(map[uint64]*Subscription[T]),
		replay: o.replay,
	}
}

// Publish delivers v to every current subscriber. Publishing after Close is a
// no-op.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest = v
	b.hasLatest = true
	for _, s := range b.subs {
		s.enqueue(v)
	}
}

// Latest returns the most recently published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

// Subscribe registers a new subscriber. The subscription ends when ctx is
// done, when Close is called on it, or when the broadcaster is closed.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) *Subscription[T] {
	s := &Subscription[T]{
		out:    make(chan T),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.end()
		go s.pump()
		return s
	}
	b.nextID++
	s.id = b.nextID
	s.unregister = func() { b.remove(s.id) }
	if b.replay && b.hasLatest {
		s.enqueue(b.latest)
	}
	b.subs[s.id] = s
	b.mu.Unlock()

	go s.pump()
	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				s.Close()
			case <-s.done:
			}
		}()
	}
	return s
}

// Len returns the number of live subscribers.
func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Values already queued are still delivered
// before each subscriber's channel closes.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		s.end()
		delete(b.subs, id)
	}
}

func (b *Broadcaster[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscription is one subscriber's ordered view of a Broadcaster.
type Subscription[T any] struct {
	id         uint64
	unregister func()

	mu     sync.Mutex
	queue  []T
	ended  bool
	signal chan struct{}

	out       chan T
	done      chan struct{}
	closeOnce sync.Once
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close stops delivery and unregisters the subscriber. Undelivered values are
// discarded. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.unregister != nil {
			s.unregister()
		}
	})
}

func (s *Subscription[T]) enqueue(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.wake()
}

// end marks the subscription as finished once its queue drains.
func (s *Subscription[T]) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription[T]) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			ended := s.ended
			s.mu.Unlock()
			if ended {
				return
			}
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
