package hotkey

import (
	"context"
	"sync"
)

// broadcaster fans one event source out to any number of subscribers.
// Every subscriber has its own unbounded queue, so publish never blocks the
// key grab and a slow reader still sees every event in order.
type broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[*subscriber[T]]struct{}
	closed bool
	done   chan struct{}
}

type subscriber[T any] struct {
	mu    sync.Mutex
	queue []T
	wake  chan struct{}
	out   chan T
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{
		subs: make(map[*subscriber[T]]struct{}),
		done: make(chan struct{}),
	}
}

// subscribe returns a channel that is closed once ctx is done, or once the
// broadcaster is closed and everything published before that was delivered.
func (b *broadcaster[T]) subscribe(ctx context.Context) <-chan T {
	s := &subscriber[T]{
		wake: make(chan struct{}, 1),
		out:  make(chan T),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.out)
		return s.out
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go b.deliver(ctx, s)
	return s.out
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		s.push(v)
	}
}

// deliver drains s's queue into its channel until ctx ends or the
// broadcaster closes. Events queued before close are still handed over.
func (b *broadcaster[T]) deliver(ctx context.Context, s *subscriber[T]) {
	defer close(s.out)
	defer b.remove(s)

	for {
		closing := false
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-b.done:
			closing = true
		}
		for _, v := range s.take() {
			select {
			case s.out <- v:
			case <-ctx.Done():
				return
			}
		}
		if closing {
			return
		}
	}
}

func (b *broadcaster[T]) remove(s *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

func (b *broadcaster[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.subs = make(map[*subscriber[T]]struct{})
	close(b.done)
}

func (s *subscriber[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) take() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}
