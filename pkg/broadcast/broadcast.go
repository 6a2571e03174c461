package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel messages are delivered on.
	// The channel is closed once the subscriber is closed.
	Receive() <-chan Message[T]

	// Close releases the subscriber. It is idempotent.
	Close() error
}

// Broadcaster sends messages to multiple subscribers without blocking on slow ones.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx is done or Close is called.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to every active subscriber.
	// A subscriber whose buffer is full misses the message but stays subscribed.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}

type subscriber[T any] struct {
	ch       chan Message[T]
	done     chan struct{}
	closed   bool
	mu       sync.RWMutex
	onClose  func()
	closeOne sync.Once
}

func newSubscriber[T any](bufferSize int, onClose func()) *subscriber[T] {
	return &subscriber[T]{
		ch:      make(chan Message[T], bufferSize),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (s *subscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.closeOne.Do(func() {
		s.mu.Lock()
		close(s.ch)
		close(s.done)
		s.closed = true
		s.mu.Unlock()

		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}

// send reports whether msg was queued.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
