package broadcast

import (
	"context"
	"sync"
)

// Topics keeps one MemoryBroadcaster per key, created on first subscription
// and released when its last subscriber leaves.
type Topics[T any] struct {
	topics     map[string]*topic[T]
	bufferSize int
	closed     bool
	mu         sync.Mutex
}

type topic[T any] struct {
	b    *MemoryBroadcaster[T]
	refs int
}

// NewTopics creates an empty topic set with the given per-subscriber buffer.
func NewTopics[T any](bufferSize int) *Topics[T] {
	return &Topics[T]{
		topics:     make(map[string]*topic[T]),
		bufferSize: bufferSize,
	}
}

// Subscribe subscribes to key. The subscription ends when ctx is done or the
// returned subscriber is closed.
func (t *Topics[T]) Subscribe(ctx context.Context, key string) Subscriber[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		sub := newSubscriber[T](1, nil)
		_ = sub.Close()
		return sub
	}

	tp, ok := t.topics[key]
	if !ok {
		tp = &topic[T]{b: NewMemoryBroadcaster[T](t.bufferSize)}
		t.topics[key] = tp
	}
	tp.refs++

	return tp.b.subscribe(ctx, func() { t.release(key, tp) })
}

// Publish broadcasts msg to the subscribers of key.
// Publishing to a key nobody listens to is a no-op.
func (t *Topics[T]) Publish(ctx context.Context, key string, msg Message[T]) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrBroadcasterClosed
	}
	tp, ok := t.topics[key]
	t.mu.Unlock()

	if !ok {
		return nil
	}
	return tp.b.Broadcast(ctx, msg)
}

// Len returns the number of keys with at least one subscriber.
func (t *Topics[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.topics)
}

// Close closes every topic and its subscribers.
func (t *Topics[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	topics := t.topics
	t.topics = make(map[string]*topic[T])
	t.mu.Unlock()

	for _, tp := range topics {
		_ = tp.b.Close()
	}
	return nil
}

func (t *Topics[T]) release(key string, tp *topic[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp.refs--
	if tp.refs > 0 {
		return
	}
	if cur, ok := t.topics[key]; ok && cur == tp {
		delete(t.topics, key)
	}
	go func() { _ = tp.b.Close() }()
}
