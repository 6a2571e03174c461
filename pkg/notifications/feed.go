package notifications

import (
	"context"
	"errors"

	"github.com/dmitrymomot/internhub/pkg/broadcast"
)

// Feed carries "this user's notifications changed" signals.
// Signals carry no payload: receivers re-query storage, so a missed or
// duplicated signal never corrupts the receiver's view.
type Feed interface {
	// Publish signals that userID's record set changed.
	Publish(ctx context.Context, userID string) error

	// Watch returns a channel that receives a signal per change until ctx is done.
	// Bursts may be coalesced into one signal. The channel is closed when watching stops.
	Watch(ctx context.Context, userID string) (<-chan struct{}, error)
}

// BroadcastFeed is an in-process Feed built on per-user broadcast topics.
type BroadcastFeed struct {
	topics *broadcast.Topics[struct{}]
}

// NewBroadcastFeed creates an in-process feed.
func NewBroadcastFeed() *BroadcastFeed {
	return &BroadcastFeed{topics: broadcast.NewTopics[struct{}](1)}
}

func (f *BroadcastFeed) Publish(ctx context.Context, userID string) error {
	if err := f.topics.Publish(ctx, userID, broadcast.Message[struct{}]{}); err != nil {
		return errors.Join(ErrFeedClosed, err)
	}
	return nil
}

func (f *BroadcastFeed) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	sub := f.topics.Subscribe(ctx, userID)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.Receive():
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()
	return out, nil
}

// Close stops every watcher.
func (f *BroadcastFeed) Close() error {
	return f.topics.Close()
}

// signal queues one pending signal; an already pending one absorbs it.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
