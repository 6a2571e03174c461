package notifications

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisFeed is a Feed on Redis pub/sub, shared by every service instance
// pointed at the same server.
type RedisFeed struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisFeed creates a feed publishing on "<prefix>:<userID>" channels.
func NewRedisFeed(client redis.UniversalClient, prefix string) *RedisFeed {
	if prefix == "" {
		prefix = "notifications"
	}
	return &RedisFeed{client: client, prefix: prefix}
}

func (f *RedisFeed) channel(userID string) string {
	return f.prefix + ":" + userID
}

func (f *RedisFeed) Publish(ctx context.Context, userID string) error {
	if err := f.client.Publish(ctx, f.channel(userID), "changed").Err(); err != nil {
		return errors.Join(ErrFeedClosed, err)
	}
	return nil
}

func (f *RedisFeed) Watch(ctx context.Context, userID string) (<-chan struct{}, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	ps := f.client.Subscribe(ctx, f.channel(userID))
	// Wait for the subscription to be confirmed so no publish after Watch returns is lost.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Join(ErrFeedClosed, err)
	}

	msgs := ps.Channel()
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()
	return out, nil
}
