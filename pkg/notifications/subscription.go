package notifications

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// Snapshot is one delivery of a user's live feed: the full record set,
// newest first, or the error that prevented reading it.
type Snapshot struct {
	UserID        string
	Notifications []Notification
	Err           error
}

// SnapshotFunc receives feed snapshots. It is called from a service goroutine,
// one snapshot at a time.
type SnapshotFunc func(Snapshot)

type subscription struct {
	cancel   context.CancelFunc
	stopped  atomic.Bool
	replaced atomic.Bool
}

type subscriptionKey struct {
	userID  string
	session string
}

func (sub *subscription) stop() {
	sub.stopped.Store(true)
	sub.cancel()
}

// replace ends sub so its callback receives ErrSubscriptionReplaced.
func (sub *subscription) replace() {
	sub.replaced.Store(true)
	sub.cancel()
}

// SubscribeToNotifications starts a live feed for userID. callback receives
// the current record set immediately and again after every change.
//
// At most one subscription per user is kept: subscribing again replaces the
// previous one, whose callback gets a final Snapshot with
// ErrSubscriptionReplaced. The returned func ends this subscription and
// leaves a newer one for the same user untouched. The subscription also ends
// with ctx.
func (s *Service) SubscribeToNotifications(ctx context.Context, userID string, callback SnapshotFunc) (unsubscribe func()) {
	return s.SubscribeSession(ctx, userID, "", callback)
}

// SubscribeSession is SubscribeToNotifications scoped to one session of the
// user, such as a browser tab. Sessions of the same user run side by side;
// resubscribing with the same session replaces the previous subscription.
func (s *Service) SubscribeSession(ctx context.Context, userID, session string, callback SnapshotFunc) (unsubscribe func()) {
	if userID == "" {
		callback(Snapshot{Err: ErrMissingUserID})
		return func() {}
	}

	key := subscriptionKey{userID: userID, session: session}
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.subs[key]; ok {
		prev.replace()
	}
	s.subs[key] = sub
	s.mu.Unlock()

	activeSubscriptions.Inc()
	go s.run(ctx, sub, key, callback)

	return func() { s.remove(key, sub) }
}

// UnsubscribeFromNotifications ends every subscription of the user, if any.
func (s *Service) UnsubscribeFromNotifications(userID string) {
	s.mu.Lock()
	var ended []*subscription
	for key, sub := range s.subs {
		if key.userID == userID {
			ended = append(ended, sub)
			delete(s.subs, key)
		}
	}
	s.mu.Unlock()

	for _, sub := range ended {
		sub.stop()
	}
}

// Cleanup ends every subscription.
func (s *Service) Cleanup() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[subscriptionKey]*subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *Service) remove(key subscriptionKey, sub *subscription) {
	s.mu.Lock()
	if cur, ok := s.subs[key]; ok && cur == sub {
		delete(s.subs, key)
	}
	s.mu.Unlock()
	sub.stop()
}

func (s *Service) run(ctx context.Context, sub *subscription, key subscriptionKey, callback SnapshotFunc) {
	userID := key.userID
	defer activeSubscriptions.Dec()
	defer s.remove(key, sub)
	defer func() {
		if sub.replaced.Load() && !sub.stopped.Load() {
			callback(Snapshot{UserID: userID, Err: ErrSubscriptionReplaced})
		}
	}()

	deliver := func(snap Snapshot) {
		// A canceled read is not a feed failure; the loop is about to exit.
		if sub.stopped.Load() || ctx.Err() != nil {
			return
		}
		callback(snap)
	}

	// Watch before the first read so a change between the two is not lost.
	changes, err := s.feed.Watch(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to watch notification feed",
			logger.UserID(userID),
			logger.Error(err),
		)
		deliver(Snapshot{UserID: userID, Err: err})
		return
	}

	deliver(s.snapshot(ctx, userID))
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			deliver(s.snapshot(ctx, userID))
		}
	}
}

func (s *Service) snapshot(ctx context.Context, userID string) Snapshot {
	list, err := s.storage.List(ctx, userID, ListOptions{})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to read notification feed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return Snapshot{UserID: userID, Err: err}
	}
	return Snapshot{UserID: userID, Notifications: list}
}
