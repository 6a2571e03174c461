package inbox

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// Service is the part of notifications.Service the store depends on.
type Service interface {
	SubscribeToNotifications(ctx context.Context, userID string, callback notifications.SnapshotFunc) func()
	MarkAsRead(ctx context.Context, notifID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	CreateNotification(ctx context.Context, userID string, kind notifications.Kind, data notifications.Data) (*notifications.Notification, error)
	CreateBulkNotifications(ctx context.Context, userIDs []string, kind notifications.Kind, data notifications.Data) ([]notifications.Notification, error)
}

// SessionSubscriber is implemented by services that keep one live feed per
// session instead of one per user. notifications.Service implements it.
type SessionSubscriber interface {
	SubscribeSession(ctx context.Context, userID, session string, callback notifications.SnapshotFunc) func()
}

// Identity is the signed-in user.
type Identity struct {
	UserID string
	Role   notifications.Role
}

// State is a copy of the store's state.
type State struct {
	Identity      Identity
	Notifications []notifications.Notification // newest first
	UnreadCount   int
	ToastQueue    []notifications.Notification // unread arrivals since the initial load, oldest first
	Loading       bool
	Err           error
}

// Store holds one session's notifications and mediates every change to them.
// Create one per signed-in session; there is no package-level instance.
type Store struct {
	svc        Service
	reconciler Reconciler
	navigator  Navigator
	logger     *slog.Logger
	now        func() time.Time
	session    string

	mu          sync.Mutex
	state       State
	generation  uint64
	loaded      bool
	unsubscribe func()
	version     uint64

	listenersMu sync.Mutex
	listeners   map[int]func(State)
	nextID      int
	delivered   uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the Store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReconciler replaces the KeepOptimistic default.
func WithReconciler(r Reconciler) Option {
	return func(s *Store) {
		if r != nil {
			s.reconciler = r
		}
	}
}

// WithNavigator sets where notification clicks navigate.
func WithNavigator(n Navigator) Option {
	return func(s *Store) {
		if n != nil {
			s.navigator = n
		}
	}
}

// WithSession names the session this store serves. Stores with distinct
// sessions for the same user each keep their own live feed when the service
// implements SessionSubscriber; otherwise the newest store wins and older ones
// see notifications.ErrSubscriptionReplaced.
func WithSession(id string) Option {
	return func(s *Store) {
		s.session = id
	}
}

// WithClock overrides the clock used for optimistic readAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty, signed-out store.
func New(svc Service, opts ...Option) *Store {
	s := &Store{
		svc:       svc,
		navigator: NopNavigator{},
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reconciler == nil {
		s.reconciler = KeepOptimistic{Logger: s.logger}
	}
	return s
}

// Start begins a session for id. Any previous session's state is discarded
// before the first snapshot of the new one arrives.
func (s *Store) Start(ctx context.Context, id Identity) error {
	if id.UserID == "" {
		return ErrMissingUser
	}

	s.mu.Lock()
	prev := s.unsubscribe
	s.unsubscribe = nil
	s.generation++
	gen := s.generation
	s.loaded = false
	s.state = State{Identity: id, Loading: true}
	snap, ver := s.snapshotLocked()
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	s.notify(snap, ver)

	unsubscribe := s.subscribe(ctx, id.UserID, func(snap notifications.Snapshot) {
		s.apply(gen, snap)
	})

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

func (s *Store) subscribe(ctx context.Context, userID string, cb notifications.SnapshotFunc) func() {
	if ss, ok := s.svc.(SessionSubscriber); ok && s.session != "" {
		return ss.SubscribeSession(ctx, userID, s.session, cb)
	}
	return s.svc.SubscribeToNotifications(ctx, userID, cb)
}

// Stop ends the session and clears all state.
func (s *Store) Stop() {
	s.mu.Lock()
	prev := s.unsubscribe
	s.unsubscribe = nil
	s.generation++
	s.loaded = false
	s.state = State{}
	snap, ver := s.snapshotLocked()
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	s.notify(snap, ver)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// OnChange registers fn to receive the state after every change.
// Calls are serialized and never carry an older state than a previous call.
// fn must not call back into the store synchronously.
// The returned func removes the listener.
func (s *Store) OnChange(fn func(State)) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// apply merges a feed snapshot from session gen.
func (s *Store) apply(gen uint64, snap notifications.Snapshot) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}

	if snap.Err != nil {
		s.state.Err = snap.Err
		s.state.Loading = false
		if !s.loaded {
			s.state.Notifications = nil
			s.state.UnreadCount = 0
		}
		state, ver := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.LogAttrs(context.Background(), slog.LevelError, "notification feed failed",
			logger.Component("inbox"),
			logger.UserID(snap.UserID),
			logger.Error(snap.Err),
		)
		s.notify(state, ver)
		return
	}

	local := make(map[string]notifications.Notification, len(s.state.Notifications))
	for _, n := range s.state.Notifications {
		local[n.ID] = n
	}

	merged := make([]notifications.Notification, 0, len(snap.Notifications))
	var arrivals []notifications.Notification
	for _, n := range snap.Notifications {
		prev, known := local[n.ID]
		if known && prev.Read && !n.Read {
			// Read never reverts: the remote write may still be in flight.
			n.Read = true
			n.ReadAt = prev.ReadAt
		}
		if s.loaded && !known && !n.Read {
			arrivals = append(arrivals, n)
		}
		merged = append(merged, n)
	}
	slices.Reverse(arrivals)

	s.state.Notifications = merged
	s.state.UnreadCount = countUnread(merged)
	s.state.ToastQueue = append(s.state.ToastQueue, arrivals...)
	s.state.Loading = false
	s.state.Err = nil
	s.loaded = true
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state, ver)
}

// MarkAsRead marks id read locally, then remotely. The remote outcome goes
// to the Reconciler; its error is also returned.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	gen := s.generation
	userID := s.state.Identity.UserID
	if userID == "" {
		s.mu.Unlock()
		return ErrNotStarted
	}

	i := slices.IndexFunc(s.state.Notifications, func(n notifications.Notification) bool { return n.ID == id })
	if i >= 0 && s.state.Notifications[i].Read {
		s.mu.Unlock()
		return nil
	}

	var flipped []string
	if i >= 0 {
		s.state.Notifications[i].MarkAsRead(s.now())
		s.state.UnreadCount = max(s.state.UnreadCount-1, 0)
		flipped = []string{id}
	}
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	if flipped != nil {
		s.notify(state, ver)
	}

	err := s.svc.MarkAsRead(ctx, id)
	s.reconciler.Reconcile(ctx, Mutation{Op: OpMarkAsRead, UserID: userID, IDs: flipped, Err: err}, func() {
		s.revert(gen, flipped)
	})
	return err
}

// MarkAllAsRead marks every loaded notification read locally, then asks the
// service to mark the user's unread records.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	userID := s.state.Identity.UserID
	if userID == "" {
		s.mu.Unlock()
		return ErrNotStarted
	}

	now := s.now()
	var flipped []string
	for i := range s.state.Notifications {
		if s.state.Notifications[i].MarkAsRead(now) {
			flipped = append(flipped, s.state.Notifications[i].ID)
		}
	}
	s.state.UnreadCount = 0
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	if len(flipped) > 0 {
		s.notify(state, ver)
	}

	_, err := s.svc.MarkAllAsRead(ctx, userID)
	s.reconciler.Reconcile(ctx, Mutation{Op: OpMarkAllAsRead, UserID: userID, IDs: flipped, Err: err}, func() {
		s.revert(gen, flipped)
	})
	return err
}

// revert flips ids back to unread if the session is still gen.
func (s *Store) revert(gen uint64, ids []string) {
	if len(ids) == 0 {
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	for i := range s.state.Notifications {
		n := &s.state.Notifications[i]
		if slices.Contains(ids, n.ID) {
			n.Read = false
			n.ReadAt = nil
		}
	}
	s.state.UnreadCount = countUnread(s.state.Notifications)
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state, ver)
}

// CreateNotification delegates to the service. Write errors are returned unchanged.
func (s *Store) CreateNotification(ctx context.Context, userID string, kind notifications.Kind, data notifications.Data) (*notifications.Notification, error) {
	return s.svc.CreateNotification(ctx, userID, kind, data)
}

// CreateBulkNotifications delegates to the service. Write errors are returned unchanged.
func (s *Store) CreateBulkNotifications(ctx context.Context, userIDs []string, kind notifications.Kind, data notifications.Data) ([]notifications.Notification, error) {
	return s.svc.CreateBulkNotifications(ctx, userIDs, kind, data)
}

// HandleNotificationClick marks n read if needed, then navigates to its
// action URL. A failed mark-read does not prevent navigation.
func (s *Store) HandleNotificationClick(ctx context.Context, n notifications.Notification) error {
	if !n.Read {
		// The reconciler has already logged a failure.
		_ = s.MarkAsRead(ctx, n.ID)
	}
	if n.ActionURL == "" {
		return nil
	}
	if err := s.navigator.Navigate(ctx, n.ActionURL); err != nil {
		return errors.Join(ErrNavigation, err)
	}
	return nil
}

// RemoveToast drops id from the toast queue only.
func (s *Store) RemoveToast(id string) {
	s.mu.Lock()
	before := len(s.state.ToastQueue)
	s.state.ToastQueue = slices.DeleteFunc(s.state.ToastQueue, func(n notifications.Notification) bool { return n.ID == id })
	if len(s.state.ToastQueue) == before {
		s.mu.Unlock()
		return
	}
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state, ver)
}

// ClearToasts empties the toast queue.
func (s *Store) ClearToasts() {
	s.mu.Lock()
	if len(s.state.ToastQueue) == 0 {
		s.mu.Unlock()
		return
	}
	s.state.ToastQueue = nil
	state, ver := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state, ver)
}

func (s *Store) snapshotLocked() (State, uint64) {
	s.version++
	return s.state.clone(), s.version
}

func (s *Store) notify(state State, ver uint64) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	if ver <= s.delivered {
		return
	}
	s.delivered = ver
	for _, fn := range s.listeners {
		fn(state)
	}
}

func (st State) clone() State {
	st.Notifications = slices.Clone(st.Notifications)
	st.ToastQueue = slices.Clone(st.ToastQueue)
	return st
}

func countUnread(list []notifications.Notification) int {
	n := 0
	for _, x := range list {
		if !x.Read {
			n++
		}
	}
	return n
}
