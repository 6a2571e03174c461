package notifications

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	byID   map[string]*memoryRecord
	byUser map[string][]*memoryRecord
	seq    uint64
	now    func() time.Time
}

type memoryRecord struct {
	notif Notification
	seq   uint64
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithMemoryClock overrides the clock used to stamp stored notifications.
func WithMemoryClock(now func() time.Time) MemoryStorageOption {
	return func(s *MemoryStorage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		byID:   make(map[string]*memoryRecord),
		byUser: make(map[string][]*memoryRecord),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	return s.CreateBatch(ctx, []Notification{notif})
}

func (s *MemoryStorage) CreateBatch(ctx context.Context, notifs []Notification) error {
	if len(notifs) == 0 {
		return ErrEmptyBatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before touching state so a bad entry leaves no partial batch.
	seen := make(map[string]struct{}, len(notifs))
	for _, n := range notifs {
		if err := validate(n); err != nil {
			return err
		}
		if _, dup := s.byID[n.ID]; dup {
			return ErrInvalidNotification
		}
		if _, dup := seen[n.ID]; dup {
			return ErrInvalidNotification
		}
		seen[n.ID] = struct{}{}
	}

	now := s.now()
	for _, n := range notifs {
		s.seq++
		rec := &memoryRecord{notif: n.Clone(), seq: s.seq}
		rec.notif.Timestamp = now
		s.byID[n.ID] = rec
		s.byUser[n.UserID] = append(s.byUser[n.UserID], rec)
	}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[notifID]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	n := rec.notif.Clone()
	return &n, nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*memoryRecord, 0, len(s.byUser[userID]))
	for _, rec := range s.byUser[userID] {
		if opts.match(rec.notif) {
			recs = append(recs, rec)
		}
	}

	slices.SortFunc(recs, func(a, b *memoryRecord) int {
		if c := b.notif.Timestamp.Compare(a.notif.Timestamp); c != 0 {
			return c
		}
		// Same timestamp: later writes first.
		switch {
		case a.seq > b.seq:
			return -1
		case a.seq < b.seq:
			return 1
		}
		return 0
	})

	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}

	out := make([]Notification, len(recs))
	for i, rec := range recs {
		out[i] = rec.notif.Clone()
	}
	return out, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, readAt time.Time, notifIDs ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	modified := 0
	for _, id := range notifIDs {
		rec, ok := s.byID[id]
		if !ok {
			continue
		}
		if rec.notif.MarkAsRead(readAt) {
			modified++
		}
	}
	return modified, nil
}
