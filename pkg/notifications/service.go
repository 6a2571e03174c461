package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// Service creates notifications from catalog entries, tracks read state and
// serves live per-user snapshots.
type Service struct {
	storage   Storage
	feed      Feed
	deliverer Deliverer
	catalog   *Catalog
	fallback  Role
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger

	mu   sync.Mutex
	subs map[subscriptionKey]*subscription
}

// Config holds the service settings loaded from the environment.
type Config struct {
	FallbackRole Role `env:"NOTIFY_FALLBACK_ROLE" envDefault:"student"`
}

// Option configures a Service.
type Option func(*Service)

// WithConfig applies cfg.
func WithConfig(cfg Config) Option {
	return WithFallbackRole(cfg.FallbackRole)
}

// WithLogger sets the logger for the Service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithFallbackRole sets the role used when a payload carries none.
func WithFallbackRole(r Role) Option {
	return func(s *Service) {
		if r != "" {
			s.fallback = r
		}
	}
}

// WithClock overrides the clock used for client-side timestamps and readAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDeliverer mirrors created notifications to d.
func WithDeliverer(d Deliverer) Option {
	return func(s *Service) {
		if d != nil {
			s.deliverer = d
		}
	}
}

// WithIDGenerator overrides how notification ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a notification service. A nil feed means an in-process BroadcastFeed.
func NewService(storage Storage, feed Feed, opts ...Option) *Service {
	if feed == nil {
		feed = NewBroadcastFeed()
	}

	s := &Service{
		storage:   storage,
		feed:      feed,
		deliverer: NoOpDeliverer{},
		catalog:   DefaultCatalog(),
		fallback:  DefaultRole,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
		subs:      make(map[subscriptionKey]*subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the service renders from.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// CreateNotification renders kind for userID and stores it.
//
// The recipient role is read from data["userRole"]. When the catalog has no
// entry for the kind or no template for the role, nothing is written and
// (nil, nil) is returned. The returned copy carries a client-side timestamp;
// the stored record has the storage timestamp.
//
// A write error is returned to the caller. Callers are expected to treat it
// as non-fatal to the domain action that triggered the notification.
func (s *Service) CreateNotification(ctx context.Context, userID string, kind Kind, data Data) (_ *Notification, err error) {
	ctx, span := startSpan(ctx, "create", attribute.String("user_id", userID), attribute.String("kind", string(kind)))
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, ErrMissingUserID
	}

	role := data.Role(s.fallback)
	n, ok := s.render(ctx, userID, role, kind, data)
	if !ok {
		return nil, nil
	}

	if err := s.storage.Create(ctx, n); err != nil {
		notificationWriteFailures.WithLabelValues("create").Inc()
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	notificationsCreated.WithLabelValues(string(kind)).Inc()

	s.publish(ctx, userID)
	if err := s.deliverer.Deliver(ctx, n); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification, but it was stored successfully",
			logger.NotificationID(n.ID),
			logger.UserID(userID),
			logger.Error(err),
		)
	}

	return &n, nil
}

// CreateBulkNotifications renders kind for every user in userIDs and stores
// the result in one atomic batch.
//
// Each user's role is read from data["userRoles"][userID]. Users whose role
// has no template are skipped. When nobody resolves, nothing is written and
// an empty slice is returned.
func (s *Service) CreateBulkNotifications(ctx context.Context, userIDs []string, kind Kind, data Data) (_ []Notification, err error) {
	ctx, span := startSpan(ctx, "create_bulk", attribute.String("kind", string(kind)), attribute.Int("recipients", len(userIDs)))
	defer func() { endSpan(span, err) }()

	roles := data.Roles()
	batch := make([]Notification, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))

	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		role, ok := roles[userID]
		if !ok || role == "" {
			role = s.fallback
		}
		n, ok := s.render(ctx, userID, role, kind, data)
		if !ok {
			continue
		}
		batch = append(batch, n)
	}

	if len(batch) == 0 {
		return []Notification{}, nil
	}

	if err := s.storage.CreateBatch(ctx, batch); err != nil {
		notificationWriteFailures.WithLabelValues("create_batch").Inc()
		return nil, fmt.Errorf("failed to store notification batch: %w", err)
	}
	notificationsCreated.WithLabelValues(string(kind)).Add(float64(len(batch)))

	for _, n := range batch {
		s.publish(ctx, n.UserID)
	}
	if err := s.deliverer.DeliverBatch(ctx, batch); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification batch, but it was stored successfully",
			logger.Count(len(batch)),
			logger.Error(err),
		)
	}

	return batch, nil
}

// render builds the record for one recipient. It logs and reports false when
// the catalog cannot produce one.
func (s *Service) render(ctx context.Context, userID string, role Role, kind Kind, data Data) (Notification, bool) {
	meta, ok := s.catalog.MetadataFor(kind)
	if !ok {
		notificationsSkipped.WithLabelValues(string(kind), skipUnknownKind).Inc()
		s.logger.LogAttrs(ctx, slog.LevelWarn, "unknown notification kind",
			logger.Kind(kind),
			logger.UserID(userID),
		)
		return Notification{}, false
	}

	content, ok := s.catalog.TemplateFor(role, kind, data)
	if !ok {
		notificationsSkipped.WithLabelValues(string(kind), skipNoTemplate).Inc()
		s.logger.LogAttrs(ctx, slog.LevelWarn, "no notification template for role",
			logger.Kind(kind),
			logger.Role(role),
			logger.UserID(userID),
		)
		return Notification{}, false
	}

	return Notification{
		ID:         s.newID(),
		UserID:     userID,
		Kind:       kind,
		Type:       meta.Type,
		Category:   meta.Category,
		Priority:   meta.Priority,
		Icon:       meta.Icon,
		Title:      content.Title,
		Message:    content.Message,
		ActionURL:  content.ActionURL,
		ActionText: content.ActionText,
		Timestamp:  s.now(),
		SoundType:  meta.Sound,
		Data:       data.forRecipient(role),
	}, true
}

// Get returns a single notification.
func (s *Service) Get(ctx context.Context, notifID string) (*Notification, error) {
	return s.storage.Get(ctx, notifID)
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return s.storage.List(ctx, userID, opts)
}

// MarkAsRead flips one notification to read. Marking a read notification again is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, notifID string) (err error) {
	ctx, span := startSpan(ctx, "mark_read", attribute.String("notification_id", notifID))
	defer func() { endSpan(span, err) }()

	n, err := s.storage.Get(ctx, notifID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if n.Read {
		return nil
	}

	modified, err := s.storage.MarkRead(ctx, s.now(), notifID)
	if err != nil {
		notificationWriteFailures.WithLabelValues("mark_read").Inc()
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if modified > 0 {
		notificationsMarkedRead.Add(float64(modified))
		s.publish(ctx, n.UserID)
	}
	return nil
}

// MarkAllAsRead flips every unread notification of userID to read and
// returns how many changed. Only unread records are written.
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (_ int, err error) {
	ctx, span := startSpan(ctx, "mark_all_read", attribute.String("user_id", userID))
	defer func() { endSpan(span, err) }()

	unread, err := s.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	if len(unread) == 0 {
		return 0, nil
	}

	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}

	modified, err := s.storage.MarkRead(ctx, s.now(), ids...)
	if err != nil {
		notificationWriteFailures.WithLabelValues("mark_all_read").Inc()
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	if modified > 0 {
		notificationsMarkedRead.Add(float64(modified))
		s.publish(ctx, userID)
	}
	return modified, nil
}

// GetNotificationStats aggregates the user's full record set.
func (s *Service) GetNotificationStats(ctx context.Context, userID string) (_ Stats, err error) {
	ctx, span := startSpan(ctx, "stats", attribute.String("user_id", userID))
	defer func() { endSpan(span, err) }()

	all, err := s.storage.List(ctx, userID, ListOptions{})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to compute notification stats: %w", err)
	}
	return ComputeStats(all), nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if err := s.feed.Publish(ctx, userID); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish notification change",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}

// Subscribers returns the ids of users with a live subscription.
func (s *Service) Subscribers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.subs))
	for key := range s.subs {
		ids = append(ids, key.userID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
