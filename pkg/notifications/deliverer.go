package notifications

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// Deliverer mirrors stored notifications to an external channel (push, SMS, ...).
// Delivery is best effort: the service logs failures and never returns them.
type Deliverer interface {
	// Deliver sends one notification.
	Deliver(ctx context.Context, notif Notification) error

	// DeliverBatch sends multiple notifications.
	DeliverBatch(ctx context.Context, notifs []Notification) error
}

// MultiDeliverer fans a notification out to several deliverers.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

// MultiDelivererOption configures a MultiDeliverer.
type MultiDelivererOption func(*MultiDeliverer)

// WithMultiDelivererLogger sets the logger for the MultiDeliverer.
func WithMultiDelivererLogger(l *slog.Logger) MultiDelivererOption {
	return func(m *MultiDeliverer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMultiDeliverer creates a deliverer that calls each of deliverers in order.
func NewMultiDeliverer(deliverers []Deliverer, opts ...MultiDelivererOption) *MultiDeliverer {
	m := &MultiDeliverer{
		deliverers: deliverers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Deliver sends notif through every deliverer. A failing one does not stop the others.
func (m *MultiDeliverer) Deliver(ctx context.Context, notif Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, notif); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				logger.NotificationID(notif.ID),
				logger.UserID(notif.UserID),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// DeliverBatch sends notifs through every deliverer.
func (m *MultiDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	for i, d := range m.deliverers {
		if err := d.DeliverBatch(ctx, notifs); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification batch",
				logger.Count(len(notifs)),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NoOpDeliverer does nothing.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error        { return nil }
func (NoOpDeliverer) DeliverBatch(context.Context, []Notification) error { return nil }
