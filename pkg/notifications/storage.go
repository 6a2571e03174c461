package notifications

import (
	"context"
	"slices"
	"time"
)

// Storage is the document-store boundary.
// Implementations assign the authoritative timestamp on write.
type Storage interface {
	// Create stores a single notification.
	Create(ctx context.Context, notif Notification) error

	// CreateBatch stores all notifications or none of them.
	CreateBatch(ctx context.Context, notifs []Notification) error

	// Get retrieves a single notification by id.
	Get(ctx context.Context, notifID string) (*Notification, error)

	// List returns a user's notifications ordered by timestamp, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead flips unread notifications to read and returns how many changed.
	MarkRead(ctx context.Context, readAt time.Time, notifIDs ...string) (int, error)
}

// ListOptions filters a List query.
type ListOptions struct {
	Limit      int        // 0 = no limit
	OnlyUnread bool       // only unread notifications
	Types      []Type     // only these types
	Priorities []Priority // only these priorities
}

func (o ListOptions) match(n Notification) bool {
	if o.OnlyUnread && n.Read {
		return false
	}
	if len(o.Types) > 0 && !slices.Contains(o.Types, n.Type) {
		return false
	}
	if len(o.Priorities) > 0 && !slices.Contains(o.Priorities, n.Priority) {
		return false
	}
	return true
}

func validate(n Notification) error {
	switch {
	case n.ID == "":
		return ErrInvalidNotification
	case n.UserID == "":
		return ErrMissingUserID
	}
	return nil
}
