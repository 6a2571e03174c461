package notifications

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidNotification  = errors.New("invalid notification")
	ErrEmptyBatch           = errors.New("empty notification batch")
	ErrMissingUserID        = errors.New("user id is required")
	ErrFailedToStore        = errors.New("failed to store notification")
	ErrFailedToMarkRead     = errors.New("failed to mark notification as read")
	ErrFailedToList         = errors.New("failed to list notifications")
	ErrFeedClosed           = errors.New("notification feed closed")
	ErrSubscriptionReplaced = errors.New("notification subscription replaced by a newer one")
)
