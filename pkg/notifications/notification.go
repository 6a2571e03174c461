package notifications

import "time"

// Notification is one event directed at one user.
// It is created unread and only ever transitions to read.
type Notification struct {
	ID         string     `json:"id" bson:"_id"`
	UserID     string     `json:"userId" bson:"userId"`
	Kind       Kind       `json:"kind" bson:"kind"`
	Type       Type       `json:"type" bson:"type"`
	Category   string     `json:"category" bson:"category"`
	Priority   Priority   `json:"priority" bson:"priority"`
	Icon       string     `json:"icon" bson:"icon"`
	Title      string     `json:"title" bson:"title"`
	Message    string     `json:"message" bson:"message"`
	ActionURL  string     `json:"actionUrl,omitempty" bson:"actionUrl,omitempty"`
	ActionText string     `json:"actionText,omitempty" bson:"actionText,omitempty"`
	Read       bool       `json:"read" bson:"read"`
	ReadAt     *time.Time `json:"readAt,omitempty" bson:"readAt,omitempty"`
	Timestamp  time.Time  `json:"timestamp" bson:"timestamp"`
	SoundType  Sound      `json:"soundType" bson:"soundType"`
	Data       Data       `json:"data,omitempty" bson:"data,omitempty"`
}

// MarkAsRead flips the notification to read. It reports false when it already was.
func (n *Notification) MarkAsRead(at time.Time) bool {
	if n.Read {
		return false
	}
	n.Read = true
	n.ReadAt = &at
	return true
}

// Clone returns a deep enough copy for handing out of a store.
func (n Notification) Clone() Notification {
	if n.ReadAt != nil {
		at := *n.ReadAt
		n.ReadAt = &at
	}
	n.Data = n.Data.Clone()
	return n
}
