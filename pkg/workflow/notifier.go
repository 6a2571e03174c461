package workflow

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// Creator is the part of the notification service the workflows use.
type Creator interface {
	CreateNotification(ctx context.Context, userID string, kind notifications.Kind, data notifications.Data) (*notifications.Notification, error)
	CreateBulkNotifications(ctx context.Context, userIDs []string, kind notifications.Kind, data notifications.Data) ([]notifications.Notification, error)
}

// Notifier emits the notifications that accompany application events.
// Callers invoke its methods after the domain write for the event succeeds;
// modules/certificates reaches it through CertificateIssuer.
type Notifier struct {
	creator Creator
	logger  *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger for swallowed notification failures.
func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNotifier creates a Notifier backed by creator.
func NewNotifier(creator Creator, opts ...NotifierOption) *Notifier {
	n := &Notifier{creator: creator, logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ApplicationSubmitted confirms the submission to the student and, when a
// reviewer is assigned, tells the reviewer in their own role's wording.
func (n *Notifier) ApplicationSubmitted(ctx context.Context, app Application, reviewer *Recipient) {
	n.create(ctx, app.StudentID, notifications.RoleStudent, notifications.KindApplicationSubmitted, app.data())
	if reviewer != nil {
		n.create(ctx, reviewer.UserID, reviewer.Role, notifications.KindApplicationSubmitted, app.data())
	}
}

// ApplicationDecided tells the student whether the application was approved.
func (n *Notifier) ApplicationDecided(ctx context.Context, app Application, decision Decision) {
	kind := notifications.KindApplicationRejected
	data := app.data()
	if decision.Approved {
		kind = notifications.KindApplicationApproved
	} else {
		set(data, "reason", decision.Reason)
	}
	n.create(ctx, app.StudentID, notifications.RoleStudent, kind, data)
}

// InterviewScheduled tells the student about a new interview slot.
func (n *Notifier) InterviewScheduled(ctx context.Context, app Application, iv Interview) {
	data := app.data()
	if !iv.At.IsZero() {
		data["interviewDate"] = iv.At.Format("Jan 2, 2006")
		data["interviewTime"] = iv.At.Format("15:04")
	}
	set(data, "location", iv.Location)
	n.create(ctx, app.StudentID, notifications.RoleStudent, notifications.KindInterviewScheduled, data)
}

// OfferReceived tells the student about an offer and mirrors it to the
// placement officers, if any.
func (n *Notifier) OfferReceived(ctx context.Context, app Application, officers []Recipient) {
	n.create(ctx, app.StudentID, notifications.RoleStudent, notifications.KindOfferReceived, app.data())
	if len(officers) > 0 {
		n.bulk(ctx, officers, notifications.KindOfferReceived, app.data())
	}
}

// SeatAlert warns placement officers and admins that a drive is filling up.
func (n *Notifier) SeatAlert(ctx context.Context, drive Drive, recipients []Recipient) {
	if len(recipients) == 0 {
		return
	}
	n.bulk(ctx, recipients, notifications.KindSeatAlert, drive.data())
}

func (n *Notifier) create(ctx context.Context, userID string, role notifications.Role, kind notifications.Kind, data notifications.Data) *notifications.Notification {
	data[notifications.DataKeyUserRole] = role
	created, err := n.creator.CreateNotification(ctx, userID, kind, data)
	if err != nil {
		n.logger.LogAttrs(ctx, slog.LevelError, "failed to create notification",
			logger.Component("workflow"),
			logger.UserID(userID),
			logger.Kind(kind),
			logger.Error(err),
		)
		return nil
	}
	return created
}

func (n *Notifier) bulk(ctx context.Context, recipients []Recipient, kind notifications.Kind, data notifications.Data) {
	ids := make([]string, 0, len(recipients))
	roles := make(map[string]notifications.Role, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.UserID)
		roles[r.UserID] = r.Role
	}
	data[notifications.DataKeyUserRoles] = roles

	if _, err := n.creator.CreateBulkNotifications(ctx, ids, kind, data); err != nil {
		n.logger.LogAttrs(ctx, slog.LevelError, "failed to create bulk notifications",
			logger.Component("workflow"),
			logger.Kind(kind),
			logger.Count(len(ids)),
			logger.Error(err),
		)
	}
}
