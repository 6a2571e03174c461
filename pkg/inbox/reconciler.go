package inbox

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// Op names an optimistic mutation.
type Op string

const (
	OpMarkAsRead    Op = "mark_as_read"
	OpMarkAllAsRead Op = "mark_all_as_read"
)

// Mutation describes an optimistic mutation whose remote write has finished.
type Mutation struct {
	Op     Op
	UserID string
	IDs    []string // notifications flipped locally
	Err    error    // remote write result
}

// Reconciler decides what happens to local state once the remote write of an
// optimistic mutation finishes. rollback restores the flipped notifications to
// unread; it is a no-op once the session has changed.
type Reconciler interface {
	Reconcile(ctx context.Context, m Mutation, rollback func())
}

// KeepOptimistic logs remote failures and keeps the local state. Read is a
// monotonic flag, so the next successful write or feed snapshot converges.
type KeepOptimistic struct {
	Logger *slog.Logger
}

func (k KeepOptimistic) Reconcile(ctx context.Context, m Mutation, _ func()) {
	if m.Err == nil {
		return
	}
	log := k.Logger
	if log == nil {
		log = slog.Default()
	}
	log.LogAttrs(ctx, slog.LevelWarn, "remote read-state write failed, keeping local state",
		logger.Component("inbox"),
		logger.Event(string(m.Op)),
		logger.UserID(m.UserID),
		logger.Count(len(m.IDs)),
		logger.Error(m.Err),
	)
}

// Rollback restores the previous state when the remote write fails.
type Rollback struct {
	Logger *slog.Logger
}

func (r Rollback) Reconcile(ctx context.Context, m Mutation, rollback func()) {
	if m.Err == nil {
		return
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	log.LogAttrs(ctx, slog.LevelWarn, "remote read-state write failed, rolling back",
		logger.Component("inbox"),
		logger.Event(string(m.Op)),
		logger.UserID(m.UserID),
		logger.Count(len(m.IDs)),
		logger.Error(m.Err),
	)
	rollback()
}
