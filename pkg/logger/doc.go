// Package logger provides a context-aware wrapper around log/slog with
// functional options, per-environment defaults and helper attribute
// constructors that keep attribute keys consistent across internhub.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "internhub"),
//	    logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification created",
//	    logger.UserID(n.UserID),
//	    logger.NotificationID(n.ID),
//	    logger.Kind(n.Kind),
//	)
//
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Warn("feed publish failed", logger.Error(err))
//
// needs no nil check.
package logger
