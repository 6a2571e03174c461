package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/internhub/pkg/async"
	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// GenerateCertificateFunction is the remote function that renders
// completion certificates.
const GenerateCertificateFunction = "generateCertificate"

// CertificateResultSchema describes the generateCertificate result.
const CertificateResultSchema = `{
	"type": "object",
	"required": ["success"],
	"properties": {
		"success": {"type": "boolean"},
		"message": {"type": "string"}
	}
}`

// Caller invokes a named remote function.
type Caller interface {
	Call(ctx context.Context, name string, payload, out any) error
}

// CertificateResult is the generateCertificate response.
type CertificateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type certificateRequest struct {
	ApplicationID string `json:"applicationId"`
}

// CertificateIssuer generates certificates remotely and notifies students.
type CertificateIssuer struct {
	caller   Caller
	notifier *Notifier
	runner   *async.Runner
	logger   *slog.Logger
}

// NewCertificateIssuer creates a CertificateIssuer. Follow-up notifications
// run on runner so they survive the caller's request.
func NewCertificateIssuer(caller Caller, notifier *Notifier, runner *async.Runner, l *slog.Logger) *CertificateIssuer {
	if l == nil {
		l = slog.Default()
	}
	if runner == nil {
		runner = async.NewRunner(async.WithRunnerLogger(l))
	}
	return &CertificateIssuer{caller: caller, notifier: notifier, runner: runner, logger: l}
}

// Issue calls generateCertificate for app and waits for the result. On
// success the student is notified in the background; a notification failure
// does not fail Issue.
func (c *CertificateIssuer) Issue(ctx context.Context, app Application) (CertificateResult, error) {
	if app.ID == "" {
		return CertificateResult{}, ErrMissingApplication
	}

	future := async.Run(ctx, func(ctx context.Context) (CertificateResult, error) {
		var res CertificateResult
		err := c.caller.Call(ctx, GenerateCertificateFunction, certificateRequest{ApplicationID: app.ID}, &res)
		return res, err
	})

	res, err := future.Await(ctx)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelError, "certificate generation failed",
			logger.Component("workflow"),
			slog.String("application_id", app.ID),
			logger.Error(err),
		)
		return CertificateResult{}, errors.Join(ErrCertificateCallFails, err)
	}
	if !res.Success {
		return res, ErrCertificateRejected
	}

	data := app.data()
	if err := c.runner.Go(ctx, "certificate_notification", func(ctx context.Context) error {
		c.notifier.create(ctx, app.StudentID, notifications.RoleStudent, notifications.KindCertificateGenerated, data)
		return nil
	}); err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "certificate notification not scheduled",
			logger.Component("workflow"),
			logger.UserID(app.StudentID),
			logger.Error(err),
		)
	}

	return res, nil
}
