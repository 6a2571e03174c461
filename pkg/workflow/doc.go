// Package workflow turns internship domain events into notifications.
//
// Notifier builds the payload for each event and hands it to the
// notification service. Notification failures are logged and never returned,
// so the domain action that triggered them always succeeds on its own terms.
//
// The application, interview, offer and seat events have no HTTP route in
// this module: they are raised by the services that own those records, which
// call the matching Notifier method right after their own write commits.
// Build one Notifier per process over the shared notifications.Service:
//
//	notifier := workflow.NewNotifier(svc, workflow.WithNotifierLogger(log))
//	notifier.ApplicationDecided(ctx, app, workflow.Decision{Approved: true})
//
// CertificateIssuer runs the remote generateCertificate function, waits for
// its result and then notifies the student in the background.
package workflow
