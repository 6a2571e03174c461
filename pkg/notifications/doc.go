// Package notifications is the notification core of internhub: a typed
// catalog of notification kinds with per-role templates, a Service that
// renders and stores notifications, tracks read state and serves live
// per-user snapshots, and the storage, feed and delivery backends it runs on.
//
// # Catalog
//
// Every Kind has Metadata (type, category, priority, icon, sound) and, per
// Role, an optional TemplateFunc. A kind a role has no template for is an
// expected configuration state: the service logs it and writes nothing.
//
//	n, err := svc.CreateNotification(ctx, "s1", notifications.KindApplicationApproved, notifications.Data{
//		"userRole":    "student",
//		"companyName": "Acme",
//		"position":    "Backend Intern",
//	})
//	if err != nil {
//		// the approval itself still stands; log and move on
//	}
//	if n == nil {
//		// no template for this role
//	}
//
// # Storage and feed
//
// Storage is the document-store boundary. MemoryStorage serves development
// and tests, MongoStorage production. A Feed only signals that a user's
// record set changed; subscribers re-read storage on every signal, so the
// snapshots they receive are always complete and ordered newest first.
// BroadcastFeed works within one process, RedisFeed across instances.
//
//	svc := notifications.NewService(
//		notifications.NewMongoStorage(db),
//		notifications.NewRedisFeed(rdb, "notifications"),
//		notifications.WithLogger(log),
//	)
//	stop := svc.SubscribeToNotifications(ctx, "s1", func(s notifications.Snapshot) {
//		// s.Notifications or s.Err
//	})
//	defer stop()
//
// # Delivery
//
// A Deliverer mirrors stored notifications elsewhere, for example to an SNS
// topic for mobile push. Delivery is best effort and never fails a create.
package notifications
