// Package mongo provides MongoDB connection management for the notification
// store: environment-driven configuration, connect with retry, and a health
// check suitable for readiness probes.
//
//	cfg := config.MustLoad[mongo.Config]()
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	storage := notifications.NewMongoStorage(db)
//
// Connection failures wrap ErrConnect and failed probes wrap ErrUnhealthy.
package mongo
