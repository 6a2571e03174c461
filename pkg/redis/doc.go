// Package redis connects to Redis for the multi-instance notification feed.
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	feed := notifications.NewRedisFeed(client, cfg.ChannelPrefix)
//
// Healthcheck returns a probe function for readiness endpoints.
package redis
