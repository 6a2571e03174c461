// Package broadcast provides type-safe, non-blocking fan-out.
//
// MemoryBroadcaster delivers each message to every subscriber whose buffer
// has room; a full buffer means that subscriber misses the message but stays
// subscribed. That makes it a good carrier for "something changed" signals,
// where one pending signal is as good as many.
//
// Topics multiplexes broadcasters by key (for example a user id):
//
//	topics := broadcast.NewTopics[struct{}](1)
//	defer topics.Close()
//
//	sub := topics.Subscribe(ctx, "s1")
//	defer sub.Close()
//
//	_ = topics.Publish(ctx, "s1", broadcast.Message[struct{}]{})
//	<-sub.Receive()
//
// Subscriptions end when their context is cancelled, when Close is called on
// the subscriber, or when the owning broadcaster is closed.
package broadcast
