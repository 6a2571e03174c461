// Package inbox holds the notification state of one signed-in session.
//
// A Store subscribes to the user's live feed, keeps the notification list,
// the unread count and a queue of fresh arrivals for toasts, and applies
// read-state changes optimistically before the remote write completes. What
// happens when that write fails is decided by a Reconciler: KeepOptimistic
// (the default) logs and keeps the local state, Rollback restores it.
//
//	store := inbox.New(svc, inbox.WithNavigator(nav))
//	if err := store.Start(ctx, inbox.Identity{UserID: "s1", Role: notifications.RoleStudent}); err != nil {
//		return err
//	}
//	defer store.Stop()
//
//	stop := store.OnChange(func(st inbox.State) {
//		engine.Sync(st.ToastQueue)
//	})
//	defer stop()
package inbox
