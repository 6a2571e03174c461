// Package toast turns unread notifications into short-lived on-screen toasts.
//
// An Engine admits new unread notifications up to a maximum, plays an audio
// cue for each, and removes each toast after a fixed duration unless the user
// dismisses or clicks it first. Toasts are a view: dropping or expiring one
// never changes the underlying notification.
//
//	e := toast.New(
//		toast.WithMaxToasts(3),
//		toast.WithDuration(5*time.Second),
//		toast.WithPlayer(toast.NewSynthPlayer(sink, 0)),
//		toast.WithOnDismiss(func(n notifications.Notification, r toast.DismissReason) {
//			store.RemoveToast(n.ID)
//		}),
//	)
//	defer e.Close()
//	e.Sync(state.ToastQueue)
package toast
