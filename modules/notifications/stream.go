package notifications

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/internhub/pkg/inbox"
	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
	"github.com/dmitrymomot/internhub/pkg/toast"
)

// streamSignals is the Datastar signal payload patched on every change.
type streamSignals struct {
	Notifications []notifications.Notification `json:"notifications"`
	UnreadCount   int                          `json:"unreadCount"`
	Toasts        []toast.Toast                `json:"toasts"`
	Loading       bool                         `json:"loading"`
	Error         string                       `json:"error"`
}

// stream keeps a Datastar SSE connection patched with the caller's inbox.
// Each connection owns an inbox store with its own feed session and a toast
// engine; both end with the request.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		h.fail(w, r, ErrStreamSupported)
		return
	}

	ctx := r.Context()
	log := h.logger.With(logger.Component("notifications_stream"), logger.UserID(id.UserID))

	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	engine := toast.New(slices.Concat(h.toastOpts, []toast.Option{
		toast.WithLogger(log),
		toast.WithOnDismiss(func(notifications.Notification, toast.DismissReason) { signal() }),
	})...)
	defer engine.Close()

	store := inbox.New(h.svc, inbox.WithLogger(log), inbox.WithSession(uuid.NewString()))
	removeListener := store.OnChange(func(inbox.State) { signal() })
	defer removeListener()
	defer store.Stop()

	sse := datastar.NewSSE(w, r)
	if err := store.Start(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	log.LogAttrs(ctx, slog.LevelDebug, "notification stream opened", logger.Role(id.Role))

	for {
		select {
		case <-ctx.Done():
			log.LogAttrs(ctx, slog.LevelDebug, "notification stream closed")
			return
		case <-changed:
		}

		state := store.State()
		engine.Sync(state.ToastQueue)
		// Every queued arrival has now been offered to the engine.
		for _, n := range state.ToastQueue {
			store.RemoveToast(n.ID)
		}

		if err := patch(sse, state, engine.Visible()); err != nil {
			log.LogAttrs(ctx, slog.LevelDebug, "notification stream write failed", logger.Error(err))
			return
		}
		if errors.Is(state.Err, notifications.ErrSubscriptionReplaced) {
			log.LogAttrs(ctx, slog.LevelDebug, "notification stream superseded")
			return
		}
	}
}

func patch(sse *datastar.ServerSentEventGenerator, state inbox.State, toasts []toast.Toast) error {
	sig := streamSignals{
		Notifications: state.Notifications,
		UnreadCount:   state.UnreadCount,
		Toasts:        toasts,
		Loading:       state.Loading,
	}
	if sig.Notifications == nil {
		sig.Notifications = []notifications.Notification{}
	}
	if sig.Toasts == nil {
		sig.Toasts = []toast.Toast{}
	}
	if state.Err != nil {
		sig.Error = state.Err.Error()
	}

	data, err := json.Marshal(sig)
	if err != nil {
		return err
	}
	return sse.PatchSignals(data)
}
