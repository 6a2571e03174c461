package notifications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/internhub/pkg/inbox"
	"github.com/dmitrymomot/internhub/pkg/jwt"
	"github.com/dmitrymomot/internhub/pkg/notifications"
	"github.com/dmitrymomot/internhub/pkg/toast"
)

// Service is the notification service as seen by the HTTP surface.
type Service interface {
	inbox.Service
	Get(ctx context.Context, notifID string) (*notifications.Notification, error)
	List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, error)
	GetNotificationStats(ctx context.Context, userID string) (notifications.Stats, error)
}

// Handler serves a signed-in user's notifications.
type Handler struct {
	svc       Service
	auth      *jwt.Service
	toastOpts []toast.Option
	logger    *slog.Logger
	fallback  notifications.Role
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithToastOptions configures the per-stream toast engine.
func WithToastOptions(opts ...toast.Option) Option {
	return func(h *Handler) {
		h.toastOpts = append(h.toastOpts, opts...)
	}
}

// WithFallbackRole sets the role used when a token carries none.
func WithFallbackRole(r notifications.Role) Option {
	return func(h *Handler) {
		if r != "" {
			h.fallback = r
		}
	}
}

// NewHandler creates a Handler. auth verifies the caller's token.
func NewHandler(svc Service, auth *jwt.Service, opts ...Option) *Handler {
	h := &Handler{
		svc:      svc,
		auth:     auth,
		logger:   slog.Default(),
		fallback: notifications.DefaultRole,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the router, ready to be mounted:
//
//	r.Mount("/notifications", notifications.NewHandler(svc, auth).Handle())
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
		Service:   h.auth,
		Extractor: jwt.FirstOf(jwt.BearerTokenExtractor, jwt.QueryTokenExtractor("token")),
		Logger:    h.logger,
	}))

	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/stream", h.stream)
	r.Post("/read-all", h.markAllRead)
	r.Post("/{id}/read", h.markRead)
	return r
}

// identity returns the caller established by the auth middleware.
func (h *Handler) identity(r *http.Request) (inbox.Identity, error) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok {
		return inbox.Identity{}, jwt.ErrMissingClaims
	}
	role := notifications.Role(claims.Role)
	if role == "" {
		role = h.fallback
	}
	return inbox.Identity{UserID: claims.Subject, Role: role}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	opts, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.svc.List(r.Context(), id.UserID, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if list == nil {
		list = []notifications.Notification{}
	}
	h.respond(w, list, map[string]any{"count": len(list), "limit": opts.Limit})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.svc.GetNotificationStats(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, stats, nil)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	notifID := chi.URLParam(r, "id")

	n, err := h.svc.Get(r.Context(), notifID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Someone else's notification is reported as missing.
	if n.UserID != id.UserID {
		h.fail(w, r, ErrNotFound)
		return
	}

	if err := h.svc.MarkAsRead(r.Context(), notifID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, map[string]any{"id": notifID, "read": true}, nil)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	n, err := h.svc.MarkAllAsRead(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, map[string]any{"updated": n}, nil)
}
