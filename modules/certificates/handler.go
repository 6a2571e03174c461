// Package certificates exposes certificate generation to placement officers
// and admins.
//
//	POST /{applicationId}   body: {studentId, studentName, companyName, position}
//
// The remote generateCertificate function is awaited; the student's
// certificate_generated notification follows in the background.
package certificates

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/internhub/pkg/jwt"
	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
	"github.com/dmitrymomot/internhub/pkg/workflow"
)

// Issuer generates a certificate for an application.
type Issuer interface {
	Issue(ctx context.Context, app workflow.Application) (workflow.CertificateResult, error)
}

// allowedRoles may request certificates.
var allowedRoles = []notifications.Role{notifications.RolePlacement, notifications.RoleAdmin}

type issueRequest struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	CompanyName string `json:"companyName"`
	Position    string `json:"position"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Handler serves certificate requests.
type Handler struct {
	issuer Issuer
	auth   *jwt.Service
	logger *slog.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(issuer Issuer, auth *jwt.Service, l *slog.Logger) *Handler {
	if l == nil {
		l = logger.Discard()
	}
	return &Handler{issuer: issuer, auth: auth, logger: l}
}

// Handle returns the router, ready to be mounted.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Service: h.auth, Logger: h.logger}))
	r.Post("/{applicationId}", h.issue)
	return r
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !slices.Contains(allowedRoles, notifications.Role(claims.Role)) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req issueRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil || req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	res, err := h.issuer.Issue(r.Context(), workflow.Application{
		ID:          chi.URLParam(r, "applicationId"),
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		CompanyName: req.CompanyName,
		Position:    req.Position,
	})
	switch {
	case errors.Is(err, workflow.ErrMissingApplication):
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	case errors.Is(err, workflow.ErrCertificateRejected):
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": res})
		return
	case err != nil:
		h.logger.LogAttrs(r.Context(), slog.LevelError, "certificate request failed",
			logger.Component("certificates_http"),
			logger.UserID(claims.Subject),
			logger.Error(err),
		)
		writeError(w, http.StatusBadGateway, "certificate_unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": res})
}

func writeError(w http.ResponseWriter, status int, code string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = http.StatusText(status)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
