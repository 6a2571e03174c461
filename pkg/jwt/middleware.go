package jwt

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// TokenExtractorFunc pulls a raw token out of a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Service   *Service
	Extractor TokenExtractorFunc
	Logger    *slog.Logger
}

// Middleware rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func Middleware(service *Service) func(http.Handler) http.Handler {
	return MiddlewareWithConfig(MiddlewareConfig{Service: service})
}

// MiddlewareWithConfig is Middleware with a custom extractor and logger.
func MiddlewareWithConfig(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Extractor == nil {
		cfg.Extractor = BearerTokenExtractor
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.Extractor(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := cfg.Service.Parse(token)
			if err != nil {
				cfg.Logger.LogAttrs(r.Context(), slog.LevelDebug, "rejected token",
					logger.Component("jwt"),
					logger.Error(err),
				)
				msg := ErrInvalidToken.Error()
				if errors.Is(err, ErrExpiredToken) {
					msg = ErrExpiredToken.Error()
				}
				http.Error(w, msg, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// QueryTokenExtractor reads the token from a query parameter. EventSource
// clients cannot set headers, so the stream endpoint accepts this form.
func QueryTokenExtractor(param string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		if token := r.URL.Query().Get(param); token != "" {
			return token, nil
		}
		return "", ErrMissingToken
	}
}

// FirstOf tries extractors in order and returns the first token found.
func FirstOf(extractors ...TokenExtractorFunc) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		for _, ex := range extractors {
			if token, err := ex(r); err == nil {
				return token, nil
			}
		}
		return "", ErrMissingToken
	}
}
