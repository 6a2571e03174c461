package notifications

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/internhub/pkg/jwt"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// HTTPError is an error with a status code and a stable machine key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string { return e.Key }

var (
	ErrBadRequest      = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrInvalidQuery    = HTTPError{Code: http.StatusBadRequest, Key: "invalid_query"}
	ErrUnauthorized    = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrNotFound        = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrStreamSupported = HTTPError{Code: http.StatusNotImplemented, Key: "streaming_unsupported"}
	ErrInternal        = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
)

// httpError maps domain errors onto HTTP errors.
func httpError(err error) HTTPError {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, notifications.ErrNotificationNotFound):
		return ErrNotFound
	case errors.Is(err, notifications.ErrMissingUserID),
		errors.Is(err, notifications.ErrInvalidNotification):
		return ErrBadRequest
	case errors.Is(err, jwt.ErrMissingClaims):
		return ErrUnauthorized
	default:
		return ErrInternal
	}
}
