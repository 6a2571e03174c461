package callable

import "errors"

var (
	ErrCallFailed       = errors.New("callable function call failed")
	ErrPermanentFailure = errors.New("permanent callable failure")
	ErrTemporaryFailure = errors.New("temporary callable failure")
	ErrCircuitOpen      = errors.New("callable circuit breaker is open")
	ErrInvalidFunction  = errors.New("invalid callable function name")
	ErrInvalidResponse  = errors.New("invalid callable response")
	ErrResultSchema     = errors.New("callable result does not match schema")
	ErrMissingBaseURL   = errors.New("callable base URL is required")
)

// FunctionError is the error object a callable function returns in place of a result.
type FunctionError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *FunctionError) Error() string {
	if e.Message == "" {
		return e.Status
	}
	return e.Status + ": " + e.Message
}
