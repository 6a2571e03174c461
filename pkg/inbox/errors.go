package inbox

import "errors"

var (
	ErrNotStarted  = errors.New("inbox: no active session")
	ErrNavigation  = errors.New("inbox: navigation failed")
	ErrMissingUser = errors.New("inbox: identity has no user id")
)
