package async

import "errors"

var (
	ErrTimeout   = errors.New("async: timed out waiting for result")
	ErrPanic     = errors.New("async: task panicked")
	ErrNoFutures = errors.New("async: no futures to wait for")
	ErrDraining  = errors.New("async: runner is draining")
)
