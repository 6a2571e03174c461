package toast

import "errors"

var (
	ErrNoAudioSink   = errors.New("no audio sink configured")
	ErrPlayerPanic   = errors.New("audio player panicked")
	ErrEngineClosed  = errors.New("toast engine closed")
	ErrToastNotFound = errors.New("toast not visible")
)
