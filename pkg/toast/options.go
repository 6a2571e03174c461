package toast

import (
	"log/slog"
	"time"
)

const (
	DefaultMaxToasts = 3
	DefaultDuration  = 5 * time.Second
)

// Config holds the toast settings loaded from the environment.
type Config struct {
	MaxToasts    int           `env:"TOAST_MAX" envDefault:"3"`
	Duration     time.Duration `env:"TOAST_DURATION" envDefault:"5s"`
	SoundEnabled bool          `env:"TOAST_SOUND" envDefault:"true"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig applies cfg.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		WithMaxToasts(cfg.MaxToasts)(e)
		WithDuration(cfg.Duration)(e)
		e.soundEnabled = cfg.SoundEnabled
	}
}

// WithMaxToasts bounds the number of toasts on screen. 0 disables toasts.
func WithMaxToasts(n int) Option {
	return func(e *Engine) {
		e.maxToasts = max(n, 0)
	}
}

// WithDuration sets how long a toast stays on screen.
func WithDuration(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.duration = d
		}
	}
}

// WithPlayer sets the audio player for toast cues.
func WithPlayer(p Player) Option {
	return func(e *Engine) {
		if p != nil {
			e.player = p
		}
	}
}

// WithSoundEnabled turns audio cues on or off.
func WithSoundEnabled(enabled bool) Option {
	return func(e *Engine) {
		e.soundEnabled = enabled
	}
}

// WithOnDismiss registers the callback run when a toast leaves the screen.
func WithOnDismiss(fn DismissFunc) Option {
	return func(e *Engine) {
		e.onDismiss = fn
	}
}

// WithLogger sets the logger for the Engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithClock overrides the clock used for ShowTime and Progress.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
