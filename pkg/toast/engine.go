package toast

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// Toast is a notification currently on screen.
type Toast struct {
	notifications.Notification
	ShowTime time.Time `json:"showTime"`
	Progress float64   `json:"progress"` // remaining display time, 100 down to 0
}

// DismissReason says why a toast left the screen.
type DismissReason string

const (
	ReasonExpired   DismissReason = "expired"
	ReasonDismissed DismissReason = "dismissed"
	ReasonClicked   DismissReason = "clicked"
)

// DismissFunc is called once per toast when it leaves the screen.
type DismissFunc func(n notifications.Notification, reason DismissReason)

type entry struct {
	toast Toast
	timer Timer
}

// Engine projects unread notifications into a bounded set of timed toasts.
//
// Each visible toast has its own timer; dismissing one never affects another.
// A notification is toasted at most once per engine, so a toast that expired
// is not shown again while its notification stays unread. Notifications that
// arrive while the screen is full are dropped, not queued.
type Engine struct {
	maxToasts    int
	duration     time.Duration
	player       Player
	soundEnabled bool
	onDismiss    DismissFunc
	logger       *slog.Logger
	scheduler    Scheduler
	now          func() time.Time

	mu      sync.Mutex
	visible []*entry
	shown   map[string]struct{}
	closed  bool
}

// New creates a toast engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxToasts:    DefaultMaxToasts,
		duration:     DefaultDuration,
		player:       NopPlayer{},
		soundEnabled: true,
		logger:       slog.Default(),
		scheduler:    realScheduler{},
		now:          time.Now,
		shown:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync admits new unread notifications as toasts, oldest first, up to the
// free capacity. list may be in any order; it is ordered by timestamp here.
// It returns the admitted toasts.
func (e *Engine) Sync(list []notifications.Notification) []Toast {
	e.mu.Lock()
	if e.closed || e.maxToasts <= 0 {
		e.mu.Unlock()
		return nil
	}

	candidates := make([]notifications.Notification, 0, len(list))
	for _, n := range list {
		if n.Read {
			continue
		}
		if _, seen := e.shown[n.ID]; seen {
			continue
		}
		if e.indexOf(n.ID) >= 0 {
			continue
		}
		candidates = append(candidates, n)
	}
	slices.SortStableFunc(candidates, func(a, b notifications.Notification) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	free := max(e.maxToasts-len(e.visible), 0)
	admitted := make([]Toast, 0, min(free, len(candidates)))
	now := e.now()
	for i, n := range candidates {
		e.shown[n.ID] = struct{}{}
		if i >= free {
			continue
		}
		ent := &entry{toast: Toast{Notification: n.Clone(), ShowTime: now, Progress: 100}}
		id := n.ID
		ent.timer = e.scheduler.AfterFunc(e.duration, func() { e.expire(id, ent) })
		e.visible = append(e.visible, ent)
		admitted = append(admitted, ent.toast)
	}
	dropped := len(candidates) - len(admitted)
	play := e.soundEnabled
	e.mu.Unlock()

	if dropped > 0 {
		e.logger.LogAttrs(context.Background(), slog.LevelDebug, "toast capacity reached, notifications not toasted",
			logger.Component("toast"),
			logger.Count(dropped),
		)
	}
	if play {
		for _, t := range admitted {
			e.play(t.SoundType)
		}
	}
	return admitted
}

// Dismiss closes a toast on explicit user request.
func (e *Engine) Dismiss(id string) error {
	return e.remove(id, ReasonDismissed)
}

// Click closes a toast because the user acted on it.
func (e *Engine) Click(id string) error {
	return e.remove(id, ReasonClicked)
}

// Visible returns the toasts on screen, oldest first, with current progress.
func (e *Engine) Visible() []Toast {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	out := make([]Toast, len(e.visible))
	for i, ent := range e.visible {
		t := ent.toast
		t.Progress = e.progress(t.ShowTime, now)
		out[i] = t
	}
	return out
}

// Len returns the number of visible toasts.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.visible)
}

// Close stops every pending timer and clears the screen without calling OnDismiss.
// Sync is a no-op afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ent := range e.visible {
		ent.timer.Stop()
	}
	e.visible = nil
	e.closed = true
}

func (e *Engine) remove(id string, reason DismissReason) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	i := e.indexOf(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrToastNotFound, id)
	}
	ent := e.visible[i]
	ent.timer.Stop()
	e.visible = slices.Delete(e.visible, i, i+1)
	e.mu.Unlock()

	e.dismissed(ent.toast.Notification, reason)
	return nil
}

// expire runs on the toast's timer. ent guards against a timer that fired
// after the toast was already removed.
func (e *Engine) expire(id string, ent *entry) {
	e.mu.Lock()
	i := e.indexOf(id)
	if e.closed || i < 0 || e.visible[i] != ent {
		e.mu.Unlock()
		return
	}
	e.visible = slices.Delete(e.visible, i, i+1)
	e.mu.Unlock()

	e.dismissed(ent.toast.Notification, ReasonExpired)
}

func (e *Engine) dismissed(n notifications.Notification, reason DismissReason) {
	if e.onDismiss != nil {
		e.onDismiss(n, reason)
	}
}

func (e *Engine) indexOf(id string) int {
	return slices.IndexFunc(e.visible, func(ent *entry) bool { return ent.toast.ID == id })
}

func (e *Engine) progress(shown, now time.Time) float64 {
	if e.duration <= 0 {
		return 0
	}
	left := 1 - float64(now.Sub(shown))/float64(e.duration)
	return min(max(left*100, 0), 100)
}

// play runs the audio cue, swallowing errors and panics.
func (e *Engine) play(sound notifications.Sound) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.LogAttrs(context.Background(), slog.LevelWarn, "audio cue failed",
				logger.Component("toast"),
				logger.Error(fmt.Errorf("%w: %v", ErrPlayerPanic, r)),
			)
		}
	}()

	if err := e.player.Play(sound); err != nil {
		e.logger.LogAttrs(context.Background(), slog.LevelWarn, "audio cue failed",
			logger.Component("toast"),
			slog.String("sound", string(sound)),
			logger.Error(err),
		)
	}
}
