package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	shutdownHooks   []ShutdownHook
	listener        net.Listener
}

// ShutdownHook releases a dependency once the server stops accepting
// requests. Hooks run in registration order.
type ShutdownHook struct {
	Name string
	Fn   func(context.Context) error
}

func defaultConfig() *config {
	return &config{
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
		logger:          logger.Discard(),
	}
}

// Server runs an http.Server until its context ends or the process receives
// SIGINT/SIGTERM, then drains it.
//
// Request contexts derive from a base context that is canceled when shutdown
// begins, so long-lived streams return instead of holding the drain open.
type Server struct {
	cfg *config

	mu      sync.Mutex
	srv     *http.Server
	stopped chan struct{}
	cancel  context.CancelFunc
	once    sync.Once
	err     error
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{cfg: cfg, stopped: make(chan struct{})}
}

// Run serves handler and blocks until shutdown has completed.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}

	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	srv := &http.Server{
		Addr:         s.cfg.addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.readTimeout,
		WriteTimeout: s.cfg.writeTimeout,
		IdleTimeout:  s.cfg.idleTimeout,
		ErrorLog:     slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	s.srv = srv
	s.cancel = cancel
	s.mu.Unlock()

	ln := s.cfg.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", srv.Addr); err != nil {
			cancel()
			return errors.Join(ErrStart, err)
		}
	}

	s.cfg.logger.LogAttrs(ctx, slog.LevelInfo, "http server started",
		logger.Component("httpserver"),
		slog.String("addr", ln.Addr().String()),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var serveErr error
	select {
	case <-ctx.Done():
	case sig := <-stop:
		s.cfg.logger.LogAttrs(ctx, slog.LevelInfo, "shutdown signal received",
			logger.Component("httpserver"),
			slog.String("signal", sig.String()),
		)
	case <-s.stopped:
	case serveErr = <-errCh:
	}

	shutdownErr := s.Shutdown(context.WithoutCancel(ctx))
	if serveErr == nil {
		serveErr = <-errCh
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, serveErr)
	}
	return shutdownErr
}

// Shutdown drains the server and then runs the shutdown hooks. It is safe to
// call more than once; later calls return the first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, cancelBase := s.srv, s.cancel
	s.mu.Unlock()

	s.once.Do(func() {
		defer close(s.stopped)

		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		var errs []error
		if srv != nil {
			cancelBase()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}

		for _, h := range s.cfg.shutdownHooks {
			if err := h.Fn(ctx); err != nil {
				s.cfg.logger.LogAttrs(ctx, slog.LevelError, "shutdown hook failed",
					logger.Component("httpserver"),
					slog.String("hook", h.Name),
					logger.Error(err),
				)
				errs = append(errs, err)
			}
		}

		if len(errs) > 0 {
			s.err = errors.Join(ErrShutdown, errors.Join(errs...))
		}
		s.cfg.logger.LogAttrs(ctx, slog.LevelInfo, "http server stopped", logger.Component("httpserver"))
	})

	return s.err
}
