package callable

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"
)

// Config holds the callable client settings loaded from the environment.
type Config struct {
	BaseURL    string        `env:"CALLABLE_BASE_URL"`
	Timeout    time.Duration `env:"CALLABLE_TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"CALLABLE_MAX_RETRIES" envDefault:"3"`
	RateLimit  float64       `env:"CALLABLE_RATE_LIMIT" envDefault:"10"` // calls per second, 0 = unlimited
	RateBurst  int           `env:"CALLABLE_RATE_BURST" envDefault:"5"`
	Token      string        `env:"CALLABLE_TOKEN"` // static bearer token, e.g. a service account ID token
}

// TokenSource returns the bearer token sent with each call, e.g. the caller's ID token.
type TokenSource func(ctx context.Context) (string, error)

// Option configures a Client.
type Option func(*Client)

// WithConfig applies cfg.
func WithConfig(cfg Config) Option {
	return func(c *Client) {
		WithTimeout(cfg.Timeout)(c)
		WithMaxRetries(cfg.MaxRetries)(c)
		WithRateLimit(cfg.RateLimit, cfg.RateBurst)(c)
		if cfg.Token != "" {
			token := cfg.Token
			WithTokenSource(func(context.Context) (string, error) { return token, nil })(c)
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRetries sets how often a temporary failure is retried. 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the retry delay strategy.
func WithBackoff(b BackoffStrategy) Option {
	return func(c *Client) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithCircuitBreaker guards every function behind cb.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithRateLimit caps outgoing attempts at perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithTokenSource authenticates calls with a bearer token.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// WithResultSchema validates the result of function name against a JSON schema
// before it is decoded. It panics on an invalid schema.
func WithResultSchema(name, schema string) Option {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic("callable: invalid result schema for " + name + ": " + err.Error())
	}
	return func(c *Client) {
		c.schemas[name] = s
	}
}

// WithLogger sets the logger for the Client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
