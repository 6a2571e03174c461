package callable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 1 << 20

// Client invokes HTTPS callable functions: a POST of {"data": payload} to
// <baseURL>/<name> answered by {"result": ...} or {"error": {...}}.
type Client struct {
	baseURL    string
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    BackoffStrategy
	breaker    *CircuitBreaker
	limiter    *rate.Limiter
	token      TokenSource
	schemas    map[string]*gojsonschema.Schema
	logger     *slog.Logger
}

// New creates a client for the functions under baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{},
		timeout:    30 * time.Second,
		maxRetries: 3,
		backoff:    DefaultBackoff(),
		schemas:    make(map[string]*gojsonschema.Schema),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type request struct {
	Data any `json:"data"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *FunctionError  `json:"error"`
}

// Call invokes function name with payload and decodes its result into out
// (which may be nil). Temporary failures (network errors, 5xx, 408, 425, 429)
// are retried with backoff; anything else fails immediately.
func (c *Client) Call(ctx context.Context, name string, payload, out any) error {
	if name == "" || strings.ContainsAny(name, "/?#") {
		return fmt.Errorf("%w: %q", ErrInvalidFunction, name)
	}

	body, err := json.Marshal(request{Data: payload})
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %w", ErrPermanentFailure, err)
	}

	if c.breaker != nil && !c.breaker.Allow() {
		return ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Join(ErrCallFailed, ctx.Err())
			case <-time.After(c.backoff.NextInterval(attempt)):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return errors.Join(ErrCallFailed, err)
			}
		}

		result, err := c.attempt(ctx, name, body)
		if c.breaker != nil {
			if err == nil || errors.Is(err, ErrPermanentFailure) {
				c.breaker.RecordSuccess()
			} else {
				c.breaker.RecordFailure()
			}
		}
		if err == nil {
			return c.decode(name, result, out)
		}

		lastErr = err
		if errors.Is(err, ErrPermanentFailure) {
			return errors.Join(ErrCallFailed, err)
		}
		c.logger.LogAttrs(ctx, slog.LevelWarn, "callable function attempt failed",
			logger.Component("callable"),
			slog.String("function", name),
			logger.RetryCount(attempt),
			logger.Error(err),
		)
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrCallFailed, c.maxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, name string, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermanentFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		tok, err := c.token(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: token: %w", ErrPermanentFailure, err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTemporaryFailure, err)
	}

	var decoded response
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var cause error = fmt.Errorf("status %d", resp.StatusCode)
		if decoded.Error != nil {
			cause = fmt.Errorf("status %d: %w", resp.StatusCode, decoded.Error)
		}
		if isTemporaryStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: %w", ErrTemporaryFailure, cause)
		}
		return nil, fmt.Errorf("%w: %w", ErrPermanentFailure, cause)
	}

	if decoded.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermanentFailure, decoded.Error)
	}
	if decoded.Result == nil {
		return nil, fmt.Errorf("%w: %w: missing result", ErrPermanentFailure, ErrInvalidResponse)
	}
	return decoded.Result, nil
}

func (c *Client) decode(name string, result json.RawMessage, out any) error {
	if s, ok := c.schemas[name]; ok {
		res, err := s.Validate(gojsonschema.NewBytesLoader(result))
		if err != nil {
			return errors.Join(ErrInvalidResponse, err)
		}
		if !res.Valid() {
			msgs := make([]string, len(res.Errors()))
			for i, desc := range res.Errors() {
				msgs[i] = desc.String()
			}
			return fmt.Errorf("%w: %s", ErrResultSchema, strings.Join(msgs, "; "))
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return errors.Join(ErrInvalidResponse, err)
	}
	return nil
}

// isTemporaryStatus reports whether a non-2xx status is worth retrying.
func isTemporaryStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}
