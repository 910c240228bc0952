package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/forgebatch/internal/config"
	"github.com/phrazzld/forgebatch/internal/generation"
	"github.com/phrazzld/forgebatch/internal/redact"
)

// maxErrorBody caps how much of an error response is kept in a StatusError.
const maxErrorBody = 4096

// Client talks to one Forge WebUI server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewClient creates a Client for the server described by cfg.
func NewClient(cfg config.WebUIConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, redact.URL(cfg.URL))
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		logger.Warn("Invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries: maxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		logger:     logger.With("component", "webui_client"),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// postJSON sends in as the JSON body and decodes the response into out, if out
// is not nil. Only idempotent posts are retried once the request has gone out.
func (c *Client) postJSON(ctx context.Context, path string, in, out any, idempotent bool) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, body, out, idempotent)
}

// do sends the request with exponential backoff retry logic.
//
// Transport errors, 429 and 5xx responses are transient and retried up to
// maxRetries times. Any other non-2xx response is returned at once as a
// *StatusError. Retries that run out wrap generation.ErrTransientFailure.
//
// A request that is not idempotent is retried only when it never reached the
// server; a txt2img that timed out may still be rendering.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any, idempotent bool) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attemptNum := attempt + 1
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.logger.InfoContext(ctx, "Retrying WebUI request after delay",
				"method", method,
				"path", path,
				"attempt", attemptNum,
				"delay", delay.String())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %s %s cancelled during retry delay: %w",
					generation.ErrTransientFailure, method, path, ctx.Err())
			}
		}

		transient, err := c.attempt(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !transient {
			return err
		}
		if !idempotent && !notSent(err) {
			return fmt.Errorf("%w: %s %s is not retried once sent: %w",
				generation.ErrTransientFailure, method, path, err)
		}

		c.logger.WarnContext(ctx, "WebUI request failed",
			"method", method,
			"path", path,
			"attempt", attemptNum,
			"max_attempts", c.maxRetries+1,
			"error", redact.Error(err))
	}

	return fmt.Errorf("%w: %s %s failed after %d attempts: %w",
		generation.ErrTransientFailure, method, path, c.maxRetries+1, lastErr)
}

// attempt performs a single round trip. The boolean reports whether a failure
// is worth retrying.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled caller is not retried
		if ctx.Err() != nil {
			return false, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		return true, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return transient, statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s %s response: %w",
			generation.ErrInvalidResponse, method, path, err)
	}
	return false, nil
}

// notSent reports whether err happened while connecting, before any of the
// request reached the server.
func notSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// backoff returns baseDelay * 2^retry * jitter, with jitter in [0.5, 1.0).
func (c *Client) backoff(retry int) time.Duration {
	c.rngMu.Lock()
	jitterFactor := 0.5 + c.rng.Float64()*0.5
	c.rngMu.Unlock()

	backoff := float64(c.retryDelay) * math.Pow(2, float64(retry))
	return time.Duration(backoff * jitterFactor)
}
