// Package feed fetches loosely-typed listing records from a remote listings API.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_mapping/internal/adapters/observability"
)

const service = "listing_feed"

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps float64) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("feed base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// GetListings tries the known collection endpoints in order and returns the first that exists.
// The body may be a bare array or an object wrapping one under "hotels", "listings" or "data".
func (c *Client) GetListings(ctx context.Context) ([]map[string]any, error) {
	raw, err := c.fetch(ctx, "/hotels", "/listings")
	if err != nil {
		return nil, err
	}
	return decodeListings(raw)
}

func decodeListings(raw json.RawMessage) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []map[string]any{}, nil
	}
	if raw[0] == '[' {
		var out []map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode listings: %w", err)
		}
		return out, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	for _, k := range []string{"hotels", "listings", "data"} {
		if inner, ok := env[k]; ok {
			return decodeListings(inner)
		}
	}
	return nil, ErrUnexpectedShape
}

// ---- Internals ----

var (
	ErrNotFound        = errors.New("feed: not found")
	ErrUnauthorized    = errors.New("feed: unauthorized")
	ErrForbidden       = errors.New("feed: forbidden")
	ErrUnexpectedShape = errors.New("feed: response holds no listing array")
)

const maxAttempts = 4

// transientError marks a failed attempt that is worth repeating after wait.
type transientError struct {
	err  error
	wait time.Duration
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// fetch returns the body of the first endpoint that exists. Only ErrNotFound moves on to the next one.
func (c *Client) fetch(ctx context.Context, paths ...string) (json.RawMessage, error) {
	err := ErrNotFound
	for _, p := range paths {
		var body json.RawMessage
		body, err = c.get(ctx, p)
		if !errors.Is(err, ErrNotFound) {
			return body, err
		}
	}
	return nil, err
}

// get repeats attempt while it reports a transient failure, up to maxAttempts.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	for i := 0; ; i++ {
		body, err := c.attempt(ctx, path, i)
		var te *transientError
		if !errors.As(err, &te) || i == maxAttempts-1 {
			return body, err
		}
		if !sleepCtx(ctx, te.wait) {
			return nil, ctx.Err()
		}
	}
}

// attempt performs one rate-limited GET. 429 and 5xx gateway errors come back as transientError,
// with Retry-After taking precedence over the jittered backoff.
func (c *Client) attempt(ctx context.Context, path string, i int) (json.RawMessage, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-mapping-importer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, path, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &transientError{err: err, wait: backoff(i)}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, path, resp.StatusCode, time.Since(start))

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read listings: %w", err)
		}
		return body, nil
	case code == http.StatusNoContent:
		return nil, nil
	case code == http.StatusNotFound:
		return nil, ErrNotFound
	case code == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case code == http.StatusForbidden:
		return nil, ErrForbidden
	case code == http.StatusTooManyRequests || code == http.StatusInternalServerError ||
		code == http.StatusBadGateway || code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout:
		wait, ok := retryAfter(resp.Header.Get("Retry-After"))
		if !ok {
			wait = backoff(i)
		}
		return nil, &transientError{err: fmt.Errorf("feed: remote status %d", code), wait: wait}
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("feed: status %d: %s", code, strings.TrimSpace(string(snippet)))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter reads a Retry-After value in delay-seconds or HTTP-date form.
func retryAfter(h string) (time.Duration, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(h); err == nil {
		return max(time.Until(at), 0), true
	}
	return 0, false
}

// backoff is 200ms doubled per attempt, plus up to half of that again as jitter.
func backoff(i int) time.Duration {
	base := (200 * time.Millisecond) << i
	return base + rand.N(base/2+1)
}
