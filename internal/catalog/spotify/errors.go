package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"soundmatch/internal/resolve"
)

const source = "spotify"

// classify maps transport and API failures onto the resolve error taxonomy.
// Throttling and server errors become *resolve.UnavailableError carrying any
// Retry-After hint, as do timeouts and network faults. Everything else is
// wrapped as is.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		return fmt.Errorf("spotify %s: token request failed: %w", op, err)
	}
	var refused *statusError
	if errors.As(err, &refused) {
		return &resolve.UnavailableError{Source: source, RetryAfter: refused.retryAfter, Cause: fmt.Errorf("%s: %w", op, err)}
	}
	if status, ok := apiStatus(err); ok {
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return &resolve.UnavailableError{Source: source, Cause: fmt.Errorf("%s: %w", op, err)}
		}
		return fmt.Errorf("spotify %s: %w", op, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &resolve.UnavailableError{Source: source, Cause: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("spotify %s: %w", op, err)
}

func apiStatus(err error) (int, bool) {
	var value spotifyapi.Error
	if errors.As(err, &value) {
		return value.Status, true
	}
	var ptr *spotifyapi.Error
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Status, true
	}
	return 0, false
}

// statusError is a throttled or failing API response, caught before the API
// client decodes the body so the Retry-After hint survives.
type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.status, http.StatusText(e.status))
}

// refusalTransport turns 429 and 5xx responses into *statusError.
type refusalTransport struct {
	base http.RoundTripper
	now  func() time.Time
}

func (t refusalTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < http.StatusInternalServerError {
		return resp, nil
	}
	_ = resp.Body.Close()
	return nil, &statusError{
		status:     resp.StatusCode,
		retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), t.now()),
	}
}

// parseRetryAfter reads delay-seconds or an HTTP date; anything else is 0.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(max(seconds, 0)) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now).Round(time.Second)
	}
	return 0
}
