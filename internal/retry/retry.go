package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"askstream/pkg/logger"
)

// Config bounds the retry loop for outbound calls.
type Config struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // doubled after every failed attempt
}

// DefaultConfig is the service-wide policy: three attempts with
// 1s, 2s, ... between them. No jitter.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Second}
}

// HTTPError surfaces an upstream HTTP status to the transient classifier.
// Clients wrap non-2xx responses in this so 5xx can be retried while 4xx
// fails fast.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// transientPatterns matches transport failures that arrive as plain
// errors from net/http with no typed cause to inspect.
var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"timed out",
	"unexpected EOF",
}

// IsTransient reports whether err is worth retrying: an upstream 5xx or a
// connection/timeout failure. Everything else fails fast.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// backoff returns the wait after the given zero-based failed attempt.
func backoff(cfg Config, attempt int) time.Duration {
	return cfg.BaseDelay * (1 << uint(attempt))
}

// Do runs op under cfg. Transient failures are retried after an
// exponential backoff; non-transient failures and budget exhaustion
// propagate the last error unchanged. The delay honors ctx cancellation.
func Do[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}

	log := logger.Named("retry")
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		out, err := op()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := backoff(cfg, attempt)
		log.Debug("transient failure, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
