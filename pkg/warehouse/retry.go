package warehouse

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Transport retry tuning (spec §4.1): up to 3 retries with exponential
// backoff, base 250ms, capped at 2s. Mirrors tarsy's
// pkg/events/listener.go reconnect loop; authentication failures are
// never retried.
const (
	maxTransportRetries = 3
	retryBackoffBase    = 250 * time.Millisecond
	retryBackoffCap     = 2 * time.Second
)

// withRetry runs fn, retrying up to maxTransportRetries times with
// exponential backoff when fn fails with a transient transport error.
// Authentication failures and context cancellation/deadline errors are
// returned immediately without retrying.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	backoff := retryBackoffBase

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !isRetryableTransportError(err) || attempt >= maxTransportRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, retryBackoffCap)
	}
}

// isRetryableTransportError reports whether err looks like a transient
// connection-level failure worth retrying, as opposed to an
// authentication failure, a permission error, or a query-shape error
// the warehouse rejected outright.
func isRetryableTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Postgres returned a structured error: it reached the server,
		// so this is never a transport failure. Auth/permission classes
		// (28000 invalid_authorization_specification, 28P01
		// invalid_password, 42501 insufficient_privilege) are explicitly
		// non-retryable; everything else here is a query-shape error the
		// caller's retry edges (not this one) are responsible for.
		return false
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return !netErr.Timeout()
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "broken pipe", "connection closed", "no such host"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
