package transport

import (
	"context"
	"errors"
	"net"
	"time"

	cerrors "chatd/internal/errors"
	"chatd/internal/retry"
	"chatd/util"
)

// TCPDialer dials plain TCP.
type TCPDialer struct {
	Timeout   time.Duration
	KeepAlive time.Duration // 0 uses the net package default
}

// Dial connects to address.  Failures come back as *errors.NetworkError.
func (d *TCPDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, cerrors.Wrap("dial", address, err)
	}
	return conn, nil
}

// RetryDialer retries another Dialer under a backoff policy.  Context
// cancellation ends the loop at once.
type RetryDialer struct {
	Dialer  Dialer
	Backoff *retry.Backoff
	Logger  *util.Logger
}

// Dial keeps dialing until a connection is made or the policy gives up.
func (d *RetryDialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	policy := *d.Backoff
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		d.Logger.Warn("attempt %d: %v; retrying in %s", attempt, err, wait.Round(time.Millisecond))
	}

	var conn net.Conn
	err := policy.Do(ctx, func(int) error {
		c, err := d.Dialer.Dial(ctx, address)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return retry.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}
