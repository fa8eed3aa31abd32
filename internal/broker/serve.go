package broker

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"

	"golang.org/x/time/rate"

	"chatd/internal/protocol"
	"chatd/internal/session"
	"chatd/util"
)

// Serve runs one connection until the peer disconnects, the session is
// dropped or ctx is cancelled.  Commands from the connection are
// handled strictly in arrival order.  Serve owns conn and closes it.
func (b *Broker) Serve(ctx context.Context, conn net.Conn) error {
	s := session.New(conn, session.Options{
		OutboxSize:   b.opts.OutboxSize,
		WriteTimeout: b.opts.WriteTimeout,
		Logger:       b.log,
	})
	if !b.admit(s) {
		_ = conn.Close()
		return ErrClosed
	}
	b.metrics.ConnectionOpened()
	s.Logger.Verbose("connected")

	go s.WriteLoop()
	defer func() {
		b.retire(s)
		<-s.Flushed()
		s.Logger.Verbose("disconnected")
	}()

	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	b.deliver(s, protocol.Greeting)
	limiter := b.newLimiter()

	sc := util.NewLineScanner(conn, b.opts.MaxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		if !b.dispatch(s, line) {
			return nil
		}
		if s.State() == session.Closed {
			return nil
		}
	}

	err := sc.Err()
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		s.Logger.Warn("request longer than %d bytes, closing", b.opts.MaxLineBytes)
	case !util.IsHarmless(err):
		s.Logger.Verbose("read failed: %v", err)
	}
	return nil
}

// newLimiter returns the per-session command limiter, or nil when
// rate limiting is off.
func (b *Broker) newLimiter() *rate.Limiter {
	if b.opts.CommandRate <= 0 {
		return nil
	}
	burst := b.opts.CommandBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(b.opts.CommandRate), burst)
}
