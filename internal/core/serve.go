package core

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	cerrors "chatd/internal/errors"
	"chatd/internal/metrics"
	"chatd/util"
)

// Handler serves accepted connections.  *broker.Broker implements it.
// ServeMode ends connections through Close, not by cancelling the
// context passed to Serve, so Close can still reach every peer.
type Handler interface {
	Serve(ctx context.Context, conn net.Conn) error
	Close()
}

// ServeMode accepts TCP connections and hands each one to Handler on
// its own goroutine.
type ServeMode struct {
	Address     string
	Handler     Handler
	GracePeriod time.Duration
	Logger      *util.Logger
	Metrics     *metrics.Collector

	// OnListen, when set, is called with the bound address.
	OnListen func(net.Addr)
}

// Run listens until ctx is cancelled.  Failing to bind is the only
// error it returns; it is a *errors.NetworkError with Op "listen".
func (m *ServeMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return cerrors.Wrap("listen", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("listening on %s", ln.Addr())
	m.notify(daemon.SdNotifyReady)
	if m.OnListen != nil {
		m.OnListen(ln.Addr())
	}

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	connCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			m.Logger.Warn("accept: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		m.Logger.Debug("accepted %s", conn.RemoteAddr())
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Handler.Serve(connCtx, conn); err != nil {
				m.Logger.Verbose("connection from %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}

	m.notify(daemon.SdNotifyStopping)
	m.Logger.Info("shutting down")
	m.Handler.Close()
	m.drain(&wg)
	m.Logger.Verbose("metrics: %s", m.Metrics.JSON())
	return nil
}

// drain waits up to GracePeriod for connection goroutines to finish.
func (m *ServeMode) drain(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	if m.GracePeriod <= 0 {
		<-done
		return
	}
	tmr := time.NewTimer(m.GracePeriod)
	defer tmr.Stop()
	select {
	case <-done:
	case <-tmr.C:
		m.Logger.Warn("%d connections still open after %s", m.Metrics.ActiveConnections(), m.GracePeriod)
	}
}

// notify reports state to systemd when running under it.
func (m *ServeMode) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		m.Logger.Warn("sd_notify %s: %v", state, err)
	case sent:
		m.Logger.Debug("sd_notify %s", state)
	}
}
