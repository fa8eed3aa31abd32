// Package session represents one client connection: its lifecycle
// state, the principal it is bound to, and a bounded outbound queue
// drained by a dedicated writer goroutine.
//
// Nothing outside the writer touches the connection for output, so a
// stalled peer only ever blocks its own writer.  Producers enqueue
// with Send, which never blocks; a session whose queue overflows is
// aborted.
package session

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "chatd/internal/errors"
	"chatd/util"
)

// ErrOutboxFull is returned by Send when the peer is not keeping up.
// The session has been aborted by the time it is returned.
var ErrOutboxFull = errors.New("outbound queue is full")

// State is the lifecycle of a session.  It only moves forward.
type State uint8

const (
	Unauthenticated State = iota
	Authenticated
	Closed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options tune the outbound side of a session.
type Options struct {
	OutboxSize   int
	WriteTimeout time.Duration
	Logger       *util.Logger
}

// Session is safe for concurrent use.
type Session struct {
	ID     string
	Conn   net.Conn
	Logger *util.Logger

	writeTimeout time.Duration
	outbox       chan string

	mu       sync.Mutex
	state    State
	nickname string

	closeOnce sync.Once
	done      chan struct{} // closed when the session enters Closed
	flushed   chan struct{} // closed when the writer has released Conn
}

// New wraps conn in an unauthenticated session.  The caller must run
// WriteLoop.
func New(conn net.Conn, opts Options) *Session {
	if opts.OutboxSize < 1 {
		opts.OutboxSize = 1
	}
	id := uuid.NewString()
	logger := opts.Logger
	if logger != nil {
		logger = logger.With("session", id[:8]).With("remote", remoteAddr(conn))
	}
	return &Session{
		ID:           id,
		Conn:         conn,
		Logger:       logger,
		writeTimeout: opts.WriteTimeout,
		outbox:       make(chan string, opts.OutboxSize),
		done:         make(chan struct{}),
		flushed:      make(chan struct{}),
	}
}

// ── State ────────────────────────────────────────────────────────────

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Nickname returns the bound principal, if any.
func (s *Session) Nickname() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname, s.state == Authenticated
}

// Authenticate binds the session to nickname.  A session binds at most
// once.
func (s *Session) Authenticate(nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Authenticated:
		return cerrors.ErrAlreadyAuthenticated
	case Closed:
		return cerrors.ErrSessionClosed
	}
	s.state = Authenticated
	s.nickname = nickname
	return nil
}

// Done is closed once the session is closed or aborted.
func (s *Session) Done() <-chan struct{} { return s.done }

// Flushed is closed once the writer has exited and closed Conn.
func (s *Session) Flushed() <-chan struct{} { return s.flushed }

// ── Output ───────────────────────────────────────────────────────────

// Send queues one line for delivery without blocking.  A full queue
// aborts the session and returns ErrOutboxFull.
func (s *Session) Send(line string) error {
	select {
	case <-s.done:
		return cerrors.ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- line:
		return nil
	default:
		s.Logger.Warn("outbound queue full (%d lines), dropping session", cap(s.outbox))
		s.Abort()
		return ErrOutboxFull
	}
}

// WriteLoop delivers queued lines until the session closes.  After a
// graceful Close it flushes whatever is still queued; it always closes
// Conn on exit.
func (s *Session) WriteLoop() {
	defer close(s.flushed)
	defer s.Conn.Close()

	for {
		select {
		case line := <-s.outbox:
			if err := s.write(line); err != nil {
				s.writeFailed(err)
				return
			}
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *Session) drain() {
	for {
		select {
		case line := <-s.outbox:
			if err := s.write(line); err != nil {
				s.writeFailed(err)
				return
			}
		default:
			return
		}
	}
}

func (s *Session) write(line string) error {
	if s.writeTimeout > 0 {
		_ = s.Conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err := io.WriteString(s.Conn, line+"\n")
	return err
}

func (s *Session) writeFailed(err error) {
	if !util.IsHarmless(err) {
		s.Logger.Verbose("write failed: %v", err)
	}
	s.Abort()
}

// ── Shutdown ─────────────────────────────────────────────────────────

// Close moves the session to Closed.  Queued lines are still flushed
// by the writer before Conn is closed.
func (s *Session) Close() { s.shutdown(false) }

// Abort moves the session to Closed and closes Conn at once,
// discarding queued output and unblocking any pending read or write.
func (s *Session) Abort() { s.shutdown(true) }

func (s *Session) shutdown(abort bool) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = Closed
		s.mu.Unlock()

		if abort {
			_ = s.Conn.Close()
		}
		close(s.done)
	})
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
