// Package errors provides the error types shared across chatd.
//
// Command failures are represented by *ChatError values carrying a
// Kind.  They are recoverable, reported to the originating session
// only, and never unwind past the session boundary.  Network and
// configuration failures keep structured context (operation, address,
// flag name) so callers can log or print something actionable.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Command error kinds ──────────────────────────────────────────────

// Kind classifies a per-command failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	WrongCommandFormat
	AlreadyExists
	InvalidCredentials
	UnknownDataProtocol
	NotAuthenticated
	AlreadyAuthenticated
	Banned
	UnknownUser
	AlreadyBanned
	UnknownCommand
)

var kindNames = [...]string{
	KindUnknown:          "Internal",
	WrongCommandFormat:   "WrongCommandFormat",
	AlreadyExists:        "AlreadyExists",
	InvalidCredentials:   "InvalidCredentials",
	UnknownDataProtocol:  "UnknownDataProtocol",
	NotAuthenticated:     "NotAuthenticated",
	AlreadyAuthenticated: "AlreadyAuthenticated",
	Banned:               "Banned",
	UnknownUser:          "UnknownUser",
	AlreadyBanned:        "AlreadyBanned",
	UnknownCommand:       "UnknownCommand",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ChatError is a recoverable command failure.
type ChatError struct {
	Kind Kind
	Msg  string
}

func (e *ChatError) Error() string { return e.Msg }

// Is matches any ChatError of the same Kind, so a contextual error made
// with Newf still satisfies errors.Is against the sentinel.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	return ok && t.Kind == e.Kind
}

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrWrongCommandFormat   = &ChatError{Kind: WrongCommandFormat, Msg: "wrong command format"}
	ErrAlreadyExists        = &ChatError{Kind: AlreadyExists, Msg: "this nickname is taken already"}
	ErrInvalidCredentials   = &ChatError{Kind: InvalidCredentials, Msg: "wrong nickname or password"}
	ErrUnknownDataProtocol  = &ChatError{Kind: UnknownDataProtocol, Msg: "unknown data protocol"}
	ErrNotAuthenticated     = &ChatError{Kind: NotAuthenticated, Msg: "register or connect first"}
	ErrAlreadyAuthenticated = &ChatError{Kind: AlreadyAuthenticated, Msg: "this session is already logged in"}
	ErrBanned               = &ChatError{Kind: Banned, Msg: "you are banned"}
	ErrUnknownUser          = &ChatError{Kind: UnknownUser, Msg: "there is no such user"}
	ErrAlreadyBanned        = &ChatError{Kind: AlreadyBanned, Msg: "user is already banned"}
	ErrUnknownCommand       = &ChatError{Kind: UnknownCommand, Msg: "unknown command"}

	ErrSessionClosed = errors.New("session is closed")
	ErrNotConnected  = errors.New("not connected")
	ErrTimeout       = errors.New("operation timed out")
)

// Newf returns a ChatError of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &ChatError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err, or KindUnknown when err is not a
// command failure.
func KindOf(err error) Kind {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // "dial", "listen", "accept", "write", "read"
	Addr      string
	Err       error
	Retryable bool
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // CLI flag name
	Value   interface{} // the invalid value (nil if missing)
	Message string
	Hint    string // optional
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, detecting retryability from err.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
