package errors

import (
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatError_IsMatchesKind(t *testing.T) {
	req := require.New(t)

	err := Newf(AlreadyExists, "nickname %q is taken already", "alice")
	req.ErrorIs(err, ErrAlreadyExists)
	req.NotErrorIs(err, ErrUnknownUser)
	req.Equal(`nickname "alice" is taken already`, err.Error())

	wrapped := fmt.Errorf("register: %w", err)
	req.ErrorIs(wrapped, ErrAlreadyExists)
	req.Equal(AlreadyExists, KindOf(wrapped))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", fmt.Errorf("boom"), KindUnknown},
		{"sentinel", ErrBanned, Banned},
		{"wrapped", fmt.Errorf("strike: %w", ErrAlreadyBanned), AlreadyBanned},
		{"contextual", Newf(UnknownCommand, "unknown command %q", "dance"), UnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	req := require.New(t)
	req.Equal("WrongCommandFormat", WrongCommandFormat.String())
	req.Equal("UnknownDataProtocol", UnknownDataProtocol.String())
	req.Equal("Internal", KindUnknown.String())
	req.Equal("Kind(200)", Kind(200).String())
}

func TestSentinels_Distinct(t *testing.T) {
	sentinels := []error{
		ErrWrongCommandFormat, ErrAlreadyExists, ErrInvalidCredentials,
		ErrUnknownDataProtocol, ErrNotAuthenticated, ErrAlreadyAuthenticated,
		ErrBanned, ErrUnknownUser, ErrAlreadyBanned, ErrUnknownCommand,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "example.com:80", Err: io.EOF, Retryable: true},
			want: "dial example.com:80: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "listen", Addr: ":8000", Err: fmt.Errorf("bind failed")},
			want: "listen :8000: bind failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err:  ConfigError{Field: "host", Message: "required"},
			want: "config: --host: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	req := require.New(t)
	inner := fmt.Errorf("connection refused")
	err := Wrap("dial", "10.0.0.1:8000", inner)

	req.Equal("dial", err.Op)
	req.Equal("10.0.0.1:8000", err.Addr)
	req.ErrorIs(err, inner)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF}, false},
		{"plain error", fmt.Errorf("boom"), false},
		{"temporary dns", &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{IsTemporary: true}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
