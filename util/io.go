package util

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
)

// DefaultMaxLineBytes bounds a single protocol line (64 KiB).
const DefaultMaxLineBytes = 64 * 1024

// NewLineScanner returns a line scanner over r that rejects lines
// longer than maxLine bytes with bufio.ErrTooLong.
func NewLineScanner(r io.Reader, maxLine int) *bufio.Scanner {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	sc := bufio.NewScanner(r)
	initial := 4 * 1024
	if initial > maxLine {
		initial = maxLine
	}
	sc.Buffer(make([]byte, 0, initial), maxLine)
	return sc
}

// IsHarmless returns true for errors that are expected while a
// connection is being torn down.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
