package util

import (
	"net"
	"strconv"

	cerrors "chatd/internal/errors"
)

const loopbackAny = "127.0.0.1:0"

// FormatAddr joins host and port, bracketing IPv6 literals.  Config.Addr
// goes through it, so the listen address, the dial target and the
// --dry-run output agree.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FindFreePort asks the kernel for an unused loopback port and releases
// it again.  Another process may grab it first; tests use it for an
// address nobody listens on.  Failure is a *NetworkError with Op
// "listen".
func FindFreePort() (int, error) {
	ln, err := net.Listen("tcp", loopbackAny)
	if err != nil {
		return 0, cerrors.Wrap("listen", loopbackAny, err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
