package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{"ipv4", "127.0.0.1", 8000, "127.0.0.1:8000"},
		{"ipv6 is bracketed", "::1", 443, "[::1]:443"},
		{"empty host listens everywhere", "", 9000, ":9000"},
		{"hostname", "chat.example.org", 6667, "chat.example.org:6667"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatAddr(tt.host, tt.port))
		})
	}
}

func TestFindFreePort(t *testing.T) {
	req := require.New(t)
	port, err := FindFreePort()
	req.NoError(err)
	req.True(port >= 1 && port <= 65535, "port %d out of range", port)

	ln, err := net.Listen("tcp", FormatAddr("127.0.0.1", port))
	req.NoError(err, "released port should be bindable")
	req.NoError(ln.Close())
}
