// Package transport opens the join client's connection to a chat
// server.
package transport

import (
	"context"
	"net"
)

// Dialer opens a stream connection to a chat server.
type Dialer interface {
	Dial(ctx context.Context, address string) (net.Conn, error)
}
