package core

import (
	"context"
	"fmt"

	"chatd/internal/client"
	"chatd/internal/transport"
	"chatd/util"
)

// JoinMode dials a chat server and runs the interactive client on the
// connection.
type JoinMode struct {
	Address string
	Dialer  transport.Dialer
	Client  client.Options
	Logger  *util.Logger
}

// Run dials Address and relays until the session ends.
func (m *JoinMode) Run(ctx context.Context) error {
	m.Logger.Verbose("connecting to %s", m.Address)

	conn, err := m.Dialer.Dial(ctx, m.Address)
	if err != nil {
		return fmt.Errorf("join %s: %w", m.Address, err)
	}
	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	return client.New(conn, m.Client).Run(ctx)
}
