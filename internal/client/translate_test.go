package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"chatd/internal/protocol"
)

func TestTranslate(t *testing.T) {
	prompt := func(string) (string, error) { return "prompted", nil }

	tests := []struct {
		name    string
		line    string
		want    protocol.Request
		skip    bool
		wantErr bool
	}{
		{name: "blank", line: "   ", skip: true},
		{name: "bare text", line: "hello there", want: protocol.NewRequest(protocol.CmdMessage, "hello there")},
		{name: "msg", line: "/msg  spaced  out ", want: protocol.NewRequest(protocol.CmdMessage, "spaced  out")},
		{name: "msg empty", line: "/msg", wantErr: true},
		{name: "register inline", line: "/register alice p1", want: protocol.NewRequest(protocol.CmdRegister, "alice", "p1")},
		{name: "connect prompted", line: "/connect bob", want: protocol.NewRequest(protocol.CmdConnect, "bob", "prompted")},
		{name: "register no nick", line: "/register", wantErr: true},
		{name: "register extra", line: "/register a b c", wantErr: true},
		{name: "strike", line: "/strike troll", want: protocol.NewRequest(protocol.CmdStrike, "troll")},
		{name: "strike two", line: "/strike a b", wantErr: true},
		{name: "status", line: "/status", want: protocol.NewRequest(protocol.CmdStatus)},
		{name: "quit", line: "/quit", want: protocol.NewRequest(protocol.CmdDisconnect)},
		{name: "unknown", line: "/dance", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Translate(tt.line, prompt)
			if tt.wantErr {
				require.Error(t, err)
				require.False(t, ok)
				return
			}
			require.NoError(t, err)
			require.Equal(t, !tt.skip, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTranslate_PromptFailure(t *testing.T) {
	_, _, err := Translate("/connect bob", func(string) (string, error) {
		return "", errors.New("no tty")
	})
	require.ErrorContains(t, err, "no tty")

	_, _, err = Translate("/connect bob", nil)
	require.ErrorContains(t, err, "usage")
}
