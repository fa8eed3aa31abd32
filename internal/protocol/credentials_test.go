package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "chatd/internal/errors"
)

func TestRequest_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		args    Args
		wantErr bool
	}{
		{name: "valid", args: Args{Values: []string{"alice", "p1"}, List: true}},
		{name: "unicode nickname", args: Args{Values: []string{"ärger", "pw"}, List: true}},
		{name: "string form", args: Args{Values: []string{"alice p1"}}, wantErr: true},
		{name: "one element", args: Args{Values: []string{"alice"}, List: true}, wantErr: true},
		{name: "three elements", args: Args{Values: []string{"a", "b", "c"}, List: true}, wantErr: true},
		{name: "empty nickname", args: Args{Values: []string{"", "pw"}, List: true}, wantErr: true},
		{name: "empty password", args: Args{Values: []string{"alice", ""}, List: true}, wantErr: true},
		{name: "space in nickname", args: Args{Values: []string{"al ice", "pw"}, List: true}, wantErr: true},
		{name: "long nickname", args: Args{Values: []string{strings.Repeat("a", 33), "pw"}, List: true}, wantErr: true},
		{name: "long password", args: Args{Values: []string{"alice", strings.Repeat("x", 129)}, List: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Request{Command: CmdRegister, Args: tt.args}.Credentials()
			if tt.wantErr {
				require.ErrorIs(t, err, cerrors.ErrWrongCommandFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.args.Values[0], c.Nickname)
			require.Equal(t, tt.args.Values[1], c.Password)
		})
	}
}

func TestRequest_CredentialsMessage(t *testing.T) {
	_, err := Request{Command: CmdConnect, Args: Args{Values: []string{"al ice", "pw"}, List: true}}.Credentials()
	require.EqualError(t, err, "nickname must not contain whitespace")
}
