package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "chatd/internal/errors"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Request
		kind cerrors.Kind
	}{
		{
			name: "string args",
			line: `{"command":"message","args":"hi there"}`,
			want: Request{Command: "message", Args: Args{Values: []string{"hi there"}}},
		},
		{
			name: "array args",
			line: `{"command":"register","args":["alice","p1"]}`,
			want: Request{Command: "register", Args: Args{Values: []string{"alice", "p1"}, List: true}},
		},
		{
			name: "missing args",
			line: `{"command":"disconnect"}`,
			want: Request{Command: "disconnect"},
		},
		{
			name: "null args",
			line: `{"command":"status","args":null}`,
			want: Request{Command: "status"},
		},
		{name: "not json", line: `hello`, kind: cerrors.UnknownDataProtocol},
		{name: "json array", line: `["message","hi"]`, kind: cerrors.UnknownDataProtocol},
		{name: "numeric args", line: `{"command":"message","args":42}`, kind: cerrors.UnknownDataProtocol},
		{name: "mixed array", line: `{"command":"register","args":["a",1]}`, kind: cerrors.UnknownDataProtocol},
		{name: "object args", line: `{"command":"message","args":{"text":"hi"}}`, kind: cerrors.UnknownDataProtocol},
		{name: "no command", line: `{"args":"hi"}`, kind: cerrors.UnknownDataProtocol},
		{name: "blank command", line: `{"command":"  ","args":"hi"}`, kind: cerrors.UnknownDataProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.line))
			if tt.kind != cerrors.KindUnknown {
				require.Error(t, err)
				require.Equal(t, tt.kind, cerrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_RoundTripsShape(t *testing.T) {
	req := require.New(t)

	line, err := Encode(NewRequest(CmdRegister, "alice", "p1"))
	req.NoError(err)
	req.Equal(`{"command":"register","args":["alice","p1"]}`+"\n", string(line))

	line, err = Encode(NewRequest(CmdMessage, "hello"))
	req.NoError(err)
	req.Equal(`{"command":"message","args":"hello"}`+"\n", string(line))

	line, err = Encode(NewRequest(CmdDisconnect))
	req.NoError(err)
	req.Equal(`{"command":"disconnect","args":[]}`+"\n", string(line))
}

func TestRequest_Text(t *testing.T) {
	req := require.New(t)

	text, err := Request{Args: Args{Values: []string{"hello", "world"}, List: true}}.Text()
	req.NoError(err)
	req.Equal("hello world", text)

	text, err = Request{Args: Args{Values: []string{" spaced "}}}.Text()
	req.NoError(err)
	req.Equal(" spaced ", text)

	_, err = Request{Args: Args{Values: []string{"   "}}}.Text()
	req.ErrorIs(err, cerrors.ErrWrongCommandFormat)

	_, err = Request{}.Text()
	req.ErrorIs(err, cerrors.ErrWrongCommandFormat)

	for _, text := range []string{"hi\n[bob says] forged", "hi\rthere", "line\r\n"} {
		_, err = Request{Args: Args{Values: []string{text}}}.Text()
		req.ErrorIs(err, cerrors.ErrWrongCommandFormat, "%q", text)
	}
}

func TestRequest_Target(t *testing.T) {
	req := require.New(t)

	target, err := Request{Args: Args{Values: []string{"bob"}}}.Target()
	req.NoError(err)
	req.Equal("bob", target)

	target, err = Request{Args: Args{Values: []string{"bob"}, List: true}}.Target()
	req.NoError(err)
	req.Equal("bob", target)

	_, err = Request{Args: Args{Values: []string{"bob", "carol"}, List: true}}.Target()
	req.ErrorIs(err, cerrors.ErrWrongCommandFormat)

	_, err = Request{Args: Args{Values: []string{""}}}.Target()
	req.ErrorIs(err, cerrors.ErrWrongCommandFormat)
}
