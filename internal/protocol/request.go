// Package protocol implements the chatd wire format.
//
// A request is one JSON object per line:
//
//	{"command": "register", "args": ["alice", "secret"]}
//	{"command": "message", "args": "hello everyone"}
//
// args may be a string or an array of strings.  Responses are plain
// newline-terminated text lines built by the helpers in response.go.
package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	cerrors "chatd/internal/errors"
)

// Command names understood by the server.
const (
	CmdRegister   = "register"
	CmdConnect    = "connect"
	CmdMessage    = "message"
	CmdStrike     = "strike"
	CmdStatus     = "status"
	CmdDisconnect = "disconnect"
)

// Args holds the decoded "args" field.  List records whether the
// sender used the array form.
type Args struct {
	Values []string
	List   bool
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (a *Args) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Args{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Args{Values: []string{s}}
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return cerrors.Newf(cerrors.UnknownDataProtocol, "args must be a string or an array of strings")
		}
		*a = Args{Values: list, List: true}
		return nil
	default:
		return cerrors.Newf(cerrors.UnknownDataProtocol, "args must be a string or an array of strings")
	}
}

// MarshalJSON writes the form the args were decoded from.
func (a Args) MarshalJSON() ([]byte, error) {
	if !a.List && len(a.Values) == 1 {
		return json.Marshal(a.Values[0])
	}
	if a.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Values)
}

// Request is one decoded command.
type Request struct {
	Command string `json:"command"`
	Args    Args   `json:"args"`
}

// Decode parses one request line.  Anything that is not a JSON object
// with a command name fails with ErrUnknownDataProtocol.
func Decode(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		if cerrors.KindOf(err) == cerrors.UnknownDataProtocol {
			return Request{}, err
		}
		return Request{}, cerrors.Newf(cerrors.UnknownDataProtocol, "cannot decode request: %v", err)
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		return Request{}, cerrors.Newf(cerrors.UnknownDataProtocol, "request has no command")
	}
	return req, nil
}

// Encode renders a request as a single line including the newline.
func Encode(req Request) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// NewRequest builds a request with a single string argument, or the
// array form when more than one value is given.
func NewRequest(command string, args ...string) Request {
	return Request{Command: command, Args: Args{Values: args, List: len(args) != 1}}
}

// ── Argument extraction ──────────────────────────────────────────────

// Text returns the message body.  The array form is joined by single
// spaces.  Blank text and text spanning several lines fail with
// ErrWrongCommandFormat, so every broadcast stays one wire line.
func (r Request) Text() (string, error) {
	text := strings.Join(r.Args.Values, " ")
	if strings.TrimSpace(text) == "" {
		return "", cerrors.Newf(cerrors.WrongCommandFormat, "message text is empty")
	}
	if strings.ContainsAny(text, "\r\n") {
		return "", cerrors.Newf(cerrors.WrongCommandFormat, "message text must be a single line")
	}
	return text, nil
}

// Target returns the nickname named by a strike request.
func (r Request) Target() (string, error) {
	if len(r.Args.Values) != 1 {
		return "", cerrors.Newf(cerrors.WrongCommandFormat, "strike takes exactly one nickname")
	}
	target := strings.TrimSpace(r.Args.Values[0])
	if target == "" {
		return "", cerrors.Newf(cerrors.WrongCommandFormat, "strike target is empty")
	}
	return target, nil
}
