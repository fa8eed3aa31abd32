package client

import (
	"fmt"
	"strings"

	"chatd/internal/protocol"
)

// PasswordPrompt asks the user for a password without echoing it.
type PasswordPrompt func(label string) (string, error)

// Translate turns one line of user input into a request.  ok is false
// for blank input.  Bare text is sent as a chat message; slash
// commands map onto protocol commands:
//
//	/register <nick> [password]
//	/connect  <nick> [password]
//	/msg <text>
//	/strike <nick>
//	/status
//	/quit
//
// A missing password is read through prompt.
func Translate(line string, prompt PasswordPrompt) (req protocol.Request, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return protocol.Request{}, false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return protocol.NewRequest(protocol.CmdMessage, line), true, nil
	}

	name, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	fields := strings.Fields(rest)

	switch name {
	case "register", "connect":
		if len(fields) < 1 || len(fields) > 2 {
			return protocol.Request{}, false, fmt.Errorf("usage: /%s <nickname> [password]", name)
		}
		nick := fields[0]
		var pass string
		if len(fields) == 2 {
			pass = fields[1]
		} else {
			if prompt == nil {
				return protocol.Request{}, false, fmt.Errorf("usage: /%s <nickname> <password>", name)
			}
			pass, err = prompt(fmt.Sprintf("Password for %s: ", nick))
			if err != nil {
				return protocol.Request{}, false, fmt.Errorf("read password: %w", err)
			}
		}
		return protocol.NewRequest(name, nick, pass), true, nil

	case "msg":
		if rest == "" {
			return protocol.Request{}, false, fmt.Errorf("usage: /msg <text>")
		}
		return protocol.NewRequest(protocol.CmdMessage, rest), true, nil

	case "strike":
		if len(fields) != 1 {
			return protocol.Request{}, false, fmt.Errorf("usage: /strike <nickname>")
		}
		return protocol.NewRequest(protocol.CmdStrike, fields[0]), true, nil

	case "status":
		return protocol.NewRequest(protocol.CmdStatus), true, nil

	case "quit":
		return protocol.NewRequest(protocol.CmdDisconnect), true, nil

	default:
		return protocol.Request{}, false, fmt.Errorf("unknown command /%s", name)
	}
}
