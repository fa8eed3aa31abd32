// Package client is the interactive side of "chatd join": it reads
// user input, sends protocol requests and prints server lines.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"golang.org/x/term"

	"chatd/internal/protocol"
	"chatd/util"
)

// quitGrace bounds how long Run waits for the server to close the
// connection after /quit.
const quitGrace = 2 * time.Second

// Options configure a Client.  In and Out default to the process's
// stdin and stdout.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Prompt PasswordPrompt // defaults to a hidden terminal prompt
	Color  bool
	Logger *util.Logger
}

// Client relays between a terminal and one server connection.
type Client struct {
	conn net.Conn
	opts Options

	outMu sync.Mutex
}

// New returns a Client for an established connection.
func New(conn net.Conn, opts Options) *Client {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Prompt == nil {
		opts.Prompt = TerminalPrompt(os.Stdin, os.Stderr)
	}
	return &Client{conn: conn, opts: opts}
}

// Run relays until the server closes the connection, input ends or
// ctx is cancelled.  The connection is closed on return.
func (c *Client) Run(ctx context.Context) error {
	defer c.conn.Close()

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	serverDone := make(chan error, 1)
	go func() { serverDone <- c.readServer() }()

	inputDone := make(chan error, 1)
	go func() { inputDone <- c.readInput() }()

	select {
	case err := <-serverDone:
		if ctx.Err() != nil {
			return nil
		}
		return err
	case err := <-inputDone:
		if err != nil {
			return err
		}
		// Input ended or /quit was sent; let the server say goodbye.
		select {
		case err := <-serverDone:
			return err
		case <-time.After(quitGrace):
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Client) readServer() error {
	sc := util.NewLineScanner(c.conn, 0)
	for sc.Scan() {
		c.println(Render(sc.Text(), c.opts.Color))
	}
	if err := sc.Err(); err != nil && !util.IsHarmless(err) {
		return fmt.Errorf("read from server: %w", err)
	}
	return nil
}

// readInput returns nil after /quit or end of input.
func (c *Client) readInput() error {
	sc := util.NewLineScanner(c.opts.In, 0)
	for sc.Scan() {
		req, ok, err := Translate(sc.Text(), c.opts.Prompt)
		if err != nil {
			c.println(Render(err.Error(), c.opts.Color))
			continue
		}
		if !ok {
			continue
		}
		if err := c.send(req); err != nil {
			return err
		}
		if req.Command == protocol.CmdDisconnect {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return c.send(protocol.NewRequest(protocol.CmdDisconnect))
}

func (c *Client) send(req protocol.Request) error {
	line, err := protocol.Encode(req)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(line); err != nil {
		if util.IsHarmless(err) {
			return nil
		}
		return fmt.Errorf("send %s: %w", req.Command, err)
	}
	c.opts.Logger.Debug("sent %s", req.Command)
	return nil
}

func (c *Client) println(s string) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.opts.Out, s)
}

// ── Presentation ─────────────────────────────────────────────────────

var (
	errorStyle  = color.New(color.FgRed)
	senderStyle = color.New(color.FgCyan, color.OpBold)
	noticeStyle = color.New(color.FgYellow)
)

// Render formats one server line for the terminal.
func Render(line string, colored bool) string {
	if !colored {
		return line
	}
	switch {
	case protocol.IsErrorLine(line):
		return errorStyle.Render(line)
	case strings.HasPrefix(line, "["):
		if end := strings.Index(line, "] "); end > 0 {
			return senderStyle.Render(line[:end+1]) + line[end+1:]
		}
		return line
	default:
		return noticeStyle.Render(line)
	}
}

// TerminalPrompt reads a password from in without echo when in is a
// terminal.
func TerminalPrompt(in *os.File, out io.Writer) PasswordPrompt {
	return func(label string) (string, error) {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("stdin is not a terminal; pass the password inline")
		}
		fmt.Fprint(out, label)
		pass, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(pass), nil
	}
}
