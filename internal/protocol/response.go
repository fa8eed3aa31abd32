package protocol

import (
	"fmt"
	"strings"
	"time"

	cerrors "chatd/internal/errors"
)

// Fixed server lines.
const (
	Greeting     = "Hello! Welcome to our chat-server. You can register or connect."
	NoHistory    = "No messages yet."
	BanLifted    = "Your ban has been lifted."
	Goodbye      = "Bye!"
	ShuttingDown = "Server is shutting down."
	linePrefix   = "error "
)

// Registered greets a freshly registered principal.
func Registered(nick string) string {
	return fmt.Sprintf("Hello, %s! You are registered! Welcome!", nick)
}

// LoggedIn greets a principal that connected with its password.
func LoggedIn(nick string) string {
	return fmt.Sprintf("Hello, %s! You are logged in! Welcome!", nick)
}

// HistoryHeader introduces a replay of k messages.
func HistoryHeader(k int) string {
	return fmt.Sprintf("Last %d messages:", k)
}

// StrikeRecorded acknowledges a strike that did not ban.
func StrikeRecorded(nick string, strikes, threshold int) string {
	return fmt.Sprintf("Strike recorded against %s (%d/%d).", nick, strikes, threshold)
}

// BanIssued tells the striker that its strike banned nick.
func BanIssued(nick string, d time.Duration) string {
	return fmt.Sprintf("%s has been banned for %s.", nick, d)
}

// YouAreBanned is sent to every live session of a banned principal.
func YouAreBanned(d time.Duration) string {
	return fmt.Sprintf("You have been banned for %s.", d)
}

// Status describes the caller's own moderation state.
func Status(nick string, strikes, threshold int, bannedUntil time.Time, online int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Strikes: %d/%d.", nick, strikes, threshold)
	if !bannedUntil.IsZero() {
		fmt.Fprintf(&b, " Banned for another %s.", time.Until(bannedUntil).Round(time.Second))
	}
	fmt.Fprintf(&b, " Online: %d.", online)
	return b.String()
}

// ErrorLine renders a command failure as "error <Kind>: <message>".
func ErrorLine(err error) string {
	return fmt.Sprintf("%s%s: %s", linePrefix, cerrors.KindOf(err), err)
}

// IsErrorLine reports whether a server line carries a command failure.
func IsErrorLine(line string) bool {
	return strings.HasPrefix(line, linePrefix)
}
