package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, .env files, and environment variable loading.

const (
	// DefaultHost is the listen address of the server and the dial
	// target of the client.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the chat server TCP port.
	DefaultPort = 8000

	// DefaultHistorySize is how many broadcast lines a newly
	// authenticated session receives.
	DefaultHistorySize = 20

	// DefaultBanDuration is how long a ban lasts before the scheduler
	// lifts it.
	DefaultBanDuration = 60 * time.Second

	// DefaultStrikeThreshold is the strike count that triggers a ban.
	DefaultStrikeThreshold = 3

	// DefaultOutboxSize bounds the per-session outbound queue.  A
	// session whose queue overflows is disconnected.
	DefaultOutboxSize = 64

	// DefaultWriteTimeout caps a single write to a peer.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultCommandRate is the sustained per-session command rate
	// (commands per second).  Zero disables limiting.
	DefaultCommandRate = 20.0

	// DefaultCommandBurst is the per-session command burst size.
	DefaultCommandBurst = 40

	// DefaultGracePeriod is how long shutdown waits for connection
	// goroutines to finish.
	DefaultGracePeriod = 5 * time.Second

	// DefaultDialTimeout is the client TCP connect timeout.
	DefaultDialTimeout = 10 * time.Second

	// DefaultDialAttempts is how many times the client tries to dial.
	DefaultDialAttempts = 3

	// DefaultVerbosity is the normal log level.
	DefaultVerbosity = 1

	// EnvPrefix namespaces every environment variable.
	EnvPrefix = "CHATD"

	// DefaultEnvFile is loaded when CHATD_ENV_FILE is unset.
	DefaultEnvFile = ".env"
)
