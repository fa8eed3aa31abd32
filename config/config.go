// Package config defines the runtime configuration for chatd and
// provides helpers for parsing the positional arguments of the CLI.
package config

import (
	"fmt"
	"strconv"
	"time"

	"chatd/util"
)

// Config holds every tuneable for a chatd process, server or client.
// Field names map onto CHATD_* variables (HistorySize reads
// CHATD_HISTORY_SIZE); the validate tags are checked by Validate.
type Config struct {
	// ── Listener / destination ───────────────────────────────────────
	Host string `split_words:"true" validate:"required"`
	Port int    `split_words:"true" validate:"min=1,max=65535"`

	// ── Chat engine ──────────────────────────────────────────────────
	HistorySize     int           `split_words:"true" validate:"min=1,max=100000"`
	BanDuration     time.Duration `split_words:"true" validate:"gt=0"`
	StrikeThreshold int           `split_words:"true" validate:"min=1"`

	// ── Per-session limits ───────────────────────────────────────────
	OutboxSize   int           `split_words:"true" validate:"min=1"`
	WriteTimeout time.Duration `split_words:"true" validate:"gt=0"`
	MaxLineBytes int           `split_words:"true" validate:"min=64"`
	CommandRate  float64       `split_words:"true" validate:"gte=0"`
	CommandBurst int           `split_words:"true" validate:"gte=0"`
	GracePeriod  time.Duration `split_words:"true" validate:"gte=0"`

	// ── Client ───────────────────────────────────────────────────────
	DialTimeout  time.Duration `split_words:"true" validate:"gte=0"`
	DialAttempts int           `split_words:"true" validate:"min=1"`
	NoColor      bool          `split_words:"true"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose   int    `split_words:"true" validate:"min=0,max=3"`
	LogFormat string `split_words:"true" validate:"oneof=console json"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		HistorySize:     DefaultHistorySize,
		BanDuration:     DefaultBanDuration,
		StrikeThreshold: DefaultStrikeThreshold,
		OutboxSize:      DefaultOutboxSize,
		WriteTimeout:    DefaultWriteTimeout,
		MaxLineBytes:    util.DefaultMaxLineBytes,
		CommandRate:     DefaultCommandRate,
		CommandBurst:    DefaultCommandBurst,
		GracePeriod:     DefaultGracePeriod,
		DialTimeout:     DefaultDialTimeout,
		DialAttempts:    DefaultDialAttempts,
		Verbose:         DefaultVerbosity,
		LogFormat:       util.FormatConsole,
	}
}

// Addr returns the "host:port" the server binds or the client dials.
func (c *Config) Addr() string {
	return util.FormatAddr(c.Host, c.Port)
}

// ── Positional helpers ───────────────────────────────────────────────

// ParsePort accepts a decimal port number in 1-65535.
func ParsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ApplyPositional fills Host and Port from "[host] [port]" arguments.
func (c *Config) ApplyPositional(args []string) error {
	switch len(args) {
	case 0:
	case 1:
		c.Host = args[0]
	case 2:
		c.Host = args[0]
		port, err := ParsePort(args[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		c.Port = port
	default:
		return fmt.Errorf("too many arguments: expected [host] [port]")
	}
	return nil
}
