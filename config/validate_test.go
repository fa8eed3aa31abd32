package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cerrors "chatd/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty host", func(c *Config) { c.Host = "" }, "host"},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too big", func(c *Config) { c.Port = 70000 }, "port"},
		{"no history", func(c *Config) { c.HistorySize = 0 }, "history"},
		{"zero ban", func(c *Config) { c.BanDuration = 0 }, "ban-duration"},
		{"zero threshold", func(c *Config) { c.StrikeThreshold = 0 }, "strike-threshold"},
		{"zero outbox", func(c *Config) { c.OutboxSize = 0 }, "outbox-size"},
		{"tiny lines", func(c *Config) { c.MaxLineBytes = 10 }, "max-line-bytes"},
		{"negative rate", func(c *Config) { c.CommandRate = -1 }, "command-rate"},
		{"rate without burst", func(c *Config) { c.CommandRate = 5; c.CommandBurst = 0 }, "command-burst"},
		{"rate disabled without burst", func(c *Config) { c.CommandRate = 0; c.CommandBurst = 0 }, ""},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"too verbose", func(c *Config) { c.Verbose = 9 }, "verbose"},
		{"short ban ok", func(c *Config) { c.BanDuration = 50 * time.Millisecond }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ce *cerrors.ConfigError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, tt.wantField, ce.Field)
		})
	}
}

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	cfg := Default()
	cfg.Port = 99999

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--port=99999")
	require.Contains(t, err.Error(), "must be at most 65535")
	require.Contains(t, err.Error(), "hint:")
}
