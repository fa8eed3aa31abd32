package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	cerrors "chatd/internal/errors"
)

var validate = validator.New()

// flagNames maps Config fields to the CLI flag reported in errors.
var flagNames = map[string]string{
	"Host":            "host",
	"Port":            "port",
	"HistorySize":     "history",
	"BanDuration":     "ban-duration",
	"StrikeThreshold": "strike-threshold",
	"OutboxSize":      "outbox-size",
	"WriteTimeout":    "write-timeout",
	"MaxLineBytes":    "max-line-bytes",
	"CommandRate":     "command-rate",
	"CommandBurst":    "command-burst",
	"GracePeriod":     "grace-period",
	"DialTimeout":     "dial-timeout",
	"DialAttempts":    "dial-attempts",
	"Verbose":         "verbose",
	"LogFormat":       "log-format",
}

var hints = map[string]string{
	"Port":            "use a port between 1 and 65535",
	"HistorySize":     "keep at least one message, e.g. --history 20",
	"BanDuration":     "use a Go duration such as 60s or 5m",
	"StrikeThreshold": "a ban needs at least one strike, e.g. --strike-threshold 3",
	"OutboxSize":      "slow sessions are dropped when this queue fills up",
	"MaxLineBytes":    "requests are single JSON lines; 65536 is a sane bound",
	"CommandRate":     "use 0 to disable per-session rate limiting",
	"LogFormat":       "use console or json",
}

// Validate checks that the configuration is internally consistent.
// The first violation is returned as a *errors.ConfigError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if c.CommandRate > 0 && c.CommandBurst == 0 {
			return &cerrors.ConfigError{
				Field:   "command-burst",
				Value:   c.CommandBurst,
				Message: "must be positive when --command-rate is set",
				Hint:    "a burst of at least 1 lets the first command through",
			}
		}
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return fmt.Errorf("config: %w", err)
	}
	fe := verrs[0]
	name, ok := flagNames[fe.StructField()]
	if !ok {
		name = fe.StructField()
	}
	return &cerrors.ConfigError{
		Field:   name,
		Value:   fe.Value(),
		Message: describe(fe),
		Hint:    hints[fe.StructField()],
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
