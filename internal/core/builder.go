package core

import (
	"fmt"

	"chatd/config"
	"chatd/internal/broker"
	"chatd/internal/client"
	"chatd/internal/metrics"
	"chatd/internal/retry"
	"chatd/internal/transport"
	"chatd/util"
)

// Build constructs the named Mode from cfg.
func Build(name Name, cfg *config.Config, logger *util.Logger) (Mode, error) {
	switch name {
	case ModeServe:
		return buildServe(cfg, logger), nil
	case ModeJoin:
		return buildJoin(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", name)
	}
}

func buildServe(cfg *config.Config, logger *util.Logger) *ServeMode {
	collector := metrics.New()
	return &ServeMode{
		Address:     cfg.Addr(),
		Handler:     broker.New(BrokerOptions(cfg, logger, collector)),
		GracePeriod: cfg.GracePeriod,
		Logger:      logger,
		Metrics:     collector,
	}
}

// BrokerOptions maps the chat-engine part of cfg onto broker options.
func BrokerOptions(cfg *config.Config, logger *util.Logger, collector *metrics.Collector) broker.Options {
	return broker.Options{
		HistorySize:     cfg.HistorySize,
		StrikeThreshold: cfg.StrikeThreshold,
		BanDuration:     cfg.BanDuration,
		OutboxSize:      cfg.OutboxSize,
		WriteTimeout:    cfg.WriteTimeout,
		MaxLineBytes:    cfg.MaxLineBytes,
		CommandRate:     cfg.CommandRate,
		CommandBurst:    cfg.CommandBurst,
		Logger:          logger,
		Metrics:         collector,
	}
}

func buildJoin(cfg *config.Config, logger *util.Logger) *JoinMode {
	return &JoinMode{
		Address: cfg.Addr(),
		Dialer: &transport.RetryDialer{
			Dialer:  &transport.TCPDialer{Timeout: cfg.DialTimeout},
			Backoff: retry.Attempts(cfg.DialAttempts),
			Logger:  logger,
		},
		Client: client.Options{Color: !cfg.NoColor, Logger: logger},
		Logger: logger,
	}
}
