package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatd/config"
	"chatd/internal/broker"
	"chatd/internal/transport"
	"chatd/util"
)

func TestBuild_Serve(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 9100
	cfg.GracePeriod = 3 * time.Second

	mode, err := Build(ModeServe, cfg, util.NewLogger(0))
	require.NoError(t, err)

	serve, ok := mode.(*ServeMode)
	require.True(t, ok, "got %T", mode)
	require.Equal(t, "127.0.0.1:9100", serve.Address)
	require.Equal(t, 3*time.Second, serve.GracePeriod)
	require.NotNil(t, serve.Metrics)

	b, ok := serve.Handler.(*broker.Broker)
	require.True(t, ok)
	b.Close()
}

func TestBuild_Join(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "chat.example"
	cfg.DialAttempts = 5
	cfg.NoColor = true

	mode, err := Build(ModeJoin, cfg, util.NewLogger(0))
	require.NoError(t, err)

	join, ok := mode.(*JoinMode)
	require.True(t, ok, "got %T", mode)
	require.Equal(t, "chat.example:8000", join.Address)
	require.False(t, join.Client.Color)

	rd, ok := join.Dialer.(*transport.RetryDialer)
	require.True(t, ok)
	require.Equal(t, 5, rd.Backoff.MaxAttempts)
}

func TestBuild_Unknown(t *testing.T) {
	_, err := Build("scan", config.Default(), util.NewLogger(0))
	require.ErrorContains(t, err, "unknown mode")
}

func TestBrokerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.StrikeThreshold = 5
	cfg.BanDuration = time.Hour

	opts := BrokerOptions(cfg, nil, nil)
	require.Equal(t, 5, opts.StrikeThreshold)
	require.Equal(t, time.Hour, opts.BanDuration)
	require.Equal(t, cfg.HistorySize, opts.HistorySize)
	require.Equal(t, cfg.MaxLineBytes, opts.MaxLineBytes)
}
