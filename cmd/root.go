// Package cmd wires the CLI: a cobra command tree whose flags are
// bound onto a config.Config already populated from defaults, the
// .env file and CHATD_* variables.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"chatd/config"
	"chatd/internal/core"
	"chatd/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X chatd/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected subcommand.
func Execute(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	root := newRootCmd(cfg, os.Stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatd",
		Short: "Line-oriented TCP chat server with strikes and timed bans",
		Long: `chatd runs a small chat server speaking one JSON request per line,
or joins one as an interactive client.

Configuration comes from flags, then CHATD_* environment variables,
then a .env file (CHATD_ENV_FILE), then built-in defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	var louder int
	var quiet bool
	pf := root.PersistentFlags()
	pf.CountVarP(&louder, "verbose", "v", "Increase verbosity (repeatable)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")

	root.PersistentPreRun = func(*cobra.Command, []string) {
		switch {
		case quiet:
			cfg.Verbose = int(util.LogQuiet)
		case louder > 0:
			cfg.Verbose = min(cfg.Verbose+louder, int(util.LogDebug))
		}
	}

	root.AddCommand(newServeCmd(cfg), newJoinCmd(cfg), newVersionCmd(out))
	return root
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool
	c := &cobra.Command{
		Use:   "serve [host] [port]",
		Short: "Run the chat server",
		Example: `  chatd serve                        listen on 127.0.0.1:8000
  chatd serve 0.0.0.0 9000 -v        listen on all interfaces, verbose
  chatd serve --strike-threshold 5 --ban-duration 10m`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := prepare(cfg, args); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(c.OutOrStdout(), "configuration OK: serving on %s\n", cfg.Addr())
				return nil
			}
			return run(c.Context(), core.ModeServe, cfg)
		},
	}
	bindServerFlags(c.Flags(), cfg)
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	return c
}

func newJoinCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool
	c := &cobra.Command{
		Use:   "join [host] [port]",
		Short: "Connect to a chat server interactively",
		Long: `Connect to a chat server.  Bare lines are sent as messages; the
commands /register, /connect, /msg, /strike, /status and /quit map onto
the protocol.  /register and /connect prompt for the password when it
is omitted.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if err := prepare(cfg, args); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(c.OutOrStdout(), "configuration OK: joining %s\n", cfg.Addr())
				return nil
			}
			return run(c.Context(), core.ModeJoin, cfg)
		},
	}
	bindClientFlags(c.Flags(), cfg)
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	return c
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(out, "chatd %s\n", version)
		},
	}
}

// ── flags ────────────────────────────────────────────────────────────

func bindServerFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.Host, "host", "H", cfg.Host, "Address to listen on")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")

	fs.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "Messages replayed to a session on login")
	fs.DurationVar(&cfg.BanDuration, "ban-duration", cfg.BanDuration, "How long a ban lasts")
	fs.IntVar(&cfg.StrikeThreshold, "strike-threshold", cfg.StrikeThreshold, "Strikes that trigger a ban")

	fs.IntVar(&cfg.OutboxSize, "outbox-size", cfg.OutboxSize, "Queued lines per session before it is dropped")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Deadline for one write to a client")
	fs.IntVar(&cfg.MaxLineBytes, "max-line-bytes", cfg.MaxLineBytes, "Longest accepted request line")
	fs.Float64Var(&cfg.CommandRate, "command-rate", cfg.CommandRate, "Commands per second per session (0 = unlimited)")
	fs.IntVar(&cfg.CommandBurst, "command-burst", cfg.CommandBurst, "Command burst per session")
	fs.DurationVar(&cfg.GracePeriod, "grace-period", cfg.GracePeriod, "How long shutdown waits for connections")
}

func bindClientFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVarP(&cfg.Host, "host", "H", cfg.Host, "Server host")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Server port")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "Timeout for one connection attempt")
	fs.IntVar(&cfg.DialAttempts, "dial-attempts", cfg.DialAttempts, "Connection attempts before giving up")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
}

// ── helpers ──────────────────────────────────────────────────────────

// prepare applies positional [host] [port] and validates cfg.
func prepare(cfg *config.Config, args []string) error {
	if err := cfg.ApplyPositional(args); err != nil {
		return err
	}
	return cfg.Validate()
}

func run(ctx context.Context, name core.Name, cfg *config.Config) error {
	logger := util.NewLogger(cfg.Verbose)
	logger.SetFormat(cfg.LogFormat)

	mode, err := core.Build(name, cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}
