package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/spool/internal/config"
	"github.com/roach88/spool/internal/delivery"
	"github.com/roach88/spool/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the delivery worker",
		Long: `Start the background delivery worker.

The worker flushes spooled events to the configured collector on every
interval tick, acknowledging each batch only after the collector accepted
it. Runs until SIGINT or SIGTERM.

Example:
  spool run --config ./spool.yaml
  spool run --config ./spool.yaml --verbose`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runWorker(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "load config", Err: err}
	}
	if cfg.Store.Path == "" {
		return &ExitError{Code: ExitCommandError, Message: "store.path is required"}
	}
	if cfg.Collector.URL == "" {
		return &ExitError{Code: ExitCommandError, Message: "collector.url is required"}
	}

	// --verbose wins over the configured level.
	level := parseLevel(cfg.Logging.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	var storeOpts []store.Option
	if cfg.Store.SpaceFloor > 0 {
		storeOpts = append(storeOpts, store.WithSpaceFloor(cfg.Store.SpaceFloor))
	}
	st := store.New(cfg.Store.Path, storeOpts...)

	sender := &delivery.HTTPSender{
		URL:    cfg.Collector.URL,
		Client: &http.Client{Timeout: cfg.Collector.Timeout},
	}
	worker := delivery.New(st, sender,
		delivery.WithFlushInterval(cfg.Flush.Interval),
		delivery.WithBulkSize(cfg.Flush.BulkSize),
		delivery.WithMaxAge(cfg.Flush.MaxAge),
		delivery.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("delivery worker started",
		"db", cfg.Store.Path, "collector", cfg.Collector.URL,
		"interval", cfg.Flush.Interval, "bulk_size", cfg.Flush.BulkSize)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return &ExitError{Code: ExitFailure, Message: "worker stopped", Err: err}
	}
	logger.Info("delivery worker stopped")
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
