package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/tierlist/internal/simulate"
	"github.com/okian/tierlist/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg       simulate.Config
		logFormat string
		deadline  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a running tier list service through concurrent ranking sessions",
		Long: `simulate creates sessions against a running tier list service, randomizes
them, replays an idempotent request, undoes, runs head-to-head with random
winners, finishes and undoes again. After every step it checks that each
contestant is still present exactly once.`,
		Example: `  simulate
  simulate --sessions 500 --workers 16 --url http://localhost:8080
  simulate --seed 42 --comparisons 50 --verbose`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, deadline)
			defer cancel()

			_, err := simulate.Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", simulate.DefaultBaseURL, "Base URL of the service")
	f.IntVar(&cfg.Sessions, "sessions", simulate.DefaultSessions, "Number of sessions to drive")
	f.IntVar(&cfg.Workers, "workers", 0, "Sessions driven concurrently (default CPU cores * 2)")
	f.StringVar(&cfg.Group, "group", "", "Contestant group (default: the service's first group)")
	f.IntVar(&cfg.Comparisons, "comparisons", simulate.DefaultComparisons, "Head-to-head picks per session")
	f.Int64Var(&cfg.Seed, "seed", 0, "Seed for sessions and winner choice (0 for random)")
	f.DurationVar(&cfg.Timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&deadline, "deadline", defaultRunTimeout, "Overall run deadline")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every verified session")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	return cmd
}
