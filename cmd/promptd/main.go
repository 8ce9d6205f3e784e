package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"promptd/internal/app"
	"promptd/internal/infra/telemetry"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	transport   string
	port        int
	watch       bool
	disableAuth bool
	logger      *zap.Logger
}

func main() {
	opts := rootOptions{
		transport: app.TransportStdio,
		logger:    zap.NewNop(),
	}

	root := newRootCmd(&opts)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "promptd",
		Short:         "Dynamic prompt and resource registry for MCP hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := opts.logLevel
			if level == "" {
				level = os.Getenv("PROMPTD_LOG_LEVEL")
			}
			logger, err := telemetry.NewLogger(level)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional YAML settings file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load prompts and resources and serve them over MCP stdio or HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyServeFlagBindings(cmd.Flags(), opts)
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			err := app.New(opts.logger).Serve(ctx, app.ServeConfig{
				ConfigPath:  opts.configPath,
				Transport:   opts.transport,
				Port:        opts.port,
				Watch:       opts.watch,
				DisableAuth: opts.disableAuth,
				Version:     app.Version,
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.transport, "transport", opts.transport, "serving transport (stdio or http)")
	flags.IntVar(&opts.port, "port", 0, "HTTP port, overrides SSE_PORT")
	flags.BoolVar(&opts.watch, "watch", false, "reload when prompt or resource files change")
	flags.BoolVar(&opts.disableAuth, "no-auth", false, "disable HTTP authentication")
	flags.Bool("disable-auth", false, "alias of --no-auth")
	return cmd
}

// applyServeFlagBindings folds flag aliases into opts.
func applyServeFlagBindings(flags *pflag.FlagSet, opts *rootOptions) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "disable-auth":
			if v, err := flags.GetBool("disable-auth"); err == nil && v {
				opts.disableAuth = true
			}
		}
	})
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run one load cycle without serving and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.New(opts.logger).ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
