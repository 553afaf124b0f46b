package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"soporte.ai/dashboard/internal/api"
	"soporte.ai/dashboard/internal/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	apiURL     string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	client *api.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "dashboard",
		Short: "WhatsApp AI support dashboard client",
		Long: `dashboard drives the support agent backend from the terminal.

Upload PDF or TXT documents to the knowledge base, try the agent in the
chat simulator, and check what has been indexed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newUploadCmd(a),
		newChatCmd(a),
		newDocsCmd(a),
		newStatusCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	a.cfg = cfg

	logger, err := newLogger(cfg, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.client = api.NewClient(cfg.APIBaseURL, api.WithLogger(logger))
	logger.Debug("Client configured", zap.String("api_base_url", cfg.APIBaseURL))
	return nil
}

func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose || cfg.Debug() {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
