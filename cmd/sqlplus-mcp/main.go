package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shakram02/go-sqlplus-mcp/internal/config"
	"github.com/shakram02/go-sqlplus-mcp/internal/mcp"
	"github.com/shakram02/go-sqlplus-mcp/internal/sink"
	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sqlplus-mcp",
	Short: "Oracle sqlplus over the Model Context Protocol",
	Long: `sqlplus-mcp runs statements through the Oracle sqlplus client in HTML
mode and returns the parsed rows as JSON.

Run without a subcommand to serve MCP on stdin/stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = buildLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sqlplus-mcp.yaml", "Path to the YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, queryCmd, scriptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger writes to stderr; stdout carries the protocol.
func buildLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if !lc.JSON {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if lc.Level != "" {
		level, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = level
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func newClient() (*sqlplus.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cc, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return sqlplus.NewClient(cc, sqlplus.WithLogger(logger))
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	opts := mcp.Options{
		DatabaseName: cfg.Oracle.Database,
		MaxRows:      cfg.Query.MaxRows,
		Logger:       logger,
	}
	if cfg.Sink.Driver != "" {
		writer, err := sink.OpenConfig(ctx, cfg.Sink, logger)
		if err != nil {
			return err
		}
		defer writer.Close()
		opts.Exporter = writer
		logger.Info("Export enabled",
			zap.String("driver", writer.DriverName()),
			zap.String("database", writer.DatabaseName()))
	}

	logger.Info("sqlplus MCP server started",
		zap.String("hostname", cfg.Oracle.Hostname),
		zap.String("database", cfg.Oracle.Database))

	err = mcp.NewServer(client, opts).Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		logger.Info("Server shutdown gracefully")
		return nil
	}
	return err
}
