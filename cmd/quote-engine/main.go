package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/internal/quotes"
	"github.com/iwvelando/quote-engine/internal/server"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/output"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/iwvelando/quote-engine/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:    "quote-engine",
		Usage:   "Price solar leases and solve loan amortization schedules",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level override (debug, info, warn, error)",
				EnvVars: []string{"QUOTE_ENGINE_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			// A missing .env is normal.
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zc.OutputPaths = []string{loggingConfig.OutputFile}
		zc.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zc.Build()
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Compute every lease and loan quote in a configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   constants.DefaultConfigFile,
				Usage:   "path to configuration file",
			},
			&cli.StringFlag{
				Name:  "output-format",
				Usage: "type of output override: pretty, csv, json",
			},
		},
		Action: runQuotes,
	}
}

func runQuotes(c *cli.Context) error {
	configLocation := c.String("config")
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if override := c.String("output-format"); override != "" {
		outputFormat = override
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.run"),
		)
	}

	results, err := quotes.Run(c.Context, logger, conf, time.Now())
	if err != nil {
		logger.Error("failed to compute quotes",
			zap.String("op", "main.run"),
			zap.Error(err),
		)
		return err
	}

	return output.Quotes(c.App.Writer, outputFormat, results)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the quote HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-config",
				Value:   constants.DefaultServerConfigFile,
				Usage:   "path to server configuration file",
				EnvVars: []string{"QUOTE_ENGINE_SERVER_CONFIG"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := server.LoadConfig(c.String("server-config"))
	if err != nil {
		return err
	}

	logger, err := initializeLogger(cfg.Logging, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	bands, err := loadServerBands(c.Context, logger, cfg.QuoteConfig)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, cfg.BodySizeBytes(), version, bands),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting quote API",
			zap.String("op", "main.serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySizeBytes", cfg.BodySizeBytes()),
			zap.Int("rateBands", len(bands)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down quote API",
			zap.String("op", "main.serve"),
			zap.String("signal", sig.String()),
		)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

// loadServerBands reads the default band table for lease requests that do not
// carry their own. An empty path means requests must always supply bands.
func loadServerBands(ctx context.Context, logger *zap.Logger, path string) ([]rateband.RateBand, error) {
	if path == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote configuration at %s: %w", path, err)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.loadServerBands"),
		)
	}
	bands, err := conf.LoadRateBands(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate bands: %w", err)
	}
	return bands, nil
}
