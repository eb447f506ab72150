package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/quote-engine/internal/config"
	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name          string
		config        config.LoggingConfig
		override      string
		expectError   bool
		expectedLevel zapcore.Level
	}{
		{name: "Defaults", expectedLevel: zapcore.InfoLevel},
		{name: "Config level", config: config.LoggingConfig{Level: "debug"}, expectedLevel: zapcore.DebugLevel},
		{name: "Override wins", config: config.LoggingConfig{Level: "debug"}, override: "error", expectedLevel: zapcore.ErrorLevel},
		{name: "Warning alias", override: "warning", expectedLevel: zapcore.WarnLevel},
		{name: "Console format", config: config.LoggingConfig{Format: "console"}, expectedLevel: zapcore.InfoLevel},
		{name: "Invalid level", override: "loud", expectError: true},
		{name: "Invalid format", config: config.LoggingConfig{Format: "xml"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.expectError {
				if err == nil {
					t.Errorf("initializeLogger() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.expectedLevel) {
				t.Errorf("level %v not enabled", tt.expectedLevel)
			}
			if tt.expectedLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.expectedLevel-1) {
				t.Errorf("level %v unexpectedly enabled", tt.expectedLevel-1)
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quote-engine.log")

	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file = %q, expected the JSON entry", data)
	}
}

func newTestApp(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:   "quote-engine",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level"},
		},
		Commands: []*cli.Command{runCommand(), serveCommand()},
	}
}

func TestRunCommand(t *testing.T) {
	example := filepath.Join("..", "..", constants.ExampleConfigFile)

	tests := []struct {
		name        string
		args        []string
		expectError bool
		contains    string
	}{
		{
			name:     "Pretty output",
			args:     []string{"--log-level", "error", "run", "--config", example},
			contains: "--- Amortization schedule Equipment loan ---",
		},
		{
			name:     "CSV override",
			args:     []string{"--log-level", "error", "run", "--config", example, "--output-format", "csv"},
			contains: "# Equipment loan\nperiod,paymentDueDate,",
		},
		{
			name:     "JSON override",
			args:     []string{"--log-level", "error", "run", "--config", example, "--output-format", "json"},
			contains: `"name": "Interest-free bridge"`,
		},
		{
			name:        "Invalid output format",
			args:        []string{"--log-level", "error", "run", "--config", example, "--output-format", "xml"},
			expectError: true,
		},
		{
			name:        "Missing config",
			args:        []string{"run", "--config", filepath.Join(t.TempDir(), "missing.yaml")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := newTestApp(&out).RunContext(context.Background(), append([]string{"quote-engine"}, tt.args...))
			if tt.expectError {
				if err == nil {
					t.Errorf("Run() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.contains) {
				t.Errorf("output missing %q", tt.contains)
			}
		})
	}
}

func TestLoadServerBands(t *testing.T) {
	bands, err := loadServerBands(context.Background(), nil, "")
	if err != nil || bands != nil {
		t.Errorf("loadServerBands(\"\") = %v, %v, expected nil, nil", bands, err)
	}

	bands, err = loadServerBands(context.Background(), nil, filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("loadServerBands() error = %v", err)
	}
	if len(bands) != 2 {
		t.Errorf("len(bands) = %d, expected 2", len(bands))
	}

	if _, err := loadServerBands(context.Background(), nil, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("loadServerBands() expected error for missing file")
	}
}
