package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/quote-engine/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default body limit, got %d", cfg.BodySizeBytes())
	}
	if cfg.QuoteConfig != "" {
		t.Fatalf("expected no quote config, got %q", cfg.QuoteConfig)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), constants.DefaultServerConfigFile)

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 1M
quoteConfig: config.yaml
logging:
  level: debug
  format: console
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 1024*1024 {
		t.Fatalf("expected body limit override, got %d", cfg.BodySizeBytes())
	}
	if cfg.QuoteConfig != "config.yaml" {
		t.Fatalf("expected quote config override, got %s", cfg.QuoteConfig)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadConfigRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), constants.DefaultServerConfigFile)
	if err := os.WriteFile(path, []byte("maxBodySize: 12Q\n"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unsupported size unit")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input     string
		expected  int64
		expectErr bool
	}{
		{input: "", expected: constants.DefaultMaxBodySizeBytes},
		{input: "512", expected: 512},
		{input: "512B", expected: 512},
		{input: "256K", expected: 256 * 1024},
		{input: "256kb", expected: 256 * 1024},
		{input: " 2M ", expected: 2 * 1024 * 1024},
		{input: "K", expectErr: true},
		{input: "10T", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}
