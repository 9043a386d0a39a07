package harness

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeTestConfig(t, `
defaults:
  symbol: BTC-USD
  max_ticks: 10
  max_order_qty: 1
  max_abs_inventory: 5
  spread: 1
  order_size: 1
  max_inventory: 5
  min_ticks_between_quotes: 1
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RunsDir != "runs" {
		t.Errorf("RunsDir = %q, want default %q", cfg.RunsDir, "runs")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want defaulted info/json", cfg.Logging)
	}
	if cfg.Defaults.Symbol != "BTC-USD" {
		t.Errorf("Defaults.Symbol = %q, want BTC-USD", cfg.Defaults.Symbol)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error loading a missing config file")
	}
}

func TestValidateRejectsMissingSymbol(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		RunsDir: "runs",
		Defaults: DefaultsConfig{
			MaxTicks: 10, MaxOrderQty: 1, MaxAbsInventory: 5,
			Spread: 1, OrderSize: 1, MaxInventory: 5, MinTicksBetweenQuotes: 1,
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a missing defaults.symbol")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		RunsDir: "runs",
		Defaults: DefaultsConfig{
			Symbol: "BTC-USD", MaxTicks: 10, MaxOrderQty: 1, MaxAbsInventory: 5,
			Spread: 1, OrderSize: 1, MaxInventory: 5, MinTicksBetweenQuotes: 1,
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
