// Package harness defines the CLI runner's own configuration — where runs
// live, default simulation parameters, and logging — loaded from a YAML
// file with env var overrides the same way the original bot's config
// package does it.
package harness

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the CLI harness's top-level configuration. It is distinct
// from a run's own config.json: this is the operator-facing defaults
// file, config.json is the frozen per-run record assembly writes.
type Config struct {
	RunsDir  string         `mapstructure:"runs_dir"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// LoggingConfig controls the slog handler the CLI constructs.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultsConfig seeds a run spec when the caller does not supply a
// run-specific config.json.
type DefaultsConfig struct {
	Symbol                string  `mapstructure:"symbol"`
	MaxTicks              uint64  `mapstructure:"max_ticks"`
	MaxOrderQty           float64 `mapstructure:"max_order_qty"`
	MaxOrderNotional      float64 `mapstructure:"max_order_notional"`
	MaxAbsInventory       float64 `mapstructure:"max_abs_inventory"`
	Spread                float64 `mapstructure:"spread"`
	OrderSize             float64 `mapstructure:"order_size"`
	MaxInventory          float64 `mapstructure:"max_inventory"`
	InventorySkewK        float64 `mapstructure:"inventory_skew_k"`
	MinMidMove            float64 `mapstructure:"min_mid_move"`
	MinTicksBetweenQuotes uint64  `mapstructure:"min_ticks_between_quotes"`
	JournalDurable        bool    `mapstructure:"journal_durable"`
}

// Load reads the harness config from a YAML file, with HARNESS_* env var
// overrides for anything not worth editing the file for.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("HARNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("runs_dir", "runs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("harness: read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("harness: unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields required to assemble a default run spec.
func (c *Config) Validate() error {
	if c.RunsDir == "" {
		return fmt.Errorf("harness: runs_dir is required")
	}
	d := c.Defaults
	if d.Symbol == "" {
		return fmt.Errorf("harness: defaults.symbol is required")
	}
	if d.MaxTicks == 0 {
		return fmt.Errorf("harness: defaults.max_ticks must be > 0")
	}
	if d.MaxOrderQty <= 0 || d.MaxAbsInventory <= 0 {
		return fmt.Errorf("harness: defaults.max_order_qty and defaults.max_abs_inventory must be > 0")
	}
	if d.Spread <= 0 || d.OrderSize <= 0 || d.MaxInventory <= 0 {
		return fmt.Errorf("harness: defaults.spread, order_size, and max_inventory must be > 0")
	}
	if d.MinTicksBetweenQuotes == 0 {
		return fmt.Errorf("harness: defaults.min_ticks_between_quotes must be >= 1")
	}
	return nil
}
