// simrun is the CLI harness around the deterministic simulation core. It
// loads an operator-facing harness config, assembles a run spec (from a
// supplied config.json or from harness defaults), wires the engine, drives
// the run to completion, and persists the run-artifact contract: the core
// itself never touches argv, env, or the filesystem beyond the journal and
// the risk/inventory artifacts handed to it.
//
// Architecture:
//
//	main.go                    — entry point: loads harness config, assembles a run, drives it, persists artifacts
//	internal/assembly          — wires bus + engine + every mode-specific component into a RunHandle
//	internal/simengine         — engine state, lifecycle, tick driver, router
//	internal/simbus            — the synchronous pub/sub registry
//	internal/marketdata/...    — order book + replay data source/adapter
//	internal/execution/...     — paper venue, fill models, risk manager, position accounting
//	internal/strategy/...      — fixed-spread quoting state machine
//	internal/journal           — append-only JSONL event log
//	internal/collector         — risk/inventory time series + artifact writers
//	internal/runspec/runartifacts — the canonical config.json / meta.json / path contract
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mmrl/internal/assembly"
	"mmrl/internal/collector"
	"mmrl/internal/harness"
	"mmrl/internal/marketdata/replay"
	"mmrl/internal/runartifacts"
	"mmrl/internal/runspec"
)

func main() {
	cfgPath := flag.String("config", "configs/harness.yaml", "path to the harness config file")
	runID := flag.String("run-id", "", "run id (defaults to a timestamp-derived id)")
	runSpecPath := flag.String("run-spec", "", "path to a run-specific config.json (overrides harness defaults)")
	replayPath := flag.String("replay", "", "path to a replay JSONL file (required for paper_replay_l2 mode)")
	mode := flag.String("mode", string(runspec.ModeReplayL2), "marketdata mode: paper_replay_l2 | paper_external_bbo | paper_no_marketdata")
	flag.Parse()

	cfg, err := harness.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load harness config", "error", err, "path", *cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid harness config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	id := *runID
	if id == "" {
		id = fmt.Sprintf("run-%d", time.Now().UnixNano())
	}

	spec, err := loadOrBuildSpec(*runSpecPath, cfg, runspec.MarketDataMode(*mode), *replayPath)
	if err != nil {
		logger.Error("failed to build run spec", "error", err)
		os.Exit(1)
	}
	if err := spec.Validate(); err != nil {
		logger.Error("invalid run spec", "error", err)
		os.Exit(1)
	}

	paths := runartifacts.New(filepath.Join(cfg.RunsDir, id))
	if err := paths.EnsureDir(); err != nil {
		logger.Error("failed to create run directory", "error", err)
		os.Exit(1)
	}
	if err := runartifacts.WriteJSONAtomic(paths.ConfigJSON(), spec); err != nil {
		logger.Error("failed to write config.json", "error", err)
		os.Exit(1)
	}

	if err := run(id, spec, paths, cfg, logger, *replayPath); err != nil {
		logger.Error("run failed", "error", err, "run_id", id)
		os.Exit(1)
	}
	logger.Info("run complete", "run_id", id, "dir", paths.Dir)
}

func run(id string, spec *runspec.Spec, paths runartifacts.Paths, cfg *harness.Config, logger *slog.Logger, replayPath string) error {
	var source replay.DataSource
	if spec.MarketData.Mode == runspec.ModeReplayL2 {
		f, err := os.Open(replayPath)
		if err != nil {
			return fmt.Errorf("open replay file: %w", err)
		}
		defer f.Close()
		source = replay.NewJSONLDataSource(f)
	}

	handle, err := assembly.Assemble(assembly.Options{
		Spec:           spec,
		RunID:          id,
		Paths:          paths,
		Logger:         logger,
		JournalDurable: cfg.Defaults.JournalDurable,
		ReplaySource:   source,
	})
	if err != nil {
		return fmt.Errorf("assemble run: %w", err)
	}
	defer handle.Close()

	specHash, err := spec.Fingerprint()
	if err != nil {
		return fmt.Errorf("fingerprint spec: %w", err)
	}
	components := make([]runartifacts.ComponentRecord, 0, len(handle.Router.Wirings()))
	for _, c := range handle.Router.Wirings() {
		components = append(components, runartifacts.ComponentRecord{Type: c.Type, Module: c.Module})
	}
	meta := runartifacts.Meta{
		RunID:         id,
		SpecHash:      specHash,
		Symbol:        spec.Symbol,
		Mode:          string(spec.MarketData.Mode),
		StrategyKind:  string(spec.Strategy.Kind),
		ExecutionKind: string(spec.Execution.Kind),
		Components:    components,
		RouterWiring:  components,
	}
	if err := runartifacts.WriteJSONAtomic(paths.MetaJSON(), meta); err != nil {
		return fmt.Errorf("write meta.json: %w", err)
	}

	if startErr := handle.Engine.Start(); startErr != nil {
		if emitErr := handle.Engine.EmitError("run_failed", startErr.Error()); emitErr != nil {
			logger.Error("failed to emit engine_error", "error", emitErr)
		}
		return fmt.Errorf("start engine: %w", startErr)
	}
	if stopErr := handle.Engine.Stop(); stopErr != nil {
		return fmt.Errorf("stop engine: %w", stopErr)
	}

	summary := handle.Collector.BuildSummary()
	if err := runartifacts.WriteJSONAtomic(paths.RiskInventorySummaryJSON(), summary); err != nil {
		return fmt.Errorf("write risk_inventory_summary.json: %w", err)
	}
	if err := collector.WriteParquet(paths.RiskInventoryParquet(), handle.Collector.Samples()); err != nil {
		return fmt.Errorf("write risk_inventory.parquet: %w", err)
	}

	return nil
}

func loadOrBuildSpec(runSpecPath string, cfg *harness.Config, mode runspec.MarketDataMode, replayPath string) (*runspec.Spec, error) {
	if runSpecPath != "" {
		return readSpec(runSpecPath)
	}

	d := cfg.Defaults
	var md runspec.MarketData
	md.Mode = mode
	if mode == runspec.ModeReplayL2 {
		md.ReplayL2 = &runspec.ReplayL2Config{Path: replayPath}
	}

	return &runspec.Spec{
		SchemaVersion: 1,
		Symbol:        d.Symbol,
		CreatedAtUTC:  time.Now().UTC().Format(time.RFC3339),
		MarketData:    md,
		Execution:     runspec.Execution{Kind: runspec.ExecutionPaper},
		Risk: runspec.RiskConfig{
			MaxOrderQty:      d.MaxOrderQty,
			MaxOrderNotional: d.MaxOrderNotional,
			MaxAbsInventory:  d.MaxAbsInventory,
		},
		Strategy: runspec.Strategy{
			Kind: runspec.StrategyFixedSpread,
			FixedSpread: &runspec.FixedSpreadConfig{
				Spread:                d.Spread,
				OrderSize:             d.OrderSize,
				MaxInventory:          d.MaxInventory,
				InventorySkewK:        d.InventorySkewK,
				MinMidMove:            d.MinMidMove,
				MinTicksBetweenQuotes: d.MinTicksBetweenQuotes,
			},
		},
		MaxTicks: d.MaxTicks,
	}, nil
}

func readSpec(path string) (*runspec.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run spec: %w", err)
	}
	var spec runspec.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode run spec: %w", err)
	}
	return &spec, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
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
