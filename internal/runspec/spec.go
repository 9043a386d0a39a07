// Package runspec defines the canonical run specification (config.json)
// and its content-addressed fingerprint.
package runspec

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// MarketDataMode selects which market-data wiring a run uses.
type MarketDataMode string

const (
	ModeNoMarketData MarketDataMode = "paper_no_marketdata"
	ModeExternalBBO  MarketDataMode = "paper_external_bbo"
	ModeReplayL2     MarketDataMode = "paper_replay_l2"
)

// ExecutionKind selects the execution adapter. Only "paper" exists today.
type ExecutionKind string

const ExecutionPaper ExecutionKind = "paper"

// StrategyKind selects the quoting strategy. Only "fixed_spread" exists
// today.
type StrategyKind string

const StrategyFixedSpread StrategyKind = "fixed_spread"

// ReplayL2Config points the replay data source at a JSONL file.
type ReplayL2Config struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

// MarketData selects the run's market-data wiring.
type MarketData struct {
	Mode      MarketDataMode  `json:"mode"`
	ReplayL2  *ReplayL2Config `json:"replay_l2,omitempty"`
}

// Execution selects the execution adapter.
type Execution struct {
	Kind ExecutionKind `json:"kind"`
}

// RiskConfig bounds the risk manager's pre-trade gate. config.json does
// not name this section in the distilled spec; it is carried over from
// the original risk/oms limits so the risk manager has somewhere to read
// its thresholds from (see SPEC_FULL.md's supplemented-features note).
type RiskConfig struct {
	MaxOrderQty      float64 `json:"max_order_qty"`
	MaxOrderNotional float64 `json:"max_order_notional,omitempty"`
	MaxAbsInventory  float64 `json:"max_abs_inventory"`
}

// FixedSpreadConfig is the fixed-spread strategy's tunable parameters.
type FixedSpreadConfig struct {
	Spread                float64 `json:"spread"`
	OrderSize             float64 `json:"order_size"`
	MaxInventory          float64 `json:"max_inventory"`
	InventorySkewK        float64 `json:"inventory_skew_k"`
	MinMidMove            float64 `json:"min_mid_move"`
	MinTicksBetweenQuotes uint64  `json:"min_ticks_between_quotes"`
}

// Strategy selects the quoting strategy and its parameters.
type Strategy struct {
	Kind        StrategyKind       `json:"kind"`
	FixedSpread *FixedSpreadConfig `json:"fixed_spread,omitempty"`
}

// Spec is the canonical run specification persisted as config.json.
type Spec struct {
	SchemaVersion int               `json:"schema_version"`
	Symbol        string            `json:"symbol"`
	CreatedAtUTC  string            `json:"created_at_utc"`
	Seed          *int64            `json:"seed,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	MarketData    MarketData        `json:"marketdata"`
	Execution     Execution         `json:"execution"`
	Risk          RiskConfig        `json:"risk"`
	Strategy      Strategy          `json:"strategy"`
	MaxTicks      uint64            `json:"max_ticks"`
}

// Validate checks the structural invariants config.json is required to
// satisfy before assembly.
func (s *Spec) Validate() error {
	switch s.MarketData.Mode {
	case ModeNoMarketData, ModeExternalBBO, ModeReplayL2:
	default:
		return fmt.Errorf("runspec: unknown marketdata mode %q", s.MarketData.Mode)
	}
	if s.MarketData.Mode == ModeReplayL2 && (s.MarketData.ReplayL2 == nil || s.MarketData.ReplayL2.Path == "") {
		return fmt.Errorf("runspec: marketdata.replay_l2.path required for mode %q", ModeReplayL2)
	}
	if s.Execution.Kind != ExecutionPaper {
		return fmt.Errorf("runspec: unknown execution kind %q", s.Execution.Kind)
	}
	if s.Strategy.Kind != StrategyFixedSpread {
		return fmt.Errorf("runspec: unknown strategy kind %q", s.Strategy.Kind)
	}
	fs := s.Strategy.FixedSpread
	if fs == nil {
		return fmt.Errorf("runspec: strategy.fixed_spread required for kind %q", StrategyFixedSpread)
	}
	if !(fs.Spread > 0) || !(fs.OrderSize > 0) || !(fs.MaxInventory > 0) {
		return fmt.Errorf("runspec: fixed_spread.spread, order_size, and max_inventory must be > 0")
	}
	if fs.InventorySkewK < 0 || fs.MinMidMove < 0 {
		return fmt.Errorf("runspec: fixed_spread.inventory_skew_k and min_mid_move must be >= 0")
	}
	if fs.MinTicksBetweenQuotes < 1 {
		return fmt.Errorf("runspec: fixed_spread.min_ticks_between_quotes must be >= 1")
	}
	if s.Symbol == "" {
		return fmt.Errorf("runspec: symbol required")
	}
	if !(s.Risk.MaxOrderQty > 0) || !(s.Risk.MaxAbsInventory > 0) {
		return fmt.Errorf("runspec: risk.max_order_qty and risk.max_abs_inventory must be > 0")
	}
	if s.MaxTicks == 0 {
		return fmt.Errorf("runspec: max_ticks must be > 0")
	}
	return nil
}

// Fingerprint returns sha256(json_canonical(spec)): the spec marshaled
// with sorted keys and no extraneous whitespace.
func (s *Spec) Fingerprint() (string, error) {
	canonical, err := CanonicalJSON(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalJSON marshals v through a round trip into map[string]any so
// that encoding/json's alphabetical map-key ordering produces a
// deterministic, sorted-key, compact-separator byte representation.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("runspec: marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("runspec: canonicalize: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("runspec: marshal canonical: %w", err)
	}
	return canonical, nil
}
