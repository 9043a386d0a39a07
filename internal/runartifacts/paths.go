// Package runartifacts defines the stable on-disk path contract for a run
// directory: config.json, meta.json, events.jsonl, and the optional
// downstream evaluation artifacts.
package runartifacts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves every artifact path relative to a run directory.
type Paths struct {
	Dir string
}

// New returns a Paths rooted at dir.
func New(dir string) Paths { return Paths{Dir: dir} }

// EnsureDir creates the run directory (and parents) if it does not exist.
// The directory itself is allocated by the external run manager per the
// run-artifacts contract; this mirrors that step for the CLI harness.
func (p Paths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("runartifacts: create run dir %s: %w", p.Dir, err)
	}
	return nil
}

func (p Paths) ConfigJSON() string              { return filepath.Join(p.Dir, "config.json") }
func (p Paths) MetaJSON() string                 { return filepath.Join(p.Dir, "meta.json") }
func (p Paths) EventsJSONL() string              { return filepath.Join(p.Dir, "events.jsonl") }
func (p Paths) MetricsJSON() string              { return filepath.Join(p.Dir, "metrics.json") }
func (p Paths) EvaluationJSON() string           { return filepath.Join(p.Dir, "evaluation.json") }
func (p Paths) RiskInventorySummaryJSON() string { return filepath.Join(p.Dir, "risk_inventory_summary.json") }
func (p Paths) RiskInventoryParquet() string     { return filepath.Join(p.Dir, "risk_inventory.parquet") }

// Meta is the wiring snapshot + provenance written once at assembly time.
type Meta struct {
	RunID         string            `json:"run_id"`
	SpecHash      string            `json:"spec_hash"`
	Symbol        string            `json:"symbol"`
	Mode          string            `json:"mode"`
	StrategyKind  string            `json:"strategy_kind"`
	ExecutionKind string            `json:"execution_kind"`
	Components    []ComponentRecord `json:"components"`
	RouterWiring  []ComponentRecord `json:"router_wiring"`
}

// ComponentRecord mirrors simengine.ComponentRecord; duplicated here (not
// imported) so this package has no dependency on the engine internals —
// it only describes the artifact shape.
type ComponentRecord struct {
	Type   string `json:"type"`
	Module string `json:"module"`
}
