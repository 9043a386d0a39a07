package runspec

import "testing"

func validSpec() *Spec {
	return &Spec{
		SchemaVersion: 1,
		Symbol:        "BTC-USD",
		MarketData:    MarketData{Mode: ModeNoMarketData},
		Execution:     Execution{Kind: ExecutionPaper},
		Risk:          RiskConfig{MaxOrderQty: 5, MaxAbsInventory: 10},
		Strategy: Strategy{
			Kind: StrategyFixedSpread,
			FixedSpread: &FixedSpreadConfig{
				Spread: 1, OrderSize: 1, MaxInventory: 10, MinTicksBetweenQuotes: 1,
			},
		},
		MaxTicks: 100,
	}
}

func TestValidateAcceptsWellFormedSpec(t *testing.T) {
	t.Parallel()

	if err := validSpec().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	s := validSpec()
	s.MarketData.Mode = "bogus"
	if err := s.Validate(); err == nil {
		t.Error("expected error for unknown marketdata mode")
	}
}

func TestValidateRequiresReplayPathForReplayMode(t *testing.T) {
	t.Parallel()

	s := validSpec()
	s.MarketData.Mode = ModeReplayL2
	if err := s.Validate(); err == nil {
		t.Error("expected error when replay_l2 config is missing")
	}
	s.MarketData.ReplayL2 = &ReplayL2Config{Path: "data.jsonl"}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil once path is set", err)
	}
}

func TestValidateRejectsMissingRiskLimits(t *testing.T) {
	t.Parallel()

	s := validSpec()
	s.Risk.MaxOrderQty = 0
	if err := s.Validate(); err == nil {
		t.Error("expected error for zero max_order_qty")
	}
}

func TestValidateRejectsZeroMaxTicks(t *testing.T) {
	t.Parallel()

	s := validSpec()
	s.MaxTicks = 0
	if err := s.Validate(); err == nil {
		t.Error("expected error for zero max_ticks")
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := validSpec().Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	b, err := validSpec().Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if a != b {
		t.Errorf("Fingerprint() not deterministic: %q != %q", a, b)
	}
}

func TestFingerprintDiffersOnFieldChange(t *testing.T) {
	t.Parallel()

	a, _ := validSpec().Fingerprint()
	s2 := validSpec()
	s2.Symbol = "ETH-USD"
	b, _ := s2.Fingerprint()
	if a == b {
		t.Error("Fingerprint() should differ when a field changes")
	}
}

func TestCanonicalJSONProducesSortedKeysNoWhitespace(t *testing.T) {
	t.Parallel()

	data, err := CanonicalJSON(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	if string(data) != `{"a":2,"b":1}` {
		t.Errorf("CanonicalJSON() = %q, want sorted-key compact JSON", data)
	}
}
