package collector

import (
	"io"
	"log/slog"
	"testing"

	"mmrl/internal/events"
	"mmrl/internal/execution/position"
	"mmrl/internal/execution/risk"
	"mmrl/pkg/types"
)

func testRiskManager() *risk.Manager {
	return risk.NewManager(risk.Limits{MaxOrderQty: 100, MaxAbsInventory: 100}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOnFillRecordsASample(t *testing.T) {
	t.Parallel()

	positions := position.NewBook()
	riskMgr := testRiskManager()
	c := New(positions, riskMgr)

	c.onTick(events.Event{Payload: events.EngineTick{Tick: 3}})
	c.onBBO(events.Event{Payload: events.BestBidAsk{Symbol: "BTC-USD", BidPrice: 99, AskPrice: 101}})
	positions.OnFill("BTC-USD", types.Buy, 1, 100)
	err := c.onFill(events.Event{Sequence: 5, Payload: events.OrderFill{
		Symbol: "BTC-USD", Side: types.Buy, FillPrice: 100, FillQuantity: 1, RemainingQuantity: 0,
	}})
	if err != nil {
		t.Fatalf("onFill() error = %v", err)
	}

	samples := c.Samples()
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	s := samples[0]
	if s.Tick != 3 || s.Sequence != 5 || s.Symbol != "BTC-USD" || s.MidPrice != 100 || s.Inventory != 1 {
		t.Errorf("sample = %+v, unexpected fields", s)
	}
}

func TestBuildSummaryAggregatesPerSymbol(t *testing.T) {
	t.Parallel()

	positions := position.NewBook()
	riskMgr := testRiskManager()
	c := New(positions, riskMgr)

	positions.OnFill("BTC-USD", types.Buy, 2, 100)
	c.onFill(events.Event{Sequence: 1, Payload: events.OrderFill{Symbol: "BTC-USD", Side: types.Buy, FillQuantity: 2}})
	positions.OnFill("BTC-USD", types.Sell, 1, 110)
	c.onFill(events.Event{Sequence: 2, Payload: events.OrderFill{Symbol: "BTC-USD", Side: types.Sell, FillQuantity: 1}})

	summary := c.BuildSummary()
	s, ok := summary.Symbols["BTC-USD"]
	if !ok {
		t.Fatal("expected a BTC-USD summary entry")
	}
	if s.FillCount != 2 {
		t.Errorf("FillCount = %d, want 2", s.FillCount)
	}
	if s.FinalInventory != 1 {
		t.Errorf("FinalInventory = %v, want 1", s.FinalInventory)
	}
	if s.FinalRealizedPnL <= 0 {
		t.Errorf("FinalRealizedPnL = %v, want > 0 after a profitable partial close", s.FinalRealizedPnL)
	}
}
