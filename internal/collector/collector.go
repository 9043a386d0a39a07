// Package collector implements the risk/inventory accounting collector: it
// subscribes to fills and BBO updates, builds a per-fill time series of
// inventory/PnL/reservation state, and produces the run's
// risk_inventory_summary.json and risk_inventory.parquet artifacts.
package collector

import (
	"fmt"
	"math"

	"mmrl/internal/events"
	"mmrl/internal/execution/position"
	"mmrl/internal/execution/risk"
	"mmrl/internal/simengine"
)

// Sample is one row of the risk/inventory time series, recorded at every
// fill.
type Sample struct {
	Sequence      uint64
	Tick          uint64
	Symbol        string
	MidPrice      float64
	Inventory     float64
	AvgPrice      float64
	RealizedPnL   float64
	UnrealizedPnL float64
	Reserved      float64
}

// Collector accumulates the risk/inventory time series for a run.
type Collector struct {
	positions *position.Book
	riskMgr   *risk.Manager

	currentTick uint64
	lastMid     map[string]float64
	samples     []Sample
}

// New returns a collector reading position/risk state from positions and
// riskMgr.
func New(positions *position.Book, riskMgr *risk.Manager) *Collector {
	return &Collector{
		positions: positions,
		riskMgr:   riskMgr,
		lastMid:   make(map[string]float64),
	}
}

// Subscriptions implements simengine.Wireable.
func (c *Collector) Subscriptions() []simengine.Wiring {
	return []simengine.Wiring{
		{EventType: events.TypeEngineTick, Handler: c.onTick},
		{EventType: events.TypeBestBidAsk, Handler: c.onBBO},
		{EventType: events.TypeOrderFill, Handler: c.onFill},
	}
}

func (c *Collector) onTick(ev events.Event) error {
	tick, ok := ev.Payload.(events.EngineTick)
	if !ok {
		return fmt.Errorf("collector: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	c.currentTick = tick.Tick
	return nil
}

func (c *Collector) onBBO(ev events.Event) error {
	bbo, ok := ev.Payload.(events.BestBidAsk)
	if !ok {
		return fmt.Errorf("collector: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	if bbo.BidPrice > 0 && bbo.AskPrice > 0 {
		c.lastMid[bbo.Symbol] = (bbo.BidPrice + bbo.AskPrice) / 2
	}
	return nil
}

func (c *Collector) onFill(ev events.Event) error {
	f, ok := ev.Payload.(events.OrderFill)
	if !ok {
		return fmt.Errorf("collector: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}

	pos := c.positions.Snapshot(f.Symbol)
	mid, haveMid := c.lastMid[f.Symbol]
	unrealized := 0.0
	if haveMid && pos.Inventory != 0 {
		unrealized = pos.Inventory * (mid - pos.AvgPrice)
	}

	c.samples = append(c.samples, Sample{
		Sequence:      ev.Sequence,
		Tick:          c.currentTick,
		Symbol:        f.Symbol,
		MidPrice:      mid,
		Inventory:     pos.Inventory,
		AvgPrice:      pos.AvgPrice,
		RealizedPnL:   pos.RealizedPnL,
		UnrealizedPnL: unrealized,
		Reserved:      c.riskMgr.Reserved(f.Symbol),
	})
	return nil
}

// Samples returns the accumulated time series, in recording order.
func (c *Collector) Samples() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

// SymbolSummary is the terminal accounting snapshot for one symbol.
type SymbolSummary struct {
	Symbol             string  `json:"symbol"`
	FinalInventory     float64 `json:"final_inventory"`
	FinalAvgPrice      float64 `json:"final_avg_price"`
	FinalRealizedPnL   float64 `json:"final_realized_pnl"`
	FinalUnrealizedPnL float64 `json:"final_unrealized_pnl"`
	MaxAbsInventory    float64 `json:"max_abs_inventory"`
	MaxReserved        float64 `json:"max_reserved"`
	FillCount          int     `json:"fill_count"`
}

// Summary is the full risk_inventory_summary.json document.
type Summary struct {
	Symbols map[string]SymbolSummary `json:"symbols"`
}

// BuildSummary aggregates the recorded samples into a per-symbol summary.
func (c *Collector) BuildSummary() Summary {
	bySymbol := make(map[string]SymbolSummary)
	for _, s := range c.samples {
		cur, ok := bySymbol[s.Symbol]
		if !ok {
			cur = SymbolSummary{Symbol: s.Symbol}
		}
		cur.FinalInventory = s.Inventory
		cur.FinalAvgPrice = s.AvgPrice
		cur.FinalRealizedPnL = s.RealizedPnL
		cur.FinalUnrealizedPnL = s.UnrealizedPnL
		cur.MaxAbsInventory = math.Max(cur.MaxAbsInventory, math.Abs(s.Inventory))
		cur.MaxReserved = math.Max(cur.MaxReserved, math.Abs(s.Reserved))
		cur.FillCount++
		bySymbol[s.Symbol] = cur
	}
	return Summary{Symbols: bySymbol}
}
