// Package fixedspread implements the fixed-spread market-making strategy:
// a BBO-driven quoting state machine with cancel/replace discipline,
// inventory skew, and latest-intent-wins pending-replacement semantics.
package fixedspread

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"mmrl/internal/events"
	"mmrl/internal/simengine"
	"mmrl/pkg/types"
)

// Emitter is the subset of *simengine.Engine the strategy needs: publish
// an event and read the current run id / tick for deterministic order ids.
type Emitter interface {
	Emit(eventType events.Type, payload events.Payload) error
	State() simengine.State
}

// Config holds the fixed-spread strategy's tunable parameters.
type Config struct {
	Symbol                string
	Spread                float64
	OrderSize             float64
	MaxInventory          float64
	InventorySkewK        float64
	MinMidMove            float64
	MinTicksBetweenQuotes uint64
}

type sideState struct {
	HasActive    bool
	ActiveID     string
	ActivePrice  float64
	HasPending   bool
	PendingPrice float64
	PendingQty   float64
}

// Strategy is the fixed-spread quoting state machine for one symbol.
type Strategy struct {
	emitter Emitter
	cfg     Config

	inventory float64

	hasLastMid bool
	lastMid    float64

	hasLastQuoteTick bool
	lastQuoteTick    uint64

	bid sideState
	ask sideState
}

// New returns a fixed-spread strategy publishing through emitter.
func New(emitter Emitter, cfg Config) *Strategy {
	return &Strategy{emitter: emitter, cfg: cfg}
}

// Subscriptions implements simengine.Wireable.
func (s *Strategy) Subscriptions() []simengine.Wiring {
	return []simengine.Wiring{
		{EventType: events.TypeBestBidAsk, Handler: s.onBBO},
		{EventType: events.TypeOrderCanceled, Handler: s.onCanceled},
		{EventType: events.TypeOrderFill, Handler: s.onFill},
	}
}

// Inventory returns the strategy's local signed inventory accumulator.
func (s *Strategy) Inventory() float64 { return s.inventory }

func (s *Strategy) onBBO(ev events.Event) error {
	bbo, ok := ev.Payload.(events.BestBidAsk)
	if !ok {
		return fmt.Errorf("fixedspread: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	if bbo.Symbol != s.cfg.Symbol {
		return nil
	}
	if !(bbo.BidPrice > 0) || !(bbo.AskPrice > 0) || bbo.AskPrice <= bbo.BidPrice {
		return nil
	}

	tick := s.emitter.State().Tick
	mid := (bbo.BidPrice + bbo.AskPrice) / 2

	if s.hasLastQuoteTick && tick-s.lastQuoteTick < s.cfg.MinTicksBetweenQuotes {
		return nil
	}
	if s.hasLastMid && math.Abs(mid-s.lastMid) < s.cfg.MinMidMove {
		return nil
	}

	s.lastMid, s.hasLastMid = mid, true
	s.lastQuoteTick, s.hasLastQuoteTick = tick, true

	skew := s.cfg.InventorySkewK * s.inventory
	bidPrice := mid - s.cfg.Spread/2 - skew
	askPrice := mid + s.cfg.Spread/2 - skew

	bidQty, askQty := s.cfg.OrderSize, s.cfg.OrderSize
	if s.inventory >= s.cfg.MaxInventory {
		bidQty = 0
	}
	if s.inventory <= -s.cfg.MaxInventory {
		askQty = 0
	}

	if err := s.reconcileSide(types.Buy, &s.bid, bidPrice, bidQty, tick); err != nil {
		return err
	}
	return s.reconcileSide(types.Sell, &s.ask, askPrice, askQty, tick)
}

// reconcileSide implements the per-side quote convergence: submit if no
// active quote exists, no-op if the active quote is already at this
// price, otherwise stage a pending replacement and issue a single
// cancel_requested (latest-intent-wins: a second move before the cancel
// resolves simply overwrites the pending tuple).
func (s *Strategy) reconcileSide(side types.Side, state *sideState, price, qty float64, tick uint64) error {
	if qty <= 0 {
		return nil
	}

	if !state.HasActive {
		id := s.orderID(side, price, qty, tick)
		state.HasActive = true
		state.ActiveID = id
		state.ActivePrice = price
		priceCopy := price
		return s.emitter.Emit(events.TypeOrderSubmitted, events.OrderSubmitted{
			Symbol: s.cfg.Symbol, OrderID: id, Side: side,
			OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGTC,
			Price: &priceCopy, Quantity: qty,
		})
	}

	if math.Abs(state.ActivePrice-price) < types.Epsilon {
		return nil
	}

	alreadyPending := state.HasPending
	state.HasPending = true
	state.PendingPrice = price
	state.PendingQty = qty
	if alreadyPending {
		return nil
	}
	return s.emitter.Emit(events.TypeOrderCancelReq, events.OrderCancelRequested{
		Symbol: s.cfg.Symbol, OrderID: state.ActiveID,
	})
}

func (s *Strategy) onCanceled(ev events.Event) error {
	c, ok := ev.Payload.(events.OrderCanceled)
	if !ok {
		return fmt.Errorf("fixedspread: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	if c.Symbol != s.cfg.Symbol {
		return nil
	}

	for _, pair := range []struct {
		side  types.Side
		state *sideState
	}{{types.Buy, &s.bid}, {types.Sell, &s.ask}} {
		state := pair.state
		if !state.HasActive || state.ActiveID != c.OrderID {
			continue
		}
		state.HasActive = false
		if !state.HasPending {
			return nil
		}
		tick := s.emitter.State().Tick
		id := s.orderID(pair.side, state.PendingPrice, state.PendingQty, tick)
		price := state.PendingPrice
		qty := state.PendingQty
		state.HasPending = false
		state.HasActive = true
		state.ActiveID = id
		state.ActivePrice = price
		return s.emitter.Emit(events.TypeOrderSubmitted, events.OrderSubmitted{
			Symbol: s.cfg.Symbol, OrderID: id, Side: pair.side,
			OrderType: types.OrderTypeLimit, TimeInForce: types.TIFGTC,
			Price: &price, Quantity: qty,
		})
	}
	return nil
}

func (s *Strategy) onFill(ev events.Event) error {
	f, ok := ev.Payload.(events.OrderFill)
	if !ok {
		return fmt.Errorf("fixedspread: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	if f.Symbol != s.cfg.Symbol {
		return nil
	}

	s.inventory += f.Side.Signed() * f.FillQuantity

	if f.RemainingQuantity > types.Epsilon {
		return nil
	}
	for _, state := range []*sideState{&s.bid, &s.ask} {
		if state.HasActive && state.ActiveID == f.OrderID {
			state.HasActive = false
			state.HasPending = false
		}
	}
	return nil
}

// orderID computes the deterministic, replay-reproducible order id:
// sha1(run_id | tick | side | price(8dp) | qty(8dp)) truncated to 16 hex
// chars.
func (s *Strategy) orderID(side types.Side, price, qty float64, tick uint64) string {
	priceStr := decimal.NewFromFloat(price).StringFixed(8)
	qtyStr := decimal.NewFromFloat(qty).StringFixed(8)
	runID := s.emitter.State().RunID
	input := fmt.Sprintf("%s|%d|%s|%s|%s", runID, tick, side, priceStr, qtyStr)
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}
