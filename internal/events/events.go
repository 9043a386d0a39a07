// Package events defines the closed set of event-type tags and payload
// variants that flow across the bus (internal/simbus). Every event carries
// the common envelope fields plus one payload variant; payloads implement
// Payload so the journal can flatten them into a single sorted-key JSON
// line without a type switch at the call site.
package events

import (
	"time"

	"mmrl/pkg/types"
)

// Type is one of the closed set of event-type tags. Dotted prefixes group
// system, market, and order events the way the component design groups them.
type Type string

const (
	TypeRunStarted        Type = "system.run_started"
	TypeRunStopped        Type = "system.run_stopped"
	TypeEngineTick        Type = "system.engine_tick"
	TypeEngineError       Type = "system.engine_error"
	TypeOrderBookLevel    Type = "market.order_book_level"
	TypeBestBidAsk        Type = "market.best_bid_ask"
	TypeTrade             Type = "market.trade"
	TypeOrderSubmitted    Type = "order.submitted"
	TypeOrderCancelReq    Type = "order.cancel_requested"
	TypeOrderAccepted     Type = "order.accepted"
	TypeOrderRejected     Type = "order.rejected"
	TypeOrderCanceled     Type = "order.canceled"
	TypeOrderFill         Type = "order.fill"
)

// All is the fixed, non-wildcard set of event types the journal subscribes
// to. Order is immaterial — the journal registers each independently.
var All = []Type{
	TypeRunStarted, TypeRunStopped, TypeEngineTick, TypeEngineError,
	TypeOrderBookLevel, TypeBestBidAsk, TypeTrade,
	TypeOrderSubmitted, TypeOrderCancelReq, TypeOrderAccepted,
	TypeOrderRejected, TypeOrderCanceled, TypeOrderFill,
}

// Payload is implemented by every event variant. Fields returns the
// variant's data as a flat map so it can be merged into the envelope for
// journal serialization without per-variant marshaling code.
type Payload interface {
	Fields() map[string]any
}

// Event is the common envelope. Sequence is the sole ordering key for
// replay; EventID and TimestampUTC are excluded from determinism
// comparisons per the replay-equality contract.
type Event struct {
	EventID      string
	TimestampUTC time.Time
	EventType    Type
	Sequence     uint64
	Payload      Payload
}

// Flatten merges the envelope and payload fields into a single map,
// suitable for sorted-key JSON encoding by the journal.
func (e Event) Flatten() map[string]any {
	out := map[string]any{
		"event_id":     e.EventID,
		"timestamp_utc": e.TimestampUTC.UTC().Format(time.RFC3339Nano),
		"event_type":   string(e.EventType),
		"sequence":     e.Sequence,
	}
	if e.Payload != nil {
		for k, v := range e.Payload.Fields() {
			out[k] = v
		}
	}
	return out
}

// ————————————————————————————————————————————————————————————————————————
// System variants
// ————————————————————————————————————————————————————————————————————————

type RunStarted struct{}

func (RunStarted) Fields() map[string]any { return map[string]any{} }

type RunStopped struct{}

func (RunStopped) Fields() map[string]any { return map[string]any{} }

type EngineTick struct {
	Tick uint64
}

func (p EngineTick) Fields() map[string]any {
	return map[string]any{"tick": p.Tick}
}

type EngineError struct {
	ErrorType string
	Message   string
}

func (p EngineError) Fields() map[string]any {
	return map[string]any{"error_type": p.ErrorType, "message": p.Message}
}

// ————————————————————————————————————————————————————————————————————————
// Market variants
// ————————————————————————————————————————————————————————————————————————

type OrderBookLevel struct {
	Symbol string
	Side   types.BookSide
	Price  float64
	Size   float64
}

func (p OrderBookLevel) Fields() map[string]any {
	return map[string]any{
		"symbol": p.Symbol,
		"side":   string(p.Side),
		"price":  p.Price,
		"size":   p.Size,
	}
}

type BestBidAsk struct {
	Symbol   string
	BidPrice float64
	BidSize  float64
	AskPrice float64
	AskSize  float64
}

func (p BestBidAsk) Fields() map[string]any {
	return map[string]any{
		"symbol":    p.Symbol,
		"bid_price": p.BidPrice,
		"bid_size":  p.BidSize,
		"ask_price": p.AskPrice,
		"ask_size":  p.AskSize,
	}
}

// Equal reports whether two BBO tuples match by exact field equality, the
// comparison the order-book adapter uses to suppress no-op emissions.
func (p BestBidAsk) Equal(o BestBidAsk) bool {
	return p.Symbol == o.Symbol &&
		p.BidPrice == o.BidPrice && p.BidSize == o.BidSize &&
		p.AskPrice == o.AskPrice && p.AskSize == o.AskSize
}

type Trade struct {
	Symbol        string
	Price         float64
	Size          float64
	AggressorSide types.Side
}

func (p Trade) Fields() map[string]any {
	return map[string]any{
		"symbol":         p.Symbol,
		"price":          p.Price,
		"size":           p.Size,
		"aggressor_side": string(p.AggressorSide),
	}
}

// ————————————————————————————————————————————————————————————————————————
// Order variants
// ————————————————————————————————————————————————————————————————————————

type OrderSubmitted struct {
	Symbol      string
	OrderID     string
	Side        types.Side
	OrderType   types.OrderType
	TimeInForce types.TimeInForce
	Price       *float64
	Quantity    float64
}

func (p OrderSubmitted) Fields() map[string]any {
	return map[string]any{
		"symbol":        p.Symbol,
		"order_id":      p.OrderID,
		"side":          string(p.Side),
		"order_type":    string(p.OrderType),
		"time_in_force": string(p.TimeInForce),
		"price":         optFloat(p.Price),
		"quantity":      p.Quantity,
	}
}

type OrderCancelRequested struct {
	Symbol  string
	OrderID string
}

func (p OrderCancelRequested) Fields() map[string]any {
	return map[string]any{"symbol": p.Symbol, "order_id": p.OrderID}
}

type OrderAccepted struct {
	Symbol   string
	OrderID  string
	Side     types.Side
	Price    *float64
	Quantity float64
}

func (p OrderAccepted) Fields() map[string]any {
	return map[string]any{
		"symbol":   p.Symbol,
		"order_id": p.OrderID,
		"side":     string(p.Side),
		"price":    optFloat(p.Price),
		"quantity": p.Quantity,
	}
}

type OrderRejected struct {
	Symbol  string
	OrderID string
	Reason  string
}

func (p OrderRejected) Fields() map[string]any {
	return map[string]any{"symbol": p.Symbol, "order_id": p.OrderID, "reason": p.Reason}
}

type OrderCanceled struct {
	Symbol  string
	OrderID string
}

func (p OrderCanceled) Fields() map[string]any {
	return map[string]any{"symbol": p.Symbol, "order_id": p.OrderID}
}

type OrderFill struct {
	Symbol            string
	OrderID           string
	Side              types.Side
	FillPrice         float64
	FillQuantity      float64
	RemainingQuantity float64
	Fee               float64
	Liquidity         *string
}

func (p OrderFill) Fields() map[string]any {
	var liquidity any
	if p.Liquidity != nil {
		liquidity = *p.Liquidity
	}
	return map[string]any{
		"symbol":             p.Symbol,
		"order_id":           p.OrderID,
		"side":               string(p.Side),
		"fill_price":         p.FillPrice,
		"fill_quantity":      p.FillQuantity,
		"remaining_quantity": p.RemainingQuantity,
		"fee":                p.Fee,
		"liquidity":          liquidity,
	}
}

func optFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
