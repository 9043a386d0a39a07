// Package paper implements the in-process execution adapter that
// simulates order acknowledgement, risk-gated acceptance, and fills
// against the prevailing best bid/ask — the paper venue of the pipeline.
package paper

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"mmrl/internal/events"
	"mmrl/internal/execution/fillmodel"
	"mmrl/internal/execution/position"
	"mmrl/internal/execution/risk"
	"mmrl/internal/simengine"
	"mmrl/pkg/types"
)

// Emitter is the subset of *simengine.Engine the adapter needs.
type Emitter interface {
	Emit(eventType events.Type, payload events.Payload) error
}

// OrderRecord is the execution adapter's view of one order's lifecycle.
type OrderRecord struct {
	Symbol    string
	OrderID   string
	Side      types.Side
	Price     *float64
	Quantity  float64
	Remaining float64
	Status    types.OrderStatus
}

// Adapter is the paper execution venue: order state machine, risk gate,
// and fill model, wired to the bus.
type Adapter struct {
	emitter   Emitter
	risk      *risk.Manager
	fillModel fillmodel.Model
	positions *position.Book
	logger    *slog.Logger

	bboBySymbol  map[string]fillmodel.BBO
	ordersByID   map[string]*OrderRecord
	openBySymbol map[string]map[string]*OrderRecord
}

// NewAdapter returns a paper execution adapter gated by riskMgr and
// matched against fillModel, publishing through emitter.
func NewAdapter(emitter Emitter, riskMgr *risk.Manager, fillModel fillmodel.Model, positions *position.Book, logger *slog.Logger) *Adapter {
	return &Adapter{
		emitter:      emitter,
		risk:         riskMgr,
		fillModel:    fillModel,
		positions:    positions,
		logger:       logger,
		bboBySymbol:  make(map[string]fillmodel.BBO),
		ordersByID:   make(map[string]*OrderRecord),
		openBySymbol: make(map[string]map[string]*OrderRecord),
	}
}

// Subscriptions implements simengine.Wireable.
func (a *Adapter) Subscriptions() []simengine.Wiring {
	return []simengine.Wiring{
		{EventType: events.TypeOrderSubmitted, Handler: a.onSubmitted},
		{EventType: events.TypeOrderCancelReq, Handler: a.onCancelRequested},
		{EventType: events.TypeBestBidAsk, Handler: a.onBBO},
	}
}

func (a *Adapter) onSubmitted(ev events.Event) error {
	sub, ok := ev.Payload.(events.OrderSubmitted)
	if !ok {
		return fmt.Errorf("paper: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}

	check := a.risk.CheckNewOrder(sub.Symbol, sub.Side, sub.Quantity, sub.Price, sub.OrderID)
	if !check.OK {
		return a.emitter.Emit(events.TypeOrderRejected, events.OrderRejected{
			Symbol: sub.Symbol, OrderID: sub.OrderID, Reason: check.Reason,
		})
	}

	record := &OrderRecord{
		Symbol:    sub.Symbol,
		OrderID:   sub.OrderID,
		Side:      sub.Side,
		Price:     sub.Price,
		Quantity:  sub.Quantity,
		Remaining: sub.Quantity,
		Status:    types.OrderOpen,
	}
	a.ordersByID[record.OrderID] = record
	a.indexOpen(record)

	if err := a.emitter.Emit(events.TypeOrderAccepted, events.OrderAccepted{
		Symbol: sub.Symbol, OrderID: sub.OrderID, Side: sub.Side, Price: sub.Price, Quantity: sub.Quantity,
	}); err != nil {
		return err
	}

	if _, known := a.bboBySymbol[sub.Symbol]; known {
		return a.tryFill(record)
	}
	return nil
}

func (a *Adapter) onCancelRequested(ev events.Event) error {
	req, ok := ev.Payload.(events.OrderCancelRequested)
	if !ok {
		return fmt.Errorf("paper: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}

	record, known := a.ordersByID[req.OrderID]
	if !known || record.Symbol != req.Symbol || record.Status != types.OrderOpen {
		a.logger.Debug("cancel no-op", "order_id", req.OrderID, "symbol", req.Symbol)
		return nil
	}

	record.Status = types.OrderCanceled
	a.risk.OnCancel(record.OrderID)
	a.unindexOpen(record)

	return a.emitter.Emit(events.TypeOrderCanceled, events.OrderCanceled{
		Symbol: record.Symbol, OrderID: record.OrderID,
	})
}

func (a *Adapter) onBBO(ev events.Event) error {
	bbo, ok := ev.Payload.(events.BestBidAsk)
	if !ok {
		return fmt.Errorf("paper: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}
	a.bboBySymbol[bbo.Symbol] = fillmodel.BBO{
		BidPrice: bbo.BidPrice, BidSize: bbo.BidSize,
		AskPrice: bbo.AskPrice, AskSize: bbo.AskSize,
	}

	open := a.openBySymbol[bbo.Symbol]
	ids := make([]string, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		record, stillOpen := open[id]
		if !stillOpen {
			continue
		}
		if err := a.tryFill(record); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) tryFill(record *OrderRecord) error {
	bbo := a.bboBySymbol[record.Symbol]
	decision := a.fillModel.Decide(fillmodel.OrderView{
		Side: record.Side, Price: record.Price, Remaining: record.Remaining, Status: record.Status,
	}, bbo)
	if !decision.Executable {
		return nil
	}

	record.Remaining -= decision.FillQty
	if record.Remaining <= types.Epsilon {
		record.Remaining = math.Max(record.Remaining, 0)
		record.Status = types.OrderFilled
	}

	a.positions.OnFill(record.Symbol, record.Side, decision.FillQty, decision.FillPrice)
	a.risk.OnFill(record.Symbol, record.Side, decision.FillQty, record.OrderID, record.Remaining)

	if record.Status != types.OrderOpen {
		a.unindexOpen(record)
	}

	return a.emitter.Emit(events.TypeOrderFill, events.OrderFill{
		Symbol:            record.Symbol,
		OrderID:           record.OrderID,
		Side:              record.Side,
		FillPrice:         decision.FillPrice,
		FillQuantity:      decision.FillQty,
		RemainingQuantity: record.Remaining,
		Fee:               0,
	})
}

func (a *Adapter) indexOpen(record *OrderRecord) {
	bySymbol := a.openBySymbol[record.Symbol]
	if bySymbol == nil {
		bySymbol = make(map[string]*OrderRecord)
		a.openBySymbol[record.Symbol] = bySymbol
	}
	bySymbol[record.OrderID] = record
}

func (a *Adapter) unindexOpen(record *OrderRecord) {
	delete(a.openBySymbol[record.Symbol], record.OrderID)
}

// Order returns the current record for orderID, for tests and diagnostics.
func (a *Adapter) Order(orderID string) (OrderRecord, bool) {
	record, ok := a.ordersByID[orderID]
	if !ok {
		return OrderRecord{}, false
	}
	return *record, true
}
