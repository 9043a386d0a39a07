package paper

import (
	"io"
	"log/slog"
	"testing"

	"mmrl/internal/events"
	"mmrl/internal/execution/fillmodel"
	"mmrl/internal/execution/position"
	"mmrl/internal/execution/risk"
	"mmrl/pkg/types"
)

type recordingEmitter struct {
	emitted []events.Event
}

func (r *recordingEmitter) Emit(eventType events.Type, payload events.Payload) error {
	r.emitted = append(r.emitted, events.Event{EventType: eventType, Payload: payload})
	return nil
}

func (r *recordingEmitter) last() events.Event { return r.emitted[len(r.emitted)-1] }

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestAdapter() (*Adapter, *recordingEmitter) {
	rec := &recordingEmitter{}
	riskMgr := risk.NewManager(risk.Limits{MaxOrderQty: 100, MaxAbsInventory: 100}, testLogger())
	a := NewAdapter(rec, riskMgr, fillmodel.TopOfBookFull{}, position.NewBook(), testLogger())
	return a, rec
}

func price(p float64) *float64 { return &p }

func TestOnSubmittedAcceptsWithinLimits(t *testing.T) {
	t.Parallel()

	a, rec := newTestAdapter()
	err := a.onSubmitted(events.Event{EventType: events.TypeOrderSubmitted, Payload: events.OrderSubmitted{
		Symbol: "BTC-USD", OrderID: "o1", Side: types.Buy, Price: price(100), Quantity: 1,
	}})
	if err != nil {
		t.Fatalf("onSubmitted() error = %v", err)
	}
	if rec.last().EventType != events.TypeOrderAccepted {
		t.Errorf("last event = %s, want %s", rec.last().EventType, events.TypeOrderAccepted)
	}
}

func TestOnSubmittedRejectsOverLimit(t *testing.T) {
	t.Parallel()

	rec := &recordingEmitter{}
	riskMgr := risk.NewManager(risk.Limits{MaxOrderQty: 1, MaxAbsInventory: 100}, testLogger())
	a := NewAdapter(rec, riskMgr, fillmodel.TopOfBookFull{}, position.NewBook(), testLogger())

	err := a.onSubmitted(events.Event{EventType: events.TypeOrderSubmitted, Payload: events.OrderSubmitted{
		Symbol: "BTC-USD", OrderID: "o1", Side: types.Buy, Price: price(100), Quantity: 5,
	}})
	if err != nil {
		t.Fatalf("onSubmitted() error = %v", err)
	}
	last := rec.last()
	if last.EventType != events.TypeOrderRejected {
		t.Fatalf("last event = %s, want %s", last.EventType, events.TypeOrderRejected)
	}
	if reason := last.Payload.(events.OrderRejected).Reason; reason != risk.ReasonQtyExceedsMax {
		t.Errorf("Reason = %q, want %q", reason, risk.ReasonQtyExceedsMax)
	}
}

func TestOnBBOFillsCrossingOrder(t *testing.T) {
	t.Parallel()

	a, rec := newTestAdapter()
	a.onSubmitted(events.Event{Payload: events.OrderSubmitted{
		Symbol: "BTC-USD", OrderID: "o1", Side: types.Buy, Price: price(101), Quantity: 2,
	}})
	err := a.onBBO(events.Event{EventType: events.TypeBestBidAsk, Payload: events.BestBidAsk{
		Symbol: "BTC-USD", BidPrice: 99, BidSize: 5, AskPrice: 100, AskSize: 5,
	}})
	if err != nil {
		t.Fatalf("onBBO() error = %v", err)
	}
	last := rec.last()
	if last.EventType != events.TypeOrderFill {
		t.Fatalf("last event = %s, want %s", last.EventType, events.TypeOrderFill)
	}
	fill := last.Payload.(events.OrderFill)
	if fill.FillPrice != 100 || fill.FillQuantity != 2 || fill.RemainingQuantity != 0 {
		t.Errorf("fill = %+v, want price 100 qty 2 remaining 0", fill)
	}

	record, ok := a.Order("o1")
	if !ok || record.Status != types.OrderFilled {
		t.Errorf("Order(o1) = %+v (ok=%v), want status filled", record, ok)
	}
}

func TestOnCancelRequestedCancelsOpenOrder(t *testing.T) {
	t.Parallel()

	a, rec := newTestAdapter()
	a.onSubmitted(events.Event{Payload: events.OrderSubmitted{
		Symbol: "BTC-USD", OrderID: "o1", Side: types.Buy, Price: price(100), Quantity: 1,
	}})
	err := a.onCancelRequested(events.Event{EventType: events.TypeOrderCancelReq, Payload: events.OrderCancelRequested{
		Symbol: "BTC-USD", OrderID: "o1",
	}})
	if err != nil {
		t.Fatalf("onCancelRequested() error = %v", err)
	}
	if rec.last().EventType != events.TypeOrderCanceled {
		t.Errorf("last event = %s, want %s", rec.last().EventType, events.TypeOrderCanceled)
	}
	record, _ := a.Order("o1")
	if record.Status != types.OrderCanceled {
		t.Errorf("Status = %q, want canceled", record.Status)
	}
}

func TestOnCancelRequestedUnknownOrderIsNoop(t *testing.T) {
	t.Parallel()

	a, rec := newTestAdapter()
	err := a.onCancelRequested(events.Event{Payload: events.OrderCancelRequested{Symbol: "BTC-USD", OrderID: "unknown"}})
	if err != nil {
		t.Fatalf("onCancelRequested() error = %v", err)
	}
	if len(rec.emitted) != 0 {
		t.Errorf("emitted %d events for unknown cancel, want 0", len(rec.emitted))
	}
}
