package orderbook

import (
	"fmt"

	"mmrl/internal/events"
	"mmrl/internal/simengine"
)

// Emitter is the subset of *simengine.Engine the adapter needs: allocate a
// sequence and publish an event.
type Emitter interface {
	Emit(eventType events.Type, payload events.Payload) error
}

// Adapter subscribes to market.order_book_level, folds each update into a
// per-symbol book, and emits market.best_bid_ask only when the four-tuple
// differs from the last tuple emitted for that symbol.
type Adapter struct {
	emitter Emitter
	books   map[string]*Book
	lastBBO map[string]events.BestBidAsk
}

// NewAdapter returns an adapter that publishes through emitter.
func NewAdapter(emitter Emitter) *Adapter {
	return &Adapter{
		emitter: emitter,
		books:   make(map[string]*Book),
		lastBBO: make(map[string]events.BestBidAsk),
	}
}

// Subscriptions implements simengine.Wireable.
func (a *Adapter) Subscriptions() []simengine.Wiring {
	return []simengine.Wiring{
		{EventType: events.TypeOrderBookLevel, Handler: a.onLevel},
	}
}

func (a *Adapter) onLevel(ev events.Event) error {
	level, ok := ev.Payload.(events.OrderBookLevel)
	if !ok {
		return fmt.Errorf("orderbook: unexpected payload type %T for %s", ev.Payload, ev.EventType)
	}

	book := a.books[level.Symbol]
	if book == nil {
		book = New(level.Symbol)
		a.books[level.Symbol] = book
	}
	if err := book.Apply(level.Side, level.Price, level.Size); err != nil {
		return err
	}

	bid, bidOK, ask, askOK := book.Best()
	bbo := events.BestBidAsk{Symbol: level.Symbol}
	if bidOK {
		bbo.BidPrice, bbo.BidSize = bid.Price, bid.Size
	}
	if askOK {
		bbo.AskPrice, bbo.AskSize = ask.Price, ask.Size
	}

	if prev, seen := a.lastBBO[level.Symbol]; seen && prev.Equal(bbo) {
		return nil
	}
	a.lastBBO[level.Symbol] = bbo
	return a.emitter.Emit(events.TypeBestBidAsk, bbo)
}

// Book returns the per-symbol book, for inspection in tests and
// diagnostics.
func (a *Adapter) Book(symbol string) (*Book, bool) {
	b, ok := a.books[symbol]
	return b, ok
}
