package replay

import (
	"mmrl/internal/events"
	"mmrl/internal/simengine"
	"mmrl/pkg/types"
)

// Emitter is the subset of *simengine.Engine the adapter needs.
type Emitter interface {
	Emit(eventType events.Type, payload events.Payload) error
}

// Adapter subscribes to engine_tick. On each tick it pulls at most one
// delta from the underlying data source; once exhausted, further ticks
// are no-ops. For each delta it emits bid updates then ask updates, input
// order preserved within each side, each receiving a fresh sequence.
type Adapter struct {
	emitter Emitter
	source  DataSource
}

// NewAdapter returns an adapter pulling from source and publishing
// through emitter.
func NewAdapter(emitter Emitter, source DataSource) *Adapter {
	return &Adapter{emitter: emitter, source: source}
}

// Subscriptions implements simengine.Wireable.
func (a *Adapter) Subscriptions() []simengine.Wiring {
	return []simengine.Wiring{
		{EventType: events.TypeEngineTick, Handler: a.onTick},
	}
}

func (a *Adapter) onTick(events.Event) error {
	delta, ok, err := a.source.Next()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	for _, u := range delta.BidUpdates {
		if err := a.emitter.Emit(events.TypeOrderBookLevel, events.OrderBookLevel{
			Symbol: delta.Symbol, Side: types.BookBid, Price: u.Price, Size: u.Size,
		}); err != nil {
			return err
		}
	}
	for _, u := range delta.AskUpdates {
		if err := a.emitter.Emit(events.TypeOrderBookLevel, events.OrderBookLevel{
			Symbol: delta.Symbol, Side: types.BookAsk, Price: u.Price, Size: u.Size,
		}); err != nil {
			return err
		}
	}
	return nil
}
