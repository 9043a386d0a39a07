package simengine

import (
	"mmrl/internal/events"
	"mmrl/internal/simbus"
)

// TickDriver subscribes to run_started and, on receipt, publishes exactly
// MaxTicks engine_tick events in sequence, each carrying a freshly
// allocated tick and sequence. Tick allocation is monotone (+1 per event).
type TickDriver struct {
	engine   *Engine
	maxTicks uint64
}

// NewTickDriver returns a driver that emits maxTicks engine_tick events
// per run.
func NewTickDriver(engine *Engine, maxTicks uint64) *TickDriver {
	return &TickDriver{engine: engine, maxTicks: maxTicks}
}

// Subscriptions implements the wiring contract: a component exposes the
// (event_type, handler) pairs it wants registered on the bus.
func (d *TickDriver) Subscriptions() []Wiring {
	return []Wiring{
		{EventType: events.TypeRunStarted, Handler: d.onRunStarted},
	}
}

func (d *TickDriver) onRunStarted(events.Event) error {
	for i := uint64(0); i < d.maxTicks; i++ {
		tick, err := d.engine.AllocateTick()
		if err != nil {
			return err
		}
		if err := d.engine.Emit(events.TypeEngineTick, events.EngineTick{Tick: tick}); err != nil {
			return err
		}
	}
	return nil
}

// Wiring pairs an event type with the handler that should receive it; the
// capability contract every wireable component exposes via Subscriptions.
type Wiring struct {
	EventType events.Type
	Handler   simbus.Handler
}
