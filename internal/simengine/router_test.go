package simengine

import (
	"testing"

	"mmrl/internal/events"
	"mmrl/internal/simbus"
)

type stubComponent struct{ called int }

func (s *stubComponent) Subscriptions() []Wiring {
	return []Wiring{
		{EventType: events.TypeEngineTick, Handler: func(events.Event) error {
			s.called++
			return nil
		}},
	}
}

func TestRouterWireRecordsComponent(t *testing.T) {
	t.Parallel()

	bus := simbus.New()
	router := NewRouter(bus)
	router.Wire("stub", "test/stub", &stubComponent{})

	wirings := router.Wirings()
	if len(wirings) != 1 || wirings[0].Type != "stub" || wirings[0].Module != "test/stub" {
		t.Errorf("Wirings() = %+v, want one {stub test/stub}", wirings)
	}
}

func TestRouterWireSubscribesHandlers(t *testing.T) {
	t.Parallel()

	bus := simbus.New()
	router := NewRouter(bus)
	comp := &stubComponent{}
	router.Wire("stub", "test/stub", comp)

	if err := bus.Publish(events.Event{EventType: events.TypeEngineTick}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if comp.called != 1 {
		t.Errorf("handler called %d times, want 1", comp.called)
	}
}

func TestRouterWireDuplicateComponentTypePanics(t *testing.T) {
	t.Parallel()

	bus := simbus.New()
	router := NewRouter(bus)
	router.Wire("stub", "test/stub", &stubComponent{})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate component type")
		}
	}()
	router.Wire("stub", "test/stub2", &stubComponent{})
}
