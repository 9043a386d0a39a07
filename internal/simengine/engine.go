// Package simengine owns the run-scoped engine state, the start/stop
// lifecycle, the tick driver, and the deterministic envelope allocation
// (sequence + event id + timestamp) every component emits through.
package simengine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mmrl/internal/events"
	"mmrl/internal/simbus"
)

// Clock returns the current time. Tests inject a deterministic clock so
// replay-equality holds modulo the envelope fields, per the determinism
// contract.
type Clock func() time.Time

// IDGen returns a fresh event id.
type IDGen func() string

// Engine wires the bus to the run-scoped counters. It is the sole
// publisher of record: every component emits through Engine.Emit so that
// sequence allocation and envelope construction happen in one place.
type Engine struct {
	bus    *simbus.Bus
	state  State
	clock  Clock
	idgen  IDGen
	logger *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock overrides the default time.Now clock, for deterministic tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGen overrides the default uuid event-id generator, for
// deterministic tests.
func WithIDGen(g IDGen) Option {
	return func(e *Engine) { e.idgen = g }
}

// New constructs an Engine for runID, bound to bus and logging through
// logger.
func New(runID string, bus *simbus.Bus, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		bus:    bus,
		state:  State{RunID: runID},
		clock:  time.Now,
		idgen:  func() string { return uuid.NewString() },
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a snapshot of the engine's run-scoped counters.
func (e *Engine) State() State { return e.state }

// Subscribe registers handler for eventType on the underlying bus.
func (e *Engine) Subscribe(eventType events.Type, handler simbus.Handler) simbus.Subscription {
	return e.bus.Subscribe(eventType, handler)
}

// Start requires IsRunning=false, resets tick and sequence to zero, sets
// IsRunning, and publishes run_started carrying the first sequence.
func (e *Engine) Start() error {
	if e.state.IsRunning {
		return &LifecycleError{Msg: "start: already running"}
	}
	e.state.Tick = 0
	e.state.Sequence = 0
	e.state.IsRunning = true
	seq := e.allocateSequence()
	e.logger.Debug("engine started", "run_id", e.state.RunID, "sequence", seq)
	return e.publish(events.TypeRunStarted, events.RunStarted{}, seq)
}

// Stop requires IsRunning=true, allocates a sequence while still running,
// clears IsRunning, and publishes run_stopped.
func (e *Engine) Stop() error {
	if !e.state.IsRunning {
		return &LifecycleError{Msg: "stop: not running"}
	}
	seq := e.allocateSequence()
	e.state.IsRunning = false
	e.logger.Debug("engine stopped", "run_id", e.state.RunID, "sequence", seq)
	return e.publish(events.TypeRunStopped, events.RunStopped{}, seq)
}

// Emit allocates a fresh sequence and publishes eventType/payload through
// the bus. It requires the engine to be running.
func (e *Engine) Emit(eventType events.Type, payload events.Payload) error {
	if !e.state.IsRunning {
		return &LifecycleError{Msg: "emit while not running: " + string(eventType)}
	}
	seq := e.allocateSequence()
	return e.publish(eventType, payload, seq)
}

// AllocateTick advances the tick counter by one and returns the new value.
// It requires the engine to be running.
func (e *Engine) AllocateTick() (uint64, error) {
	if !e.state.IsRunning {
		return 0, &LifecycleError{Msg: "advance tick while not running"}
	}
	e.state.Tick++
	return e.state.Tick, nil
}

// EmitError publishes engine_error with a fresh sequence and force-stops
// the lifecycle, per the error-handling design: the engine catches, emits,
// logs, and the caller re-raises.
func (e *Engine) EmitError(errorType, message string) error {
	e.logger.Error("engine error", "error_type", errorType, "message", message)
	seq := e.allocateSequence()
	if pubErr := e.publish(events.TypeEngineError, events.EngineError{ErrorType: errorType, Message: message}, seq); pubErr != nil {
		return pubErr
	}
	e.state.IsRunning = false
	return nil
}

func (e *Engine) allocateSequence() uint64 {
	e.state.Sequence++
	return e.state.Sequence
}

func (e *Engine) publish(eventType events.Type, payload events.Payload, seq uint64) error {
	ev := events.Event{
		EventID:      e.idgen(),
		TimestampUTC: e.clock(),
		EventType:    eventType,
		Sequence:     seq,
		Payload:      payload,
	}
	return e.bus.Publish(ev)
}
