package simengine

// State is the engine's run-scoped counters. Sequence and tick only
// advance while IsRunning; sequence is strictly increasing across every
// event emitted within a run.
type State struct {
	RunID     string
	Tick      uint64
	Sequence  uint64
	IsRunning bool
}

// LifecycleError marks a fatal lifecycle violation: double-start,
// double-stop, or advancing counters while stopped.
type LifecycleError struct {
	Msg string
}

func (e *LifecycleError) Error() string { return "simengine: lifecycle: " + e.Msg }
