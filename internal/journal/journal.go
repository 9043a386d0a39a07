// Package journal implements the append-only JSONL event log: one JSON
// object per line, sorted keys, compact separators, fsynced after each
// record when durability is enabled. Subscribing to the fixed, enumerated
// event-type set (not a wildcard) guarantees line order equals bus
// dispatch order, which equals sequence order.
package journal

import (
	"encoding/json"
	"fmt"
	"os"

	"mmrl/internal/events"
	"mmrl/internal/simengine"
)

// Writer is an append-only JSONL sink bound to a single open file.
type Writer struct {
	file    *os.File
	durable bool
	count   int
}

// Open creates (truncating) the journal file at path. durable controls
// whether each write is immediately fsynced.
func Open(path string, durable bool) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Writer{file: f, durable: durable}, nil
}

// Subscriptions implements simengine.Wireable: the journal listens to
// every event type in the closed set, each routed to the same handler.
func (w *Writer) Subscriptions() []simengine.Wiring {
	wirings := make([]simengine.Wiring, 0, len(events.All))
	for _, t := range events.All {
		wirings = append(wirings, simengine.Wiring{EventType: t, Handler: w.onEvent})
	}
	return wirings
}

func (w *Writer) onEvent(ev events.Event) error {
	// Go's encoding/json marshals map[string]any keys in sorted order and
	// produces compact output with no extraneous whitespace, matching the
	// sorted-keys/compact-separators contract without a custom encoder.
	data, err := json.Marshal(ev.Flatten())
	if err != nil {
		return fmt.Errorf("journal: marshal event %s: %w", ev.EventType, err)
	}
	data = append(data, '\n')
	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("journal: write event %s: %w", ev.EventType, err)
	}
	w.count++
	if w.durable {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("journal: fsync: %w", err)
		}
	}
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int { return w.count }

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.file.Close()
}
