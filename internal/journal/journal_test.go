package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mmrl/internal/events"
)

func TestOnEventWritesSortedKeyCompactJSONLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	ev := events.Event{
		EventID:      "evt-1",
		TimestampUTC: time.Unix(0, 0).UTC(),
		EventType:    events.TypeEngineTick,
		Sequence:     1,
		Payload:      events.EngineTick{Tick: 7},
	}
	if err := w.onEvent(ev); err != nil {
		t.Fatalf("onEvent() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	line := strings.TrimSuffix(string(data), "\n")
	if strings.Contains(line, " ") {
		t.Errorf("line has extraneous whitespace: %q", line)
	}

	keys := extractKeys(t, line)
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] < sorted[i-1] {
			t.Errorf("keys not sorted: %v", keys)
			break
		}
	}

	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
}

func extractKeys(t *testing.T, line string) []string {
	t.Helper()
	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &generic); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	keys := make([]string, 0, len(generic))
	for k := range generic {
		keys = append(keys, k)
	}
	return keys
}

func TestSubscriptionsCoverEveryEventType(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	wirings := w.Subscriptions()
	if len(wirings) != len(events.All) {
		t.Fatalf("Subscriptions() returned %d wirings, want %d", len(wirings), len(events.All))
	}
	seen := make(map[events.Type]bool)
	for _, w := range wirings {
		seen[w.EventType] = true
	}
	for _, et := range events.All {
		if !seen[et] {
			t.Errorf("event type %s not subscribed", et)
		}
	}
}

func TestJournalLineOrderMatchesSequenceOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.jsonl")
	w, err := Open(path, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for i := uint64(1); i <= 3; i++ {
		ev := events.Event{EventType: events.TypeEngineTick, Sequence: i, Payload: events.EngineTick{Tick: i}}
		if err := w.onEvent(ev); err != nil {
			t.Fatalf("onEvent() error = %v", err)
		}
	}
	w.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var sequences []float64
	for scanner.Scan() {
		var row map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		sequences = append(sequences, row["sequence"].(float64))
	}
	if len(sequences) != 3 {
		t.Fatalf("got %d lines, want 3", len(sequences))
	}
	for i, want := range []float64{1, 2, 3} {
		if sequences[i] != want {
			t.Errorf("sequences[%d] = %v, want %v", i, sequences[i], want)
		}
	}
}
