// Package replay implements a lazy, finite, non-restartable L2 delta
// stream read from a JSONL file, and the adapter that pulls one delta per
// engine tick and republishes it as order_book_level events.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Update is a single (price, size) pair. It accepts either a [price,size]
// 2-tuple or a {"price":...,"size":...} object on the wire.
type Update struct {
	Price float64
	Size  float64
}

// UnmarshalJSON accepts both the array and object row forms.
func (u *Update) UnmarshalJSON(data []byte) error {
	var arr [2]float64
	if err := json.Unmarshal(data, &arr); err == nil {
		u.Price, u.Size = arr[0], arr[1]
		return nil
	}
	var obj struct {
		Price float64 `json:"price"`
		Size  float64 `json:"size"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("replay: update must be [price,size] or {price,size}: %w", err)
	}
	u.Price, u.Size = obj.Price, obj.Size
	return nil
}

// Delta is one incremental order-book update for a symbol.
type Delta struct {
	Symbol     string
	BidUpdates []Update
	AskUpdates []Update
}

type rawDelta struct {
	Symbol     string   `json:"symbol"`
	BidUpdates []Update `json:"bid_updates"`
	AskUpdates []Update `json:"ask_updates"`
}

// DataSource is a lazy, finite, non-restartable sequence of deltas.
type DataSource interface {
	// Next returns the next delta. ok is false once the source is
	// exhausted; err is non-nil only on a malformed row.
	Next() (delta Delta, ok bool, err error)
}

// JSONLDataSource reads one delta per non-blank line from r. Blank lines
// are skipped; a malformed line fails with a parse error citing its line
// number and permanently exhausts the source.
type JSONLDataSource struct {
	scanner   *bufio.Scanner
	lineNo    int
	exhausted bool
}

// NewJSONLDataSource wraps r as a replay data source.
func NewJSONLDataSource(r io.Reader) *JSONLDataSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &JSONLDataSource{scanner: scanner}
}

// Next implements DataSource.
func (d *JSONLDataSource) Next() (Delta, bool, error) {
	if d.exhausted {
		return Delta{}, false, nil
	}
	for d.scanner.Scan() {
		d.lineNo++
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}
		var raw rawDelta
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			d.exhausted = true
			return Delta{}, false, fmt.Errorf("replay: malformed JSONL at line %d: %w", d.lineNo, err)
		}
		return Delta{Symbol: raw.Symbol, BidUpdates: raw.BidUpdates, AskUpdates: raw.AskUpdates}, true, nil
	}
	d.exhausted = true
	if err := d.scanner.Err(); err != nil {
		return Delta{}, false, fmt.Errorf("replay: read error at line %d: %w", d.lineNo, err)
	}
	return Delta{}, false, nil
}
