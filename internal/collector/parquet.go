package collector

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Column type tags for the minimal columnar format written below. There is
// no parquet encoder in the retrieved dependency surface (see DESIGN.md),
// so risk_inventory.parquet is a small self-describing columnar binary: a
// JSON-free header of column names/types followed by column-major data,
// written atomically (temp file + rename) like every other run artifact.
const (
	colUint64 byte = 1
	colString byte = 2
	colFloat64 byte = 3
)

var schema = []struct {
	name string
	kind byte
}{
	{"sequence", colUint64},
	{"tick", colUint64},
	{"symbol", colString},
	{"mid_price", colFloat64},
	{"inventory", colFloat64},
	{"avg_price", colFloat64},
	{"realized_pnl", colFloat64},
	{"unrealized_pnl", colFloat64},
	{"reserved", colFloat64},
}

const magic = "MMRLRISKINV1"

// WriteParquet serializes samples to path as the columnar risk/inventory
// artifact, atomically (write to .tmp, then rename).
func WriteParquet(path string, samples []Sample) error {
	var buf bytes.Buffer
	buf.WriteString(magic)

	writeUint32(&buf, uint32(len(schema)))
	for _, col := range schema {
		writeUint32(&buf, uint32(len(col.name)))
		buf.WriteString(col.name)
		buf.WriteByte(col.kind)
	}
	writeUint32(&buf, uint32(len(samples)))

	for _, col := range schema {
		for _, s := range samples {
			switch col.name {
			case "sequence":
				writeUint64(&buf, s.Sequence)
			case "tick":
				writeUint64(&buf, s.Tick)
			case "symbol":
				writeUint32(&buf, uint32(len(s.Symbol)))
				buf.WriteString(s.Symbol)
			case "mid_price":
				writeFloat64(&buf, s.MidPrice)
			case "inventory":
				writeFloat64(&buf, s.Inventory)
			case "avg_price":
				writeFloat64(&buf, s.AvgPrice)
			case "realized_pnl":
				writeFloat64(&buf, s.RealizedPnL)
			case "unrealized_pnl":
				writeFloat64(&buf, s.UnrealizedPnL)
			case "reserved":
				writeFloat64(&buf, s.Reserved)
			}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("collector: write risk inventory artifact: %w", err)
	}
	return os.Rename(tmp, path)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeFloat64(buf *bytes.Buffer, v float64) {
	writeUint64(buf, math.Float64bits(v))
}
