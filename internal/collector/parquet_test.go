package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteParquetWritesAtomicallyAndStartsWithMagic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "risk_inventory.parquet")
	samples := []Sample{
		{Sequence: 1, Tick: 1, Symbol: "BTC-USD", MidPrice: 100, Inventory: 1},
		{Sequence: 2, Tick: 2, Symbol: "BTC-USD", MidPrice: 101, Inventory: 2},
	}

	if err := WriteParquet(path, samples); err != nil {
		t.Fatalf("WriteParquet() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after a successful write")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), magic) {
		t.Errorf("file does not start with magic %q", magic)
	}
}
