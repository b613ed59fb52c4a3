package history

import (
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func newTestSQLite(t *testing.T) (*SQLiteLedger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	ledger, err := NewSQLiteLedger(path, testOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })
	return ledger, path
}

func TestSQLiteAppendReadAll(t *testing.T) {
	ledger, _ := newTestSQLite(t)

	rows, err := ledger.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}

	first := testRow(45, 2, 1, 1, 0.82)
	second := testRow(30, 36, 20, 0, 0.10)
	if err := ledger.Append(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Append(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err = ledger.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[0], first) || !reflect.DeepEqual(rows[1], second) {
		t.Fatalf("rows not preserved in order: %+v", rows)
	}
}

func TestSQLiteRowMissingFeature(t *testing.T) {
	ledger, _ := newTestSQLite(t)

	err := ledger.Append(Row{Features: map[string]float64{"Age": 45}, Prediction: 1, Probability: 0.5})
	if err == nil {
		t.Fatal("expected error for incomplete row")
	}
}

func TestSQLiteSchemaMismatchOnReopen(t *testing.T) {
	ledger, path := newTestSQLite(t)
	if err := ledger.Append(testRow(45, 2, 1, 1, 0.82)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ledger.Close()

	_, err := NewSQLiteLedger(path, []string{"Age", "Tenure"})
	if err == nil {
		t.Fatal("expected error for changed feature order")
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	csvLedger, err := Open("csv", filepath.Join(dir, "h.csv"), testOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := csvLedger.(*CSVLedger); !ok {
		t.Fatalf("expected CSV backend, got %T", csvLedger)
	}

	sqliteLedger, err := Open("sqlite", filepath.Join(dir, "h.db"), testOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sqliteLedger.Close()
	if _, ok := sqliteLedger.(*SQLiteLedger); !ok {
		t.Fatalf("expected SQLite backend, got %T", sqliteLedger)
	}

	if _, err := Open("redis", "x", testOrder); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSQLiteConcurrentAppend(t *testing.T) {
	ledger, _ := newTestSQLite(t)

	const writers = 20
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- ledger.Append(testRow(float64(i), 2, 1, i%2, 0.5))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rows, err := ledger.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != writers {
		t.Fatalf("expected %d rows, got %d", writers, len(rows))
	}
	seen := make(map[float64]bool, writers)
	for _, row := range rows {
		if len(row.Features) != len(testOrder) {
			t.Fatalf("row torn by interleaved write: %+v", row)
		}
		seen[row.Features["Age"]] = true
	}
	if len(seen) != writers {
		t.Fatalf("expected %d distinct rows, got %d", writers, len(seen))
	}
}
