// Package history persists the append-only prediction log.
package history

import (
	"errors"
	"fmt"
)

// Result columns appended after the feature columns in every backend.
const (
	ColPrediction  = "Prediction"
	ColProbability = "Churn_Probability"
)

// ErrSchemaMismatch reports an existing store whose column set no longer
// matches the bundle's feature order, e.g. after a model version changed the
// feature set but kept the same store path. The store must be rotated or
// migrated by hand; silently rewriting it would corrupt earlier rows.
var ErrSchemaMismatch = errors.New("history store schema does not match feature order")

// Row is one persisted prediction: the raw entered values plus the model
// output.
type Row struct {
	Features    map[string]float64
	Prediction  int
	Probability float64
}

// Ledger is the append-only prediction log. Append is serialized internally
// so concurrent predictions cannot lose rows; ReadAll returns rows in
// insertion order and an empty slice when nothing has been stored yet.
type Ledger interface {
	Append(row Row) error
	ReadAll() ([]Row, error)
	Close() error
}

// Open selects a backend by name. The feature order fixes the column layout
// for the lifetime of the store.
func Open(backend, path string, featureOrder []string) (Ledger, error) {
	switch backend {
	case "csv", "":
		return NewCSVLedger(path, featureOrder)
	case "sqlite":
		return NewSQLiteLedger(path, featureOrder)
	default:
		return nil, fmt.Errorf("unsupported history backend %q", backend)
	}
}
