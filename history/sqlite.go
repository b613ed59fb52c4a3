package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLedger keeps the prediction log in an embedded database. Read-back
// contents match the CSV backend row for row: entered values in bundle order
// plus the prediction and probability.
type SQLiteLedger struct {
	mu    sync.Mutex
	db    *sql.DB
	order []string
}

func NewSQLiteLedger(path string, featureOrder []string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if len(featureOrder) == 0 {
		return nil, errors.New("feature order is required")
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        features TEXT NOT NULL,
        prediction INTEGER NOT NULL,
        churn_probability REAL NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS store_schema (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        feature_order TEXT NOT NULL
    );
    `
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history database: %w", err)
	}

	ledger := &SQLiteLedger{db: db, order: append([]string(nil), featureOrder...)}
	if err := ledger.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

// checkSchema pins the feature order on first use and refuses to reuse a
// store created for a different column set.
func (l *SQLiteLedger) checkSchema() error {
	declared := strings.Join(l.order, ",")
	var stored string
	err := l.db.QueryRow(`SELECT feature_order FROM store_schema WHERE id = 1`).Scan(&stored)
	if err == sql.ErrNoRows {
		_, err = l.db.Exec(`INSERT INTO store_schema (id, feature_order) VALUES (1, ?)`, declared)
		return err
	}
	if err != nil {
		return err
	}
	if stored != declared {
		return fmt.Errorf("%w: store has %q, bundle declares %q", ErrSchemaMismatch, stored, declared)
	}
	return nil
}

func (l *SQLiteLedger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range l.order {
		if _, ok := row.Features[name]; !ok {
			return fmt.Errorf("history row is missing feature %q", name)
		}
	}
	payload, err := json.Marshal(row.Features)
	if err != nil {
		return fmt.Errorf("encode history row: %w", err)
	}
	_, err = l.db.Exec(`
        INSERT INTO predictions (features, prediction, churn_probability)
        VALUES (?, ?, ?)`,
		string(payload), row.Prediction, row.Probability)
	if err != nil {
		return fmt.Errorf("insert history row: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) ReadAll() ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.Query(`
        SELECT features, prediction, churn_probability
        FROM predictions
        ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var payload string
		var row Row
		if err := rows.Scan(&payload, &row.Prediction, &row.Probability); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &row.Features); err != nil {
			return nil, fmt.Errorf("decode history row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
