package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// CSVLedger stores one prediction per line in a plain CSV file: the feature
// columns in bundle order, then Prediction and Churn_Probability. The file is
// created with its header on first append; rows are appended in place, which
// yields the same final contents as a full rewrite.
type CSVLedger struct {
	mu      sync.Mutex
	path    string
	columns []string
}

func NewCSVLedger(path string, featureOrder []string) (*CSVLedger, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if len(featureOrder) == 0 {
		return nil, errors.New("feature order is required")
	}
	columns := make([]string, 0, len(featureOrder)+2)
	columns = append(columns, featureOrder...)
	columns = append(columns, ColPrediction, ColProbability)
	return &CSVLedger{path: path, columns: columns}, nil
}

// Columns returns the full header, feature order first.
func (l *CSVLedger) Columns() []string {
	return append([]string(nil), l.columns...)
}

func (l *CSVLedger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := make([]string, 0, len(l.columns))
	for _, name := range l.featureColumns() {
		value, ok := row.Features[name]
		if !ok {
			return fmt.Errorf("history row is missing feature %q", name)
		}
		record = append(record, formatFloat(value))
	}
	record = append(record, strconv.Itoa(row.Prediction), formatFloat(row.Probability))

	writeHeader, err := l.headerState()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(l.columns); err != nil {
			return fmt.Errorf("write history header: %w", err)
		}
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("write history row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush history store: %w", err)
	}
	return nil
}

func (l *CSVLedger) ReadAll() ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("open history store: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read history store: %w", err)
	}
	if len(records) == 0 {
		return []Row{}, nil
	}
	if !equalColumns(records[0], l.columns) {
		return nil, fmt.Errorf("%w: have %v, want %v", ErrSchemaMismatch, records[0], l.columns)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row, err := l.parseRecord(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *CSVLedger) Close() error { return nil }

// headerState reports whether the header still needs to be written, and
// rejects an existing file whose header no longer matches the feature order.
func (l *CSVLedger) headerState() (bool, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("open history store: %w", err)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read history header: %w", err)
	}
	if !equalColumns(header, l.columns) {
		return false, fmt.Errorf("%w: have %v, want %v", ErrSchemaMismatch, header, l.columns)
	}
	return false, nil
}

func (l *CSVLedger) featureColumns() []string {
	return l.columns[:len(l.columns)-2:len(l.columns)-2]
}

func (l *CSVLedger) parseRecord(record []string) (Row, error) {
	if len(record) != len(l.columns) {
		return Row{}, fmt.Errorf("history row has %d fields, want %d", len(record), len(l.columns))
	}
	features := make(map[string]float64, len(l.columns)-2)
	for i, name := range l.featureColumns() {
		value, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return Row{}, fmt.Errorf("parse history value %s=%q: %w", name, record[i], err)
		}
		features[name] = value
	}
	label, err := strconv.Atoi(record[len(record)-2])
	if err != nil {
		return Row{}, fmt.Errorf("parse history prediction %q: %w", record[len(record)-2], err)
	}
	proba, err := strconv.ParseFloat(record[len(record)-1], 64)
	if err != nil {
		return Row{}, fmt.Errorf("parse history probability %q: %w", record[len(record)-1], err)
	}
	return Row{Features: features, Prediction: label, Probability: proba}, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
