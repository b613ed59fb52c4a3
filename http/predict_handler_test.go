package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"churnlens/history"
	"churnlens/ml"
)

type fakePipeline struct {
	order  []string
	result ml.Prediction
	err    error
}

func (f *fakePipeline) Predict(vector []float64) (ml.Prediction, error) {
	return f.result, f.err
}

func (f *fakePipeline) FeatureOrder() []string {
	return append([]string(nil), f.order...)
}

type failingLedger struct{}

func (f *failingLedger) Append(history.Row) error        { return errors.New("disk full") }
func (f *failingLedger) ReadAll() ([]history.Row, error) { return []history.Row{}, nil }
func (f *failingLedger) Close() error                    { return nil }

func setupPredict(t *testing.T, p Predictor, l history.Ledger) *http.ServeMux {
	t.Helper()
	SetPredictor(p)
	SetLedger(l)
	t.Cleanup(func() {
		SetPredictor(nil)
		SetLedger(nil)
	})
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	return mux
}

func postPredict(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestHandlePredict(t *testing.T) {
	ledger, err := history.NewCSVLedger(filepath.Join(t.TempDir(), "h.csv"), []string{"Age", "Tenure", "Usage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pipeline := &fakePipeline{
		order:  []string{"Age", "Tenure", "Usage"},
		result: ml.Prediction{Label: 1, Probability: 0.82},
	}
	mux := setupPredict(t, pipeline, ledger)

	rr := postPredict(mux, `{"features":{"Age":45,"Tenure":2,"Usage":1}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload predictResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Label != 1 || payload.Probability != 0.82 {
		t.Fatalf("unexpected prediction: %+v", payload)
	}
	if !payload.Saved {
		t.Fatalf("expected saved prediction, got notice %q", payload.Notice)
	}

	rows, err := ledger.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	if rows[0].Prediction != 1 || rows[0].Probability != 0.82 || rows[0].Features["Age"] != 45 {
		t.Fatalf("unexpected history row: %+v", rows[0])
	}
}

func TestHandlePredictMissingFeature(t *testing.T) {
	pipeline := &fakePipeline{order: []string{"Age", "Tenure"}}
	mux := setupPredict(t, pipeline, nil)

	rr := postPredict(mux, `{"features":{"Age":45}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Tenure") {
		t.Fatalf("expected missing column name in error, got %s", rr.Body.String())
	}
}

func TestHandlePredictBadBody(t *testing.T) {
	mux := setupPredict(t, &fakePipeline{order: []string{"Age"}}, nil)

	rr := postPredict(mux, `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHandlePredictPipelineError(t *testing.T) {
	ledger, err := history.NewCSVLedger(filepath.Join(t.TempDir(), "h.csv"), []string{"Age"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pipeline := &fakePipeline{order: []string{"Age"}, err: errors.New("transform rejected")}
	mux := setupPredict(t, pipeline, ledger)

	rr := postPredict(mux, `{"features":{"Age":45}}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	// Nothing is persisted on a failed attempt.
	rows, err := ledger.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}
}

func TestHandlePredictPersistenceFailureStillResponds(t *testing.T) {
	pipeline := &fakePipeline{
		order:  []string{"Age"},
		result: ml.Prediction{Label: 0, Probability: 0.1},
	}
	mux := setupPredict(t, pipeline, &failingLedger{})

	rr := postPredict(mux, `{"features":{"Age":45}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var payload predictResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Saved {
		t.Fatal("expected saved=false when the ledger write fails")
	}
	if payload.Notice == "" {
		t.Fatal("expected a notice about the failed save")
	}
	if payload.Label != 0 || payload.Probability != 0.1 {
		t.Fatalf("prediction should survive persistence failure: %+v", payload)
	}
}

func TestHandleHistory(t *testing.T) {
	ledger, err := history.NewCSVLedger(filepath.Join(t.TempDir(), "h.csv"), []string{"Age"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ledger.Append(history.Row{Features: map[string]float64{"Age": 45}, Prediction: 1, Probability: 0.82}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mux := setupPredict(t, &fakePipeline{order: []string{"Age"}}, ledger)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Columns []string                 `json:"columns"`
		Rows    []map[string]interface{} `json:"rows"`
		Count   int                      `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Count != 1 || len(payload.Rows) != 1 {
		t.Fatalf("unexpected history payload: %+v", payload)
	}
	if payload.Columns[len(payload.Columns)-1] != "Churn_Probability" {
		t.Fatalf("unexpected columns: %v", payload.Columns)
	}
	if payload.Rows[0]["Prediction"].(float64) != 1 {
		t.Fatalf("unexpected row: %+v", payload.Rows[0])
	}
}
