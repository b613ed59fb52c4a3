package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"churnlens/ml"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(handleHealth).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status: %q", payload["status"])
	}
}

func TestModelInfoHandler(t *testing.T) {
	accuracy := 0.87
	SetBundle(&ml.Bundle{
		ModelType:       ml.ModelLogisticRegression,
		NumericCols:     []string{"Age", "Tenure", "Usage"},
		Accuracy:        &accuracy,
		ConfusionMatrix: &[2][2]int{{50, 7}, {9, 34}},
		Report:          "precision ...",
	})
	defer SetBundle(nil)

	mux := http.NewServeMux()
	RegisterHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["model_type"] != ml.ModelLogisticRegression {
		t.Fatalf("unexpected model type: %v", payload["model_type"])
	}
	if payload["accuracy"].(float64) != 0.87 {
		t.Fatalf("unexpected accuracy: %v", payload["accuracy"])
	}
}

func TestModelInfoHandlerNoBundle(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
