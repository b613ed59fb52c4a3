package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"churnlens/history"
	"churnlens/ml"
	"churnlens/monitoring"
)

// Predictor runs an assembled feature vector through the inference pipeline.
type Predictor interface {
	Predict(vector []float64) (ml.Prediction, error)
	FeatureOrder() []string
}

var (
	predictor Predictor
	ledger    history.Ledger
	bundle    *ml.Bundle
	hub       *monitoring.Hub
	logger    = zap.NewNop()
)

func SetPredictor(p Predictor)   { predictor = p }
func SetLedger(l history.Ledger) { ledger = l }
func SetBundle(b *ml.Bundle)     { bundle = b }
func SetHub(h *monitoring.Hub)   { hub = h }

func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleDashboard)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/history", handleHistory)
	mux.HandleFunc("GET /api/model", handleModelInfo)
	mux.HandleFunc("GET /api/ws/live", handleLive)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
	Saved       bool    `json:"saved"`
	Notice      string  `json:"notice,omitempty"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if predictor == nil {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusServiceUnavailable)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	order := predictor.FeatureOrder()
	vector, err := ml.AssembleVector(order, req.Features)
	if err != nil {
		var missing *ml.MissingFeatureError
		if errors.As(err, &missing) {
			http.Error(w, fmt.Sprintf(`{"error":"missing feature %s"}`, missing.Name), http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"invalid input"}`, http.StatusBadRequest)
		return
	}

	prediction, err := predictor.Predict(vector)
	if err != nil {
		logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		http.Error(w, `{"error":"prediction failed"}`, http.StatusInternalServerError)
		return
	}

	// Persist exactly the declared columns; extra keys in the request are
	// dropped so the stored row always matches the store header.
	values := make(map[string]float64, len(order))
	for i, name := range order {
		values[name] = vector[i]
	}
	row := history.Row{Features: values, Prediction: prediction.Label, Probability: prediction.Probability}

	resp := predictResponse{Label: prediction.Label, Probability: prediction.Probability, Saved: true}
	switch {
	case ledger == nil:
		resp.Saved = false
		resp.Notice = "history store unavailable"
	default:
		if err := ledger.Append(row); err != nil {
			// The prediction still goes back to the user even when the
			// ledger write fails.
			logger.Warn("history append failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Error(err))
			resp.Saved = false
			resp.Notice = "prediction could not be saved to history"
		} else if hub != nil {
			hub.Broadcast(monitoring.EventPrediction, historyRowPayload(row))
		}
	}

	respondJSON(w, resp)
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	if ledger == nil {
		http.Error(w, `{"error":"history store unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	rows, err := ledger.ReadAll()
	if err != nil {
		logger.Error("history read failed", zap.Error(err))
		http.Error(w, `{"error":"failed to read history"}`, http.StatusInternalServerError)
		return
	}

	order := []string{}
	if predictor != nil {
		order = predictor.FeatureOrder()
	}
	payload := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, historyRowPayload(row))
	}
	respondJSON(w, map[string]interface{}{
		"columns": historyColumns(order),
		"rows":    payload,
		"count":   len(payload),
	})
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if bundle == nil {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusServiceUnavailable)
		return
	}
	info := map[string]interface{}{
		"model_type":   bundle.ModelType,
		"numeric_cols": bundle.NumericCols,
	}
	if bundle.Accuracy != nil {
		info["accuracy"] = *bundle.Accuracy
	}
	if bundle.ConfusionMatrix != nil {
		info["confusion_matrix"] = *bundle.ConfusionMatrix
	}
	if bundle.Report != "" {
		info["report"] = bundle.Report
	}
	respondJSON(w, info)
}

func handleLive(w http.ResponseWriter, r *http.Request) {
	if hub == nil {
		http.Error(w, `{"error":"live updates unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	hub.HandleWS(w, r)
}

func historyColumns(order []string) []string {
	columns := make([]string, 0, len(order)+2)
	columns = append(columns, order...)
	columns = append(columns, history.ColPrediction, history.ColProbability)
	return columns
}

func historyRowPayload(row history.Row) map[string]interface{} {
	payload := make(map[string]interface{}, len(row.Features)+2)
	for name, value := range row.Features {
		payload[name] = value
	}
	payload[history.ColPrediction] = row.Prediction
	payload[history.ColProbability] = row.Probability
	return payload
}

func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
