package ml

// Transformer is a fitted, read-only preprocessing step. Its parameters are
// learned at training time and travel inside the model bundle; Transform
// never mutates its input.
type Transformer interface {
	Transform(vector []float64) ([]float64, error)
}

// Classifier is the narrow contract the inference pipeline needs from a
// trained binary model. Predict returns the discrete decision, PredictProba
// the estimated likelihood of the positive (churn) class.
type Classifier interface {
	Predict(vector []float64) (int, error)
	PredictProba(vector []float64) (float64, error)
}

// Prediction is the outcome of one pipeline run.
type Prediction struct {
	Label       int     `json:"label"`
	Probability float64 `json:"probability"`
}
