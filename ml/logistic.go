package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogisticRegression evaluates a fitted binary logistic model. Training
// happens elsewhere; only the coefficients travel in the bundle.
type LogisticRegression struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	// Threshold is the decision cutoff for Predict. Zero means 0.5.
	Threshold float64 `json:"threshold,omitempty"`
}

func (lr *LogisticRegression) PredictProba(vector []float64) (float64, error) {
	if len(lr.Weights) == 0 {
		return 0, errors.New("logistic model has no weights")
	}
	if len(vector) != len(lr.Weights) {
		return 0, fmt.Errorf("logistic model expects %d features, got %d", len(lr.Weights), len(vector))
	}
	weights := mat.NewVecDense(len(lr.Weights), lr.Weights)
	x := mat.NewVecDense(len(vector), vector)
	z := mat.Dot(weights, x) + lr.Intercept
	return 1 / (1 + math.Exp(-z)), nil
}

func (lr *LogisticRegression) Predict(vector []float64) (int, error) {
	proba, err := lr.PredictProba(vector)
	if err != nil {
		return 0, err
	}
	threshold := lr.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	if proba >= threshold {
		return 1, nil
	}
	return 0, nil
}
