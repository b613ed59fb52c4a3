package ml

import (
	"errors"
	"math"
	"testing"
)

func TestMeanImputerFillsNaN(t *testing.T) {
	imputer := &MeanImputer{Statistics: []float64{10, 20, 30}}

	out, err := imputer.Transform([]float64{1, math.NaN(), 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 20, 3}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("column %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestMeanImputerShapeMismatch(t *testing.T) {
	imputer := &MeanImputer{Statistics: []float64{10, 20}}

	_, err := imputer.Transform([]float64{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for column count mismatch")
	}
	if !errors.Is(err, ErrTransform) {
		t.Fatalf("expected ErrTransform, got %v", err)
	}
}

func TestStandardScaler(t *testing.T) {
	scaler := &StandardScaler{
		Mean:  []float64{10, 100},
		Scale: []float64{2, 50},
	}

	out, err := scaler.Transform([]float64{14, 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != 2 {
		t.Fatalf("expected 2, got %v", out[0])
	}
	if out[1] != 0 {
		t.Fatalf("expected 0, got %v", out[1])
	}
}

func TestStandardScalerZeroScale(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{5}, Scale: []float64{0}}

	out, err := scaler.Transform([]float64{8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Constant column: centered but not divided.
	if out[0] != 3 {
		t.Fatalf("expected 3, got %v", out[0])
	}
}

func TestStandardScalerShapeMismatch(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{1}, Scale: []float64{1}}

	_, err := scaler.Transform([]float64{1, 2})
	if !errors.Is(err, ErrTransform) {
		t.Fatalf("expected ErrTransform, got %v", err)
	}
}
