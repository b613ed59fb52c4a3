package ml

import (
	"errors"
	"testing"
)

func TestAssembleVectorOrder(t *testing.T) {
	order := []string{"Age", "Tenure", "Usage"}
	values := map[string]float64{
		"Usage":  1,
		"Age":    45,
		"Tenure": 2,
	}

	vector, err := AssembleVector(order, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{45, 2, 1}
	if len(vector) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(vector))
	}
	for i := range want {
		if vector[i] != want[i] {
			t.Fatalf("column %d: expected %v, got %v", i, want[i], vector[i])
		}
	}
}

func TestAssembleVectorMissingFeature(t *testing.T) {
	order := []string{"Age", "Tenure"}
	values := map[string]float64{"Age": 45}

	_, err := AssembleVector(order, values)
	if err == nil {
		t.Fatal("expected error for missing feature")
	}
	var missing *MissingFeatureError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFeatureError, got %T", err)
	}
	if missing.Name != "Tenure" {
		t.Fatalf("expected missing Tenure, got %q", missing.Name)
	}
}

func TestAssembleVectorIgnoresExtraKeys(t *testing.T) {
	order := []string{"Age"}
	values := map[string]float64{"Age": 30, "Unknown": 99}

	vector, err := AssembleVector(order, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != 1 || vector[0] != 30 {
		t.Fatalf("unexpected vector: %v", vector)
	}
}
