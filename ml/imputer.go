package ml

import (
	"fmt"
	"math"
)

// MeanImputer fills missing (NaN) entries with the per-column statistics
// fixed at training time.
type MeanImputer struct {
	Statistics []float64 `json:"statistics"`
}

func (m *MeanImputer) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(m.Statistics) {
		return nil, fmt.Errorf("%w: imputer expects %d columns, got %d", ErrTransform, len(m.Statistics), len(vector))
	}
	out := make([]float64, len(vector))
	for i, value := range vector {
		if math.IsNaN(value) {
			out[i] = m.Statistics[i]
		} else {
			out[i] = value
		}
	}
	return out, nil
}
