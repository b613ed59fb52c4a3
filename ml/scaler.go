package ml

import "fmt"

// StandardScaler rescales each column with mean and scale learned at training
// time. A zero scale (constant column) leaves the centered value untouched.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(vector []float64) ([]float64, error) {
	if len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("%w: scaler mean/scale length mismatch", ErrTransform)
	}
	if len(vector) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler expects %d columns, got %d", ErrTransform, len(s.Mean), len(vector))
	}
	out := make([]float64, len(vector))
	for i, value := range vector {
		centered := value - s.Mean[i]
		if s.Scale[i] != 0 {
			centered /= s.Scale[i]
		}
		out[i] = centered
	}
	return out, nil
}
