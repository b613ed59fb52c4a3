package ml

// AssembleVector builds a feature vector from entered values in the exact
// column order the bundle declares. Map iteration order never leaks into the
// result. Pure function, no side effects.
func AssembleVector(order []string, values map[string]float64) ([]float64, error) {
	vector := make([]float64, len(order))
	for i, name := range order {
		value, ok := values[name]
		if !ok {
			return nil, &MissingFeatureError{Name: name}
		}
		vector[i] = value
	}
	return vector, nil
}
