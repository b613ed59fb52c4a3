package ml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Pipeline runs the fixed impute -> scale -> classify sequence against a
// loaded bundle. Safe for concurrent use: the bundle is never mutated and the
// result cache is internally synchronized.
type Pipeline struct {
	bundle *Bundle
	cache  *lru.Cache[string, Prediction]
}

// NewPipeline wires a pipeline to a bundle. cacheSize <= 0 disables the
// result cache.
func NewPipeline(bundle *Bundle, cacheSize int) (*Pipeline, error) {
	if bundle == nil {
		return nil, errors.New("bundle is required")
	}
	p := &Pipeline{bundle: bundle}
	if cacheSize > 0 {
		cache, err := lru.New[string, Prediction](cacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// FeatureOrder returns the bundle's positional column contract.
func (p *Pipeline) FeatureOrder() []string {
	return append([]string(nil), p.bundle.NumericCols...)
}

// Predict runs one vector through the pipeline. The vector must already be in
// the bundle's column order (see AssembleVector). A failed transform or
// classify call aborts the whole attempt; nothing is cached on failure.
func (p *Pipeline) Predict(vector []float64) (Prediction, error) {
	if len(vector) != len(p.bundle.NumericCols) {
		return Prediction{}, fmt.Errorf("%w: pipeline expects %d columns, got %d",
			ErrTransform, len(p.bundle.NumericCols), len(vector))
	}

	key := cacheKey(vector)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			return cached, nil
		}
	}

	imputed, err := p.bundle.Imputer.Transform(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("impute: %w", err)
	}
	scaled, err := p.bundle.Scaler.Transform(imputed)
	if err != nil {
		return Prediction{}, fmt.Errorf("scale: %w", err)
	}

	label, err := p.bundle.Model.Predict(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	proba, err := p.bundle.Model.PredictProba(scaled)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict probability: %w", err)
	}
	if label != 0 && label != 1 {
		return Prediction{}, fmt.Errorf("classifier returned label %d, want 0 or 1", label)
	}
	if proba < 0 || proba > 1 {
		return Prediction{}, fmt.Errorf("classifier returned probability %g outside [0,1]", proba)
	}

	result := Prediction{Label: label, Probability: proba}
	if p.cache != nil {
		p.cache.Add(key, result)
	}
	return result, nil
}

func cacheKey(vector []float64) string {
	var b strings.Builder
	for i, value := range vector {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
	}
	return b.String()
}
