package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Supported model_type values in the bundle envelope.
const (
	ModelLogisticRegression = "logistic_regression"
	ModelDecisionTree       = "decision_tree"
)

// Bundle is the deserialized model artifact: a trained classifier, its fitted
// preprocessing transforms, the positional feature contract, and optional
// evaluation metadata. Loaded once at startup and read-only afterwards, so it
// is safe to share across requests without locking.
type Bundle struct {
	ModelType       string
	Model           Classifier
	Imputer         Transformer
	Scaler          Transformer
	NumericCols     []string
	Accuracy        *float64
	ConfusionMatrix *[2][2]int
	Report          string
}

type bundleFile struct {
	ModelType       string          `json:"model_type"`
	Model           json.RawMessage `json:"model"`
	NumImputer      *MeanImputer    `json:"num_imputer"`
	NumScaler       *StandardScaler `json:"num_scaler"`
	NumericCols     []string        `json:"numeric_cols"`
	Accuracy        *float64        `json:"accuracy,omitempty"`
	ConfusionMatrix *[2][2]int      `json:"confusion_matrix,omitempty"`
	Report          string          `json:"report,omitempty"`
}

// LoadBundle reads the serialized artifact from disk. Any read, decode or
// consistency failure is fatal for the caller: the service cannot run without
// a usable bundle.
func LoadBundle(path string) (*Bundle, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model bundle: %w", err)
	}
	var file bundleFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	if len(file.NumericCols) == 0 {
		return nil, errors.New("model bundle declares no numeric columns")
	}
	if file.NumImputer == nil || file.NumScaler == nil {
		return nil, errors.New("model bundle is missing imputer or scaler")
	}
	cols := len(file.NumericCols)
	if len(file.NumImputer.Statistics) != cols {
		return nil, fmt.Errorf("imputer covers %d columns, bundle declares %d", len(file.NumImputer.Statistics), cols)
	}
	if len(file.NumScaler.Mean) != cols || len(file.NumScaler.Scale) != cols {
		return nil, fmt.Errorf("scaler covers %d/%d columns, bundle declares %d",
			len(file.NumScaler.Mean), len(file.NumScaler.Scale), cols)
	}

	model, err := decodeModel(file.ModelType, file.Model, cols)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		ModelType:       file.ModelType,
		Model:           model,
		Imputer:         file.NumImputer,
		Scaler:          file.NumScaler,
		NumericCols:     append([]string(nil), file.NumericCols...),
		Accuracy:        file.Accuracy,
		ConfusionMatrix: file.ConfusionMatrix,
		Report:          file.Report,
	}, nil
}

func decodeModel(modelType string, payload json.RawMessage, cols int) (Classifier, error) {
	switch modelType {
	case ModelLogisticRegression:
		var model LogisticRegression
		if err := json.Unmarshal(payload, &model); err != nil {
			return nil, fmt.Errorf("decode logistic model: %w", err)
		}
		if len(model.Weights) != cols {
			return nil, fmt.Errorf("logistic model has %d weights, bundle declares %d columns", len(model.Weights), cols)
		}
		return &model, nil
	case ModelDecisionTree:
		model, err := decodeDecisionTree(payload)
		if err != nil {
			return nil, fmt.Errorf("decode decision tree: %w", err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}
