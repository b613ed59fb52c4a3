package http

import (
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"churnlens/history"
)

// One printer for every number the dashboard shows, so feature values and
// confusion-matrix counts get locale digit grouping (1,500 not 1500).
var printer = message.NewPrinter(language.English)

// Input defaults mirror the domains the model was trained on; every column
// gets a value so the assembler never sees a missing feature.
var featureDefaults = []struct {
	Substring string
	Value     float64
}{
	{"Age", 30},
	{"Tenure", 12},
	{"Usage", 10},
	{"Support", 1},
	{"Delay", 0},
	{"Spend", 500},
	{"Interaction", 7},
}

func defaultFor(name string) float64 {
	for _, d := range featureDefaults {
		if strings.Contains(name, d.Substring) {
			return d.Value
		}
	}
	return 0
}

type dashboardFeature struct {
	Name    string
	Default float64
}

type dashboardData struct {
	Features        []dashboardFeature
	ModelType       string
	Accuracy        string
	ConfusionMatrix *[2][2]int
	Report          string
	Columns         []string
	Rows            []history.Row
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if predictor == nil {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		return
	}
	order := predictor.FeatureOrder()

	data := dashboardData{Columns: historyColumns(order)}
	for _, name := range order {
		data.Features = append(data.Features, dashboardFeature{Name: name, Default: defaultFor(name)})
	}
	if bundle != nil {
		data.ModelType = bundle.ModelType
		data.Report = bundle.Report
		data.ConfusionMatrix = bundle.ConfusionMatrix
		if bundle.Accuracy != nil {
			data.Accuracy = printer.Sprintf("%.2f%%", *bundle.Accuracy*100)
		}
	}
	if ledger != nil {
		if rows, err := ledger.ReadAll(); err == nil {
			data.Rows = rows
		} else {
			logger.Warn("dashboard history read failed", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		logger.Error("dashboard render failed", zap.Error(err))
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"feature": func(row history.Row, name string) string {
		return printer.Sprintf("%v", number.Decimal(row.Features[name]))
	},
	"count": func(n int) string {
		return printer.Sprintf("%v", number.Decimal(n))
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Customer Churn Prediction</title>
<style>
 body { font-family: system-ui, sans-serif; margin: 0; background: #eef2ff; color: #111827; }
 .wrap { display: flex; gap: 1.5rem; padding: 1.5rem; }
 .sidebar { width: 260px; background: #fff; border-radius: 12px; padding: 1rem; height: fit-content; }
 .main { flex: 1; }
 .card { background: #fff; border-radius: 12px; padding: 1.2rem; margin-bottom: 1.2rem; }
 h2 { margin-top: 0; }
 label { display: block; margin: 0.6rem 0 0.2rem; font-size: 0.9rem; color: #4b5563; }
 input[type=number] { width: 10rem; padding: 0.3rem; }
 button { border: none; border-radius: 999px; padding: 0.5rem 1.6rem; font-weight: 600;
          background: #16a34a; color: #fff; cursor: pointer; margin-top: 1rem; }
 .bar { height: 10px; background: #e5e7eb; border-radius: 5px; overflow: hidden; margin-top: 0.4rem; }
 .bar > div { height: 100%; background: #f97373; width: 0; }
 table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
 th, td { border-bottom: 1px solid #e5e7eb; padding: 0.3rem 0.5rem; text-align: right; }
 th { color: #6b7280; }
 .churn { color: #dc2626; font-weight: 600; }
 .stay { color: #16a34a; font-weight: 600; }
 .notice { color: #b45309; font-size: 0.85rem; }
 pre { white-space: pre-wrap; font-size: 0.75rem; }
</style>
</head>
<body>
<div class="wrap">
  <div class="sidebar">
    <h3>About the Model</h3>
    <p>Type: {{.ModelType}}</p>
    {{if .Accuracy}}<p>Test accuracy: <b>{{.Accuracy}}</b></p>{{end}}
    {{if .ConfusionMatrix}}
    <p>Confusion matrix (test data):</p>
    <table>
      <tr><th></th><th>Pred 0</th><th>Pred 1</th></tr>
      <tr><th>Actual 0</th><td>{{count (index .ConfusionMatrix 0 0)}}</td><td>{{count (index .ConfusionMatrix 0 1)}}</td></tr>
      <tr><th>Actual 1</th><td>{{count (index .ConfusionMatrix 1 0)}}</td><td>{{count (index .ConfusionMatrix 1 1)}}</td></tr>
    </table>
    {{end}}
    {{if .Report}}<details><summary>Classification report</summary><pre>{{.Report}}</pre></details>{{end}}
  </div>
  <div class="main">
    <div class="card">
      <h2>Customer Churn Prediction</h2>
      <p>Enter customer information and usage statistics to estimate churn risk.</p>
      <form id="predict-form">
        {{range .Features}}
        <label for="f-{{.Name}}">{{.Name}}</label>
        <input type="number" id="f-{{.Name}}" name="{{.Name}}" min="0" step="any" value="{{.Default}}">
        {{end}}
        <button type="submit">Predict Churn</button>
      </form>
    </div>
    <div class="card" id="result" hidden>
      <h3>Prediction</h3>
      <p id="verdict"></p>
      <p>Churn probability: <span id="proba"></span></p>
      <div class="bar"><div id="proba-bar"></div></div>
      <p class="notice" id="notice"></p>
    </div>
    <div class="card">
      <h3>Prediction History</h3>
      <table id="history">
        <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
        <tbody>
        {{$cols := .Columns}}
        {{range .Rows}}
          {{$row := .}}
          <tr>
            {{range $cols}}
              {{if eq . "Prediction"}}<td>{{$row.Prediction}}</td>
              {{else if eq . "Churn_Probability"}}<td>{{printf "%.4f" $row.Probability}}</td>
              {{else}}<td>{{feature $row .}}</td>{{end}}
            {{end}}
          </tr>
        {{end}}
        </tbody>
      </table>
    </div>
  </div>
</div>
<script>
const columns = [{{range .Columns}}"{{.}}",{{end}}];

function appendRow(values) {
  const tr = document.createElement("tr");
  for (const col of columns) {
    const td = document.createElement("td");
    let v = values[col];
    if (col === "Churn_Probability") v = Number(v).toFixed(4);
    else if (col !== "Prediction") v = Number(v).toLocaleString("en-US");
    td.textContent = v;
    tr.appendChild(td);
  }
  document.querySelector("#history tbody").appendChild(tr);
}

document.getElementById("predict-form").addEventListener("submit", async (e) => {
  e.preventDefault();
  const features = {};
  for (const input of e.target.querySelectorAll("input")) {
    features[input.name] = parseFloat(input.value) || 0;
  }
  const res = await fetch("/api/predict", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({features}),
  });
  if (!res.ok) return;
  const out = await res.json();
  document.getElementById("result").hidden = false;
  const verdict = document.getElementById("verdict");
  if (out.label === 1) {
    verdict.textContent = "Customer is likely to CHURN";
    verdict.className = "churn";
  } else {
    verdict.textContent = "Customer is NOT likely to churn";
    verdict.className = "stay";
  }
  document.getElementById("proba").textContent = (out.probability * 100).toFixed(1) + "%";
  document.getElementById("proba-bar").style.width = (out.probability * 100).toFixed(1) + "%";
  document.getElementById("notice").textContent = out.notice || "";
});

try {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/api/ws/live");
  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (msg.type === "prediction") appendRow(msg.data);
  };
} catch (err) { /* live updates are optional */ }
</script>
</body>
</html>
`))
