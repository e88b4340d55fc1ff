package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	predictionsServed   atomic.Int64
	predictionsRejected atomic.Int64
	tierLow             atomic.Int64
	tierModerate        atomic.Int64
	tierHigh            atomic.Int64
	tierVeryHigh        atomic.Int64
	modelLoaded         atomic.Int64
)

func ObservePrediction(riskLevel string) {
	predictionsServed.Add(1)
	switch riskLevel {
	case "LOW":
		tierLow.Add(1)
	case "MODERATE":
		tierModerate.Add(1)
	case "HIGH":
		tierHigh.Add(1)
	case "VERY HIGH":
		tierVeryHigh.Add(1)
	}
}

func ObserveRejection() {
	predictionsRejected.Add(1)
}

func SetModelLoaded(loaded bool) {
	if loaded {
		modelLoaded.Store(1)
	} else {
		modelLoaded.Store(0)
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP sepsiswatch_predictions_served_total Number of predictions served since process start.\n")
	fmt.Fprintf(w, "# TYPE sepsiswatch_predictions_served_total counter\n")
	fmt.Fprintf(w, "sepsiswatch_predictions_served_total %d\n", predictionsServed.Load())

	fmt.Fprintf(w, "# HELP sepsiswatch_predictions_rejected_total Number of prediction requests rejected since process start.\n")
	fmt.Fprintf(w, "# TYPE sepsiswatch_predictions_rejected_total counter\n")
	fmt.Fprintf(w, "sepsiswatch_predictions_rejected_total %d\n", predictionsRejected.Load())

	fmt.Fprintf(w, "# HELP sepsiswatch_predictions_tier_total Number of predictions served per risk tier.\n")
	fmt.Fprintf(w, "# TYPE sepsiswatch_predictions_tier_total counter\n")
	fmt.Fprintf(w, "sepsiswatch_predictions_tier_total{tier=\"low\"} %d\n", tierLow.Load())
	fmt.Fprintf(w, "sepsiswatch_predictions_tier_total{tier=\"moderate\"} %d\n", tierModerate.Load())
	fmt.Fprintf(w, "sepsiswatch_predictions_tier_total{tier=\"high\"} %d\n", tierHigh.Load())
	fmt.Fprintf(w, "sepsiswatch_predictions_tier_total{tier=\"very_high\"} %d\n", tierVeryHigh.Load())

	fmt.Fprintf(w, "# HELP sepsiswatch_model_loaded Whether a model bundle is currently loaded.\n")
	fmt.Fprintf(w, "# TYPE sepsiswatch_model_loaded gauge\n")
	fmt.Fprintf(w, "sepsiswatch_model_loaded %d\n", modelLoaded.Load())
}
