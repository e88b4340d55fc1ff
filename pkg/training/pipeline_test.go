package training

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sepsiswatch/platform/pkg/clinical/schema"
	"github.com/sepsiswatch/platform/pkg/cohort"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/ml/linear"
	"github.com/sepsiswatch/platform/pkg/model"
	"github.com/sepsiswatch/platform/pkg/storage"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testOptions() Options {
	return Options{
		CohortSize:   400,
		Seed:         42,
		Epochs:       200,
		LearningRate: 0.1,
		TestFraction: 0.2,
	}
}

func runPipeline(t *testing.T, dir string) *Result {
	t.Helper()
	p := NewPipeline(cohort.DefaultProfiles(), testOptions())
	result, err := p.Run(context.Background(), filepath.Join(dir, "cohort.csv"), filepath.Join(dir, "models"))
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	return result
}

func TestRunBootstrapsDatasetAndPublishesBundle(t *testing.T) {
	dir := t.TempDir()
	result := runPipeline(t, dir)

	if result.TrainSamples+result.TestSamples != 400 {
		t.Fatalf("split %d+%d rows, want 400", result.TrainSamples, result.TestSamples)
	}
	if result.TestSamples != 80 {
		t.Fatalf("test split has %d rows, want 80", result.TestSamples)
	}

	// The bootstrap cohort must have been persisted for repeatable retraining.
	rows, err := storage.ReadCohortCSV(filepath.Join(dir, "cohort.csv"))
	if err != nil {
		t.Fatalf("bootstrap dataset not readable: %v", err)
	}
	if len(rows) != 400 {
		t.Fatalf("persisted dataset has %d rows", len(rows))
	}

	// The published bundle must load back through the serving-side loader.
	loaded, err := model.Load(filepath.Join(dir, "models"))
	if err != nil {
		t.Fatalf("published bundle does not load: %v", err)
	}
	if loaded.Tag != result.Bundle.Tag {
		t.Fatalf("loaded tag %q, want %q", loaded.Tag, result.Bundle.Tag)
	}
	if loaded.Fingerprint != schema.Fingerprint() {
		t.Fatal("published bundle carries a foreign fingerprint")
	}
	if len(loaded.Classifier.Coefficients) != schema.VectorSize {
		t.Fatalf("classifier has %d coefficients", len(loaded.Classifier.Coefficients))
	}
}

func TestRunLearnsSepsisSignal(t *testing.T) {
	result := runPipeline(t, t.TempDir())

	// The synthetic profiles are strongly separated, so even a short run
	// must do clearly better than chance on the held-out split.
	if result.Metrics.ROCAUC < 0.8 {
		t.Fatalf("ROC-AUC %.3f, want >= 0.8", result.Metrics.ROCAUC)
	}
	if result.Metrics.Accuracy < 0.7 {
		t.Fatalf("accuracy %.3f, want >= 0.7", result.Metrics.Accuracy)
	}
	if result.Metrics.TruePositives == 0 {
		t.Fatal("model never predicts the positive class")
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	first := runPipeline(t, t.TempDir())
	second := runPipeline(t, t.TempDir())

	if first.Bundle.Classifier.Bias != second.Bundle.Classifier.Bias {
		t.Fatal("same seed produced different bias terms")
	}
	for i, c := range first.Bundle.Classifier.Coefficients {
		if second.Bundle.Classifier.Coefficients[i] != c {
			t.Fatalf("coefficient %d differs between seeded runs", i)
		}
	}
	if first.Metrics.ROCAUC != second.Metrics.ROCAUC {
		t.Fatal("same seed produced different evaluations")
	}
}

func TestRunReusesExistingDataset(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "cohort.csv")

	rows := cohort.NewGenerator(cohort.DefaultProfiles()).Generate(120, 7)
	if err := storage.WriteCohortCSV(datasetPath, rows); err != nil {
		t.Fatalf("seed dataset write failed: %v", err)
	}

	p := NewPipeline(cohort.DefaultProfiles(), testOptions())
	result, err := p.Run(context.Background(), datasetPath, filepath.Join(dir, "models"))
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	if result.TrainSamples+result.TestSamples != 120 {
		t.Fatalf("pipeline regenerated instead of reusing: %d rows", result.TrainSamples+result.TestSamples)
	}
}

func TestEvaluateDegenerateLabels(t *testing.T) {
	samples := [][]float64{{0}, {1}, {2}}
	labels := []float64{0, 0, 0}
	eval := Evaluate(linear.Model{}, samples, labels)
	if eval.ROCAUC != 0 {
		t.Fatalf("single-class evaluation should report AUC 0, got %v", eval.ROCAUC)
	}
}
