// Package training fits the scaler and classifier against a labelled cohort
// and publishes the versioned model bundle. It runs as an offline batch: on
// any failure nothing is published and the run must be repeated.
package training

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sepsiswatch/platform/pkg/clinical/features"
	"github.com/sepsiswatch/platform/pkg/clinical/schema"
	"github.com/sepsiswatch/platform/pkg/cohort"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/ml/linear"
	"github.com/sepsiswatch/platform/pkg/ml/scaler"
	"github.com/sepsiswatch/platform/pkg/model"
	"github.com/sepsiswatch/platform/pkg/storage"
	"gorm.io/datatypes"
)

type Options struct {
	CohortSize   int
	Seed         int64
	Epochs       int
	LearningRate float64
	TestFraction float64
}

// EventPublisher is the optional announcement sink for published bundles.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

type Pipeline struct {
	profiles cohort.Profiles
	opts     Options

	// Optional collaborators; both best-effort relative to the batch.
	Repo   *Repository
	Events EventPublisher
}

func NewPipeline(profiles cohort.Profiles, opts Options) *Pipeline {
	if opts.CohortSize <= 0 {
		opts.CohortSize = 2000
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	return &Pipeline{profiles: profiles, opts: opts}
}

// Result summarizes a completed run.
type Result struct {
	Bundle       *model.Bundle
	Metrics      Evaluation
	TrainSamples int
	TestSamples  int
	DatasetPath  string
}

// Run executes the batch: load or bootstrap the cohort, build feature
// vectors, split, fit the scaler, train, evaluate, publish the bundle.
func (p *Pipeline) Run(ctx context.Context, datasetPath, artifactDir string) (*Result, error) {
	rows, err := p.loadOrGenerate(datasetPath)
	if err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}

	samples, labels, err := buildMatrix(rows)
	if err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}

	trainX, trainY, testX, testY := split(samples, labels, p.opts.TestFraction, p.opts.Seed)

	std, err := scaler.Fit(trainX)
	if err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}
	scaledTrain, err := std.TransformAll(trainX)
	if err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}
	scaledTest, err := std.TransformAll(testX)
	if err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"train_samples": len(scaledTrain),
		"test_samples":  len(scaledTest),
		"features":      schema.VectorSize,
	}).Info("Training classifier")

	clf := linear.Train(scaledTrain, trainY, linear.Options{
		Epochs:       p.opts.Epochs,
		LearningRate: p.opts.LearningRate,
	})
	eval := Evaluate(clf, scaledTest, testY)

	bundle := &model.Bundle{
		Tag:          uuid.New().String(),
		TrainedAt:    time.Now().UTC(),
		Fingerprint:  schema.Fingerprint(),
		Classifier:   clf,
		Scaler:       std,
		FeatureNames: schema.FeatureNames(),
		Metrics: map[string]float64{
			"accuracy":  eval.Accuracy,
			"precision": eval.Precision,
			"recall":    eval.Recall,
			"f1":        eval.F1,
			"roc_auc":   eval.ROCAUC,
		},
	}

	if err := model.Save(artifactDir, bundle); err != nil {
		p.recordFailure(ctx, datasetPath, artifactDir, err)
		return nil, err
	}

	result := &Result{
		Bundle:       bundle,
		Metrics:      eval,
		TrainSamples: len(scaledTrain),
		TestSamples:  len(scaledTest),
		DatasetPath:  datasetPath,
	}
	p.recordSuccess(ctx, result, artifactDir, len(samples))
	p.announce(ctx, bundle, eval)
	return result, nil
}

// loadOrGenerate reads the dataset artifact, bootstrapping a synthetic
// cohort and persisting it when none exists yet.
func (p *Pipeline) loadOrGenerate(datasetPath string) (cohort.Cohort, error) {
	rows, err := storage.ReadCohortCSV(datasetPath)
	if err == nil {
		logger.Log.WithFields(map[string]interface{}{
			"dataset": datasetPath,
			"rows":    len(rows),
		}).Info("Loaded training dataset")
		return rows, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"patients": p.opts.CohortSize,
		"seed":     p.opts.Seed,
	}).Info("No dataset found, generating synthetic bootstrap cohort")

	rows = cohort.NewGenerator(p.profiles).Generate(p.opts.CohortSize, p.opts.Seed)
	if err := storage.WriteCohortCSV(datasetPath, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// buildMatrix runs every cohort row through the same feature engine and
// assembler used at serving time. Training and inference sharing this path
// is what keeps the feature ordering contract honest.
func buildMatrix(rows cohort.Cohort) ([][]float64, []float64, error) {
	samples := make([][]float64, 0, len(rows))
	labels := make([]float64, 0, len(rows))
	for _, row := range rows {
		vector, err := schema.Assemble(features.Extend(row.Raw))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", row.PatientID, err)
		}
		samples = append(samples, vector)
		labels = append(labels, float64(row.SepsisLabel))
	}
	return samples, labels, nil
}

// split shuffles deterministically and carves off the test fraction.
func split(samples [][]float64, labels []float64, testFraction float64, seed int64) (trainX [][]float64, trainY []float64, testX [][]float64, testY []float64) {
	indices := make([]int, len(samples))
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	testCount := int(float64(len(samples)) * testFraction)
	for pos, idx := range indices {
		if pos < testCount {
			testX = append(testX, samples[idx])
			testY = append(testY, labels[idx])
		} else {
			trainX = append(trainX, samples[idx])
			trainY = append(trainY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func (p *Pipeline) recordSuccess(ctx context.Context, result *Result, artifactDir string, samples int) {
	if p.Repo == nil {
		return
	}
	completed := time.Now().UTC()
	run := &RunModel{
		ID:          uuid.New(),
		ModelTag:    result.Bundle.Tag,
		DatasetPath: result.DatasetPath,
		ArtifactDir: artifactDir,
		Fingerprint: result.Bundle.Fingerprint,
		Samples:     samples,
		Status:      StatusCompleted,
		Metrics: datatypes.JSONMap{
			"accuracy":  result.Metrics.Accuracy,
			"precision": result.Metrics.Precision,
			"recall":    result.Metrics.Recall,
			"f1":        result.Metrics.F1,
			"roc_auc":   result.Metrics.ROCAUC,
		},
		CreatedAt:   time.Now().UTC(),
		CompletedAt: &completed,
	}
	if err := p.Repo.Create(ctx, run); err != nil {
		logger.Log.WithError(err).Warn("failed to record training run")
	}
}

func (p *Pipeline) recordFailure(ctx context.Context, datasetPath, artifactDir string, cause error) {
	if p.Repo == nil {
		return
	}
	completed := time.Now().UTC()
	run := &RunModel{
		ID:           uuid.New(),
		DatasetPath:  datasetPath,
		ArtifactDir:  artifactDir,
		Fingerprint:  schema.Fingerprint(),
		Status:       StatusFailed,
		ErrorMessage: cause.Error(),
		CreatedAt:    time.Now().UTC(),
		CompletedAt:  &completed,
	}
	if err := p.Repo.Create(ctx, run); err != nil {
		logger.Log.WithError(err).Warn("failed to record training run failure")
	}
}

func (p *Pipeline) announce(ctx context.Context, bundle *model.Bundle, eval Evaluation) {
	if p.Events == nil {
		return
	}
	data := map[string]interface{}{
		"model_tag":          bundle.Tag,
		"schema_fingerprint": bundle.Fingerprint,
		"roc_auc":            eval.ROCAUC,
		"accuracy":           eval.Accuracy,
	}
	if err := p.Events.PublishEvent(ctx, "model.published", "model-trainer", data); err != nil {
		logger.Log.WithError(err).Warn("failed to publish model event")
	}
}
