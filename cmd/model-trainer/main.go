package main

import (
	"context"

	"github.com/sepsiswatch/platform/pkg/cohort"
	"github.com/sepsiswatch/platform/pkg/common/config"
	"github.com/sepsiswatch/platform/pkg/common/database"
	"github.com/sepsiswatch/platform/pkg/common/kafka"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/training"
)

func main() {
	logger.Init()
	cfg := config.Load()

	profiles, err := cohort.LoadProfiles(cfg.CohortProfilePath)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load cohort profiles, using defaults")
	}

	pipeline := training.NewPipeline(profiles, training.Options{
		CohortSize:   cfg.CohortSize,
		Seed:         cfg.CohortSeed,
		Epochs:       cfg.TrainEpochs,
		LearningRate: cfg.TrainLearnRate,
	})

	if db, err := database.GetPostgres(); err == nil {
		repo := training.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Warn("Failed to migrate training run table, lineage disabled")
		} else {
			pipeline.Repo = repo
		}
	} else {
		logger.Log.WithError(err).Warn("PostgreSQL unavailable, run lineage disabled")
	}

	producer := kafka.NewProducer(kafka.TopicModels)
	defer producer.Close()
	pipeline.Events = producer

	result, err := pipeline.Run(context.Background(), cfg.DatasetPath, cfg.ArtifactDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("Training run failed, no artifacts published")
	}

	logger.Log.WithFields(map[string]interface{}{
		"model_tag":     result.Bundle.Tag,
		"artifact_dir":  cfg.ArtifactDir,
		"train_samples": result.TrainSamples,
		"test_samples":  result.TestSamples,
		"accuracy":      result.Metrics.Accuracy,
		"precision":     result.Metrics.Precision,
		"recall":        result.Metrics.Recall,
		"f1":            result.Metrics.F1,
		"roc_auc":       result.Metrics.ROCAUC,
	}).Info("Model trained and published")
}
