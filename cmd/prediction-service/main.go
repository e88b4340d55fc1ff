package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sepsiswatch/platform/pkg/clinical/alerts"
	"github.com/sepsiswatch/platform/pkg/common/config"
	"github.com/sepsiswatch/platform/pkg/common/database"
	"github.com/sepsiswatch/platform/pkg/common/kafka"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/model"
	"github.com/sepsiswatch/platform/pkg/observability/metrics"
	"github.com/sepsiswatch/platform/pkg/serving"
)

func main() {
	logger.Init()
	cfg := config.Load()

	rules, err := alerts.LoadRules(cfg.AlertRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load alert rules, using defaults")
	}

	bundle, err := model.Load(cfg.ArtifactDir)
	switch {
	case err == nil:
		logger.Log.WithFields(map[string]interface{}{
			"model_tag":  bundle.Tag,
			"trained_at": bundle.TrainedAt,
		}).Info("Model bundle loaded")
	case errors.Is(err, model.ErrArtifactMissing):
		// Recoverable: serve degraded until an operator runs the trainer.
		logger.Log.WithError(err).Warn("No model bundle found, starting in degraded mode")
		bundle = nil
	default:
		logger.Log.WithError(err).Fatal("Model bundle failed validation, refusing to serve with it")
	}
	metrics.SetModelLoaded(bundle != nil)

	service := serving.FromBundle(bundle, rules)

	if db, err := database.GetPostgres(); err == nil {
		repo := serving.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Warn("Failed to migrate prediction log table, audit disabled")
		} else {
			service.Audit = repo
		}
	} else {
		logger.Log.WithError(err).Warn("PostgreSQL unavailable, prediction audit disabled")
	}

	service.Cache = serving.NewResultCache(database.GetRedis(), cfg.ResultCacheTTL)

	producer := kafka.NewProducer(kafka.TopicPredictions)
	defer producer.Close()
	service.Events = producer

	handler := serving.NewHTTPHandler(service, cfg.MaxRequestBody)
	router := mux.NewRouter()
	handler.Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":         cfg.ServerHost,
			"port":         cfg.ServerPort,
			"model_loaded": service.Available(),
		}).Info("Prediction Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Prediction Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Prediction Service stopped")
}
