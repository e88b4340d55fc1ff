package main

import (
	"github.com/sepsiswatch/platform/pkg/cohort"
	"github.com/sepsiswatch/platform/pkg/common/config"
	"github.com/sepsiswatch/platform/pkg/common/logger"
	"github.com/sepsiswatch/platform/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	profiles, err := cohort.LoadProfiles(cfg.CohortProfilePath)
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load cohort profiles, using defaults")
	}

	rows := cohort.NewGenerator(profiles).Generate(cfg.CohortSize, cfg.CohortSeed)
	if len(rows) == 0 {
		logger.Log.Fatal("COHORT_SIZE must be positive")
	}

	if err := storage.WriteCohortCSV(cfg.DatasetPath, rows); err != nil {
		logger.Log.WithError(err).Fatal("Failed to write dataset artifact")
	}

	var septic, male int
	minAge, maxAge := rows[0].Raw.Age, rows[0].Raw.Age
	for _, row := range rows {
		septic += row.SepsisLabel
		if row.Raw.Gender == 1 {
			male++
		}
		if row.Raw.Age < minAge {
			minAge = row.Raw.Age
		}
		if row.Raw.Age > maxAge {
			maxAge = row.Raw.Age
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"dataset":       cfg.DatasetPath,
		"patients":      len(rows),
		"seed":          cfg.CohortSeed,
		"sepsis_cases":  septic,
		"sepsis_pct":    float64(septic) / float64(len(rows)) * 100,
		"male_pct":      float64(male) / float64(len(rows)) * 100,
		"age_range_min": minAge,
		"age_range_max": maxAge,
	}).Info("Synthetic cohort generated")
}
