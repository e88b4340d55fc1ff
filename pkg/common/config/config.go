package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string

	// Model artifacts
	ArtifactDir string

	// Training
	DatasetPath    string
	CohortSize     int
	CohortSeed     int64
	TrainEpochs    int
	TrainLearnRate float64

	// Serving
	ResultCacheTTL time.Duration

	// Clinical rule overrides (empty = compiled-in defaults)
	AlertRulesPath    string
	CohortProfilePath string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "sepsiswatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "sepsiswatch123"),
		PostgresDB:       getEnv("POSTGRES_DB", "sepsiswatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "sepsiswatch-platform"),

		ArtifactDir: getEnv("MODEL_ARTIFACT_DIR", "models"),

		DatasetPath:    getEnv("TRAINING_DATASET_PATH", "sepsis_training_data.csv"),
		CohortSize:     getIntEnv("COHORT_SIZE", 2000),
		CohortSeed:     int64(getIntEnv("COHORT_SEED", 42)),
		TrainEpochs:    getIntEnv("TRAIN_EPOCHS", 400),
		TrainLearnRate: getFloatEnv("TRAIN_LEARNING_RATE", 0.05),

		ResultCacheTTL: getDuration("RESULT_CACHE_TTL", 5*time.Minute),

		AlertRulesPath:    getEnv("ALERT_RULES_PATH", ""),
		CohortProfilePath: getEnv("COHORT_PROFILE_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
