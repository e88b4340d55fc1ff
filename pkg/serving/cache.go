package serving

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache keeps the latest result per patient in Redis so presentation
// layers can re-fetch without re-running the pipeline.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) key(patientID string) string {
	return fmt.Sprintf("prediction:latest:%s", patientID)
}

func (c *ResultCache) StoreLatest(ctx context.Context, result *PredictionResult) error {
	payload, err := json.Marshal(result.ToResponse())
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(result.PatientID), payload, c.ttl).Err()
}

// Latest returns the cached result for a patient, or (nil, nil) on a miss.
func (c *ResultCache) Latest(ctx context.Context, patientID string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.key(patientID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
