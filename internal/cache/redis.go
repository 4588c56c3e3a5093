package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"ecoscope/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisClient fronts the analysis store for completed entries. Misses fall
// through to the repository; entries here are a pure read optimization and
// carry the same immutable content.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient() (*RedisClient, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	// Test connection
	_, err = client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// StoreAnalysis caches a completed record with expiration.
func (r *RedisClient) StoreAnalysis(record *models.AnalysisRecord, duration time.Duration) error {
	key := fmt.Sprintf("analysis:%s", record.SubjectID)

	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	err = r.client.Set(r.ctx, key, jsonData, duration).Err()
	if err != nil {
		return fmt.Errorf("failed to store analysis in Redis: %w", err)
	}

	return nil
}

// GetAnalysis reads a cached record; the second return reports a hit.
func (r *RedisClient) GetAnalysis(subjectID string) (*models.AnalysisRecord, bool, error) {
	key := fmt.Sprintf("analysis:%s", subjectID)

	data, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil // Key doesn't exist
		}
		return nil, false, fmt.Errorf("failed to get analysis from Redis: %w", err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	return &record, true, nil
}

// DeleteAnalysis drops a cached record.
func (r *RedisClient) DeleteAnalysis(subjectID string) error {
	key := fmt.Sprintf("analysis:%s", subjectID)
	return r.client.Del(r.ctx, key).Err()
}

// GetStatus reports connection pool health for the debug endpoints.
func (r *RedisClient) GetStatus() (map[string]interface{}, error) {
	info, err := r.client.Info(r.ctx).Result()
	if err != nil {
		return nil, err
	}

	stats := r.client.PoolStats()

	return map[string]interface{}{
		"connected":    true,
		"hits":         stats.Hits,
		"misses":       stats.Misses,
		"active_conns": stats.TotalConns,
		"redis_info":   info,
	}, nil
}
