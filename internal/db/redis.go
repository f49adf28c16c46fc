package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore wraps a redis client and context for operations.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// IncrementAlertKey increments the counter behind an alert dedupe key.
// Sets a TTL of `window` if it's the first occurrence. Returns the current count.
func (r *RedisStore) IncrementAlertKey(key string, window time.Duration) (int64, error) {
	full := fmt.Sprintf("alertdedupe:%s", key)
	val, err := r.Client.Incr(r.Ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		r.Client.Expire(r.Ctx, full, window)
	}
	return val, nil
}

// IncrementAutomationCount increments the daily automation counter for a
// request type. A 24h TTL is applied on first set.
func (r *RedisStore) IncrementAutomationCount(requestType string) error {
	key := fmt.Sprintf("automation:%s:%s", requestType, time.Now().Format("2006-01-02"))
	val, err := r.Client.Incr(r.Ctx, key).Result()
	if err != nil {
		return err
	}
	if val == 1 {
		r.Client.Expire(r.Ctx, key, 24*time.Hour)
	}
	return nil
}

// GetAutomationCount returns today's automation counter for a request type.
func (r *RedisStore) GetAutomationCount(requestType string) int64 {
	key := fmt.Sprintf("automation:%s:%s", requestType, time.Now().Format("2006-01-02"))
	count, _ := r.Client.Get(r.Ctx, key).Int64()
	return count
}

// SetLastPipelineRun records the completion time of the latest pipeline run.
func (r *RedisStore) SetLastPipelineRun(t time.Time) error {
	return r.Client.Set(r.Ctx, "pipeline:last_run", t.Format(time.RFC3339), 0).Err()
}

// GetLastPipelineRun returns the completion time of the latest pipeline run.
// A zero time means no run has been recorded.
func (r *RedisStore) GetLastPipelineRun() time.Time {
	v, err := r.Client.Get(r.Ctx, "pipeline:last_run").Result()
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
