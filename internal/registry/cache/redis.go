package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "github.com/consciencex/lhb-ubo/internal/platform/redis"
	"github.com/consciencex/lhb-ubo/internal/registry"
)

const redisKeyPrefix = "ubo:registry:"

// Redis is a shared TTL cache in front of another Lookup. Cache failures are
// never surfaced to the caller; a broken Redis degrades the cache to a
// pass-through.
type Redis struct {
	next   registry.Lookup
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis wraps next with a Redis-backed cache.
func NewRedis(next registry.Lookup, client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Redis{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Lookup(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
	key := redisKeyPrefix + registrationID

	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var record registry.CompanyRecord
		if unmarshalErr := json.Unmarshal(payload, &record); unmarshalErr == nil {
			return &record, nil
		}
		// Stale or corrupt entry: drop it and refetch.
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.WarnContext(ctx, "failed to evict corrupt cache entry",
				"registration_id", registrationID, "error", delErr)
		}
	case errors.Is(err, goredis.Nil):
		// cache miss
	default:
		r.logger.WarnContext(ctx, "registry cache read failed",
			"registration_id", registrationID, "error", err)
	}

	record, err := r.next.Lookup(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(record); marshalErr == nil {
		if setErr := r.client.Set(ctx, key, payload, r.ttl).Err(); setErr != nil {
			r.logger.WarnContext(ctx, "registry cache write failed",
				"registration_id", registrationID, "error", setErr)
		}
	}
	return record, nil
}
