package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storeOptimizer/business/environment"
	"storeOptimizer/domain"
)

// EnvironmentCache stores environment snapshots per store, day and time bucket.
type EnvironmentCache struct {
	client *redis.Client
}

var _ environment.SnapshotCache = (*EnvironmentCache)(nil)

func NewEnvironmentCache(client *redis.Client) *EnvironmentCache {
	return &EnvironmentCache{
		client: client,
	}
}

// snapshotKey format: "env:snapshot:{store_id}:{yyyy-mm-dd}:{time_bucket}"
func snapshotKey(storeID uint64, at time.Time, bucket string) string {
	return fmt.Sprintf("env:snapshot:%d:%s:%s", storeID, at.Format(time.DateOnly), bucket)
}

// GetSnapshot returns nil, nil on a miss.
func (r *EnvironmentCache) GetSnapshot(ctx context.Context, storeID uint64, at time.Time) (*domain.EnvironmentSnapshot, error) {
	key := snapshotKey(storeID, at, environment.TimeBucket(at))

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get environment snapshot from Redis: %w", err)
	}

	var snap domain.EnvironmentSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment snapshot: %w", err)
	}

	return &snap, nil
}

func (r *EnvironmentCache) SetSnapshot(ctx context.Context, snap domain.EnvironmentSnapshot, ttl time.Duration) error {
	key := snapshotKey(snap.StoreID, snap.Date, snap.TimeBucket)

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal environment snapshot: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store environment snapshot in Redis: %w", err)
	}

	return nil
}

// Invalidate drops every cached snapshot of a store, e.g. after weather or calendar backfills.
func (r *EnvironmentCache) Invalidate(ctx context.Context, storeID uint64) (int, error) {
	pattern := fmt.Sprintf("env:snapshot:%d:*", storeID)

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan environment snapshots: %w", err)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete environment snapshots: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
