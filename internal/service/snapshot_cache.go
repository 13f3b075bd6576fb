package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leadops/lead-dashboard/internal/domain"
)

const snapshotCacheKey = "lead-dashboard:snapshot:v1"

// Snapshot is the merged lead set and stage configuration at one point in time.
type Snapshot struct {
	Leads  []domain.Lead          `json:"leads"`
	Stages []domain.PipelineStage `json:"stages"`
}

// SnapshotCache keeps the merged snapshot in Redis. A nil client or zero TTL
// disables caching.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache builds a cache over client.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Enabled reports whether lookups reach Redis.
func (c *SnapshotCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached snapshot; found is false on a miss.
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot cache: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot cache: %w", err)
	}
	return &snap, true, nil
}

// Set stores snap with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, snap *Snapshot) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot cache: %w", err)
	}
	if err := c.client.Set(ctx, snapshotCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write snapshot cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, snapshotCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot cache: %w", err)
	}
	return nil
}
