package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quadramall/seller-api/internal/models"
)

// SubmissionSnapshot is the cached view of one submission attempt: its owner,
// the latest progress state, and when it was last updated. Clients that lose
// their SSE stream re-read this to catch up.
type SubmissionSnapshot struct {
	SubmissionID string               `json:"submissionId"`
	SellerID     int64                `json:"sellerId"`
	ProductID    *int64               `json:"productId,omitempty"`
	Progress     models.ProgressState `json:"progress"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// ErrSnapshotNotFound is returned when no snapshot exists for a submission.
var ErrSnapshotNotFound = errors.New("submission snapshot not found")

// SubmissionCache stores the latest progress snapshot per submission in Redis.
type SubmissionCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewSubmissionCache creates a new SubmissionCache.
func NewSubmissionCache(redis *RedisClient, ttl time.Duration) *SubmissionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SubmissionCache{redis: redis, ttl: ttl}
}

func (c *SubmissionCache) key(submissionID string) string {
	return fmt.Sprintf("submission:progress:%s", submissionID)
}

// Set stores the latest snapshot for a submission, refreshing the TTL.
func (c *SubmissionCache) Set(ctx context.Context, snap *SubmissionSnapshot) error {
	snap.UpdatedAt = time.Now()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal submission snapshot: %w", err)
	}
	return c.redis.Set(ctx, c.key(snap.SubmissionID), data, c.ttl)
}

// Get retrieves the latest snapshot for a submission.
func (c *SubmissionCache) Get(ctx context.Context, submissionID string) (*SubmissionSnapshot, error) {
	raw, err := c.redis.Get(ctx, c.key(submissionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	var snap SubmissionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submission snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes a submission's snapshot.
func (c *SubmissionCache) Delete(ctx context.Context, submissionID string) error {
	return c.redis.Delete(ctx, c.key(submissionID))
}
