package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"learnhub/internal/http-api/models"

	"github.com/redis/go-redis/v9"
)

// ProgressCache keeps a hash per watch-progress record for fast point
// lookups by the player. Postgres stays authoritative; cache misses and
// cache failures are never fatal.
type ProgressCache struct {
	client *redis.Client
}

// NewProgressCache connects to Redis and verifies the connection.
func NewProgressCache(addr, password string) (*ProgressCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ProgressCache{client: rdb}, nil
}

// NewNoopProgressCache returns a cache that silently does nothing.
// Used in tests and when Redis is not configured.
func NewNoopProgressCache() *ProgressCache {
	return &ProgressCache{client: nil}
}

func progressKey(userID, courseID, videoID string) string {
	return fmt.Sprintf("progress:user:%s:course:%s:video:%s", userID, courseID, videoID)
}

// Save stores a record as a hash with a 90-day TTL.
func (c *ProgressCache) Save(ctx context.Context, record *models.WatchProgress) error {
	if c == nil || c.client == nil {
		return nil
	}
	key := progressKey(record.UserID, record.CourseID, record.VideoID)

	fields := map[string]any{
		"user_id":                record.UserID,
		"course_id":              record.CourseID,
		"video_id":               record.VideoID,
		"percent":                record.Percent,
		"last_timestamp_seconds": record.LastTimestampSeconds,
		"updated_at":             record.UpdatedAt.Format(time.RFC3339Nano),
	}

	if err := c.client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, 90*24*time.Hour).Err()
}

// Get returns the cached record or nil on a miss.
func (c *ProgressCache) Get(ctx context.Context, userID, courseID, videoID string) (*models.WatchProgress, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	key := progressKey(userID, courseID, videoID)

	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil // miss
	}

	record := &models.WatchProgress{
		UserID:   userID,
		CourseID: courseID,
		VideoID:  videoID,
	}
	if p, ok := fields["percent"]; ok {
		record.Percent, _ = strconv.ParseFloat(p, 64)
	}
	if ts, ok := fields["last_timestamp_seconds"]; ok {
		record.LastTimestampSeconds, _ = strconv.ParseInt(ts, 10, 64)
	}
	if at, ok := fields["updated_at"]; ok {
		record.UpdatedAt, _ = time.Parse(time.RFC3339Nano, at)
	}

	return record, nil
}

// Delete drops a cached record.
func (c *ProgressCache) Delete(ctx context.Context, userID, courseID, videoID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, progressKey(userID, courseID, videoID)).Err()
}

func (c *ProgressCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
