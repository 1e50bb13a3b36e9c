package repository

import (
	"context"
	"log/slog"
	"time"

	"learnhub/internal/http-api/models"
)

// HybridProgressRepository fronts the Postgres store with a Redis cache.
// Writes always go to Postgres first: a failed merge is reported to the
// caller, never hidden behind a cache hit. The cache is refreshed
// best-effort after a successful write and warmed on read misses.
// Aggregation reads (ListForCourse) bypass the cache entirely so
// completion percentages are never computed from stale data.
type HybridProgressRepository struct {
	store  ProgressRepository
	cache  *ProgressCache
	logger *slog.Logger
}

func NewHybridProgressRepository(store ProgressRepository, cache *ProgressCache, logger *slog.Logger) *HybridProgressRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridProgressRepository{store: store, cache: cache, logger: logger}
}

func (r *HybridProgressRepository) Get(ctx context.Context, userID, courseID, videoID string) (*models.WatchProgress, error) {
	// Try Redis first (fast path for the player's point lookups)
	cached, err := r.cache.Get(ctx, userID, courseID, videoID)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil {
		r.logger.Debug("progress_cache_read_failed",
			"user_id", userID,
			"video_id", videoID,
			"error", err,
		)
	}

	record, err := r.store.Get(ctx, userID, courseID, videoID)
	if err != nil {
		return nil, err
	}

	// Warm the cache with the canonical record
	if record != nil {
		go r.warmCache(record)
	}

	return record, nil
}

func (r *HybridProgressRepository) ListForCourse(ctx context.Context, userID, courseID string) ([]models.WatchProgress, error) {
	return r.store.ListForCourse(ctx, userID, courseID)
}

func (r *HybridProgressRepository) UpsertMerge(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error) {
	merged, err := r.store.UpsertMerge(ctx, userID, courseID, videoID, percent, timestampSeconds)
	if err != nil {
		return nil, err
	}

	go r.warmCache(merged)

	return merged, nil
}

func (r *HybridProgressRepository) warmCache(record *models.WatchProgress) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.cache.Save(ctx, record); err != nil {
		r.logger.Warn("progress_cache_write_failed",
			"user_id", record.UserID,
			"video_id", record.VideoID,
			"error", err,
		)
	}
}
