package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"learnhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository is the canonical store for watch progress. Rows are
// keyed by (user_id, course_id, video_id); the upsert merges with
// max-wins semantics on percent so concurrent writers for the same key
// never regress it.
type ProgressRepository interface {
	Get(ctx context.Context, userID, courseID, videoID string) (*models.WatchProgress, error)
	ListForCourse(ctx context.Context, userID, courseID string) ([]models.WatchProgress, error)
	UpsertMerge(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID, courseID, videoID string) (*models.WatchProgress, error) {
	var progress models.WatchProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND video_id = ?", userID, courseID, videoID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no progress yet, counts as 0%
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &progress, nil
}

func (r *progressRepository) ListForCourse(ctx context.Context, userID, courseID string) ([]models.WatchProgress, error) {
	var list []models.WatchProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list course progress: %w", err)
	}
	return list, nil
}

// UpsertMerge applies a progress event in a single atomic statement:
// percent takes GREATEST(stored, incoming) while the playback position
// and updated_at are last-writer-wins. Replaying the same event is a
// no-op for percent, so the merge is idempotent.
func (r *progressRepository) UpsertMerge(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error) {
	record := models.WatchProgress{
		UserID:               userID,
		CourseID:             courseID,
		VideoID:              videoID,
		Percent:              percent,
		LastTimestampSeconds: timestampSeconds,
		UpdatedAt:            time.Now(),
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"percent":                gorm.Expr("GREATEST(watch_progress.percent, EXCLUDED.percent)"),
			"last_timestamp_seconds": gorm.Expr("EXCLUDED.last_timestamp_seconds"),
			"updated_at":             gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}

	// Re-read so the caller sees the merged percent, not the incoming one.
	merged, err := r.Get(ctx, userID, courseID, videoID)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		return nil, fmt.Errorf("upsert progress: record missing after merge")
	}
	return merged, nil
}
