package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"learnhub/internal/http-api/models"
	"learnhub/internal/http-api/repository"
)

var (
	ErrInvalidProgress = errors.New("invalid progress event")
	ErrUnknownVideo    = errors.New("video not in course catalog")
	ErrEmptyCourse     = errors.New("course has no videos")
)

const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

// CourseProgressView is the derived per-course state the player renders:
// per-video records, the video to resume at, and overall completion.
// It is recomputed from the catalog and the canonical store on every
// request, never cached.
type CourseProgressView struct {
	PerVideo          map[string]models.WatchProgress `json:"per_video"`
	LastWatchedVideo  *models.CourseVideo             `json:"last_watched_video,omitempty"`
	CompletionPercent int                             `json:"completion_percent"`
}

type ProgressService interface {
	// RecordEvent validates and merges one playback-progress event.
	// Events referencing a video outside the course's catalog are
	// rejected before anything is stored.
	RecordEvent(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error)

	// CourseView assembles the resume state for a course.
	CourseView(ctx context.Context, userID, courseID string) (*CourseProgressView, error)

	// PickNext returns the adjacent video in playback order, or nil at
	// either end of the sequence.
	PickNext(ctx context.Context, courseID, currentVideoID, direction string) (*models.CourseVideo, error)

	Threshold() float64
}

type progressService struct {
	repo       repository.ProgressRepository
	courseRepo repository.CourseRepository
	threshold  float64
}

func NewProgressService(repo repository.ProgressRepository, courseRepo repository.CourseRepository, threshold float64) ProgressService {
	return &progressService{
		repo:       repo,
		courseRepo: courseRepo,
		threshold:  threshold,
	}
}

func (s *progressService) Threshold() float64 {
	return s.threshold
}

func (s *progressService) RecordEvent(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error) {
	if err := ValidateEvent(percent, timestampSeconds); err != nil {
		return nil, err
	}

	videos, err := s.courseRepo.ListVideos(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !catalogContains(videos, videoID) {
		return nil, ErrUnknownVideo
	}

	record, err := s.repo.UpsertMerge(ctx, userID, courseID, videoID, ClampPercent(percent), timestampSeconds)
	if err != nil {
		return nil, err
	}

	record.Completed = record.Percent >= s.threshold
	return record, nil
}

func (s *progressService) CourseView(ctx context.Context, userID, courseID string) (*CourseProgressView, error) {
	videos, err := s.courseRepo.ListVideos(ctx, courseID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListForCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	perVideo := make(map[string]models.WatchProgress, len(records))
	for _, rec := range records {
		rec.Completed = rec.Percent >= s.threshold
		perVideo[rec.VideoID] = rec
	}

	return &CourseProgressView{
		PerVideo:          perVideo,
		LastWatchedVideo:  SelectLastWatched(records, videos),
		CompletionPercent: ComputeCompletionPercent(records, videos, s.threshold),
	}, nil
}

func (s *progressService) PickNext(ctx context.Context, courseID, currentVideoID, direction string) (*models.CourseVideo, error) {
	videos, err := s.courseRepo.ListVideos(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return PickNext(currentVideoID, videos, direction)
}

// ValidateEvent rejects malformed progress input before any store
// mutation: percent must be a finite number in [0, 100] and the
// playback position non-negative.
func ValidateEvent(percent float64, timestampSeconds int64) error {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return ErrInvalidProgress
	}
	if percent < 0 || percent > 100 {
		return ErrInvalidProgress
	}
	if timestampSeconds < 0 {
		return ErrInvalidProgress
	}
	return nil
}

// ClampPercent bounds a percent to [0, 100].
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// SelectLastWatched picks the video to resume at: among records with
// any progress, the most recently updated one. Ties on updated_at
// prefer the larger position (the video reached furthest in sequence).
// Returns nil when the user has watched nothing; callers fall back to
// the first video of the catalog.
func SelectLastWatched(records []models.WatchProgress, videos []models.CourseVideo) *models.CourseVideo {
	byID := make(map[string]models.CourseVideo, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	var best *models.WatchProgress
	var bestVideo *models.CourseVideo
	for i := range records {
		rec := &records[i]
		if rec.Percent <= 0 {
			continue
		}
		video, ok := byID[rec.VideoID]
		if !ok {
			continue // record for a video no longer in the catalog
		}
		if best == nil ||
			rec.UpdatedAt.After(best.UpdatedAt) ||
			(rec.UpdatedAt.Equal(best.UpdatedAt) && video.Order > bestVideo.Order) {
			v := video
			best = rec
			bestVideo = &v
		}
	}
	return bestVideo
}

// ComputeCompletionPercent aggregates per-video completion into a
// course percentage. The denominator is the catalog size, so a video
// that was never started still counts against completion.
func ComputeCompletionPercent(records []models.WatchProgress, videos []models.CourseVideo, threshold float64) int {
	totalVideos := len(videos)
	if totalVideos == 0 {
		return 0
	}

	byID := make(map[string]struct{}, len(videos))
	for _, v := range videos {
		byID[v.ID] = struct{}{}
	}

	completedVideos := 0
	for _, rec := range records {
		if _, ok := byID[rec.VideoID]; !ok {
			continue
		}
		if rec.Percent >= threshold {
			completedVideos++
		}
	}

	return int(math.Round(100 * float64(completedVideos) / float64(totalVideos)))
}

// PickNext walks the catalog's total order. No wraparound: asking for
// next on the last video (or previous on the first) returns nil.
func PickNext(currentVideoID string, videos []models.CourseVideo, direction string) (*models.CourseVideo, error) {
	if direction != DirectionNext && direction != DirectionPrevious {
		return nil, ErrInvalidProgress
	}

	ordered := make([]models.CourseVideo, len(videos))
	copy(ordered, videos)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	idx := -1
	for i, v := range ordered {
		if v.ID == currentVideoID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrUnknownVideo
	}

	switch direction {
	case DirectionNext:
		if idx+1 >= len(ordered) {
			return nil, nil
		}
		return &ordered[idx+1], nil
	default:
		if idx == 0 {
			return nil, nil
		}
		return &ordered[idx-1], nil
	}
}

func catalogContains(videos []models.CourseVideo, videoID string) bool {
	for _, v := range videos {
		if v.ID == videoID {
			return true
		}
	}
	return false
}
