package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"learnhub/internal/http-api/models"

	"golang.org/x/time/rate"
)

// PlayerSession drives the resume flow for one (user, course) pair.
// Periodic playback ticks are throttled so a busy player cannot flood
// the store; the forced write on video end always goes through and is
// awaited before the session advances.
type PlayerSession struct {
	userID   string
	courseID string
	progress ProgressService
	limiter  *rate.Limiter
	logger   *slog.Logger

	mu   sync.Mutex
	last map[string]*models.WatchProgress // last acked record per video
}

// SessionState is what the player renders on open: the video to show
// first and the full progress view.
type SessionState struct {
	CurrentVideo *models.CourseVideo `json:"current_video"`
	View         *CourseProgressView `json:"view"`
}

// PlayerSessionFactory hands out sessions and keeps them alive across
// requests so the tick limiter actually limits.
type PlayerSessionFactory struct {
	progress     ProgressService
	tickInterval time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*PlayerSession
}

func NewPlayerSessionFactory(progress ProgressService, tickInterval time.Duration, logger *slog.Logger) *PlayerSessionFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerSessionFactory{
		progress:     progress,
		tickInterval: tickInterval,
		logger:       logger,
		sessions:     make(map[string]*PlayerSession),
	}
}

// Session returns the existing session for the (user, course) pair or
// creates one.
func (f *PlayerSessionFactory) Session(userID, courseID string) *PlayerSession {
	key := userID + "|" + courseID

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.sessions[key]; ok {
		return s
	}
	s := &PlayerSession{
		userID:   userID,
		courseID: courseID,
		progress: f.progress,
		// one accepted tick per interval, burst of one
		limiter: rate.NewLimiter(rate.Every(f.tickInterval), 1),
		logger:  f.logger,
		last:    make(map[string]*models.WatchProgress),
	}
	f.sessions[key] = s
	return s
}

// Open loads the resume state. The initial video is the last watched
// one, else the first of the catalog. An empty catalog has no playable
// state and surfaces ErrEmptyCourse.
func (s *PlayerSession) Open(ctx context.Context, videos []models.CourseVideo) (*SessionState, error) {
	if len(videos) == 0 {
		return nil, ErrEmptyCourse
	}

	view, err := s.progress.CourseView(ctx, s.userID, s.courseID)
	if err != nil {
		return nil, err
	}

	current := view.LastWatchedVideo
	if current == nil {
		for i := range videos {
			if videos[i].Order == 0 {
				current = &videos[i]
				break
			}
		}
		if current == nil {
			current = &videos[0]
		}
	}

	return &SessionState{CurrentVideo: current, View: view}, nil
}

// Tick records a playback-progress event, rate-limited. A suppressed
// tick is not an error: the previous acked record is returned with
// accepted=false and the increment is simply lost if the user
// navigates away (spec'd best-effort behavior). Store failures are
// logged and surfaced as a failed save; playback never aborts.
func (s *PlayerSession) Tick(ctx context.Context, videoID string, percent float64, timestampSeconds int64) (record *models.WatchProgress, accepted bool, err error) {
	if !s.limiter.Allow() {
		s.mu.Lock()
		prev := s.last[videoID]
		s.mu.Unlock()
		return prev, false, nil
	}

	record, err = s.progress.RecordEvent(ctx, s.userID, s.courseID, videoID, percent, timestampSeconds)
	if err != nil {
		s.logger.Warn("progress_tick_save_failed",
			"user_id", s.userID,
			"course_id", s.courseID,
			"video_id", videoID,
			"error", err,
		)
		return nil, true, err
	}

	s.mu.Lock()
	s.last[videoID] = record
	s.mu.Unlock()
	return record, true, nil
}

// VideoEnded forces the final 100% event past the limiter, waits for
// the ack, then resolves the next video. A nil next video means the
// course session is complete; there is no auto-advance past the end.
func (s *PlayerSession) VideoEnded(ctx context.Context, videoID string, positionSeconds int64) (*models.CourseVideo, error) {
	record, err := s.progress.RecordEvent(ctx, s.userID, s.courseID, videoID, 100, positionSeconds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last[videoID] = record
	s.mu.Unlock()

	return s.progress.PickNext(ctx, s.courseID, videoID, DirectionNext)
}
