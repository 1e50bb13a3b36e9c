package service

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"learnhub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes implementing the repository contracts. The progress
// fake mirrors the store's merge rule: max-wins on percent, last-writer
// on position and updated_at. A counter clock keeps updated_at ordering
// deterministic.

type fakeProgressRepo struct {
	mu      sync.Mutex
	records map[string]models.WatchProgress
	clock   time.Time
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		records: make(map[string]models.WatchProgress),
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func progressFakeKey(userID, courseID, videoID string) string {
	return userID + "/" + courseID + "/" + videoID
}

func (f *fakeProgressRepo) Get(ctx context.Context, userID, courseID, videoID string) (*models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[progressFakeKey(userID, courseID, videoID)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeProgressRepo) ListForCourse(ctx context.Context, userID, courseID string) ([]models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WatchProgress
	for _, rec := range f.records {
		if rec.UserID == userID && rec.CourseID == courseID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) UpsertMerge(ctx context.Context, userID, courseID, videoID string, percent float64, timestampSeconds int64) (*models.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = f.clock.Add(time.Second)
	key := progressFakeKey(userID, courseID, videoID)

	rec, ok := f.records[key]
	if !ok {
		rec = models.WatchProgress{UserID: userID, CourseID: courseID, VideoID: videoID}
	}
	if percent > rec.Percent {
		rec.Percent = percent
	}
	rec.LastTimestampSeconds = timestampSeconds
	rec.UpdatedAt = f.clock
	f.records[key] = rec

	out := rec
	return &out, nil
}

type fakeCourseRepo struct {
	videos  map[string][]models.CourseVideo
	courses map[string]*models.Course
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error { return nil }
func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error { return nil }
func (f *fakeCourseRepo) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCourseRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	return nil, 0, nil
}
func (f *fakeCourseRepo) AddVideos(ctx context.Context, videos []models.CourseVideo) error {
	return nil
}
func (f *fakeCourseRepo) ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error) {
	return f.videos[courseID], nil
}
func (f *fakeCourseRepo) CountVideos(ctx context.Context, courseID string) (int64, error) {
	return int64(len(f.videos[courseID])), nil
}

func threeVideoCourse(courseID string) []models.CourseVideo {
	return []models.CourseVideo{
		{ID: "video-0", CourseID: courseID, Title: "Intro", Order: 0},
		{ID: "video-1", CourseID: courseID, Title: "Basics", Order: 1},
		{ID: "video-2", CourseID: courseID, Title: "Advanced", Order: 2},
	}
}

func newTestProgressService(courseID string, videos []models.CourseVideo) (ProgressService, *fakeProgressRepo) {
	repo := newFakeProgressRepo()
	courses := &fakeCourseRepo{videos: map[string][]models.CourseVideo{courseID: videos}}
	return NewProgressService(repo, courses, 90), repo
}

func TestRecordEvent_IdempotentMerge(t *testing.T) {
	svc, _ := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	first, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 42.5, 120)
	require.NoError(t, err)

	second, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 42.5, 120)
	require.NoError(t, err)

	assert.Equal(t, first.Percent, second.Percent)
	assert.Equal(t, first.LastTimestampSeconds, second.LastTimestampSeconds)
	assert.Equal(t, first.Completed, second.Completed)
}

func TestRecordEvent_MonotonicPercent(t *testing.T) {
	svc, _ := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	// Any order of events: final percent is the max of all of them
	for _, p := range []float64{30, 80, 55, 10, 79.9} {
		_, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", p, 10)
		require.NoError(t, err)
	}

	rec, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 80.0, rec.Percent)
	// position still follows the latest event, even a rewind
	assert.Equal(t, int64(3), rec.LastTimestampSeconds)
}

func TestRecordEvent_CompletionDerivedFromThreshold(t *testing.T) {
	svc, _ := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	rec, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 89.9, 500)
	require.NoError(t, err)
	assert.False(t, rec.Completed)

	rec, err = svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 90, 505)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
}

func TestRecordEvent_BoundaryRejection(t *testing.T) {
	svc, repo := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	cases := []struct {
		name      string
		percent   float64
		timestamp int64
	}{
		{"percent above range", 150, 10},
		{"percent below range", -1, 10},
		{"NaN percent", math.NaN(), 10},
		{"infinite percent", math.Inf(1), 10},
		{"negative timestamp", 50, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", tc.percent, tc.timestamp)
			assert.ErrorIs(t, err, ErrInvalidProgress)
		})
	}

	// nothing was stored
	stored, err := repo.Get(ctx, "user-1", "course-1", "video-0")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRecordEvent_UnknownVideoRejected(t *testing.T) {
	svc, repo := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-stranger", 50, 10)
	assert.ErrorIs(t, err, ErrUnknownVideo)

	stored, err := repo.Get(ctx, "user-1", "course-1", "video-stranger")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCourseView_EmptyProgress(t *testing.T) {
	svc, _ := newTestProgressService("course-1", threeVideoCourse("course-1"))

	view, err := svc.CourseView(context.Background(), "user-1", "course-1")
	require.NoError(t, err)

	assert.Empty(t, view.PerVideo)
	assert.Nil(t, view.LastWatchedVideo)
	assert.Equal(t, 0, view.CompletionPercent)
}

func TestCourseView_EndToEndScenario(t *testing.T) {
	svc, _ := newTestProgressService("course-1", threeVideoCourse("course-1"))
	ctx := context.Background()

	_, err := svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 50, 60)
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, "user-1", "course-1", "video-0", 100, 120)
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, "user-1", "course-1", "video-1", 20, 30)
	require.NoError(t, err)

	view, err := svc.CourseView(ctx, "user-1", "course-1")
	require.NoError(t, err)

	// one of three videos completed
	assert.Equal(t, 33, view.CompletionPercent)
	require.NotNil(t, view.LastWatchedVideo)
	assert.Equal(t, "video-1", view.LastWatchedVideo.ID)

	next, err := svc.PickNext(ctx, "course-1", "video-1", DirectionNext)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "video-2", next.ID)

	prev, err := svc.PickNext(ctx, "course-1", "video-0", DirectionPrevious)
	require.NoError(t, err)
	assert.Nil(t, prev)
}

func TestSelectLastWatched(t *testing.T) {
	videos := threeVideoCourse("course-1")
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	t.Run("LatestUpdateWins", func(t *testing.T) {
		records := []models.WatchProgress{
			{VideoID: "video-0", Percent: 100, UpdatedAt: t1},
			{VideoID: "video-1", Percent: 40, UpdatedAt: t2},
		}
		got := SelectLastWatched(records, videos)
		require.NotNil(t, got)
		assert.Equal(t, "video-1", got.ID)
	})

	t.Run("TieBreakPrefersLaterPosition", func(t *testing.T) {
		records := []models.WatchProgress{
			{VideoID: "video-2", Percent: 10, UpdatedAt: t1},
			{VideoID: "video-0", Percent: 80, UpdatedAt: t1},
		}
		got := SelectLastWatched(records, videos)
		require.NotNil(t, got)
		assert.Equal(t, "video-2", got.ID)
	})

	t.Run("ZeroPercentIgnored", func(t *testing.T) {
		records := []models.WatchProgress{
			{VideoID: "video-0", Percent: 0, UpdatedAt: t2},
		}
		assert.Nil(t, SelectLastWatched(records, videos))
	})

	t.Run("NoRecords", func(t *testing.T) {
		assert.Nil(t, SelectLastWatched(nil, videos))
	})
}

func TestComputeCompletionPercent(t *testing.T) {
	videos := threeVideoCourse("course-1")

	t.Run("NoProgressIsZero", func(t *testing.T) {
		assert.Equal(t, 0, ComputeCompletionPercent(nil, videos, 90))
	})

	t.Run("AllCompletedIsHundred", func(t *testing.T) {
		records := []models.WatchProgress{
			{VideoID: "video-0", Percent: 100},
			{VideoID: "video-1", Percent: 95},
			{VideoID: "video-2", Percent: 90},
		}
		assert.Equal(t, 100, ComputeCompletionPercent(records, videos, 90))
	})

	t.Run("UnstartedVideosCountInDenominator", func(t *testing.T) {
		records := []models.WatchProgress{
			{VideoID: "video-0", Percent: 100},
			{VideoID: "video-1", Percent: 89},
		}
		assert.Equal(t, 33, ComputeCompletionPercent(records, videos, 90))
	})

	t.Run("EmptyCatalogIsZero", func(t *testing.T) {
		records := []models.WatchProgress{{VideoID: "video-0", Percent: 100}}
		assert.Equal(t, 0, ComputeCompletionPercent(records, nil, 90))
	})

	t.Run("ThresholdIsConfigurable", func(t *testing.T) {
		records := []models.WatchProgress{{VideoID: "video-0", Percent: 60}}
		assert.Equal(t, 33, ComputeCompletionPercent(records, videos, 50))
		assert.Equal(t, 0, ComputeCompletionPercent(records, videos, 90))
	})
}

func TestPickNext(t *testing.T) {
	videos := threeVideoCourse("course-1")

	t.Run("NextInSequence", func(t *testing.T) {
		got, err := PickNext("video-0", videos, DirectionNext)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "video-1", got.ID)
	})

	t.Run("PreviousInSequence", func(t *testing.T) {
		got, err := PickNext("video-2", videos, DirectionPrevious)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "video-1", got.ID)
	})

	t.Run("NoWraparoundAtEnd", func(t *testing.T) {
		got, err := PickNext("video-2", videos, DirectionNext)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("NoWraparoundAtStart", func(t *testing.T) {
		got, err := PickNext("video-0", videos, DirectionPrevious)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UnknownVideo", func(t *testing.T) {
		_, err := PickNext("video-stranger", videos, DirectionNext)
		assert.ErrorIs(t, err, ErrUnknownVideo)
	})

	t.Run("InvalidDirection", func(t *testing.T) {
		_, err := PickNext("video-0", videos, "sideways")
		assert.ErrorIs(t, err, ErrInvalidProgress)
	})
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-5))
	assert.Equal(t, 100.0, ClampPercent(250))
	assert.Equal(t, 42.5, ClampPercent(42.5))
}
