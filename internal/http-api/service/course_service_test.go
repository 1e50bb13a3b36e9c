package service

import (
	"context"
	"testing"

	"learnhub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memCourseRepo is a recording fake for the course repository.
type memCourseRepo struct {
	courses map[string]*models.Course
	videos  map[string][]models.CourseVideo
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{
		courses: make(map[string]*models.Course),
		videos:  make(map[string][]models.CourseVideo),
	}
}

func (f *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "course-" + course.Title
	}
	f.courses[course.ID] = course
	return nil
}

func (f *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.courses[course.ID] = course
	return nil
}

func (f *memCourseRepo) Delete(ctx context.Context, id string) error {
	delete(f.courses, id)
	return nil
}

func (f *memCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *memCourseRepo) GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	var out []models.Course
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *memCourseRepo) AddVideos(ctx context.Context, videos []models.CourseVideo) error {
	for _, v := range videos {
		f.videos[v.CourseID] = append(f.videos[v.CourseID], v)
	}
	return nil
}

func (f *memCourseRepo) ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error) {
	return f.videos[courseID], nil
}

func (f *memCourseRepo) CountVideos(ctx context.Context, courseID string) (int64, error) {
	return int64(len(f.videos[courseID])), nil
}

func TestCourseCreate_FreeCourseZeroesPrices(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)

	course, err := svc.Create(context.Background(), "instructor-1", CourseInput{
		Title:         "Go Basics",
		IsFree:        true,
		Price:         49900,
		DiscountPrice: 29900,
	})
	require.NoError(t, err)
	assert.True(t, course.IsFree)
	assert.Zero(t, course.Price)
	assert.Zero(t, course.DiscountPrice)
}

func TestCourseCreate_PaidCourseKeepsPrices(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)

	course, err := svc.Create(context.Background(), "instructor-1", CourseInput{
		Title:         "Go Advanced",
		Price:         49900,
		DiscountPrice: 29900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(49900), course.Price)
	assert.Equal(t, int64(29900), course.DiscountPrice)
}

func TestCourseUpdate_OnlyOwnerMayMutate(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)
	ctx := context.Background()

	course, err := svc.Create(ctx, "instructor-1", CourseInput{Title: "Go Basics", IsFree: true})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "instructor-2", course.ID, CourseInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, ErrNotInstructor)

	err = svc.Delete(ctx, "instructor-2", course.ID)
	assert.ErrorIs(t, err, ErrNotInstructor)
}

func TestCourseUpdate_EmptyFieldsKeepExisting(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)
	ctx := context.Background()

	course, err := svc.Create(ctx, "instructor-1", CourseInput{
		Title:       "Go Basics",
		Description: "A course",
		Price:       49900,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "instructor-1", course.ID, CourseInput{
		Description: "A better course",
		Price:       39900,
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", updated.Title)
	assert.Equal(t, "A better course", updated.Description)
	assert.Equal(t, int64(39900), updated.Price)
}

func TestCourseUpdate_UnknownCourse(t *testing.T) {
	svc := NewCourseService(newMemCourseRepo())

	_, err := svc.Update(context.Background(), "instructor-1", "missing", CourseInput{Title: "X"})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAddVideos_OrdersContinueFromExisting(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)
	ctx := context.Background()

	course, err := svc.Create(ctx, "instructor-1", CourseInput{Title: "Go Basics", IsFree: true})
	require.NoError(t, err)

	first, err := svc.AddVideos(ctx, "instructor-1", course.ID, []VideoInput{
		{Title: "Intro"},
		{Title: "Setup"},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 0, first[0].Order)
	assert.Equal(t, 1, first[1].Order)

	second, err := svc.AddVideos(ctx, "instructor-1", course.ID, []VideoInput{
		{Title: "Slices"},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].Order)
}

func TestAddVideos_OnlyOwner(t *testing.T) {
	repo := newMemCourseRepo()
	svc := NewCourseService(repo)
	ctx := context.Background()

	course, err := svc.Create(ctx, "instructor-1", CourseInput{Title: "Go Basics", IsFree: true})
	require.NoError(t, err)

	_, err = svc.AddVideos(ctx, "instructor-2", course.ID, []VideoInput{{Title: "Intro"}})
	assert.ErrorIs(t, err, ErrNotInstructor)
}
