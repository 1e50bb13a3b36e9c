package service

import (
	"context"
	"errors"

	"learnhub/internal/http-api/models"
	"learnhub/internal/http-api/repository"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrNotInstructor  = errors.New("not the course instructor")
)

// CourseInput carries the mutable course fields. Free courses get
// their prices zeroed exactly once, here, so access never has to be
// re-derived downstream.
type CourseInput struct {
	Title             string
	Description       string
	Duration          string
	IsFree            bool
	Price             int64
	DiscountPrice     int64
	ThumbnailPublicID string
	ThumbnailURL      string
}

// VideoInput is one uploaded video entry; order is assigned by the
// service, not the caller.
type VideoInput struct {
	Title           string
	DurationSeconds int64
	VideoPublicID   string
	VideoURL        string
}

type CourseService interface {
	Create(ctx context.Context, instructorID string, input CourseInput) (*models.Course, error)
	Update(ctx context.Context, instructorID, courseID string, input CourseInput) (*models.Course, error)
	Delete(ctx context.Context, instructorID, courseID string) error
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error)
	AddVideos(ctx context.Context, instructorID, courseID string, inputs []VideoInput) ([]models.CourseVideo, error)
	ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error)
}

type courseService struct {
	repo repository.CourseRepository
}

func NewCourseService(repo repository.CourseRepository) CourseService {
	return &courseService{repo: repo}
}

func (s *courseService) Create(ctx context.Context, instructorID string, input CourseInput) (*models.Course, error) {
	price, discount := normalizeAccess(input.IsFree, input.Price, input.DiscountPrice)

	course := &models.Course{
		Title:             input.Title,
		Description:       input.Description,
		Duration:          input.Duration,
		InstructorID:      instructorID,
		IsFree:            input.IsFree,
		Price:             price,
		DiscountPrice:     discount,
		ThumbnailPublicID: input.ThumbnailPublicID,
		ThumbnailURL:      input.ThumbnailURL,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, instructorID, courseID string, input CourseInput) (*models.Course, error) {
	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.Duration != "" {
		course.Duration = input.Duration
	}
	if input.ThumbnailURL != "" {
		course.ThumbnailPublicID = input.ThumbnailPublicID
		course.ThumbnailURL = input.ThumbnailURL
	}

	course.IsFree = input.IsFree
	course.Price, course.DiscountPrice = normalizeAccess(input.IsFree, input.Price, input.DiscountPrice)

	// Save would write associations too; keep the update to the course row
	course.Instructor = nil
	course.Videos = nil

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, instructorID, courseID string) error {
	if _, err := s.ownedCourse(ctx, instructorID, courseID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, courseID)
}

func (s *courseService) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *courseService) GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	return s.repo.GetAll(ctx, page, pageSize)
}

// AddVideos appends a batch to the course's playback sequence. Orders
// continue after the current count so they stay unique and contiguous.
func (s *courseService) AddVideos(ctx context.Context, instructorID, courseID string, inputs []VideoInput) ([]models.CourseVideo, error) {
	if _, err := s.ownedCourse(ctx, instructorID, courseID); err != nil {
		return nil, err
	}

	existing, err := s.repo.CountVideos(ctx, courseID)
	if err != nil {
		return nil, err
	}

	videos := make([]models.CourseVideo, 0, len(inputs))
	for i, in := range inputs {
		videos = append(videos, models.CourseVideo{
			CourseID:        courseID,
			Title:           in.Title,
			Order:           int(existing) + i,
			DurationSeconds: in.DurationSeconds,
			VideoPublicID:   in.VideoPublicID,
			VideoURL:        in.VideoURL,
		})
	}

	if err := s.repo.AddVideos(ctx, videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *courseService) ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error) {
	return s.repo.ListVideos(ctx, courseID)
}

func (s *courseService) ownedCourse(ctx context.Context, instructorID, courseID string) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if course.InstructorID != instructorID {
		return nil, ErrNotInstructor
	}
	return course, nil
}

// normalizeAccess applies the free/paid variant once: a free course
// always carries zero prices.
func normalizeAccess(isFree bool, price, discount int64) (int64, int64) {
	if isFree {
		return 0, 0
	}
	return price, discount
}
