package repository

import (
	"context"
	"fmt"

	"learnhub/internal/http-api/models"

	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error)
	AddVideos(ctx context.Context, videos []models.CourseVideo) error
	ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error)
	CountVideos(ctx context.Context, courseID string) (int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Course, int64, error) {
	var list []models.Course
	var total int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Order("created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *courseRepository) AddVideos(ctx context.Context, videos []models.CourseVideo) error {
	if len(videos) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&videos).Error; err != nil {
		return fmt.Errorf("add course videos: %w", err)
	}
	return nil
}

// ListVideos returns the course's playback sequence ordered by position.
// This is the catalog read the progress engine consumes.
func (r *courseRepository) ListVideos(ctx context.Context, courseID string) ([]models.CourseVideo, error) {
	var videos []models.CourseVideo
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("list course videos: %w", err)
	}
	return videos, nil
}

func (r *courseRepository) CountVideos(ctx context.Context, courseID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CourseVideo{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
