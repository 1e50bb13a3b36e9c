package repository

import (
	"context"
	"errors"
	"fmt"

	"learnhub/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateEnrollment is returned when the unique (user, course)
// constraint rejects a second enrollment row.
var ErrDuplicateEnrollment = errors.New("enrollment already exists")

const pgUniqueViolation = "23505"

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	List(ctx context.Context, userID string) ([]models.Enrollment, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	MarkEnrolled(ctx context.Context, userID, courseID string) error

	CreateOrder(ctx context.Context, order *models.PaymentOrder) error
	GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	MarkOrderPaid(ctx context.Context, orderID string) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEnrollment
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // not enrolled yet
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentEnrolled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *enrollmentRepository) MarkEnrolled(ctx context.Context, userID, courseID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("status", models.EnrollmentEnrolled)
	if result.Error != nil {
		return fmt.Errorf("mark enrolled: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("enrollment not found")
	}
	return nil
}

func (r *enrollmentRepository) CreateOrder(ctx context.Context, order *models.PaymentOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create payment order: %w", err)
	}
	return nil
}

func (r *enrollmentRepository) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment order: %w", err)
	}
	return &order, nil
}

func (r *enrollmentRepository) MarkOrderPaid(ctx context.Context, orderID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentOrder{}).
		Where("id = ?", orderID).
		Update("status", models.OrderPaid)
	if result.Error != nil {
		return fmt.Errorf("mark order paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment order not found")
	}
	return nil
}
