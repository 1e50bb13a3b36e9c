package service

import (
	"context"
	"errors"

	"learnhub/internal/http-api/models"
	"learnhub/internal/http-api/repository"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in course")
	ErrNotEnrolled     = errors.New("not enrolled in course")
	ErrOrderNotFound   = errors.New("payment order not found")
)

// EnrollResult is what Enroll returns: either a completed free
// enrollment, or the order details the checkout widget needs.
type EnrollResult struct {
	Enrolled bool   `json:"enrolled"`
	OrderID  string `json:"order_id,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Key      string `json:"key,omitempty"`
}

type EnrollmentService interface {
	// Enroll enrolls directly for free courses; for paid ones it
	// creates a payment order and a pending enrollment.
	Enroll(ctx context.Context, userID, courseID string) (*EnrollResult, error)

	// VerifyPayment checks the gateway signature and completes the
	// pending enrollment.
	VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) error

	MyCourses(ctx context.Context, userID string) ([]models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

type enrollmentService struct {
	repo       repository.EnrollmentRepository
	courseRepo repository.CourseRepository
	gateway    PaymentGateway
	currency   string
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	gateway PaymentGateway,
	currency string,
) EnrollmentService {
	return &enrollmentService{
		repo:       repo,
		courseRepo: courseRepo,
		gateway:    gateway,
		currency:   currency,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID string) (*EnrollResult, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	existing, err := s.repo.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.EnrollmentEnrolled {
		return nil, ErrAlreadyEnrolled
	}

	// Free course: enrolled immediately
	if course.IsFree {
		if existing != nil {
			if err := s.repo.MarkEnrolled(ctx, userID, courseID); err != nil {
				return nil, err
			}
			return &EnrollResult{Enrolled: true}, nil
		}
		enrollment := &models.Enrollment{
			UserID:   userID,
			CourseID: courseID,
			Status:   models.EnrollmentEnrolled,
		}
		if err := s.repo.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrDuplicateEnrollment) {
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
		return &EnrollResult{Enrolled: true}, nil
	}

	// Paid course: create the gateway order and a pending enrollment
	amount := course.Price
	if course.DiscountPrice > 0 && course.DiscountPrice < course.Price {
		amount = course.DiscountPrice
	}

	orderID, err := s.gateway.CreateOrder(amount, s.currency)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		ID:       orderID,
		UserID:   userID,
		CourseID: courseID,
		Amount:   amount,
		Currency: s.currency,
		Status:   models.OrderCreated,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if existing == nil {
		enrollment := &models.Enrollment{
			UserID:         userID,
			CourseID:       courseID,
			Status:         models.EnrollmentPending,
			PaymentOrderID: &orderID,
		}
		if err := s.repo.Create(ctx, enrollment); err != nil && !errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, err
		}
	}

	return &EnrollResult{
		Enrolled: false,
		OrderID:  orderID,
		Amount:   amount,
		Currency: s.currency,
		Key:      s.gateway.KeyID(),
	}, nil
}

func (s *enrollmentService) VerifyPayment(ctx context.Context, userID, orderID, paymentID, signature string) error {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.UserID != userID {
		return ErrOrderNotFound
	}

	if err := s.gateway.VerifySignature(orderID, paymentID, signature); err != nil {
		return err
	}

	if err := s.repo.MarkOrderPaid(ctx, orderID); err != nil {
		return err
	}
	return s.repo.MarkEnrolled(ctx, userID, order.CourseID)
}

func (s *enrollmentService) MyCourses(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.repo.List(ctx, userID)
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	return s.repo.Exists(ctx, userID, courseID)
}
