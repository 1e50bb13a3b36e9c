package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentPending  = "pending"
	EnrollmentEnrolled = "enrolled"
)

type Enrollment struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string  `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"user_id"`
	CourseID       string  `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"course_id"`
	Status         string  `gorm:"not null;default:'pending'" json:"status"` // "pending" or "enrolled"
	PaymentOrderID *string `gorm:"index" json:"payment_order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

func (Enrollment) TableName() string {
	return "enrollments"
}

const (
	OrderCreated = "created"
	OrderPaid    = "paid"
)

// PaymentOrder mirrors the order created at the payment gateway for a
// paid enrollment. ID is the gateway's order id.
type PaymentOrder struct {
	ID       string `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID string `gorm:"type:uuid;not null;index" json:"course_id"`
	Amount   int64  `gorm:"not null" json:"amount"` // smallest currency unit
	Currency string `gorm:"not null" json:"currency"`
	Status   string `gorm:"not null;default:'created'" json:"status"` // "created" or "paid"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}
