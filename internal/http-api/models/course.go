package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is a published unit of content: metadata, a thumbnail and an
// ordered list of videos. Access (free vs paid) is decided once at
// creation time; a free course always carries zero prices.
type Course struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Title         string `gorm:"not null" json:"title"`
	Description   string `json:"description"`
	Duration      string `json:"duration"` // display string, e.g. "6h 30m"
	InstructorID  string `gorm:"type:uuid;not null;index" json:"instructor_id"`
	IsFree        bool   `gorm:"not null;default:false" json:"is_free"`
	Price         int64  `gorm:"not null;default:0" json:"price"`          // smallest currency unit
	DiscountPrice int64  `gorm:"not null;default:0" json:"discount_price"` // 0 means no discount

	ThumbnailPublicID string `gorm:"not null" json:"thumbnail_public_id"`
	ThumbnailURL      string `gorm:"not null" json:"thumbnail_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// associations
	Instructor *User         `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Videos     []CourseVideo `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
}

func (course *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	return
}

func (Course) TableName() string {
	return "courses"
}

// CourseVideo is one entry of a course's playback sequence. Order is
// unique and contiguous within a course, assigned by the service on
// upload; it defines the play order and the next/previous navigation.
type CourseVideo struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	CourseID        string `gorm:"type:uuid;not null;index:idx_course_order,unique" json:"course_id"`
	Title           string `gorm:"not null" json:"title"`
	Order           int    `gorm:"column:position;not null;index:idx_course_order,unique" json:"order"`
	DurationSeconds int64  `json:"duration_seconds"` // declared, may be 0 when unknown

	VideoPublicID string `gorm:"not null" json:"video_public_id"`
	VideoURL      string `gorm:"not null" json:"video_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (v *CourseVideo) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (CourseVideo) TableName() string {
	return "course_videos"
}
