package models

import "time"

// WatchProgress is the per-user, per-video watch state. One row per
// (user, course, video); created implicitly on the first progress event
// and merged on every later one. Percent is monotonically
// non-decreasing: the store keeps max(existing, incoming), while the
// playback position and updated_at always take the incoming values
// (seeking backwards is legitimate).
type WatchProgress struct {
	UserID               string    `gorm:"type:uuid;not null;primaryKey;index:idx_user_course" json:"user_id"`
	CourseID             string    `gorm:"type:uuid;not null;primaryKey;index:idx_user_course" json:"course_id"`
	VideoID              string    `gorm:"type:uuid;not null;primaryKey" json:"video_id"`
	Percent              float64   `gorm:"not null;default:0" json:"percent"`
	LastTimestampSeconds int64     `gorm:"not null;default:0" json:"last_timestamp_seconds"`
	UpdatedAt            time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Completed is derived from Percent against the configured
	// threshold. Never persisted, so it cannot drift from Percent.
	Completed bool `gorm:"-" json:"completed"`
}

func (WatchProgress) TableName() string {
	return "watch_progress"
}
