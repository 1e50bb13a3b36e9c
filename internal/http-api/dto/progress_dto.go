package dto

// DTOs for progress-related operations in HTTP API

type ProgressEventRequest struct {
	VideoID string `json:"video_id" binding:"required,uuid"`
	// Percent is validated again by the engine (finite, [0,100]); the
	// binding only rejects obviously malformed payloads early.
	Percent          float64 `json:"percent" binding:"min=0,max=100"`
	TimestampSeconds int64   `json:"timestamp_seconds" binding:"min=0"`
	Ended            bool    `json:"ended"`
}

type PickNextRequest struct {
	VideoID   string `form:"video_id" binding:"required,uuid"`
	Direction string `form:"direction" binding:"required,oneof=next previous"`
}

type ProgressEventResponse struct {
	VideoID              string  `json:"video_id"`
	Percent              float64 `json:"percent"`
	LastTimestampSeconds int64   `json:"last_timestamp_seconds"`
	Completed            bool    `json:"completed"`
	UpdatedAt            string  `json:"updated_at"`
	Accepted             bool    `json:"accepted"`
}
