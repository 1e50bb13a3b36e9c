package dto

type CreateCourseRequest struct {
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	Duration          string `json:"duration"`
	IsFree            bool   `json:"is_free"`
	Price             int64  `json:"price" binding:"min=0"`
	DiscountPrice     int64  `json:"discount_price" binding:"min=0"`
	ThumbnailPublicID string `json:"thumbnail_public_id" binding:"required"`
	ThumbnailURL      string `json:"thumbnail_url" binding:"required,url"`
}

type UpdateCourseRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Duration          string `json:"duration"`
	IsFree            bool   `json:"is_free"`
	Price             int64  `json:"price" binding:"min=0"`
	DiscountPrice     int64  `json:"discount_price" binding:"min=0"`
	ThumbnailPublicID string `json:"thumbnail_public_id"`
	ThumbnailURL      string `json:"thumbnail_url" binding:"omitempty,url"`
}

type UploadVideoEntry struct {
	Title           string `json:"title" binding:"required"`
	DurationSeconds int64  `json:"duration_seconds" binding:"min=0"`
	VideoPublicID   string `json:"video_public_id" binding:"required"`
	VideoURL        string `json:"video_url" binding:"required,url"`
}

type UploadVideosRequest struct {
	Videos []UploadVideoEntry `json:"videos" binding:"required,min=1,dive"`
}
