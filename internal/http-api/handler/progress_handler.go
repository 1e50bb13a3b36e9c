package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"learnhub/internal/http-api/dto"
	"learnhub/internal/http-api/middleware"
	"learnhub/internal/http-api/models"
	"learnhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressService   service.ProgressService
	courseService     service.CourseService
	enrollmentService service.EnrollmentService
	sessions          *service.PlayerSessionFactory
}

func NewProgressHandler(
	progressService service.ProgressService,
	courseService service.CourseService,
	enrollmentService service.EnrollmentService,
	sessions *service.PlayerSessionFactory,
) *ProgressHandler {
	return &ProgressHandler{
		progressService:   progressService,
		courseService:     courseService,
		enrollmentService: enrollmentService,
		sessions:          sessions,
	}
}

// RegisterRoutes registers the progress-related routes; the group is
// expected to carry the auth middleware already.
func (h *ProgressHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:course_id", h.GetCourseProgress)
	rg.POST("/:course_id", h.RecordEvent)
	rg.GET("/:course_id/next", h.PickNext)
}

// GetCourseProgress returns the resume state for a course: per-video
// records, the last watched video and the overall completion percent.
func (h *ProgressHandler) GetCourseProgress(c *gin.Context) {
	userID, courseID, ok := h.authorize(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	videos, err := h.courseService.ListVideos(ctx, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.Session(userID, courseID).Open(ctx, videos)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCourse) {
			c.JSON(http.StatusConflict, gin.H{"error": "course has no videos"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

// RecordEvent ingests one playback-progress tick. Ended events bypass
// the tick throttle, force a 100% merge and return the next video.
func (h *ProgressHandler) RecordEvent(c *gin.Context) {
	userID, courseID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req dto.ProgressEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	session := h.sessions.Session(userID, courseID)

	if req.Ended {
		next, err := session.VideoEnded(ctx, req.VideoID, req.TimestampSeconds)
		if err != nil {
			writeProgressError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "video completed", "next_video": next})
		return
	}

	record, accepted, err := session.Tick(ctx, req.VideoID, req.Percent, req.TimestampSeconds)
	if err != nil {
		writeProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProgressResponse(record, accepted))
}

func (h *ProgressHandler) PickNext(c *gin.Context) {
	_, courseID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req dto.PickNextRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	video, err := h.progressService.PickNext(ctx, courseID, req.VideoID, req.Direction)
	if err != nil {
		writeProgressError(c, err)
		return
	}

	// nil video means end of sequence, no wraparound
	c.JSON(http.StatusOK, gin.H{"video": video})
}

// authorize resolves the authenticated user and checks enrollment.
func (h *ProgressHandler) authorize(c *gin.Context) (userID, courseID string, ok bool) {
	userID, found := middleware.UserID(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", "", false
	}
	courseID = c.Param("course_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enrolled, err := h.enrollmentService.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", "", false
	}
	if !enrolled {
		c.JSON(http.StatusForbidden, gin.H{"error": "not enrolled in course"})
		return "", "", false
	}
	return userID, courseID, true
}

func writeProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProgress):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid progress event"})
	case errors.Is(err, service.ErrUnknownVideo):
		c.JSON(http.StatusNotFound, gin.H{"error": "video not in course"})
	case errors.Is(err, service.ErrEmptyCourse):
		c.JSON(http.StatusConflict, gin.H{"error": "course has no videos"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toProgressResponse(record *models.WatchProgress, accepted bool) dto.ProgressEventResponse {
	resp := dto.ProgressEventResponse{Accepted: accepted}
	if record != nil {
		resp.VideoID = record.VideoID
		resp.Percent = record.Percent
		resp.LastTimestampSeconds = record.LastTimestampSeconds
		resp.Completed = record.Completed
		resp.UpdatedAt = record.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
