package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"learnhub/internal/http-api/dto"
	"learnhub/internal/http-api/middleware"
	"learnhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	svc         service.CourseService
	authService service.AuthService
}

func NewCourseHandler(svc service.CourseService, authService service.AuthService) *CourseHandler {
	return &CourseHandler{svc: svc, authService: authService}
}

func (h *CourseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Public routes
	rg.GET("", h.List)
	rg.GET("/:course_id", h.Get)

	// Instructor-only routes
	authed := rg.Group("")
	authed.Use(middleware.AuthMiddleware(h.authService), middleware.RequireInstructor())
	authed.POST("", h.Create)
	authed.PUT("/:course_id", h.Update)
	authed.DELETE("/:course_id", h.Delete)
	authed.POST("/:course_id/videos", h.UploadVideos)
}

func (h *CourseHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// Parse pagination parameters
	page := 1
	pageSize := 20

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	list, total, err := h.svc.GetAll(ctx, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":   list,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *CourseHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	course, err := h.svc.GetByID(ctx, c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	course, err := h.svc.Create(ctx, userID, service.CourseInput{
		Title:             req.Title,
		Description:       req.Description,
		Duration:          req.Duration,
		IsFree:            req.IsFree,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		ThumbnailPublicID: req.ThumbnailPublicID,
		ThumbnailURL:      req.ThumbnailURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	course, err := h.svc.Update(ctx, userID, c.Param("course_id"), service.CourseInput{
		Title:             req.Title,
		Description:       req.Description,
		Duration:          req.Duration,
		IsFree:            req.IsFree,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		ThumbnailPublicID: req.ThumbnailPublicID,
		ThumbnailURL:      req.ThumbnailURL,
	})
	if err != nil {
		writeCourseError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, userID, c.Param("course_id")); err != nil {
		writeCourseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (h *CourseHandler) UploadVideos(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UploadVideosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.VideoInput, 0, len(req.Videos))
	for _, v := range req.Videos {
		inputs = append(inputs, service.VideoInput{
			Title:           v.Title,
			DurationSeconds: v.DurationSeconds,
			VideoPublicID:   v.VideoPublicID,
			VideoURL:        v.VideoURL,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	videos, err := h.svc.AddVideos(ctx, userID, c.Param("course_id"), inputs)
	if err != nil {
		writeCourseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"videos": videos})
}

func writeCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
	case errors.Is(err, service.ErrNotInstructor):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the course instructor"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
