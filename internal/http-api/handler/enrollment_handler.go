package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"learnhub/internal/http-api/dto"
	"learnhub/internal/http-api/middleware"
	"learnhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	svc service.EnrollmentService
}

func NewEnrollmentHandler(svc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc}
}

// RegisterRoutes registers enrollment routes; the group is expected to
// carry the auth middleware already.
func (h *EnrollmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Enroll)
	rg.POST("/verify", h.VerifyPayment)
	rg.GET("/my-courses", h.MyCourses)
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.svc.Enroll(ctx, userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		case errors.Is(err, service.ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, gin.H{"error": "already enrolled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if result.Enrolled {
		c.JSON(http.StatusOK, gin.H{"message": "Enrolled successfully"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Payment required",
		"order_id": result.OrderID,
		"amount":   result.Amount,
		"currency": result.Currency,
		"key":      result.Key,
	})
}

func (h *EnrollmentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.VerifyPayment(ctx, userID, req.OrderID, req.PaymentID, req.Signature); err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment verification failed"})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payment order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment verified, enrolled successfully"})
}

func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	enrollments, err := h.svc.MyCourses(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, enrollments)
}
