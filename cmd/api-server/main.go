package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/http-api/handler"
	"learnhub/internal/http-api/middleware"
	"learnhub/internal/http-api/repository"
	"learnhub/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	cache, err := repository.NewProgressCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Warn("redis unavailable, progress cache disabled", "error", err)
		cache = repository.NewNoopProgressCache()
	}
	defer cache.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressStore := repository.NewProgressRepository(db)
	progressRepo := repository.NewHybridProgressRepository(progressStore, cache, logger)

	// Services
	authService := service.NewAuthService(userRepo, cfg)
	courseService := service.NewCourseService(courseRepo)
	gateway := service.NewPaymentGateway(cfg.PaymentKeyID, cfg.PaymentKeySecret)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, gateway, cfg.PaymentCurrency)
	progressService := service.NewProgressService(progressRepo, courseRepo, cfg.CompletionThreshold)
	sessions := service.NewPlayerSessionFactory(progressService, cfg.ProgressTickInterval, logger)

	// Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	handler.NewAuthHandler(authService).RegisterRoutes(api.Group("/auth"))
	handler.NewCourseHandler(courseService, authService).RegisterRoutes(api.Group("/courses"))

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authService))
	handler.NewEnrollmentHandler(enrollmentService).RegisterRoutes(authed.Group("/enrollments"))
	handler.NewProgressHandler(progressService, courseService, enrollmentService, sessions).
		RegisterRoutes(authed.Group("/progress"))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelDebug
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
