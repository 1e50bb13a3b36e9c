package database

import (
	"fmt"
	"log/slog" // use slog for structured logging
	"time"

	"learnhub/internal/config"
	"learnhub/internal/http-api/models"

	// postgres dialector rides on pgx/v5 under the hood
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.IsDevelopment() {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Run migrations
	if err := runMigrations(db, log); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connected to the database successfully")
	return db, nil
}

func runMigrations(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseVideo{},
		&models.Enrollment{},
		&models.PaymentOrder{},
		&models.WatchProgress{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}
