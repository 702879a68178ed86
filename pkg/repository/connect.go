package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/search"
)

// Repository is the postgres catalog store.
type Repository struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

var _ search.Store = (*Repository)(nil)

const (
	maxIdleTime = 5 * time.Minute
	maxLifetime = time.Hour
)

func Open(conf *configs.Config, logger *zap.Logger) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		conf.DB.Host, conf.DB.User, conf.DB.Password, conf.DB.Database, conf.DB.Port)

	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(conf.DB.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(conf.DB.MaxOpenConnections)
	sqlDB.SetConnMaxIdleTime(maxIdleTime)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return &Repository{DB: db, Logger: logger}, nil
}

func (r *Repository) Close() {
	sqlDB, err := r.DB.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

// storeError marks a database failure as a store outage while keeping the cause inspectable.
// Cancelled queries are logged at debug level.
func (r *Repository) storeError(operation string, err error) error {
	if errors.Is(err, context.Canceled) {
		r.Logger.Debug("catalog query cancelled", zap.String("operation", operation), zap.Error(err))
	} else {
		r.Logger.Error("catalog query failed", zap.String("operation", operation), zap.Error(err))
	}

	return fmt.Errorf("%w: %s: %w", search.ErrStoreUnavailable, operation, err)
}
