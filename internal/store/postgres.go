package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrisense/agrisense-backend/internal/sensor"
)

// PostgresStore is the durable reading store backed by Postgres via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres, tunes the connection pool, and migrates
// the readings table.
func OpenPostgres(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// NewPostgresStore migrates the readings table and returns the store.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&sensor.Reading{}); err != nil {
		return nil, fmt.Errorf("migrate readings: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Append inserts the reading with a fresh ID. Readings are never updated.
func (s *PostgresStore) Append(ctx context.Context, r sensor.Reading) (sensor.Reading, error) {
	r.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return sensor.Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	return r, nil
}

// Latest returns the most recent reading by CreatedAt, then sequence.
func (s *PostgresStore) Latest(ctx context.Context) (sensor.Reading, error) {
	var r sensor.Reading
	err := s.db.WithContext(ctx).
		Order("created_at DESC, seq DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sensor.Reading{}, ErrNoReadings
	}
	if err != nil {
		return sensor.Reading{}, fmt.Errorf("query latest reading: %w", err)
	}
	return r, nil
}

// Recent returns up to limit readings ordered by CreatedAt descending.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]sensor.Reading, error) {
	var readings []sensor.Reading
	q := s.db.WithContext(ctx).Order("created_at DESC, seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("query recent readings: %w", err)
	}
	return readings, nil
}

// Stats aggregates over the full table at call time.
func (s *PostgresStore) Stats(ctx context.Context) (sensor.Stats, error) {
	var row struct {
		AvgTemperature *float64
		AvgHumidity    *float64
		Count          int64
	}
	err := s.db.WithContext(ctx).
		Model(&sensor.Reading{}).
		Select("AVG(temperature) AS avg_temperature, AVG(humidity) AS avg_humidity, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return sensor.Stats{}, fmt.Errorf("aggregate readings: %w", err)
	}

	stats := sensor.Stats{Count: row.Count}
	if row.AvgTemperature != nil {
		stats.AvgTemperature = *row.AvgTemperature
	}
	if row.AvgHumidity != nil {
		stats.AvgHumidity = *row.AvgHumidity
	}
	return stats, nil
}
