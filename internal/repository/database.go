// Package repository provides data access layer using GORM for the KindCoins store.
package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kindcoins/kindcoins/internal/config"
	"github.com/kindcoins/kindcoins/internal/models"
	"github.com/kindcoins/kindcoins/pkg/logger"
)

// DB holds the store connection.
type DB struct {
	*gorm.DB
}

// NewDB opens the store. The default configuration uses an in-memory SQLite
// database: the whole domain model lives for the process lifetime and is
// reseeded on the next start. A postgres driver is available for deployments
// that want a durable store instead.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	var gormLogLevel gormlogger.LogLevel
	switch log.GetLogger().GetLevel() {
	case 0: // debug
		gormLogLevel = gormlogger.Info
	default:
		gormLogLevel = gormlogger.Warn
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.User,
			cfg.Postgres.Password,
			cfg.Postgres.Database,
			cfg.Postgres.SSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.SQLite.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	} else {
		// SQLite foreign keys default to off; referential integrity for
		// activities, goals and history depends on them.
		db.Exec("PRAGMA foreign_keys = ON")
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Msg("Store opened")

	return &DB{db}, nil
}

// AutoMigrate creates tables for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Child{},
		&models.Category{},
		&models.Activity{},
		&models.Goal{},
		&models.HistoryEntry{},
	)
}

// Close closes the store connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the store is reachable.
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
