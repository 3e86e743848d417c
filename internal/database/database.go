// Package database initializes the gorm/sqlite connection underlying
// the job store, applying WAL pragmas and connection-pool bounds before
// running migrations.
package database

import (
	"database/sql"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meetflow/internal/models"
)

// Open initializes the database file at path, applies WAL-mode pragmas,
// tunes the connection pool to [poolMin, poolMax], and runs migrations.
func Open(path string, poolMin, poolMax int) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: underlying sql.DB: %w", err)
	}
	tunePool(sqlDB, poolMin, poolMax)

	if err := db.AutoMigrate(&models.Job{}, &models.ExportJob{}); err != nil {
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_file_hash ON jobs(file_hash)").Error; err != nil {
		return nil, fmt.Errorf("database: index file_hash: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_export_jobs_job_id ON export_jobs(job_id)").Error; err != nil {
		return nil, fmt.Errorf("database: index export_jobs.job_id: %w", err)
	}

	return db, nil
}

func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("database: pragma %q: %w", p, err)
		}
	}
	return nil
}

func tunePool(sqlDB *sql.DB, poolMin, poolMax int) {
	if poolMax < 1 {
		poolMax = 1
	}
	sqlDB.SetMaxOpenConns(poolMax)
	if poolMin < 0 {
		poolMin = 0
	}
	sqlDB.SetMaxIdleConns(poolMin)
}

// HealthCheck verifies the connection is alive.
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
