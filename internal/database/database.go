package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"immoprice/server/internal/models"
)

// DefaultRecentLimit bounds prediction history queries without an explicit limit
const DefaultRecentLimit = 50

type Database struct {
	sqlDB *sql.DB
	db    *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return open(dbPath)
}

// NewTestDB opens a private in-memory database
func NewTestDB() (*Database, error) {
	d, err := open(":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database
	d.sqlDB.SetMaxOpenConns(1)
	if err := d.RunMigrations(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func open(dsn string) (*Database, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	return &Database{sqlDB: sqlDB, db: db}, nil
}

func (d *Database) Close() error {
	return d.sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// InsertPredictions stores a batch of predictions. IDs already present are skipped so a
// retried batch does not fail on its own earlier rows.
func InsertPredictions(tx *gorm.DB, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&predictions)
	if result.Error != nil {
		return fmt.Errorf("failed to insert predictions: %w", result.Error)
	}
	return nil
}

// RecentPredictions returns the latest logged predictions, newest first
func (d *Database) RecentPredictions(limit int) ([]models.Prediction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var predictions []models.Prediction
	if err := d.db.Order("created_at DESC").Limit(limit).Find(&predictions).Error; err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	return predictions, nil
}

// CountPredictions returns the number of logged predictions
func (d *Database) CountPredictions() (int64, error) {
	var n int64
	if err := d.db.Model(&models.Prediction{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return n, nil
}

// SaveTrainingRun records one trainer execution
func (d *Database) SaveTrainingRun(run *models.TrainingRun) error {
	if err := d.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}
	return nil
}

// LatestTrainingRun returns the most recent training run, nil when none exists
func (d *Database) LatestTrainingRun() (*models.TrainingRun, error) {
	var runs []models.TrainingRun
	if err := d.db.Order("created_at DESC").Order("id DESC").Limit(1).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
