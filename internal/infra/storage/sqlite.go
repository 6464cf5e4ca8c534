package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"bcx_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite order journal.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the journal at path.
// An empty path resolves to the per-user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.OrderRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "bcx_go", "data", "orders.db"), nil
}

// RecordOrder appends one dispatched command to the journal.
func (s *Storage) RecordOrder(rec *domain.OrderRecord) error {
	return s.db.Create(rec).Error
}

// ListOrders returns the most recent records, newest first. limit <= 0 returns all.
func (s *Storage) ListOrders(limit int) ([]domain.OrderRecord, error) {
	var records []domain.OrderRecord
	q := s.db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// CountByStatus returns how many records of the given action ended with status.
func (s *Storage) CountByStatus(action, status string) (int64, error) {
	var n int64
	err := s.db.Model(&domain.OrderRecord{}).
		Where("action = ? AND status = ?", action, status).
		Count(&n).Error
	return n, err
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
