// Package historydb persists the shown-image history in SQLite through gorm.
// Only the most recent Cap rows are kept.
package historydb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultCap bounds the number of persisted entries.
const DefaultCap = 500

// Entry is one persisted shown URL.
type Entry struct {
	ID      uint   `gorm:"primaryKey"`
	URL     string `gorm:"not null"`
	ShownAt int64  `gorm:"index;not null"`
}

// TableName pins the table name.
func (Entry) TableName() string { return "shown_history" }

// Store persists shown URLs in sqlite, keeping only the most recent cap rows.
type Store struct {
	db  *gorm.DB
	cap int
}

// Open opens (creating if needed) the database at path.
func Open(path string, capacity int) (*Store, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("history db path is required")
	}
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	gdb, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        p,
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: gdb, cap: capacity}
	if err := s.init(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if err := s.db.Exec(`PRAGMA journal_mode=WAL;`).Error; err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	if err := s.db.Exec(`PRAGMA busy_timeout=5000;`).Error; err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("migrate history db: %w", err)
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	return nil
}

// Append stores urls in order and trims the table to the cap.
func (s *Store) Append(urls ...string) error {
	if s == nil || s.db == nil {
		return errors.New("history store is not initialized")
	}
	now := time.Now().UTC().UnixMilli()
	rows := make([]Entry, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			rows = append(rows, Entry{URL: u, ShownAt: now})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
		keep := tx.Model(&Entry{}).Select("id").Order("id DESC").Limit(s.cap)
		if err := tx.Where("id NOT IN (?)", keep).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

// Load returns up to the cap most recent URLs, oldest first.
func (s *Store) Load() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store is not initialized")
	}
	var rows []Entry
	if err := s.db.Order("id DESC").Limit(s.cap).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row.URL
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *Store) Count() (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history store is not initialized")
	}
	var n int64
	err := s.db.Model(&Entry{}).Count(&n).Error
	return n, err
}

// Clear deletes every row.
func (s *Store) Clear() error {
	if s == nil || s.db == nil {
		return errors.New("history store is not initialized")
	}
	return s.db.Where("1 = 1").Delete(&Entry{}).Error
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
