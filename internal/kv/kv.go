package kv

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrQuotaExceeded is returned by Set when a value is larger than the
// store's configured capacity. Callers recover by shrinking the payload.
var ErrQuotaExceeded = errors.New("kv: value exceeds storage quota")

// Entry is one key/value row.
type Entry struct {
	Key       string `gorm:"primaryKey;size:256"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Store is a minimal durable key/value store with a small practical quota,
// in the manner of browser preference storage.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// gormStore implements Store on a single gorm table.
type gormStore struct {
	db            *gorm.DB
	maxValueBytes int
}

// NewGormStore creates a gorm-backed Store. maxValueBytes <= 0 disables the
// quota check.
func NewGormStore(db *gorm.DB, maxValueBytes int) Store {
	return &gormStore{db: db, maxValueBytes: maxValueBytes}
}

func (s *gormStore) Get(key string) (string, bool, error) {
	var entry Entry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *gormStore) Set(key, value string) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return fmt.Errorf("kv set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *gormStore) Delete(key string) error {
	if err := s.db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
