package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the sqlite client store and migrates its schema.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open client store: %w", err)
	}

	if err := db.AutoMigrate(&StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate client store: %w", err)
	}
	return db, nil
}

func InitDB(databaseURL string) {
	var err error
	DB, err = Open(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize client store")
	}
}

// Storage is durable key-value client storage. Writes and deletes are idempotent.
type Storage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Get returns the stored value and whether it exists.
func (s *Storage) Get(key string) (string, bool, error) {
	var row StoredValue
	err := s.db.Where("`key` = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *Storage) Set(key, value string) error {
	row := StoredValue{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes the given keys; missing keys are not an error.
func (s *Storage) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.Where("`key` IN ?", keys).Delete(&StoredValue{}).Error; err != nil {
		return fmt.Errorf("failed to remove %v: %w", keys, err)
	}
	return nil
}
