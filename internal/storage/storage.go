package storage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one persisted key/value pair. The cart snapshot lives under a
// single key as serialized JSON; the bearer token under another.
type Entry struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Well-known storage keys.
const (
	KeyCart      = "cart"
	KeyAuthToken = "auth_token"
)

// Store is a durable local key/value store backed by an embedded database.
// It is the client-side stand-in for browser localStorage: small, local to
// the machine, and expected to survive process restarts.
type Store struct {
	db *gorm.DB
}

// Open initializes the store at the given path and runs migrations.
// Use ":memory:" for throwaway stores in tests.
func Open(path string) (*Store, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	if err := conn.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	return &Store{db: conn}, nil
}

// Get returns the value for key. A missing key is not an error; it returns
// ok=false so callers can default to empty state.
func (s *Store) Get(key string) (string, bool, error) {
	var entry Entry
	if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return entry.Value, true, nil
}

// Put writes the value for key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	entry := Entry{Key: key, Value: value}
	if err := s.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Delete removes the key if present; deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
