// Package state is the durable local side of the client: the session and the
// guest cart, kept in a single-file SQLite database as JSON values under
// independent keys. Reads never fail: missing, corrupt or foreign values
// degrade to the zero state.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	sessionKey   = "session"
	guestCartKey = "guest_cart"
)

type record struct {
	Key   string `gorm:"primaryKey"`
	Value []byte `gorm:"not null"`
}

func (record) TableName() string { return "kv" }

type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open creates or opens the state database at path. Use ":memory:" in tests.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// get reads key into out and reports whether out now holds a stored value.
// Unreadable values are treated the same as absent ones.
func (s *Store) get(key string, out any) bool {
	var rec record
	if err := s.db.First(&rec, "key = ?", key).Error; err != nil {
		return false
	}
	if err := json.Unmarshal(rec.Value, out); err != nil {
		s.log.Warn("ignoring unreadable local state", "key", key, "error", err)
		return false
	}
	return true
}

// put overwrites key with the JSON encoding of v. Writes are whole-value;
// there are no field-level updates.
func (s *Store) put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&record{}, "key = ?", key).Error; err != nil {
			return err
		}
		return tx.Create(&record{Key: key, Value: raw}).Error
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(key string) error {
	if err := s.db.Delete(&record{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
