package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Vellern/Duckov-Mod-Manager/internal/models"
)

var (
	// ErrNotInitialized is returned when a store method is called before Open.
	ErrNotInitialized = errors.New("database: store not initialized")
	// ErrClosed is returned when a store method is called after Close.
	ErrClosed = errors.New("database: store closed")
)

// Store owns the single long-lived SQLite handle shared by all services.
// It is opened once at process start and closed at shutdown; every method
// fails fast with ErrNotInitialized or ErrClosed instead of silently
// operating on a missing connection.
type Store struct {
	db     *gorm.DB
	closed bool
}

// Open opens (or creates) the SQLite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&models.Mod{}, &models.TranslationCache{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	log.Printf("Database ready at %s", path)
	return &Store{db: db}, nil
}

// Close releases the underlying SQLite handle. The store is unusable afterwards.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	if s.closed {
		return ErrClosed
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	s.closed = true
	return sqlDB.Close()
}

// handle returns the gorm handle, guarding against use before Open or after Close.
func (s *Store) handle() (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	if s.closed {
		return nil, ErrClosed
	}
	return s.db, nil
}
