package database

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vellern/Duckov-Mod-Manager/internal/models"
)

// ErrTranslationNotFound marks a pure cache miss, as opposed to a store
// failure. Callers fail open (translate again) only on this condition.
var ErrTranslationNotFound = errors.New("database: translation not found")

// GetTranslation returns the cached translation for the triple, or
// ErrTranslationNotFound when absent or expired. Expired rows are left in
// place for DeleteExpiredTranslations to sweep.
func (s *Store) GetTranslation(sourceText, sourceLang, targetLang string) (*models.TranslationCache, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	key := cacheKey(sourceText, sourceLang, targetLang)

	var cached models.TranslationCache
	if err := db.Where("cache_key = ?", key).First(&cached).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTranslationNotFound
		}
		return nil, fmt.Errorf("get translation: %w", err)
	}

	if cached.IsExpired() {
		return nil, ErrTranslationNotFound
	}

	// Track hits inline, one UPDATE per lookup.
	_ = db.Model(&models.TranslationCache{}).Where("id = ?", cached.ID).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error

	return &cached, nil
}

// SaveTranslation inserts or replaces the cached translation for the triple
// and resets its expiry to now+ttl.
func (s *Store) SaveTranslation(sourceText, translatedText, sourceLang, targetLang string, ttl time.Duration) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	cached := models.TranslationCache{
		CacheKey:       cacheKey(sourceText, sourceLang, targetLang),
		SourceText:     sourceText,
		TranslatedText: translatedText,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		CreatedAt:      time.Now(),
		ExpiresAt:      time.Now().Add(ttl),
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"translated_text", "created_at", "expires_at",
		}),
	}).Create(&cached).Error
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return nil
}

// CountTranslations counts cache rows that have not yet expired.
func (s *Store) CountTranslations() (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&models.TranslationCache{}).
		Where("expires_at > ?", time.Now()).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return count, nil
}

// DeleteExpiredTranslations removes rows past their expiry and returns how
// many were deleted. Routine maintenance; safe to run any time.
func (s *Store) DeleteExpiredTranslations() (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	result := db.Where("expires_at <= ?", time.Now()).Delete(&models.TranslationCache{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired translations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteAllTranslations wipes the entire translation cache regardless of
// expiry. Destructive; only invoked on explicit user request, never as part
// of routine maintenance.
func (s *Store) DeleteAllTranslations() (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	result := db.Where("1 = 1").Delete(&models.TranslationCache{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete all translations: %w", result.Error)
	}
	log.Printf("Warning: cleared entire translation cache (%d entries)", result.RowsAffected)
	return result.RowsAffected, nil
}

// cacheKey hashes the lookup triple into a fixed-width indexed key.
func cacheKey(sourceText, sourceLang, targetLang string) string {
	hash := sha256.Sum256([]byte(sourceLang + "\x00" + targetLang + "\x00" + sourceText))
	return hex.EncodeToString(hash[:])
}
