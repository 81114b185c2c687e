package models

import "time"

// TranslationCache stores one cached translation per
// (source text, source language, target language) triple.
//
// CacheKey is a SHA256 over the triple so lookups hit a single indexed
// column instead of comparing full mod descriptions. Every entry expires;
// a row past ExpiresAt is treated as absent by lookups even before the
// expiry sweep physically deletes it.
type TranslationCache struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CacheKey       string    `gorm:"uniqueIndex;not null;size:64" json:"cache_key"` // SHA256 hex
	SourceText     string    `gorm:"not null" json:"source_text"`
	TranslatedText string    `gorm:"not null" json:"translated_text"`
	SourceLang     string    `gorm:"size:10;not null" json:"source_lang"`
	TargetLang     string    `gorm:"size:10;not null" json:"target_lang"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `gorm:"index;not null" json:"expires_at"`
	HitCount       int       `gorm:"default:0" json:"hit_count"`
}

func (TranslationCache) TableName() string {
	return "translation_caches"
}

// IsExpired returns true if the cache entry has expired.
func (c *TranslationCache) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
