package models

import (
	"strings"
	"time"
)

// Mod is one Workshop mod package tracked by the manager.
//
// Original* fields hold the catalog text as first captured and are never
// overwritten by translation. Translated* fields stay nil until a translation
// call succeeds. LastTranslated is set only when a translation call actually
// populated a translated field, not when prior values are carried forward.
type Mod struct {
	LastTranslated        *time.Time `json:"last_translated"`
	CreatedAt             time.Time  `json:"created_at"` // Workshop publish time
	UpdatedAt             time.Time  `json:"updated_at" gorm:"index"`
	FirstSeenAt           time.Time  `json:"first_seen_at"`
	LastScannedAt         time.Time  `json:"last_scanned_at"`
	ID                    string     `json:"id" gorm:"primaryKey"`
	OriginalTitle         string     `json:"original_title" gorm:"not null"`
	OriginalDescription   string     `json:"original_description"`
	TranslatedTitle       *string    `json:"translated_title"`
	TranslatedDescription *string    `json:"translated_description"`
	Language              string     `json:"language" gorm:"size:10"` // best-effort detected source language
	Creator               string     `json:"creator"`
	PreviewURL            string     `json:"preview_url"`
	FileSizeBytes         int64      `json:"file_size_bytes"`
	Subscriptions         int64      `json:"subscriptions"`
	Rating                float64    `json:"rating"`
	Tags                  string     `json:"tags"` // comma-separated Workshop tags
}

func (Mod) TableName() string {
	return "mods"
}

// DisplayTitle returns the translated title when available, otherwise the original.
func (m *Mod) DisplayTitle() string {
	if m.TranslatedTitle != nil && *m.TranslatedTitle != "" {
		return *m.TranslatedTitle
	}
	return m.OriginalTitle
}

// DisplayDescription returns the translated description when available, otherwise the original.
func (m *Mod) DisplayDescription() string {
	if m.TranslatedDescription != nil && *m.TranslatedDescription != "" {
		return *m.TranslatedDescription
	}
	return m.OriginalDescription
}

// TagList splits the serialized tag string back into individual tags.
func (m *Mod) TagList() []string {
	if m.Tags == "" {
		return nil
	}
	parts := strings.Split(m.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// JoinTags serializes Workshop tags for storage.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

type ModSearchResult struct {
	Mods       []Mod `json:"mods"`
	TotalCount int   `json:"total_count"`
	HasMore    bool  `json:"has_more"`
}
