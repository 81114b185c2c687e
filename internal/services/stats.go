package services

import (
	"github.com/Vellern/Duckov-Mod-Manager/internal/database"
)

// ManagerStats aggregates store and translation statistics for the UI's
// overview panel.
type ManagerStats struct {
	TotalMods      int64            `json:"total_mods"`
	TranslatedMods int64            `json:"translated_mods"`
	TotalSizeBytes int64            `json:"total_size_bytes"`
	Translation    *TranslatorStats `json:"translation"`
}

// StatsService computes aggregate statistics over the store.
type StatsService struct {
	store      *database.Store
	translator *Translator
}

func NewStatsService(store *database.Store, translator *Translator) *StatsService {
	return &StatsService{store: store, translator: translator}
}

// Collect queries the store and translator for a stats snapshot.
func (s *StatsService) Collect() (*ManagerStats, error) {
	total, translated, err := s.store.CountMods()
	if err != nil {
		return nil, err
	}

	size, err := s.store.SumModSizes()
	if err != nil {
		return nil, err
	}

	translation, err := s.translator.Stats()
	if err != nil {
		return nil, err
	}

	return &ManagerStats{
		TotalMods:      total,
		TranslatedMods: translated,
		TotalSizeBytes: size,
		Translation:    translation,
	}, nil
}
