package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vellern/Duckov-Mod-Manager/internal/models"
)

// UpsertMod inserts or fully replaces the mod row with the same ID.
func (s *Store) UpsertMod(mod *models.Mod) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(mod).Error
	if err != nil {
		return fmt.Errorf("upsert mod %s: %w", mod.ID, err)
	}
	return nil
}

// GetMod returns the mod with the given ID, or nil when absent.
func (s *Store) GetMod(id string) (*models.Mod, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var mod models.Mod
	if err := db.First(&mod, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mod %s: %w", id, err)
	}
	return &mod, nil
}

// ListMods returns mods ordered by Workshop update time descending.
func (s *Store) ListMods(limit, offset int) (*models.ModSearchResult, error) {
	return s.queryMods(nil, limit, offset)
}

// SearchMods does a substring match across original and translated
// title/description, ordered like ListMods.
func (s *Store) SearchMods(query string, limit, offset int) (*models.ModSearchResult, error) {
	if query == "" {
		return s.queryMods(nil, limit, offset)
	}
	pattern := "%" + query + "%"
	filter := func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"original_title LIKE ? OR original_description LIKE ? OR translated_title LIKE ? OR translated_description LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return s.queryMods(filter, limit, offset)
}

func (s *Store) queryMods(filter func(*gorm.DB) *gorm.DB, limit, offset int) (*models.ModSearchResult, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	tx := db.Model(&models.Mod{})
	if filter != nil {
		tx = filter(tx)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count mods: %w", err)
	}

	var mods []models.Mod
	if err := tx.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&mods).Error; err != nil {
		return nil, fmt.Errorf("list mods: %w", err)
	}

	return &models.ModSearchResult{
		Mods:       mods,
		TotalCount: int(total),
		HasMore:    offset+len(mods) < int(total),
	}, nil
}

// SumModSizes returns the total on-disk bytes across all tracked mods.
func (s *Store) SumModSizes() (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var total int64
	if err := db.Model(&models.Mod{}).
		Select("COALESCE(SUM(file_size_bytes), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum mod sizes: %w", err)
	}
	return total, nil
}

// CountMods returns total and translated mod counts for stats reporting.
func (s *Store) CountMods() (total int64, translated int64, err error) {
	db, err := s.handle()
	if err != nil {
		return 0, 0, err
	}

	if err := db.Model(&models.Mod{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("count mods: %w", err)
	}
	if err := db.Model(&models.Mod{}).Where("last_translated IS NOT NULL").Count(&translated).Error; err != nil {
		return 0, 0, fmt.Errorf("count translated mods: %w", err)
	}
	return total, translated, nil
}
