package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Vellern/Duckov-Mod-Manager/internal/langdetect"
	"github.com/Vellern/Duckov-Mod-Manager/internal/metrics"
	"github.com/Vellern/Duckov-Mod-Manager/internal/models"
)

// ErrSyncInProgress is returned when a sync is requested while one is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// syncStore is the slice of the database store the sync needs.
type syncStore interface {
	GetMod(id string) (*models.Mod, error)
	UpsertMod(mod *models.Mod) error
	CountMods() (total int64, translated int64, err error)
	CountTranslations() (int64, error)
}

// modLister is the slice of ModScanner the sync needs.
type modLister interface {
	ListModIDs() ([]string, error)
	DirSize(id string) (int64, error)
}

// catalogFetcher is the slice of WorkshopClient the sync needs.
type catalogFetcher interface {
	FetchDetails(ctx context.Context, ids []string) map[string]WorkshopDetails
}

// contentTranslator is the slice of Translator the sync needs.
type contentTranslator interface {
	TranslateContent(ctx context.Context, title, description string) ContentTranslation
}

// SyncResult reports one sync run. Per-mod failures are collected rather
// than aborting the batch, so a run can partially succeed.
type SyncResult struct {
	Scanned   int           `json:"scanned"`
	Synced    int           `json:"synced"`
	Skipped   int           `json:"skipped"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// ModSyncService reconciles local mod folders, Workshop metadata, and stored
// translations into a consistent set of mod records.
type ModSyncService struct {
	store          syncStore
	scanner        modLister
	catalog        catalogFetcher
	translator     contentTranslator
	retranslateTTL time.Duration

	mu         sync.Mutex
	running    bool
	lastResult *SyncResult
}

func NewModSyncService(store syncStore, scanner modLister, catalog catalogFetcher, translator contentTranslator, retranslateTTL time.Duration) *ModSyncService {
	return &ModSyncService{
		store:          store,
		scanner:        scanner,
		catalog:        catalog,
		translator:     translator,
		retranslateTTL: retranslateTTL,
	}
}

// IsRunning returns whether a sync is currently in progress.
func (s *ModSyncService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastResult returns the most recent completed sync result, or nil.
func (s *ModSyncService) LastResult() *SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Sync scans the mods folder, fetches catalog metadata for everything found,
// and upserts enriched records. Mods without catalog metadata are skipped.
// One mod's failure never aborts the rest; errors are collected per mod.
func (s *ModSyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	result := &SyncResult{StartedAt: start}

	ids, err := s.scanner.ListModIDs()
	if err != nil {
		return nil, err
	}
	result.Scanned = len(ids)

	if len(ids) == 0 {
		log.Println("ModSync: no mod directories found")
		result.Duration = time.Since(start)
		s.finish(result)
		return result, nil
	}

	log.Printf("ModSync: found %d local mods, fetching catalog metadata", len(ids))
	details := s.catalog.FetchDetails(ctx, ids)

	for _, id := range ids {
		d, ok := details[id]
		if !ok {
			// No catalog record (deleted, hidden, or fetch failed); the
			// mod stays on disk and gets another chance next sync.
			debugLog("Skipping %s: no catalog metadata", id)
			result.Skipped++
			continue
		}

		if err := s.syncOne(ctx, id, d); err != nil {
			log.Printf("ModSync: failed to sync %s: %v", id, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
			metrics.SyncErrorsTotal.Inc()
			continue
		}
		result.Synced++
	}

	result.Duration = time.Since(start)
	metrics.SyncDuration.Observe(result.Duration.Seconds())
	metrics.UpdateStoreMetrics(s.store)

	log.Printf("ModSync: completed in %v - %d scanned, %d synced, %d skipped, %d errors",
		result.Duration, result.Scanned, result.Synced, result.Skipped, len(result.Errors))

	s.finish(result)
	return result, nil
}

func (s *ModSyncService) finish(result *SyncResult) {
	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()
}

// syncOne merges one mod's catalog metadata with its stored record, deciding
// whether re-translation is warranted.
func (s *ModSyncService) syncOne(ctx context.Context, id string, d WorkshopDetails) error {
	stored, err := s.store.GetMod(id)
	if err != nil {
		return err
	}

	now := time.Now()
	mod := models.Mod{
		ID:                  id,
		OriginalTitle:       d.Title,
		OriginalDescription: d.Description,
		Creator:             d.Creator,
		PreviewURL:          d.PreviewURL,
		FileSizeBytes:       d.FileSize,
		Subscriptions:       d.Subscriptions,
		Rating:              d.Rating,
		Tags:                models.JoinTags(d.Tags),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		FirstSeenAt:         now,
		LastScannedAt:       now,
	}
	if stored != nil {
		mod.FirstSeenAt = stored.FirstSeenAt
	}

	if size, err := s.scanner.DirSize(id); err == nil && size > 0 {
		mod.FileSizeBytes = size
	}

	// Stale translations for changed source text are worse than none, so a
	// content change always invalidates, regardless of the TTL rules below.
	contentChanged := stored != nil &&
		(stored.OriginalTitle != d.Title || stored.OriginalDescription != d.Description)

	if stored != nil && !contentChanged && !s.needsRetranslation(stored, d, now) {
		// Carry forward unchanged; this is not a new translation, so the
		// timestamp is carried too, not reset.
		mod.TranslatedTitle = stored.TranslatedTitle
		mod.TranslatedDescription = stored.TranslatedDescription
		mod.LastTranslated = stored.LastTranslated
		mod.Language = stored.Language
		return s.store.UpsertMod(&mod)
	}

	s.translateFields(ctx, &mod, d)
	return s.store.UpsertMod(&mod)
}

// needsRetranslation is the retranslation policy for an already-stored mod:
// never translated, source updated since the last translation, or the last
// translation aged out of the staleness window.
func (s *ModSyncService) needsRetranslation(stored *models.Mod, d WorkshopDetails, now time.Time) bool {
	if stored.LastTranslated == nil {
		return true
	}
	if d.UpdatedAt.After(*stored.LastTranslated) {
		return true
	}
	if stored.LastTranslated.Before(now.Add(-s.retranslateTTL)) {
		return true
	}
	return false
}

// translateFields translates only the fields that actually need it. Fields
// without CJK text pass through untranslated even when the mod as a whole
// was flagged.
func (s *ModSyncService) translateFields(ctx context.Context, mod *models.Mod, d WorkshopDetails) {
	mod.Language = langdetect.DetectISO6391(d.Title + " " + d.Description)

	titleNeeds := langdetect.ContainsCJK(d.Title)
	descNeeds := langdetect.ContainsCJK(d.Description)
	if !titleNeeds && !descNeeds {
		return
	}

	title, desc := "", ""
	if titleNeeds {
		title = d.Title
	}
	if descNeeds {
		desc = d.Description
	}

	ct := s.translator.TranslateContent(ctx, title, desc)
	if !ct.Translated {
		return
	}

	if titleNeeds {
		mod.TranslatedTitle = &ct.TranslatedTitle
	}
	if descNeeds {
		mod.TranslatedDescription = &ct.TranslatedDescription
	}
	translatedAt := time.Now()
	mod.LastTranslated = &translatedAt
}
