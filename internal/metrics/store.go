package metrics

import (
	"log"
)

// StoreCounter is the slice of the database store the gauges need.
type StoreCounter interface {
	CountMods() (total int64, translated int64, err error)
	CountTranslations() (int64, error)
}

// UpdateStoreMetrics refreshes the store-backed gauges. Call after sync runs
// or cache maintenance; failures are logged and skipped so a metrics refresh
// never breaks the operation that triggered it.
func UpdateStoreMetrics(store StoreCounter) {
	if store == nil {
		return
	}

	total, translated, err := store.CountMods()
	if err != nil {
		log.Printf("Metrics: failed to count mods: %v", err)
	} else {
		ModsTotal.Set(float64(total))
		ModsTranslated.Set(float64(translated))
	}

	entries, err := store.CountTranslations()
	if err != nil {
		log.Printf("Metrics: failed to count translation cache entries: %v", err)
	} else {
		TranslationCacheEntries.Set(float64(entries))
	}
}
