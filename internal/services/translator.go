package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Vellern/Duckov-Mod-Manager/internal/database"
	"github.com/Vellern/Duckov-Mod-Manager/internal/langdetect"
	"github.com/Vellern/Duckov-Mod-Manager/internal/metrics"
)

const (
	// batchConcurrency bounds how many translations run at once in
	// TranslateBatch. Keeps memory and model runtime load flat without
	// fully serializing a batch.
	batchConcurrency = 5

	// initKey is the singleflight key for model initialization; there is
	// only ever one model per translator.
	initKey = "model-init"
)

// Outcome labels for translation requests, mirrored into metrics.
const (
	outcomeSkipped  = "skipped"
	outcomeCache    = "cache"
	outcomeModel    = "model"
	outcomeFallback = "fallback"
)

// Translator provides zh->en translation backed by a lazily-loaded local
// model with a persistent cache in front of every invocation.
//
// The model goes through uninitialized -> initializing -> ready once per
// process. Concurrent callers that miss the cache while the model is
// initializing all await the same in-flight load; a failed load is reported
// to every waiter and forgotten so the next call can retry. Pure cache hits
// never touch initialization state.
type Translator struct {
	store      *database.Store
	loader     ModelLoader
	sourceLang string
	targetLang string
	cacheTTL   time.Duration

	initGroup singleflight.Group

	mu            sync.Mutex
	model         Model
	totalRequests int64
	cacheHits     int64
	cacheMisses   int64
	modelLoadTime time.Duration
}

// NewTranslator creates a translator. Counters live on the instance so
// independent translators (tests included) never share state.
func NewTranslator(store *database.Store, loader ModelLoader, sourceLang, targetLang string, cacheTTL time.Duration) *Translator {
	return &Translator{
		store:      store,
		loader:     loader,
		sourceLang: sourceLang,
		targetLang: targetLang,
		cacheTTL:   cacheTTL,
	}
}

// Translate translates text, serving from the persistent cache when it can.
// Empty or whitespace-only text is returned unchanged without counting as a
// request. A model failure during generation degrades to returning the
// input; a failure to initialize the model or reach the store is an error.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	out, err := t.translate(ctx, text)
	return out.text, err
}

type translateOutcome struct {
	text   string
	source string
}

func (t *Translator) translate(ctx context.Context, text string) (translateOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return translateOutcome{text: text, source: outcomeSkipped}, nil
	}

	t.mu.Lock()
	t.totalRequests++
	t.mu.Unlock()

	cached, err := t.store.GetTranslation(text, t.sourceLang, t.targetLang)
	if err == nil {
		t.mu.Lock()
		t.cacheHits++
		t.mu.Unlock()
		metrics.TranslationCacheHits.Inc()
		metrics.TranslationRequestsTotal.WithLabelValues(outcomeCache).Inc()
		debugLog("Cache hit for %q", truncateText(text, 40))
		return translateOutcome{text: cached.TranslatedText, source: outcomeCache}, nil
	}
	if !errors.Is(err, database.ErrTranslationNotFound) {
		// A connectivity or closed-store error is not a miss; masking it
		// as one would silently hide data loss.
		return translateOutcome{}, err
	}

	t.mu.Lock()
	t.cacheMisses++
	t.mu.Unlock()
	metrics.TranslationCacheMisses.Inc()

	model, err := t.ensureModel(ctx)
	if err != nil {
		return translateOutcome{}, err
	}

	translated, err := model.Generate(ctx, text, defaultGenerateOptions)
	if err != nil || strings.TrimSpace(translated) == "" {
		// Generation failures must never halt callers; untranslated text
		// is the degraded result the UI shows.
		if err != nil {
			infoLog("Model generation failed, keeping original text: %v", err)
			metrics.TranslationErrorsTotal.WithLabelValues("generate").Inc()
		}
		metrics.TranslationRequestsTotal.WithLabelValues(outcomeFallback).Inc()
		return translateOutcome{text: text, source: outcomeFallback}, nil
	}

	if err := t.store.SaveTranslation(text, translated, t.sourceLang, t.targetLang, t.cacheTTL); err != nil {
		infoLog("Failed to cache translation: %v", err)
		metrics.TranslationErrorsTotal.WithLabelValues("cache").Inc()
	}

	metrics.TranslationRequestsTotal.WithLabelValues(outcomeModel).Inc()
	return translateOutcome{text: translated, source: outcomeModel}, nil
}

// ensureModel returns the loaded model, initializing it on first need.
// Concurrent initialization requests coalesce through singleflight so the
// model is loaded at most once; a failed load is forgotten so a later call
// starts over from scratch.
func (t *Translator) ensureModel(ctx context.Context) (Model, error) {
	t.mu.Lock()
	if t.model != nil {
		model := t.model
		t.mu.Unlock()
		return model, nil
	}
	t.mu.Unlock()

	ch := t.initGroup.DoChan(initKey, func() (any, error) {
		started := time.Now()
		// Detached context: one caller timing out must not cancel the load
		// for the other waiters.
		model, err := t.loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		loadTime := time.Since(started)

		t.mu.Lock()
		t.model = model
		t.modelLoadTime = loadTime
		t.mu.Unlock()

		metrics.ModelLoadDuration.Set(loadTime.Seconds())
		infoLog("Translation model ready in %v", loadTime)
		return model, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			t.initGroup.Forget(initKey)
			metrics.TranslationErrorsTotal.WithLabelValues("init").Inc()
			return nil, fmt.Errorf("load translation model: %w", res.Err)
		}
		return res.Val.(Model), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TranslateBatch translates texts with bounded concurrency, preserving
// input order in the output.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	results := make([]string, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, text := range texts {
		g.Go(func() error {
			translated, err := t.Translate(ctx, text)
			if err != nil {
				return err
			}
			results[i] = translated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ContentTranslation is the result of translating a mod's title and
// description together.
type ContentTranslation struct {
	TranslatedTitle       string `json:"translated_title"`
	TranslatedDescription string `json:"translated_description"`
	DetectedLanguage      string `json:"detected_language"`
	// Translated is false when any field fell back to its original text;
	// callers must not record a translation timestamp in that case.
	Translated bool `json:"translated"`
}

// TranslateContent translates both content fields. On any failure it returns
// the original title and description unchanged rather than partial results,
// still paired with a best-effort detected language. It translates whatever
// it is given; deciding which fields need translation is the caller's job.
func (t *Translator) TranslateContent(ctx context.Context, title, description string) ContentTranslation {
	result := ContentTranslation{
		TranslatedTitle:       title,
		TranslatedDescription: description,
		DetectedLanguage:      langdetect.DetectISO6391(strings.TrimSpace(title + " " + description)),
	}

	titleOut, err := t.translate(ctx, title)
	if err != nil {
		infoLog("Content translation failed for title: %v", err)
		return result
	}
	descOut, err := t.translate(ctx, description)
	if err != nil {
		infoLog("Content translation failed for description: %v", err)
		return result
	}
	if titleOut.source == outcomeFallback || descOut.source == outcomeFallback {
		return result
	}

	result.TranslatedTitle = titleOut.text
	result.TranslatedDescription = descOut.text
	result.Translated = titleOut.source != outcomeSkipped || descOut.source != outcomeSkipped
	return result
}

// TranslatorStats is a point-in-time snapshot of cache and counter state.
type TranslatorStats struct {
	CacheEntries     int64   `json:"cache_entries"`
	TotalRequests    int64   `json:"total_requests"`
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	HitRatePercent   int     `json:"hit_rate_percent"`
	ModelLoaded      bool    `json:"model_loaded"`
	ModelLoadSeconds float64 `json:"model_load_seconds"`
}

// Stats reports persisted cache size plus this instance's in-memory
// counters. Counters reset on restart and are never persisted.
func (t *Translator) Stats() (*TranslatorStats, error) {
	entries, err := t.store.CountTranslations()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stats := &TranslatorStats{
		CacheEntries:     entries,
		TotalRequests:    t.totalRequests,
		CacheHits:        t.cacheHits,
		CacheMisses:      t.cacheMisses,
		ModelLoaded:      t.model != nil,
		ModelLoadSeconds: t.modelLoadTime.Seconds(),
	}
	if t.totalRequests > 0 {
		stats.HitRatePercent = int(math.Round(float64(t.cacheHits) / float64(t.totalRequests) * 100))
	}
	return stats, nil
}

// ClearExpired removes only expired cache rows. Routine maintenance.
func (t *Translator) ClearExpired() (int64, error) {
	return t.store.DeleteExpiredTranslations()
}

// ClearAll wipes the whole cache regardless of expiry. Destructive; wired
// only to the explicit user-facing reset, never to maintenance paths.
func (t *Translator) ClearAll() (int64, error) {
	return t.store.DeleteAllTranslations()
}

// truncateText truncates text to maxLen runes with ellipsis. Rune count, not
// bytes, so CJK text truncates cleanly.
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
