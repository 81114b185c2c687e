package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP bridge metrics

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modmanager_http_requests_total",
		Help: "Total HTTP requests by method, path, and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modmanager_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// Translation metrics

	TranslationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modmanager_translation_cache_hits_total",
		Help: "Translation requests served from the persistent cache",
	})

	TranslationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modmanager_translation_cache_misses_total",
		Help: "Translation requests that had to invoke the model",
	})

	TranslationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modmanager_translation_requests_total",
		Help: "Translation requests by outcome (cache, model, fallback, skipped)",
	}, []string{"outcome"})

	TranslationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modmanager_translation_errors_total",
		Help: "Translation failures by stage (init, generate, cache)",
	}, []string{"stage"})

	ModelLoadDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modmanager_model_load_duration_seconds",
		Help: "Duration of the most recent translation model load",
	})

	// Sync metrics

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modmanager_sync_duration_seconds",
		Help:    "Duration of full mod sync runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})

	SyncErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modmanager_sync_errors_total",
		Help: "Per-mod errors collected during sync runs",
	})

	// Store gauges, refreshed after syncs

	ModsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modmanager_mods_total",
		Help: "Mods currently tracked in the local store",
	})

	ModsTranslated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modmanager_mods_translated",
		Help: "Mods with at least one translated field",
	})

	TranslationCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "modmanager_translation_cache_entries",
		Help: "Unexpired rows in the translation cache",
	})
)
