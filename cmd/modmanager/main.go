package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Vellern/Duckov-Mod-Manager/internal/api"
	"github.com/Vellern/Duckov-Mod-Manager/internal/api/handlers"
	"github.com/Vellern/Duckov-Mod-Manager/internal/config"
	"github.com/Vellern/Duckov-Mod-Manager/internal/database"
	"github.com/Vellern/Duckov-Mod-Manager/internal/metrics"
	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	scanner := services.NewModScanner(cfg.ModsDir)
	workshop := services.NewWorkshopClient(cfg.WorkshopAPIURL, cfg.WorkshopAPIKey, cfg.WorkshopBatchSize, cfg.WorkshopDelay)
	loader := services.NewLocalModelLoader(cfg.TranslationEndpoint, cfg.TranslationModel, cfg.SourceLang)
	translator := services.NewTranslator(store, loader, cfg.SourceLang, cfg.TargetLang, cfg.CacheTTL())
	modSync := services.NewModSyncService(store, scanner, workshop, translator, cfg.RetranslateTTL())
	exporter := services.NewExportService(scanner)
	previews := services.NewPreviewCacheService(filepath.Join(filepath.Dir(cfg.DBPath), "previews"))
	stats := services.NewStatsService(store, translator)

	metrics.UpdateStoreMetrics(store)

	router := api.NewRouter(cfg,
		handlers.NewModsHandler(store, previews, stats),
		handlers.NewSyncHandler(modSync),
		handlers.NewTranslationsHandler(translator),
		handlers.NewExportHandler(exporter),
	)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("Mod manager backend listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
