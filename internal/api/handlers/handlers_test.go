package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vellern/Duckov-Mod-Manager/internal/database"
	"github.com/Vellern/Duckov-Mod-Manager/internal/models"
	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListModsReturnsSearchResults(t *testing.T) {
	store := newHandlerStore(t)
	translated := "Test Mod"
	mods := []*models.Mod{
		{ID: "1", OriginalTitle: "测试模组", TranslatedTitle: &translated, UpdatedAt: time.Now()},
		{ID: "2", OriginalTitle: "Better Ducks", UpdatedAt: time.Now().Add(-time.Hour)},
	}
	for _, m := range mods {
		if err := store.UpsertMod(m); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	h := NewModsHandler(store, services.NewPreviewCacheService(t.TempDir()), nil)
	r := gin.New()
	r.GET("/api/mods", h.ListMods)

	w := doRequest(r, http.MethodGet, "/api/mods", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.ModSearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("Expected 2 mods, got %d", result.TotalCount)
	}

	w = doRequest(r, http.MethodGet, "/api/mods?query=Test+Mod", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if result.TotalCount != 1 || result.Mods[0].ID != "1" {
		t.Errorf("Expected only mod 1 for translated-title query, got %+v", result)
	}
}

func TestGetModNotFound(t *testing.T) {
	store := newHandlerStore(t)
	h := NewModsHandler(store, services.NewPreviewCacheService(t.TempDir()), nil)
	r := gin.New()
	r.GET("/api/mods/:id", h.GetMod)

	w := doRequest(r, http.MethodGet, "/api/mods/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown mod, got %d", w.Code)
	}
}

func TestGetModReturnsStoredMod(t *testing.T) {
	store := newHandlerStore(t)
	if err := store.UpsertMod(&models.Mod{ID: "42", OriginalTitle: "模组", Creator: "765"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	h := NewModsHandler(store, services.NewPreviewCacheService(t.TempDir()), nil)
	r := gin.New()
	r.GET("/api/mods/:id", h.GetMod)

	w := doRequest(r, http.MethodGet, "/api/mods/42", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var mod models.Mod
	if err := json.Unmarshal(w.Body.Bytes(), &mod); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if mod.ID != "42" || mod.OriginalTitle != "模组" {
		t.Errorf("Unexpected mod payload: %+v", mod)
	}
}

func newTranslationsHandler(t *testing.T) (*TranslationsHandler, *database.Store) {
	t.Helper()
	store := newHandlerStore(t)
	translator := services.NewTranslator(store, nil, "zh", "en", time.Hour)
	return NewTranslationsHandler(translator), store
}

func TestClearAllRequiresConfirmation(t *testing.T) {
	h, store := newTranslationsHandler(t)
	if err := store.SaveTranslation("你好", "Hello", "zh", "en", time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	r := gin.New()
	r.POST("/api/translations/clear-all", h.ClearAll)

	for _, body := range []string{"", "{}", `{"confirm": false}`} {
		w := doRequest(r, http.MethodPost, "/api/translations/clear-all", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %q: expected 400 without confirmation, got %d", body, w.Code)
		}
	}
	count, _ := store.CountTranslations()
	if count != 1 {
		t.Fatalf("Cache must be untouched without confirmation, have %d entries", count)
	}

	w := doRequest(r, http.MethodPost, "/api/translations/clear-all", `{"confirm": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with confirmation, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if resp.Deleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", resp.Deleted)
	}
}

func TestClearExpiredNeedsNoConfirmation(t *testing.T) {
	h, store := newTranslationsHandler(t)
	if err := store.SaveTranslation("过期", "stale", "zh", "en", -time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	r := gin.New()
	r.POST("/api/translations/clear-expired", h.ClearExpired)

	w := doRequest(r, http.MethodPost, "/api/translations/clear-expired", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if resp.Deleted != 1 {
		t.Errorf("Expected 1 expired entry deleted, got %d", resp.Deleted)
	}
}

func TestTranslationStatsEndpoint(t *testing.T) {
	h, store := newTranslationsHandler(t)
	if err := store.SaveTranslation("你好", "Hello", "zh", "en", time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	r := gin.New()
	r.GET("/api/translations/stats", h.GetStats)

	w := doRequest(r, http.MethodGet, "/api/translations/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var stats services.TranslatorStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if stats.CacheEntries != 1 {
		t.Errorf("Expected 1 cache entry, got %d", stats.CacheEntries)
	}
	if stats.ModelLoaded {
		t.Error("Expected model not loaded for a fresh translator")
	}
}

func TestSyncStatusBeforeAnyRun(t *testing.T) {
	store := newHandlerStore(t)
	scanner := services.NewModScanner(t.TempDir())
	workshop := services.NewWorkshopClient("http://127.0.0.1:0", "", 100, time.Second)
	translator := services.NewTranslator(store, nil, "zh", "en", time.Hour)
	syncSvc := services.NewModSyncService(store, scanner, workshop, translator, time.Hour)

	h := NewSyncHandler(syncSvc)
	r := gin.New()
	r.GET("/api/sync/status", h.GetSyncStatus)

	w := doRequest(r, http.MethodGet, "/api/sync/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp struct {
		Running    bool             `json:"running"`
		LastResult *json.RawMessage `json:"last_result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if resp.Running {
		t.Error("Expected running=false before any sync")
	}
	if resp.LastResult != nil && string(*resp.LastResult) != "null" {
		t.Errorf("Expected null last_result, got %s", *resp.LastResult)
	}
}

func TestBlockingSyncOverEmptyModsDir(t *testing.T) {
	store := newHandlerStore(t)
	scanner := services.NewModScanner(t.TempDir())
	workshop := services.NewWorkshopClient("http://127.0.0.1:0", "", 100, time.Second)
	translator := services.NewTranslator(store, nil, "zh", "en", time.Hour)
	syncSvc := services.NewModSyncService(store, scanner, workshop, translator, time.Hour)

	h := NewSyncHandler(syncSvc)
	r := gin.New()
	r.POST("/api/sync/blocking", h.TriggerSyncBlocking)

	w := doRequest(r, http.MethodPost, "/api/sync/blocking", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for empty mods dir, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result services.SyncResult `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if resp.Result.Scanned != 0 || resp.Result.Synced != 0 {
		t.Errorf("Expected empty result, got %+v", resp.Result)
	}
}

func TestExportValidatesRequest(t *testing.T) {
	exporter := services.NewExportService(services.NewModScanner(t.TempDir()))
	h := NewExportHandler(exporter)
	r := gin.New()
	r.POST("/api/export", h.Export)

	w := doRequest(r, http.MethodPost, "/api/export", `{"mod_ids": ["1"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without output_path, got %d", w.Code)
	}

	out := filepath.Join(t.TempDir(), "out.zip")
	w = doRequest(r, http.MethodPost, "/api/export", `{"mod_ids": ["1"], "output_path": "`+out+`"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when no mods exist locally, got %d", w.Code)
	}
}
