package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

type SyncHandler struct {
	sync *services.ModSyncService
}

func NewSyncHandler(sync *services.ModSyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// TriggerSync starts a sync in the background and returns immediately.
// POST /api/sync
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	if h.sync.IsRunning() {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "sync already in progress",
			"message": "A mod sync is already running. Please wait for it to complete.",
		})
		return
	}

	// Run with a fresh context: the request context dies when we return
	// 202, and the sync must outlive it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.sync.Sync(ctx); err != nil && !errors.Is(err, services.ErrSyncInProgress) {
			log.Printf("Background sync failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "mod sync started",
		"status":  "running",
	})
}

// TriggerSyncBlocking runs a sync and waits for the result.
// POST /api/sync/blocking
func (h *SyncHandler) TriggerSyncBlocking(c *gin.Context) {
	result, err := h.sync.Sync(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "mod sync completed",
		"result":  result,
	})
}

// GetSyncStatus reports whether a sync is running and the last result.
// GET /api/sync/status
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running":     h.sync.IsRunning(),
		"last_result": h.sync.LastResult(),
	})
}
