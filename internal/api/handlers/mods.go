package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vellern/Duckov-Mod-Manager/internal/database"
	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

type ModsHandler struct {
	store    *database.Store
	previews *services.PreviewCacheService
	stats    *services.StatsService
}

func NewModsHandler(store *database.Store, previews *services.PreviewCacheService, stats *services.StatsService) *ModsHandler {
	return &ModsHandler{store: store, previews: previews, stats: stats}
}

// ListMods returns mods, optionally filtered by a search query.
// GET /api/mods?query=&limit=&offset=
func (h *ModsHandler) ListMods(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	query := c.Query("query")

	result, err := h.store.SearchMods(query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMod returns a single mod by ID.
// GET /api/mods/:id
func (h *ModsHandler) GetMod(c *gin.Context) {
	mod, err := h.store.GetMod(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if mod == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mod not found"})
		return
	}
	c.JSON(http.StatusOK, mod)
}

// GetModPreview serves a mod's locally cached preview image, fetching it on
// first request.
// GET /api/mods/:id/preview
func (h *ModsHandler) GetModPreview(c *gin.Context) {
	id := c.Param("id")

	mod, err := h.store.GetMod(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if mod == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mod not found"})
		return
	}

	path, err := h.previews.FetchPreview(c.Request.Context(), id, mod.PreviewURL)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.File(path)
}

// GetStats returns aggregate manager statistics.
// GET /api/stats
func (h *ModsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.Collect()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
