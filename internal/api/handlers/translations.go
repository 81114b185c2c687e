package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

type TranslationsHandler struct {
	translator *services.Translator
}

func NewTranslationsHandler(translator *services.Translator) *TranslationsHandler {
	return &TranslationsHandler{translator: translator}
}

// GetStats returns translation cache statistics.
// GET /api/translations/stats
func (h *TranslationsHandler) GetStats(c *gin.Context) {
	stats, err := h.translator.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearExpired removes only expired cache entries. Routine maintenance.
// POST /api/translations/clear-expired
func (h *TranslationsHandler) ClearExpired(c *gin.Context) {
	deleted, err := h.translator.ClearExpired()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ClearAll wipes the whole translation cache. Destructive; requires an
// explicit confirmation flag so no client can trip it by accident.
// POST /api/translations/clear-all
func (h *TranslationsHandler) ClearAll(c *gin.Context) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !body.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clearing the entire cache requires {\"confirm\": true}",
		})
		return
	}

	deleted, err := h.translator.ClearAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
