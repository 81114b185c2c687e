package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vellern/Duckov-Mod-Manager/internal/services"
)

type ExportHandler struct {
	exporter *services.ExportService
}

func NewExportHandler(exporter *services.ExportService) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

type exportRequest struct {
	ModIDs     []string `json:"mod_ids" binding:"required"`
	OutputPath string   `json:"output_path" binding:"required"`
}

// Export packages the selected mods into a zip archive on disk.
// POST /api/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.exporter.Export(req.ModIDs, req.OutputPath)
	if err != nil {
		if errors.Is(err, services.ErrNothingToExport) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
