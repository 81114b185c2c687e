package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vellern/Duckov-Mod-Manager/internal/api/handlers"
	"github.com/Vellern/Duckov-Mod-Manager/internal/config"
	"github.com/Vellern/Duckov-Mod-Manager/internal/metrics"
	"github.com/Vellern/Duckov-Mod-Manager/internal/middleware"
)

// NewRouter wires the local UI bridge: CORS for the UI dev server, a
// loopback-only guard, HTTP metrics, and all API routes.
func NewRouter(
	cfg *config.Config,
	mods *handlers.ModsHandler,
	sync *handlers.SyncHandler,
	translations *handlers.TranslationsHandler,
	export *handlers.ExportHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.LocalOnly())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/mods", mods.ListMods)
		apiGroup.GET("/mods/:id", mods.GetMod)
		apiGroup.GET("/mods/:id/preview", mods.GetModPreview)
		apiGroup.GET("/stats", mods.GetStats)

		apiGroup.POST("/sync", sync.TriggerSync)
		apiGroup.POST("/sync/blocking", sync.TriggerSyncBlocking)
		apiGroup.GET("/sync/status", sync.GetSyncStatus)

		apiGroup.GET("/translations/stats", translations.GetStats)
		apiGroup.POST("/translations/clear-expired", translations.ClearExpired)
		apiGroup.POST("/translations/clear-all", translations.ClearAll)

		apiGroup.POST("/export", export.Export)
	}

	return r
}
