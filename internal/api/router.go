package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/config"
	"github.com/kemalcalak/Resume-Builder/internal/metrics"
)

// NewRouter builds the gin engine with the shared middleware chain, /health and /metrics.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metricsHandler := gin.WrapH(promhttp.Handler())
	if cfg != nil && cfg.API.MetricsSecret != "" {
		router.GET("/metrics", middleware.InternalSecretMiddleware(cfg.API.MetricsSecret), metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	return router
}
