package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
)

// RouteOptions carries the optional pieces of the route table.
type RouteOptions struct {
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Throttled counts rate-limited submissions.
	Throttled Throttled
	// RequestMetrics, when set, wraps every service route.
	RequestMetrics gin.HandlerFunc
}

// SetupServiceRoutes configures the complaint routes. Health and readiness are
// registered by the server builder.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, cfg *config.Config, opts RouteOptions) {
	if opts.RequestMetrics != nil {
		router.Use(opts.RequestMetrics)
	}

	submit := []gin.HandlerFunc{handler.Submit}
	if cfg != nil && cfg.RateLimit.Enabled {
		limiter := RateLimitMiddleware(cfg.RateLimit.SubmitPerSecond, cfg.RateLimit.Burst, opts.Throttled)
		submit = append([]gin.HandlerFunc{limiter}, submit...)
	}

	router.POST("/submit", submit...)
	router.GET("/complaints", handler.ListComplaints)
	router.POST("/update_status", handler.UpdateStatus)
	router.POST("/update_priority", handler.UpdatePriority)
	router.POST("/update_category", handler.UpdateCategory)
	router.POST("/delete_complaint", handler.DeleteComplaint)
	router.GET("/export", handler.Export)
	router.GET("/stats", handler.Stats)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}
}
