package api

import (
	"time"

	"github.com/gin-gonic/gin"
	infragin "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/storage"
)

// Default timeout values. The write timeout leaves room for the LLM call on /submit.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// NewServer creates the HTTP server. GET /ready pings repo.
func NewServer(handler *Handler, repo storage.Repository, cfg *config.Config, opts RouteOptions, infraLog infralogger.Logger) *infragin.Server {
	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(infraLog).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORS(cfg.CORS).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithReadinessCheck("store", repo.Ping).
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler, cfg, opts)
		}).
		Build()
}
