package gin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
)

// ServerBuilder configures a Server fluently.
type ServerBuilder struct {
	config      *Config
	logger      logger.Logger
	checks      map[string]ReadinessCheck
	setupRoutes func(*gin.Engine)
}

// NewServerBuilder starts a builder for serviceName on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config: &Config{ServiceName: serviceName, Port: port},
		checks: make(map[string]ReadinessCheck),
	}
}

func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

func (b *ServerBuilder) WithCORS(cfg CORSConfig) *ServerBuilder {
	b.config.CORS = cfg
	return b
}

func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithReadinessCheck adds a named check to GET /ready.
func (b *ServerBuilder) WithReadinessCheck(name string, check ReadinessCheck) *ServerBuilder {
	if check != nil {
		b.checks[name] = check
	}
	return b
}

// WithRoutes sets the service route registration.
func (b *ServerBuilder) WithRoutes(setup func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setup
	return b
}

// Build creates the server. Health routes are registered before service routes.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.NewNop()
	}

	checks := b.checks
	setup := b.setupRoutes
	return NewServer(b.config, b.logger, func(router *gin.Engine) {
		RegisterHealthRoutes(router, checks)
		if setup != nil {
			setup(router)
		}
	})
}
