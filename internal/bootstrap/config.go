// Package bootstrap wires configuration, logging, storage, classification and
// the HTTP server into a running service.
package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
)

// LoadConfig loads config.yml, or the file named by CONFIG_PATH. A missing file
// leaves defaults and environment overrides in place.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(infraconfig.GetConfigPath("config.yml"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	logCfg := cfg.Logging
	logCfg.Development = logCfg.Development || cfg.Service.Debug

	log, err := infralogger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}
