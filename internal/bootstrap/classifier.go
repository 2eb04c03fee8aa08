package bootstrap

import (
	"context"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/classifier"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
)

// anthropicMaxRetries is the SDK retry count inside the adapter timeout.
const anthropicMaxRetries = 1

// ClassifierComponents holds the adapter and its cleanup.
type ClassifierComponents struct {
	Adapter *classifier.Adapter
	Close   func()
}

// SetupClassifier builds the classification adapter. The AI path is enabled only
// when an API key is configured. An unreachable cache is logged and skipped.
func SetupClassifier(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, log infralogger.Logger) *ClassifierComponents {
	opts := []classifier.AdapterOption{
		classifier.WithTelemetry(tp),
		classifier.WithLogger(log),
	}
	closeCache := func() {}

	var completer classifier.Completer
	if cfg.AI.Enabled() {
		anthropic := classifier.NewAnthropicCompleter(classifier.LLMConfig{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			MaxTokens:  cfg.AI.MaxTokens,
			BaseURL:    cfg.AI.BaseURL,
			MaxRetries: anthropicMaxRetries,
		})
		completer = classifier.NewBreakerCompleter(anthropic, circuitbreaker.Config{
			FailureThreshold: cfg.AI.BreakerFailures,
			Cooldown:         cfg.AI.BreakerCooldown,
		}, log)
		log.Info("AI classification enabled",
			infralogger.String("model", cfg.AI.Model),
			infralogger.Duration("timeout", cfg.AI.Timeout),
		)

		if cfg.Redis.Enabled {
			client, err := infraredis.NewClient(ctx, cfg.Redis.Config)
			if err != nil {
				log.Warn("Classification cache unavailable, continuing without it", infralogger.Error(err))
			} else {
				opts = append(opts, classifier.WithCache(classifier.NewRedisCache(client, cfg.AI.Model, cfg.Redis.ClassificationCacheTTL)))
				closeCache = func() { _ = client.Close() }
				log.Info("Classification cache enabled",
					infralogger.String("address", cfg.Redis.Address),
					infralogger.Duration("ttl", cfg.Redis.ClassificationCacheTTL),
				)
			}
		}
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, using keyword classification only")
	}

	adapter := classifier.NewAdapter(completer, classifier.NewFallback(), classifier.AdapterConfig{
		Enabled: cfg.AI.Enabled(),
		Timeout: cfg.AI.Timeout,
	}, opts...)

	return &ClassifierComponents{Adapter: adapter, Close: closeCache}
}
