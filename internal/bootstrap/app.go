package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/api"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
)

// Run starts the service and blocks until shutdown. It returns the process exit code.
func Run() int {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := CreateLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	stopProfiling, err := startProfiling(cfg.Service.Name, cfg.Service.Version, log)
	if err != nil {
		log.Error("Failed to start profiling", infralogger.Error(err))
		return 1
	}
	defer stopProfiling()

	log.Info("Starting complaint analyzer",
		infralogger.String("version", cfg.Service.Version),
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("storage_backend", cfg.Storage.Backend),
		infralogger.Bool("ai_enabled", cfg.AI.Enabled()),
	)

	ctx := context.Background()
	tp := telemetry.NewProvider()

	store, err := SetupStorage(ctx, cfg, tp, log)
	if err != nil {
		log.Error("Failed to set up storage", infralogger.Error(err))
		return 1
	}
	defer store.Close()

	cls := SetupClassifier(ctx, cfg, tp, log)
	defer cls.Close()

	handler := api.NewHandler(store.Repo, cls.Adapter, log)
	server := api.NewServer(handler, store.Repo, cfg, api.RouteOptions{
		Metrics:        tp.Handler(),
		Throttled:      tp,
		RequestMetrics: metrics.NewHTTPMetrics(tp.Registerer()).Middleware(),
	}, log)

	if err = server.Run(ctx); err != nil {
		log.Error("Server error", infralogger.Error(err))
		return 1
	}

	log.Info("Complaint analyzer exited cleanly")
	return 0
}

const profilingStopTimeout = 5 * time.Second

// startProfiling starts the env-gated pprof endpoint and Pyroscope agent and
// returns a func that stops both.
func startProfiling(service, version string, log infralogger.Logger) (func(), error) {
	pprofServer, err := profiling.StartPprofServer(log)
	if err != nil {
		return nil, err
	}

	pyro, err := profiling.StartPyroscope(service, version, log)
	if err != nil {
		_ = pprofServer.Shutdown(context.Background())
		return nil, err
	}

	return func() {
		if stopErr := pyro.Stop(); stopErr != nil {
			log.Warn("Failed to stop Pyroscope profiler", infralogger.Error(stopErr))
		}
		ctx, cancel := context.WithTimeout(context.Background(), profilingStopTimeout)
		defer cancel()
		if stopErr := pprofServer.Shutdown(ctx); stopErr != nil {
			log.Warn("Failed to stop pprof server", infralogger.Error(stopErr))
		}
	}, nil
}
