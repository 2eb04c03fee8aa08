package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/classifier"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/config"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	cfg := &config.Config{
		Service: config.ServiceConfig{Name: "complaint-analyzer", Port: 8080},
		Storage: config.StorageConfig{Backend: config.BackendMemory},
	}
	cfg.Elasticsearch.Index = "complaints"
	return cfg
}

func TestSetupStorage_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := bootstrap.SetupStorage(ctx, baseConfig(), telemetry.NewProvider(), infralogger.NewNop())
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Repo.Add(ctx, domain.Complaint{Text: "fallen tree"})
	require.NoError(t, err)

	items, err := store.Repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, domain.DefaultStatus, items[0].Status)
}

func TestSetupStorage_UnknownBackend(t *testing.T) {
	cfg := baseConfig()
	cfg.Storage.Backend = "mongodb"

	_, err := bootstrap.SetupStorage(context.Background(), cfg, nil, infralogger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb")
}

func TestSetupStorage_ElasticsearchCreatesMissingIndex(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
	)
	es := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodHead && r.URL.Path == "/complaints":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/complaints":
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"complaints"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer es.Close()

	cfg := baseConfig()
	cfg.Storage.Backend = config.BackendElasticsearch
	cfg.Elasticsearch.URL = es.URL

	store, err := bootstrap.SetupStorage(context.Background(), cfg, telemetry.NewProvider(), infralogger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, store.Repo)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, requests, "PUT /complaints")
}

func TestSetupClassifier_DisabledWithoutKey(t *testing.T) {
	cls := bootstrap.SetupClassifier(context.Background(), baseConfig(), telemetry.NewProvider(), infralogger.NewNop())
	defer cls.Close()

	assert.False(t, cls.Adapter.Enabled())

	outcome := cls.Adapter.Classify(context.Background(), "transformer exploded")
	fb, ok := outcome.(classifier.FallbackResult)
	require.True(t, ok)
	assert.Equal(t, classifier.ReasonDisabled, fb.Reason)
	assert.Equal(t, domain.CategoryPower, fb.Classification.Category)
}

func TestSetupClassifier_EnabledWithCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.AI.APIKey = "sk-test"
	cfg.AI.Model = classifier.DefaultModel
	cfg.Redis.Enabled = true
	cfg.Redis.Address = mr.Addr()

	cls := bootstrap.SetupClassifier(context.Background(), cfg, nil, infralogger.NewNop())
	defer cls.Close()

	assert.True(t, cls.Adapter.Enabled())
}

func TestSetupClassifier_UnreachableCacheIsSkipped(t *testing.T) {
	cfg := baseConfig()
	cfg.AI.APIKey = "sk-test"
	cfg.Redis.Enabled = true
	cfg.Redis.Address = "127.0.0.1:1"

	cls := bootstrap.SetupClassifier(context.Background(), cfg, nil, infralogger.NewNop())
	defer cls.Close()

	assert.True(t, cls.Adapter.Enabled(), "cache failure does not disable AI")
}
