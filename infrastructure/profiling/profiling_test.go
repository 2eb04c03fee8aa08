package profiling_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/profiling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPprofServer_DisabledByDefault(t *testing.T) {
	t.Setenv("ENABLE_PROFILING", "")

	srv, err := profiling.StartPprofServer(infralogger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, srv)
	assert.Empty(t, srv.Addr())
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestStartPprofServer_ServesIndex(t *testing.T) {
	t.Setenv("ENABLE_PROFILING", "true")
	t.Setenv("PPROF_PORT", "0")

	srv, err := profiling.StartPprofServer(infralogger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, srv)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	res, err := http.Get("http://" + srv.Addr() + "/debug/pprof/")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "goroutine")
}

func TestStartPyroscope_DisabledByDefault(t *testing.T) {
	t.Setenv("ENABLE_CONTINUOUS_PROFILING", "")

	p, err := profiling.StartPyroscope("complaint-analyzer", "test", infralogger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Stop())
}

func TestStartPyroscope_Enabled(t *testing.T) {
	ingest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ingest.Close()

	t.Setenv("ENABLE_CONTINUOUS_PROFILING", "true")
	t.Setenv("PYROSCOPE_SERVER_URL", ingest.URL)

	p, err := profiling.StartPyroscope("complaint-analyzer", "", infralogger.NewNop())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Stop())
}
