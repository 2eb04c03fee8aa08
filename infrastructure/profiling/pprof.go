// Package profiling starts the optional pprof endpoint and Pyroscope agent.
// Both are off unless enabled through the environment.
package profiling

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
)

const (
	defaultPprofPort  = "6060"
	pprofReadTimeout  = 10 * time.Second
	pprofWriteTimeout = 60 * time.Second // CPU profiles default to 30s
)

// PprofServer serves /debug/pprof/ on localhost.
type PprofServer struct {
	srv  *http.Server
	addr string
}

// StartPprofServer starts the pprof endpoint when ENABLE_PROFILING=true.
// PPROF_PORT selects the port (default 6060). It returns nil when disabled.
//
// Endpoints:
//   - /debug/pprof/heap
//   - /debug/pprof/goroutine
//   - /debug/pprof/profile (CPU, 30s default)
//   - /debug/pprof/allocs, block, mutex
func StartPprofServer(log infralogger.Logger) (*PprofServer, error) {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return nil, nil
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPprofPort
	}

	// Localhost only; the endpoint is never exposed.
	ln, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return nil, fmt.Errorf("listen pprof: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s := &PprofServer{
		srv: &http.Server{
			Handler:      mux,
			ReadTimeout:  pprofReadTimeout,
			WriteTimeout: pprofWriteTimeout,
		},
		addr: ln.Addr().String(),
	}

	go func() {
		if serveErr := s.srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("pprof server error", infralogger.Error(serveErr))
		}
	}()

	log.Info("pprof server started",
		infralogger.String("address", s.addr),
		infralogger.String("profiles", "http://"+s.addr+"/debug/pprof/"),
	)
	return s, nil
}

// Addr returns the bound address.
func (s *PprofServer) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Shutdown stops the endpoint. Safe on a nil server.
func (s *PprofServer) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
