package elasticsearch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/retry"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
		Header:     http.Header{"X-Elastic-Product": []string{"Elasticsearch"}},
	}
}

func fastConnect() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"":                        "http://localhost:9200",
		"elasticsearch:9200":      "http://elasticsearch:9200",
		"https://es.example:9200": "https://es.example:9200",
		" http://es:9200 ":        "http://es:9200",
	}
	for in, want := range cases {
		if got := normalizeURL(in); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClient_RetriesUntilHealthy(t *testing.T) {
	var calls atomic.Int32
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		if calls.Add(1) < 3 {
			return response(http.StatusServiceUnavailable), nil
		}
		return response(http.StatusOK), nil
	})

	client, err := NewClient(context.Background(), Config{
		Transport: transport,
		Connect:   fastConnect(),
	}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client == nil {
		t.Fatal("expected client")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("pings = %d, want 3", got)
	}
}

func TestNewClient_DoesNotRetryRejection(t *testing.T) {
	var calls atomic.Int32
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return response(http.StatusUnauthorized), nil
	})

	_, err := NewClient(context.Background(), Config{
		Transport: transport,
		Connect:   fastConnect(),
	}, nil)
	if !errors.Is(err, errRejected) {
		t.Fatalf("err = %v, want errRejected", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("pings = %d, want 1", got)
	}
}

func TestNewTransport_MissingCAFile(t *testing.T) {
	_, err := newTransport(TLSConfig{Enabled: true, CAFile: "/does/not/exist.pem"})
	if err == nil {
		t.Fatal("expected error for missing CA file")
	}
}

func TestNewTransport_Disabled(t *testing.T) {
	tr, err := newTransport(TLSConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if tr.TLSClientConfig != nil && len(tr.TLSClientConfig.Certificates) > 0 {
		t.Error("expected no client certificates")
	}
}
