// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for the
// complaint analyzer.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "complaint-analyzer"

// Metrics holds the service Prometheus metrics.
type Metrics struct {
	// Classification metrics
	Classifications        *prometheus.CounterVec
	ClassificationDuration *prometheus.HistogramVec
	CacheLookups           *prometheus.CounterVec

	// Repository metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// HTTP
	SubmitThrottled prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider creates a provider with its own registry, so tests can create
// several providers without duplicate registration panics.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registerer lets other packages register collectors on the provider registry.
func (p *Provider) Registerer() prometheus.Registerer {
	return p.registry
}

// Gatherer exposes the registry for tests.
func (p *Provider) Gatherer() prometheus.Gatherer {
	return p.registry
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		Classifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_classifications_total",
			Help: "Complaint classifications by path (ai, fallback) and fallback reason",
		}, []string{"path", "reason"}),

		ClassificationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaints_classification_duration_seconds",
			Help:    "Time to classify a single complaint",
			Buckets: []float64{0.0005, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_classification_cache_lookups_total",
			Help: "Classification cache lookups by result (hit, miss, error)",
		}, []string{"result"}),

		StoreOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_store_operations_total",
			Help: "Repository operations by operation and outcome",
		}, []string{"operation", "outcome"}),

		StoreDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaints_store_operation_duration_seconds",
			Help:    "Repository operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		SubmitThrottled: f.NewCounter(prometheus.CounterOpts{
			Name: "complaints_submit_throttled_total",
			Help: "Submissions rejected by the rate limiter",
		}),
	}
}

// RecordClassification records one classification outcome.
func (p *Provider) RecordClassification(_ context.Context, path, reason string, duration time.Duration) {
	p.Metrics.Classifications.WithLabelValues(path, reason).Inc()
	p.Metrics.ClassificationDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit, miss, or error.
func (p *Provider) RecordCacheLookup(_ context.Context, result string) {
	p.Metrics.CacheLookups.WithLabelValues(result).Inc()
}

// RecordStoreOperation records a repository call.
func (p *Provider) RecordStoreOperation(_ context.Context, operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.StoreOperations.WithLabelValues(operation, outcome).Inc()
	p.Metrics.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncrementSubmitThrottled counts a rate-limited submission.
func (p *Provider) IncrementSubmitThrottled() {
	p.Metrics.SubmitThrottled.Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
