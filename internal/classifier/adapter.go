package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single LLM call.
const DefaultTimeout = 15 * time.Second

// Cache lookup results.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

var (
	errNoJSONObject       = errors.New("no JSON object in reply")
	errNoRecognisedFields = errors.New("JSON object has no classification fields")
)

// jsonObjectPattern is greedy and dot-all: it spans from the first "{" to the last "}".
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Reply keys. suggestedAction is accepted as an alias.
const (
	keyCategory        = "category"
	keyPriority        = "priority"
	keySummary         = "summary"
	keySuggestedAction = "suggested_action"
	keySuggestedAlias  = "suggestedAction"
)

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	// Enabled is the process-wide AI capability flag, decided once at startup.
	Enabled bool
	// Timeout bounds each LLM call. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Adapter classifies text with an LLM and degrades to the keyword classifier on any failure.
type Adapter struct {
	completer Completer
	fallback  *Fallback
	enabled   bool
	timeout   time.Duration
	cache     Cache
	telemetry *telemetry.Provider
	logger    infralogger.Logger
	now       func() time.Time
}

// AdapterOption customises an Adapter.
type AdapterOption func(*Adapter)

// WithCache enables result caching.
func WithCache(c Cache) AdapterOption {
	return func(a *Adapter) { a.cache = c }
}

// WithTelemetry enables metrics and tracing.
func WithTelemetry(tp *telemetry.Provider) AdapterOption {
	return func(a *Adapter) { a.telemetry = tp }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log infralogger.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = log }
}

// NewAdapter creates an adapter. The AI path is enabled only when cfg.Enabled is
// true and completer is non-nil; fallback must be non-nil.
func NewAdapter(completer Completer, fallback *Fallback, cfg AdapterConfig, opts ...AdapterOption) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	a := &Adapter{
		completer: completer,
		fallback:  fallback,
		enabled:   cfg.Enabled && completer != nil,
		timeout:   timeout,
		logger:    infralogger.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether the LLM path is active.
func (a *Adapter) Enabled() bool {
	return a.enabled
}

// Classification is shorthand for Classify(ctx, text).Result().
func (a *Adapter) Classification(ctx context.Context, text string) domain.Classification {
	return a.Classify(ctx, text).Result()
}

// Classify returns an AIResult or a FallbackResult. It never fails and never panics
// on malformed replies.
func (a *Adapter) Classify(ctx context.Context, text string) Outcome {
	start := a.now()

	if a.telemetry != nil {
		var span trace.Span
		ctx, span = a.telemetry.StartSpan(ctx, "classifier.classify",
			attribute.Bool("ai_enabled", a.enabled),
		)
		defer span.End()
	}

	outcome := a.classify(ctx, text)
	duration := a.now().Sub(start)

	a.logOutcome(text, outcome, duration)
	if a.telemetry != nil {
		reason := ""
		if fb, ok := outcome.(FallbackResult); ok {
			reason = fb.Reason
		}
		a.telemetry.RecordClassification(ctx, outcome.Path(), reason, duration)
	}
	return outcome
}

func (a *Adapter) classify(ctx context.Context, text string) Outcome {
	fallback := a.fallback.Classify(text)
	if !a.enabled {
		return FallbackResult{Classification: fallback, Reason: ReasonDisabled}
	}

	if cached, ok := a.lookupCache(ctx, text); ok {
		return AIResult{Classification: cached, Cached: true}
	}

	// The call is not cancelled by the caller going away; only the timeout bounds it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	reply, err := a.completer.Complete(callCtx, BuildPrompt(text))
	if err != nil {
		return FallbackResult{Classification: fallback, Reason: ReasonCallFailed, Err: err}
	}

	fields, reason, err := parseReply(reply)
	if err != nil {
		return FallbackResult{Classification: fallback, Reason: reason, Err: err}
	}

	if !hasAnyKey(fields) {
		return FallbackResult{Classification: fallback, Reason: ReasonNoFields, Err: errNoRecognisedFields}
	}
	result, repaired := repair(fields, fallback)

	a.storeCache(ctx, text, result)
	return AIResult{Classification: result, Repaired: repaired}
}

func (a *Adapter) lookupCache(ctx context.Context, text string) (domain.Classification, bool) {
	if a.cache == nil {
		return domain.Classification{}, false
	}

	cl, ok, err := a.cache.Get(ctx, text)
	result := cacheMiss
	switch {
	case err != nil:
		result = cacheError
		a.logger.Warn("Classification cache lookup failed", infralogger.Error(err))
	case ok:
		result = cacheHit
	}
	if a.telemetry != nil {
		a.telemetry.RecordCacheLookup(ctx, result)
	}
	return cl, ok && err == nil
}

func (a *Adapter) storeCache(ctx context.Context, text string, cl domain.Classification) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, text, cl); err != nil {
		a.logger.Warn("Classification cache store failed", infralogger.Error(err))
	}
}

// parseReply extracts and decodes the JSON object embedded in an LLM reply.
func parseReply(reply string) (map[string]json.RawMessage, string, error) {
	match := jsonObjectPattern.FindString(reply)
	if match == "" {
		return nil, ReasonNoJSON, errNoJSONObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(match), &fields); err != nil {
		return nil, ReasonInvalidJSON, fmt.Errorf("decode llm reply: %w", err)
	}
	return fields, "", nil
}

// recognisedKeys are the reply keys that carry a classification field.
var recognisedKeys = []string{keyCategory, keyPriority, keySummary, keySuggestedAction, keySuggestedAlias}

// repair builds a classification from the reply, filling missing, empty, or
// non-string values from fallback. It returns the keys that were filled.
func repair(fields map[string]json.RawMessage, fallback domain.Classification) (domain.Classification, []string) {
	var repaired []string

	pick := func(key, def string, aliases ...string) string {
		for _, k := range append([]string{key}, aliases...) {
			if v, ok := stringField(fields, k); ok {
				return v
			}
		}
		repaired = append(repaired, key)
		return def
	}

	result := domain.Classification{
		Category:        pick(keyCategory, fallback.Category),
		Priority:        pick(keyPriority, fallback.Priority),
		Summary:         pick(keySummary, fallback.Summary),
		SuggestedAction: pick(keySuggestedAction, fallback.SuggestedAction, keySuggestedAlias),
	}

	if p, ok := domain.CanonicalPriority(result.Priority); ok {
		result.Priority = p
	} else {
		result.Priority = fallback.Priority
		if !containsKey(repaired, keyPriority) {
			repaired = append(repaired, keyPriority)
		}
	}

	return result, repaired
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func hasAnyKey(fields map[string]json.RawMessage) bool {
	for _, k := range recognisedKeys {
		if _, ok := stringField(fields, k); ok {
			return true
		}
	}
	return false
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
