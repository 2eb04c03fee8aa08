package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
)

const textExcerptWordLimit = 10

// Status code class bounds for error typing.
const (
	statusClientErrorMin = 400
	statusServerErrorMin = 500
)

// truncateWords returns the first n words of s, appending "..." if truncated.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "..."
}

// classifyErrorType buckets an LLM failure for dashboard filtering.
func classifyErrorType(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode >= statusServerErrorMin:
			return "5xx"
		case apiErr.StatusCode >= statusClientErrorMin:
			return "4xx"
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, errNoJSONObject), errors.Is(err, errNoRecognisedFields):
		return "decode"
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "deadline exceeded") || strings.Contains(lower, "timeout"):
		return "timeout"
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "dial tcp") ||
		strings.Contains(lower, "no such host"):
		return "connection"
	case strings.Contains(lower, "decode") || strings.Contains(lower, "unmarshal") ||
		strings.Contains(lower, "eof"):
		return "decode"
	default:
		return "unknown"
	}
}

// logOutcome emits one structured log line per classification.
func (a *Adapter) logOutcome(text string, outcome Outcome, duration time.Duration) {
	switch o := outcome.(type) {
	case AIResult:
		a.logger.Debug("Complaint classified by LLM",
			infralogger.String("path", PathAI),
			infralogger.String("category", o.Classification.Category),
			infralogger.String("priority", o.Classification.Priority),
			infralogger.Strings("repaired_fields", o.Repaired),
			infralogger.Bool("cached", o.Cached),
			infralogger.Int64("latency_ms", duration.Milliseconds()),
		)
	case FallbackResult:
		if o.Reason == ReasonDisabled {
			return
		}
		a.logger.Warn("LLM classification failed, using keyword fallback",
			infralogger.String("path", PathFallback),
			infralogger.String("reason", o.Reason),
			infralogger.String("error_type", classifyErrorType(o.Err)),
			infralogger.Error(o.Err),
			infralogger.String("text_excerpt", truncateWords(text, textExcerptWordLimit)),
			infralogger.String("category", o.Classification.Category),
			infralogger.Int64("latency_ms", duration.Milliseconds()),
		)
	}
}
