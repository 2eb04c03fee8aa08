package classifier

import "github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"

// Classification paths.
const (
	PathAI       = "ai"
	PathFallback = "fallback"
)

// Fallback reasons.
const (
	ReasonDisabled    = "ai_disabled"
	ReasonCallFailed  = "call_failed"
	ReasonNoJSON      = "no_json"
	ReasonInvalidJSON = "invalid_json"
	ReasonNoFields    = "no_fields"
)

// Outcome is either an AIResult or a FallbackResult.
type Outcome interface {
	// Result returns the classification to store.
	Result() domain.Classification
	// Path returns PathAI or PathFallback.
	Path() string

	outcome()
}

// AIResult is a classification produced by the LLM.
// Repaired lists the fields that were filled or corrected from the keyword classifier.
type AIResult struct {
	Classification domain.Classification
	Repaired       []string
	Cached         bool
}

func (r AIResult) Result() domain.Classification { return r.Classification }
func (r AIResult) Path() string                  { return PathAI }
func (AIResult) outcome()                        {}

// FallbackResult is a keyword classification used because the LLM path was
// unavailable or its reply was unusable. Err is nil when Reason is ReasonDisabled.
type FallbackResult struct {
	Classification domain.Classification
	Reason         string
	Err            error
}

func (r FallbackResult) Result() domain.Classification { return r.Classification }
func (r FallbackResult) Path() string                  { return PathFallback }
func (FallbackResult) outcome()                        {}
