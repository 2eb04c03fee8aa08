// Package classifier assigns category, priority, summary and suggested action to complaint text.
// fallback.go implements the deterministic keyword classifier used when the LLM path is
// disabled or fails.
package classifier

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// SummaryPrefix is prepended to the complaint text to form the fallback summary.
const SummaryPrefix = "Citizen reports: "

// ActionManualReview is the suggested action for unknown or unmapped categories.
const ActionManualReview = "Manual review"

// KeywordRule maps a label to the keywords that select it.
type KeywordRule struct {
	Label    string
	Keywords []string
}

// CategoryRules is checked top to bottom; the first row with a hit wins.
var CategoryRules = []KeywordRule{
	{Label: domain.CategoryTheft, Keywords: []string{"stolen", "snatched", "robbery", "theft", "bike missing", "chain snatching"}},
	{Label: domain.CategoryAccident, Keywords: []string{"accident", "injured", "crash", "fatal", "collision"}},
	{Label: domain.CategoryPower, Keywords: []string{"power outage", "transformer", "electricity", "load shedding", "electric"}},
	{Label: domain.CategoryMedical, Keywords: []string{"health", "injury", "hospital", "ambulance", "critical"}},
}

// PriorityRules is checked top to bottom; Critical outranks High.
var PriorityRules = []KeywordRule{
	{Label: domain.PriorityCritical, Keywords: []string{"critical", "life threat", "fatal", "injury"}},
	{Label: domain.PriorityHigh, Keywords: []string{"urgent", "emergency"}},
}

// CategoryActions maps a category to its suggested action.
var CategoryActions = map[string]string{
	domain.CategoryTheft:    "Advise citizen to file a police report and provide identifying details.",
	domain.CategoryAccident: "Dispatch emergency services immediately.",
	domain.CategoryPower:    "Notify electricity department.",
	domain.CategoryMedical:  "Call nearest hospital or ambulance.",
	domain.CategoryUnknown:  ActionManualReview,
}

// compiledRule pairs a label with an automaton over its keywords.
type compiledRule struct {
	label   string
	matcher *ahocorasick.Matcher
}

// Fallback is a pure keyword classifier. It is safe for concurrent use;
// the automata are built once and only read afterwards.
type Fallback struct {
	categories []compiledRule
	priorities []compiledRule
	actions    map[string]string
}

// NewFallback builds a classifier over the default tables.
func NewFallback() *Fallback {
	return NewFallbackWithRules(CategoryRules, PriorityRules, CategoryActions)
}

// NewFallbackWithRules builds a classifier over custom tables. Row order is preserved.
func NewFallbackWithRules(categories, priorities []KeywordRule, actions map[string]string) *Fallback {
	return &Fallback{
		categories: compileRules(categories),
		priorities: compileRules(priorities),
		actions:    actions,
	}
}

func compileRules(rules []KeywordRule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = normalizeKeyword(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			continue
		}
		compiled = append(compiled, compiledRule{
			label:   rule.Label,
			matcher: ahocorasick.NewStringMatcher(keywords),
		})
	}
	return compiled
}

// normalizeKeyword lowercases and trims a keyword. Inner spaces are kept.
func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

// Classify returns the keyword classification of text. It never fails.
func (f *Fallback) Classify(text string) domain.Classification {
	lowered := []byte(strings.ToLower(text))

	category := firstMatch(f.categories, lowered, domain.CategoryUnknown)
	priority := firstMatch(f.priorities, lowered, domain.PriorityMedium)

	return domain.Classification{
		Category:        category,
		Priority:        priority,
		Summary:         SummaryPrefix + text,
		SuggestedAction: f.actionFor(category),
	}
}

func (f *Fallback) actionFor(category string) string {
	if action, ok := f.actions[category]; ok {
		return action
	}
	return ActionManualReview
}

// firstMatch returns the label of the first rule with any keyword hit.
func firstMatch(rules []compiledRule, text []byte, def string) string {
	for _, rule := range rules {
		if len(rule.matcher.Match(text)) > 0 {
			return rule.label
		}
	}
	return def
}
