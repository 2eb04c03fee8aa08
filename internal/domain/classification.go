package domain

import "strings"

// Seed categories. The category set is open; stored records may carry others.
const (
	CategoryTheft    = "Theft"
	CategoryAccident = "Accident"
	CategoryPower    = "Power"
	CategoryMedical  = "Medical"
	CategoryUnknown  = "Unknown"
)

// Priorities.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// Priorities lists the accepted priority values in descending severity.
var Priorities = []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// CanonicalPriority returns the canonical spelling of p, or false if p is not a priority.
func CanonicalPriority(p string) (string, bool) {
	p = strings.TrimSpace(p)
	for _, candidate := range Priorities {
		if strings.EqualFold(candidate, p) {
			return candidate, true
		}
	}
	return "", false
}

// Classification is the result of classifying complaint text.
type Classification struct {
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	Summary         string `json:"summary"`
	SuggestedAction string `json:"suggested_action"`
}
