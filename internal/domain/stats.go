package domain

// Stats holds complaint counts grouped by category and priority.
type Stats struct {
	ByCategory map[string]int `json:"by_category"`
	ByPriority map[string]int `json:"by_priority"`
	Total      int            `json:"total"`
}

// NewStats returns empty, non-nil stats.
func NewStats() Stats {
	return Stats{
		ByCategory: make(map[string]int),
		ByPriority: make(map[string]int),
	}
}

// Count adds one normalized complaint to the stats.
func (s *Stats) Count(c Complaint) {
	c = Normalize(c)
	s.ByCategory[c.Category]++
	s.ByPriority[c.Priority]++
	s.Total++
}

// StatsOf aggregates items in a single scan.
func StatsOf(items []Complaint) Stats {
	s := NewStats()
	for i := range items {
		s.Count(items[i])
	}
	return s
}

// Filters are exact-match equality constraints applied by the store.
// Empty values impose no constraint.
type Filters struct {
	Status   string
	Priority string
	Category string
}

// Pairs returns the non-empty filters as field/value pairs in a fixed order.
func (f Filters) Pairs() []FilterPair {
	var pairs []FilterPair
	if f.Status != "" {
		pairs = append(pairs, FilterPair{Field: FieldStatus, Value: f.Status})
	}
	if f.Priority != "" {
		pairs = append(pairs, FilterPair{Field: FieldPriority, Value: f.Priority})
	}
	if f.Category != "" {
		pairs = append(pairs, FilterPair{Field: FieldCategory, Value: f.Category})
	}
	return pairs
}

// FilterPair is a single equality constraint.
type FilterPair struct {
	Field Field
	Value string
}

// Matches reports whether c satisfies every non-empty filter exactly.
func (f Filters) Matches(c Complaint) bool {
	for _, p := range f.Pairs() {
		if v, _ := c.Get(p.Field); v != p.Value {
			return false
		}
	}
	return true
}
