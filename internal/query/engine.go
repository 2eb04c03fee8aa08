// Package query searches, filters, sorts and paginates complaints in memory.
package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// Defaults and limits for list requests.
const (
	DefaultPage     = 1
	DefaultPageSize = 25
	MaxPageSize     = 500
	DefaultSortBy   = string(domain.FieldCreatedAt)
	DefaultSortDir  = SortDesc
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var sortDirPattern = regexp.MustCompile(`^(asc|desc)$`)

// searchFields are matched by the free-text query.
var searchFields = []domain.Field{
	domain.FieldID,
	domain.FieldCategory,
	domain.FieldSummary,
	domain.FieldStatus,
	domain.FieldPriority,
}

// Params holds list parameters. Use NewParams for defaults.
type Params struct {
	Q        string
	Status   string
	Priority string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// NewParams returns params with default paging and sorting.
func NewParams() Params {
	return Params{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		SortBy:   DefaultSortBy,
		SortDir:  DefaultSortDir,
	}
}

// Validate rejects malformed params before they reach the engine.
func (p Params) Validate() error {
	if p.Page < 1 {
		return domain.NewValidationError("page", "must be greater than or equal to 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return domain.NewValidationError("page_size", "must be between 1 and 500")
	}
	if !sortDirPattern.MatchString(p.SortDir) {
		return domain.NewValidationError("sort_dir", "must match ^(asc|desc)$")
	}
	return nil
}

// Result is one page of matching complaints.
type Result struct {
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []domain.Complaint `json:"items"`
}

// Run applies search, filters, sort and pagination to items. items is not modified.
// Total counts matches before pagination.
func Run(items []domain.Complaint, p Params) Result {
	filtered := make([]domain.Complaint, 0, len(items))
	for i := range items {
		if matches(&items[i], p) {
			filtered = append(filtered, items[i])
		}
	}

	sortItems(filtered, p.SortBy, p.SortDir)

	return Result{
		Total:    len(filtered),
		Page:     p.Page,
		PageSize: p.PageSize,
		Items:    paginate(filtered, p.Page, p.PageSize),
	}
}

func matches(c *domain.Complaint, p Params) bool {
	if p.Q != "" && !containsQuery(c, strings.ToLower(p.Q)) {
		return false
	}
	if p.Status != "" && !strings.EqualFold(c.Status, p.Status) {
		return false
	}
	if p.Priority != "" && !strings.EqualFold(c.Priority, p.Priority) {
		return false
	}
	return true
}

func containsQuery(c *domain.Complaint, q string) bool {
	for _, f := range searchFields {
		v, _ := c.Get(f)
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// sortItems orders items by field. Missing values sort as "". An unknown
// field falls back to created_at descending.
func sortItems(items []domain.Complaint, field, dir string) {
	f := domain.Field(field)
	if _, ok := (&domain.Complaint{}).Get(f); !ok {
		f, dir = domain.FieldCreatedAt, SortDesc
	}
	desc := dir == SortDesc

	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].Get(f)
		b, _ := items[j].Get(f)
		if desc {
			return a > b
		}
		return a < b
	})
}

// paginate returns the 1-indexed page. Out-of-range pages are empty, never nil.
func paginate(items []domain.Complaint, page, size int) []domain.Complaint {
	if page < 1 || size < 1 {
		return []domain.Complaint{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []domain.Complaint{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}
