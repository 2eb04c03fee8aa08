package domain

import (
	"strings"
	"time"
)

// Default values applied when a stored record is missing a field.
const (
	DefaultCategory = CategoryUnknown
	DefaultPriority = PriorityMedium
	DefaultStatus   = "New"
)

// TimestampLayout is the created_at wire format (UTC, microseconds, "Z" suffix).
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Field names a complaint attribute. Values double as JSON and CSV column names.
type Field string

const (
	FieldID              Field = "doc_id"
	FieldText            Field = "text"
	FieldCategory        Field = "category"
	FieldPriority        Field = "priority"
	FieldSummary         Field = "summary"
	FieldSuggestedAction Field = "suggested_action"
	FieldStatus          Field = "status"
	FieldCreatedAt       Field = "created_at"
)

// Complaint is a stored citizen report with its classification and workflow state.
type Complaint struct {
	ID              string `json:"doc_id"`
	Text            string `json:"text"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	Summary         string `json:"summary"`
	SuggestedAction string `json:"suggested_action"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// NewComplaint merges a classification into a new, unsaved complaint.
func NewComplaint(text string, c Classification) Complaint {
	return Complaint{
		Text:            text,
		Category:        c.Category,
		Priority:        c.Priority,
		Summary:         c.Summary,
		SuggestedAction: c.SuggestedAction,
	}
}

// Get returns the value of the named field. The bool is false for unknown fields.
// "id" is accepted as an alias of doc_id.
func (c *Complaint) Get(f Field) (string, bool) {
	switch f {
	case FieldID, "id":
		return c.ID, true
	case FieldText:
		return c.Text, true
	case FieldCategory:
		return c.Category, true
	case FieldPriority:
		return c.Priority, true
	case FieldSummary:
		return c.Summary, true
	case FieldSuggestedAction:
		return c.SuggestedAction, true
	case FieldStatus:
		return c.Status, true
	case FieldCreatedAt:
		return c.CreatedAt, true
	default:
		return "", false
	}
}

// MutableFields lists the fields that UpdateField may change.
var MutableFields = []Field{FieldStatus, FieldPriority, FieldCategory}

// IsMutable reports whether f can be changed after creation.
func (f Field) IsMutable() bool {
	for _, m := range MutableFields {
		if f == m {
			return true
		}
	}
	return false
}

// Set assigns a mutable field. It returns a ValidationError for any other field.
func (c *Complaint) Set(f Field, value string) error {
	switch f {
	case FieldStatus:
		c.Status = value
	case FieldPriority:
		c.Priority = value
	case FieldCategory:
		c.Category = value
	default:
		return NewValidationError(string(f), "field cannot be updated")
	}
	return nil
}

// Normalize fills read-side defaults for records written without them.
func Normalize(c Complaint) Complaint {
	if strings.TrimSpace(c.Category) == "" {
		c.Category = DefaultCategory
	}
	if strings.TrimSpace(c.Priority) == "" {
		c.Priority = DefaultPriority
	}
	if strings.TrimSpace(c.Status) == "" {
		c.Status = DefaultStatus
	}
	return c
}

// NormalizeAll applies Normalize to every element in place and returns the slice.
func NormalizeAll(items []Complaint) []Complaint {
	for i := range items {
		items[i] = Normalize(items[i])
	}
	return items
}

// PrepareForWrite sets created_at and status once, only when absent.
// The id is always cleared; repositories assign it.
func PrepareForWrite(c Complaint, now time.Time) Complaint {
	c.ID = ""
	if c.CreatedAt == "" {
		c.CreatedAt = FormatTimestamp(now)
	}
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	return c
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
