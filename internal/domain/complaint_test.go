package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

func TestNormalize_FillsDefaults(t *testing.T) {
	t.Parallel()

	got := domain.Normalize(domain.Complaint{ID: "abc"})

	if got.Category != "Unknown" {
		t.Errorf("Category = %q, want Unknown", got.Category)
	}
	if got.Priority != "Medium" {
		t.Errorf("Priority = %q, want Medium", got.Priority)
	}
	if got.Status != "New" {
		t.Errorf("Status = %q, want New", got.Status)
	}
	if got.Summary != "" || got.SuggestedAction != "" || got.CreatedAt != "" {
		t.Errorf("expected empty summary/action/created_at, got %+v", got)
	}
}

func TestNormalize_KeepsExistingValues(t *testing.T) {
	t.Parallel()

	in := domain.Complaint{Category: "Theft", Priority: "High", Status: "Resolved"}
	got := domain.Normalize(in)

	if got != in {
		t.Errorf("Normalize changed populated record: got %+v, want %+v", got, in)
	}
}

func TestPrepareForWrite_SetsOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 9, 14, 5, 7, 123456000, time.UTC)

	fresh := domain.PrepareForWrite(domain.Complaint{ID: "client-id"}, now)
	if fresh.CreatedAt != "2025-03-09T14:05:07.123456Z" {
		t.Errorf("CreatedAt = %q", fresh.CreatedAt)
	}
	if fresh.Status != "New" {
		t.Errorf("Status = %q, want New", fresh.Status)
	}
	if fresh.ID != "" {
		t.Errorf("ID = %q, want cleared", fresh.ID)
	}

	again := domain.PrepareForWrite(fresh, now.Add(time.Hour))
	if again.CreatedAt != fresh.CreatedAt {
		t.Errorf("created_at rewritten: %q -> %q", fresh.CreatedAt, again.CreatedAt)
	}

	resolved := domain.PrepareForWrite(domain.Complaint{Status: "Resolved"}, now)
	if resolved.Status != "Resolved" {
		t.Errorf("Status = %q, want Resolved", resolved.Status)
	}
}

func TestFormatTimestamp_ConvertsToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2025, 1, 1, 5, 30, 0, 0, loc)

	if got := domain.FormatTimestamp(ts); got != "2025-01-01T00:00:00.000000Z" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}

func TestComplaint_GetAndSet(t *testing.T) {
	t.Parallel()

	c := domain.Complaint{ID: "x1", Summary: "s"}

	if v, ok := c.Get("id"); !ok || v != "x1" {
		t.Errorf(`Get("id") = %q, %v`, v, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected unknown field to report !ok")
	}

	if err := c.Set(domain.FieldStatus, "Closed"); err != nil {
		t.Fatalf("Set(status) error = %v", err)
	}
	if c.Status != "Closed" {
		t.Errorf("Status = %q", c.Status)
	}

	err := c.Set(domain.FieldSummary, "changed")
	if !domain.IsValidation(err) {
		t.Errorf("Set(summary) error = %v, want ValidationError", err)
	}
	if c.Summary != "s" {
		t.Errorf("summary mutated to %q", c.Summary)
	}
}

func TestCanonicalPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"critical", "Critical", true},
		{" HIGH ", "High", true},
		{"Low", "Low", true},
		{"severe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := domain.CanonicalPriority(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalPriority(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStatsOf_CountsMissingAsDefaults(t *testing.T) {
	t.Parallel()

	stats := domain.StatsOf([]domain.Complaint{
		{Category: "Theft", Priority: "High"},
		{Category: "Theft"},
		{},
	})

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByCategory["Theft"] != 2 || stats.ByCategory["Unknown"] != 1 {
		t.Errorf("ByCategory = %v", stats.ByCategory)
	}
	if stats.ByPriority["Medium"] != 2 || stats.ByPriority["High"] != 1 {
		t.Errorf("ByPriority = %v", stats.ByPriority)
	}
}

func TestFilters_Matches(t *testing.T) {
	t.Parallel()

	c := domain.Complaint{Status: "New", Priority: "High", Category: "Power"}

	if !(domain.Filters{}).Matches(c) {
		t.Error("empty filters should match")
	}
	if !(domain.Filters{Status: "New", Category: "Power"}).Matches(c) {
		t.Error("expected match")
	}
	if (domain.Filters{Status: "new"}).Matches(c) {
		t.Error("store filters are exact; lowercase should not match")
	}
}

func TestStoreError_Wraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: refused")
	err := domain.StoreError("get all", cause)

	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Error("expected ErrStoreUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be preserved")
	}
}
