package storage

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/telemetry"
)

// Instrumented wraps a Repository with per-operation metrics.
type Instrumented struct {
	next      Repository
	telemetry *telemetry.Provider
}

// NewInstrumented returns repo unchanged when tp is nil.
func NewInstrumented(repo Repository, tp *telemetry.Provider) Repository {
	if tp == nil {
		return repo
	}
	return &Instrumented{next: repo, telemetry: tp}
}

func (r *Instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	r.telemetry.RecordStoreOperation(ctx, op, err, time.Since(start))
}

func (r *Instrumented) Add(ctx context.Context, c domain.Complaint) (string, error) {
	start := time.Now()
	id, err := r.next.Add(ctx, c)
	r.observe(ctx, "add", start, err)
	return id, err
}

func (r *Instrumented) GetAll(ctx context.Context) ([]domain.Complaint, error) {
	start := time.Now()
	items, err := r.next.GetAll(ctx)
	r.observe(ctx, "get_all", start, err)
	return items, err
}

func (r *Instrumented) UpdateField(ctx context.Context, id string, field domain.Field, value string) error {
	start := time.Now()
	err := r.next.UpdateField(ctx, id, field, value)
	r.observe(ctx, "update", start, err)
	return err
}

func (r *Instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe(ctx, "delete", start, err)
	return err
}

func (r *Instrumented) Find(ctx context.Context, filters domain.Filters) ([]domain.Complaint, error) {
	start := time.Now()
	items, err := r.next.Find(ctx, filters)
	r.observe(ctx, "find", start, err)
	return items, err
}

func (r *Instrumented) Aggregate(ctx context.Context) (domain.Stats, error) {
	start := time.Now()
	stats, err := r.next.Aggregate(ctx)
	r.observe(ctx, "aggregate", start, err)
	return stats, err
}

func (r *Instrumented) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
