// Package storage persists complaints. It defines the repository contract and the
// memory and Elasticsearch backends; the PostgreSQL backend lives in internal/database.
package storage

import (
	"context"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// CollectionName is the default index/table/collection name.
const CollectionName = "complaints"

// Repository is the complaint store contract.
//
// Reads through GetAll are normalized with domain.Normalize. Find returns records
// as stored so that exports render absent fields as empty strings.
// Store failures wrap domain.ErrStoreUnavailable.
type Repository interface {
	// Add persists c, setting created_at and status if absent, and returns the new id.
	Add(ctx context.Context, c domain.Complaint) (string, error)
	// GetAll returns every complaint, normalized.
	GetAll(ctx context.Context) ([]domain.Complaint, error)
	// UpdateField changes one mutable field. Returns domain.ErrNotFound for unknown ids.
	UpdateField(ctx context.Context, id string, field domain.Field, value string) error
	// Delete removes a complaint. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// Find returns complaints matching every non-empty filter exactly.
	Find(ctx context.Context, filters domain.Filters) ([]domain.Complaint, error)
	// Aggregate counts complaints by category and priority.
	Aggregate(ctx context.Context) (domain.Stats, error)
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// CheckUpdate validates an UpdateField request before it reaches a backend.
func CheckUpdate(id string, field domain.Field) error {
	if id == "" {
		return domain.NewValidationError("doc_id", "is required")
	}
	if !field.IsMutable() {
		return domain.NewValidationError(string(field), "field cannot be updated")
	}
	return nil
}
