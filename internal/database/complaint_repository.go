package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/storage"
)

const selectColumns = `doc_id, text, category, priority, summary, suggested_action, status, created_at`

type complaintRow struct {
	ID              string `db:"doc_id"`
	Text            string `db:"text"`
	Category        string `db:"category"`
	Priority        string `db:"priority"`
	Summary         string `db:"summary"`
	SuggestedAction string `db:"suggested_action"`
	Status          string `db:"status"`
	CreatedAt       string `db:"created_at"`
}

func (r complaintRow) complaint() domain.Complaint {
	return domain.Complaint{
		ID:              r.ID,
		Text:            r.Text,
		Category:        r.Category,
		Priority:        r.Priority,
		Summary:         r.Summary,
		SuggestedAction: r.SuggestedAction,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

func toComplaints(rows []complaintRow) []domain.Complaint {
	items := make([]domain.Complaint, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.complaint())
	}
	return items
}

// ComplaintRepository is a storage.Repository backed by PostgreSQL.
type ComplaintRepository struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

var _ storage.Repository = (*ComplaintRepository)(nil)

// NewComplaintRepository creates a new complaint repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add inserts c under a new UUID.
func (r *ComplaintRepository) Add(ctx context.Context, c domain.Complaint) (string, error) {
	c = domain.PrepareForWrite(c, r.now())
	id := r.newID()

	query := `
		INSERT INTO complaints (doc_id, text, category, priority, summary, suggested_action, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		id, c.Text, c.Category, c.Priority, c.Summary, c.SuggestedAction, c.Status, c.CreatedAt,
	)
	if err != nil {
		return "", domain.StoreError("insert complaint", err)
	}
	return id, nil
}

// GetAll returns every complaint, normalized, in insertion order.
func (r *ComplaintRepository) GetAll(ctx context.Context) ([]domain.Complaint, error) {
	var rows []complaintRow
	query := `SELECT ` + selectColumns + ` FROM complaints ORDER BY seq`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domain.StoreError("list complaints", err)
	}
	return domain.NormalizeAll(toComplaints(rows)), nil
}

// UpdateField sets one mutable column.
func (r *ComplaintRepository) UpdateField(ctx context.Context, id string, field domain.Field, value string) error {
	if err := storage.CheckUpdate(id, field); err != nil {
		return err
	}

	// field is one of domain.MutableFields, so it is safe to interpolate.
	query := fmt.Sprintf(`UPDATE complaints SET %s = $1 WHERE doc_id = $2`, field)
	result, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return domain.StoreError("update complaint", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.StoreError("update complaint", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes id. Unknown ids are ignored.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM complaints WHERE doc_id = $1`, id); err != nil {
		return domain.StoreError("delete complaint", err)
	}
	return nil
}

// Find returns stored rows matching every filter.
func (r *ComplaintRepository) Find(ctx context.Context, filters domain.Filters) ([]domain.Complaint, error) {
	query := `SELECT ` + selectColumns + ` FROM complaints`

	pairs := filters.Pairs()
	args := make([]any, 0, len(pairs))
	if len(pairs) > 0 {
		clauses := make([]string, 0, len(pairs))
		for i, p := range pairs {
			clauses = append(clauses, fmt.Sprintf("%s = $%d", p.Field, i+1))
			args = append(args, p.Value)
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq"

	var rows []complaintRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, domain.StoreError("find complaints", err)
	}
	return toComplaints(rows), nil
}

type bucketRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// Aggregate counts complaints per category and priority with GROUP BY.
func (r *ComplaintRepository) Aggregate(ctx context.Context) (domain.Stats, error) {
	stats := domain.NewStats()

	var byCategory []bucketRow
	query := `
		SELECT COALESCE(NULLIF(TRIM(category), ''), $1) AS key, COUNT(*) AS count
		FROM complaints
		GROUP BY 1
	`
	if err := r.db.SelectContext(ctx, &byCategory, query, domain.DefaultCategory); err != nil {
		return domain.Stats{}, domain.StoreError("aggregate categories", err)
	}

	var byPriority []bucketRow
	query = `
		SELECT COALESCE(NULLIF(TRIM(priority), ''), $1) AS key, COUNT(*) AS count
		FROM complaints
		GROUP BY 1
	`
	if err := r.db.SelectContext(ctx, &byPriority, query, domain.DefaultPriority); err != nil {
		return domain.Stats{}, domain.StoreError("aggregate priorities", err)
	}

	for _, b := range byCategory {
		stats.ByCategory[b.Key] += b.Count
		stats.Total += b.Count
	}
	for _, b := range byPriority {
		stats.ByPriority[b.Key] += b.Count
	}
	return stats, nil
}

// Ping checks the connection.
func (r *ComplaintRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.StoreError("ping", err)
	}
	return nil
}
