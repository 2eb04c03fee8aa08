package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rowColumns = []string{"doc_id", "text", "category", "priority", "summary", "suggested_action", "status", "created_at"}

func newMockRepository(t *testing.T) (*ComplaintRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewComplaintRepository(sqlx.NewDb(db, "postgres"))
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	repo.newID = func() string { return "11111111-2222-3333-4444-555555555555" }
	return repo, mock
}

func TestComplaintRepository_Add(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO complaints")).
		WithArgs(
			"11111111-2222-3333-4444-555555555555",
			"My bike was stolen",
			domain.CategoryTheft,
			domain.PriorityMedium,
			"Citizen reports: My bike was stolen",
			"Notify local police unit",
			domain.DefaultStatus,
			"2024-03-01T12:00:00.000000Z",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Add(context.Background(), domain.Complaint{
		Text:            "My bike was stolen",
		Category:        domain.CategoryTheft,
		Priority:        domain.PriorityMedium,
		Summary:         "Citizen reports: My bike was stolen",
		SuggestedAction: "Notify local police unit",
	})
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_AddFailureIsStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO complaints").WillReturnError(sql.ErrConnDone)

	_, err := repo.Add(context.Background(), domain.Complaint{Text: "x"})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestComplaintRepository_GetAllNormalizes(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows(rowColumns).
		AddRow("a", "bike stolen", "Theft", "High", "s", "act", "New", "2024-01-01T00:00:00.000000Z").
		AddRow("b", "lights", "", "", "", "", "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM complaints ORDER BY seq")).WillReturnRows(rows)

	items, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Theft", items[0].Category)
	assert.Equal(t, domain.DefaultCategory, items[1].Category)
	assert.Equal(t, domain.DefaultPriority, items[1].Priority)
	assert.Equal(t, domain.DefaultStatus, items[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_UpdateField(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updates existing row", affected: 1},
		{name: "unknown id", affected: 0, wantErr: domain.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE complaints SET status = $1 WHERE doc_id = $2")).
				WithArgs("Resolved", "abc").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := repo.UpdateField(context.Background(), "abc", domain.FieldStatus, "Resolved")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestComplaintRepository_UpdateFieldRejectsImmutable(t *testing.T) {
	repo, mock := newMockRepository(t)

	err := repo.UpdateField(context.Background(), "abc", domain.FieldCreatedAt, "now")
	assert.True(t, domain.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_DeleteUnknownIsNotAnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM complaints WHERE doc_id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_FindBuildsWhereClause(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows(rowColumns).
		AddRow("a", "t", "Theft", "", "", "", "New", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM complaints WHERE status = $1 AND category = $2 ORDER BY seq")).
		WithArgs("New", "Theft").
		WillReturnRows(rows)

	items, err := repo.Find(context.Background(), domain.Filters{Status: "New", Category: "Theft"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Priority, "find returns rows as stored")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_FindWithoutFilters(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + selectColumns + " FROM complaints ORDER BY seq")).
		WillReturnRows(sqlmock.NewRows(rowColumns))

	items, err := repo.Find(context.Background(), domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_Aggregate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(NULLIF(TRIM(category), ''), $1)")).
		WithArgs(domain.DefaultCategory).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("Theft", 2).
			AddRow("Unknown", 1))
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(NULLIF(TRIM(priority), ''), $1)")).
		WithArgs(domain.DefaultPriority).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("Medium", 3))

	stats, err := repo.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"Theft": 2, "Unknown": 1}, stats.ByCategory)
	assert.Equal(t, map[string]int{"Medium": 3}, stats.ByPriority)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepository_Ping(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	require.ErrorIs(t, repo.Ping(context.Background()), domain.ErrStoreUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
