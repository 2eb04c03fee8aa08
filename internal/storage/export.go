package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/domain"
)

// ExportFilename is the attachment name used for CSV downloads.
const ExportFilename = "complaints.csv"

// ExportColumns is the fixed CSV header.
var ExportColumns = []domain.Field{
	domain.FieldID,
	domain.FieldCategory,
	domain.FieldPriority,
	domain.FieldStatus,
	domain.FieldSummary,
	domain.FieldSuggestedAction,
	domain.FieldCreatedAt,
}

// ExportCSV writes the complaints matching filters to w. The header row is always written.
func ExportCSV(ctx context.Context, repo Repository, filters domain.Filters, w io.Writer) error {
	items, err := repo.Find(ctx, filters)
	if err != nil {
		return fmt.Errorf("export complaints: %w", err)
	}
	return WriteCSV(w, items)
}

// WriteCSV renders items with the export header. Absent fields render as "".
func WriteCSV(w io.Writer, items []domain.Complaint) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(ExportColumns))
	for i, col := range ExportColumns {
		header[i] = string(col)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(ExportColumns))
	for i := range items {
		for j, col := range ExportColumns {
			row[j], _ = items[i].Get(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
