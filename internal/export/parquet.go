package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lehigh-university-libraries/borrowreport/internal/report"
	"github.com/parquet-go/parquet-go"
)

// ParquetRow is one report row as stored in a parquet export
type ParquetRow struct {
	ID          string  `parquet:"id"`
	Title       string  `parquet:"title"`
	Borrower    string  `parquet:"borrower"`
	BorrowDate  *string `parquet:"borrow_date,optional"`
	DueDate     *string `parquet:"due_date,optional"`
	Status      string  `parquet:"status"`
	DaysOverdue int64   `parquet:"days_overdue"`
	Source      string  `parquet:"source"`
	Bucket      string  `parquet:"bucket"`
}

// ParquetSink writes the report rows as a parquet table
type ParquetSink struct{}

func (ParquetSink) Ext() string         { return "parquet" }
func (ParquetSink) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetSink) Export(ctx context.Context, w io.Writer, doc Document) error {
	rows := ParquetRows(doc.View)

	writer := parquet.NewGenericWriter[ParquetRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// ParquetRows flattens the view's rows
func ParquetRows(view report.View) []ParquetRow {
	rows := make([]ParquetRow, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, ParquetRow{
			ID:          r.ID,
			Title:       r.Title,
			Borrower:    r.BorrowerIdentifier,
			BorrowDate:  timestamp(r.BorrowDate),
			DueDate:     timestamp(r.DueOrReturnDate),
			Status:      string(r.Status),
			DaysOverdue: int64(r.DaysOverdue),
			Source:      string(r.SourceKind),
			Bucket:      string(view.Bucket),
		})
	}
	return rows
}

func timestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
