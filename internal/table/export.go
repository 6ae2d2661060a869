package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// Exporter fetches the rows to export, typically every row matching the
// current state rather than just the rendered page.
type Exporter[R any] func(ctx context.Context) ([]R, error)

// Export writes rows as CSV using the visible columns. With a nil exporter
// the rows of the last Sync are written. Exporter errors are returned as is.
func (t *Table[R]) Export(ctx context.Context, w io.Writer, exp Exporter[R]) error {
	rows, err := t.exportRows(ctx, exp)
	if err != nil {
		return err
	}
	return WriteCSV(w, t.VisibleColumns(), rows)
}

// ExportRecords is Export for sinks that take a matrix of cells, such as a
// spreadsheet. The first record is the header.
func (t *Table[R]) ExportRecords(ctx context.Context, exp Exporter[R]) ([][]string, error) {
	rows, err := t.exportRows(ctx, exp)
	if err != nil {
		return nil, err
	}
	return Records(t.VisibleColumns(), rows), nil
}

func (t *Table[R]) exportRows(ctx context.Context, exp Exporter[R]) ([]R, error) {
	if exp == nil {
		return t.rows, nil
	}
	return exp(ctx)
}

// LocalExporter exports every row of rows that passes the current search
// and filters, in the current sort order, ignoring the page window.
func (t *Table[R]) LocalExporter(rows []R) Exporter[R] {
	return func(context.Context) ([]R, error) {
		st := t.ctrl.State()
		st.PageSize = 0
		out, _ := NewPipeline(t.cols, st.Modes, t.match).Run(rows, st)
		return out, nil
	}
}

// Records renders a header of column labels followed by one record per row.
func Records[R any](cols []Column[R], rows []R) [][]string {
	out := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
		if header[i] == "" {
			header[i] = c.Key
		}
	}
	out = append(out, header)
	for _, row := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = c.text(row)
		}
		out = append(out, record)
	}
	return out
}

// WriteCSV writes Records(cols, rows) as CSV.
func WriteCSV[R any](w io.Writer, cols []Column[R], rows []R) error {
	cw := csv.NewWriter(w)
	for i, record := range Records(cols, rows) {
		if err := cw.Write(record); err != nil {
			if i == 0 {
				return fmt.Errorf("write csv header: %w", err)
			}
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
