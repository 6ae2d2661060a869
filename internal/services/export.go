package services

import (
	"context"
	"errors"
	"fmt"

	"villeto/internal/core"
	"villeto/internal/log"
	"villeto/internal/sheets"
	"villeto/internal/storage"
	"villeto/internal/table"
	"villeto/internal/tables"
)

// ErrSheetsDisabled is returned when no spreadsheet is configured.
var ErrSheetsDisabled = errors.New("spreadsheet export is not configured")

// SheetExport writes expense tables to a spreadsheet.
type SheetExport struct {
	exporter      sheets.Exporter
	store         storage.ExpenseStore
	exportSheet   string
	approvedSheet string
	logger        *log.Logger
}

// NewSheetExport creates the service. A nil exporter yields a service whose
// calls fail with ErrSheetsDisabled.
func NewSheetExport(exporter sheets.Exporter, store storage.ExpenseStore, exportSheet, approvedSheet string, logger *log.Logger) *SheetExport {
	return &SheetExport{
		exporter:      exporter,
		store:         store,
		exportSheet:   exportSheet,
		approvedSheet: approvedSheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

// Enabled reports whether a spreadsheet is configured.
func (s *SheetExport) Enabled() bool { return s != nil && s.exporter != nil }

// Replace overwrites the export sheet with records.
func (s *SheetExport) Replace(ctx context.Context, records [][]string) (string, error) {
	if !s.Enabled() {
		return "", ErrSheetsDisabled
	}
	ref, err := s.exporter.ReplaceSheet(ctx, s.exportSheet, records)
	if err != nil {
		return "", fmt.Errorf("export to sheet: %w", err)
	}
	return ref, nil
}

// MirrorApproved appends the expenses among ids that are currently
// approved to the approved sheet. Rows approved and then rejected before
// the event is handled are skipped.
func (s *SheetExport) MirrorApproved(ctx context.Context, ids []string) (int, error) {
	if !s.Enabled() {
		return 0, ErrSheetsDisabled
	}
	expenses, err := s.store.GetExpenses(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("load expenses: %w", err)
	}

	var approved []core.Expense
	for _, e := range expenses {
		if e.Status == core.StatusApproved {
			approved = append(approved, e)
		}
	}
	if len(approved) == 0 {
		return 0, nil
	}

	records := table.Records(tables.ExpenseColumns(), approved)[1:]
	ref, err := s.exporter.AppendRows(ctx, s.approvedSheet, records)
	if err != nil {
		return 0, fmt.Errorf("append approved expenses: %w", err)
	}
	s.logger.InfoContext(ctx, "Approved expenses mirrored", log.FieldRows, len(records), log.FieldSheetsRef, ref)
	return len(records), nil
}
