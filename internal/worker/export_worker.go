// Package worker consumes bulk-action events and mirrors approved
// expenses to the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"villeto/internal/amqp"
	"villeto/internal/log"
	"villeto/internal/services"
	"villeto/internal/tables"
)

// Consumer delivers bulk-action events until ctx is done.
type Consumer interface {
	ConsumeBulkActions(ctx context.Context, handler func(context.Context, *amqp.BulkActionMessage) error) error
}

// Mirror appends approved expenses to the approved sheet.
type Mirror interface {
	MirrorApproved(ctx context.Context, ids []string) (int, error)
}

// ExportWorker reacts to expense approvals.
type ExportWorker struct {
	consumer Consumer
	mirror   Mirror
	logger   *log.Logger
}

func NewExportWorker(consumer Consumer, mirror Mirror, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		consumer: consumer,
		mirror:   mirror,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes events until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Export worker started")
	err := w.consumer.ConsumeBulkActions(ctx, w.HandleBulkAction)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume bulk actions: %w", err)
	}
	w.logger.InfoContext(ctx, "Export worker stopped")
	return nil
}

// HandleBulkAction mirrors the approved rows of an approval event. Events
// for other tables or actions are acknowledged and ignored. A returned
// error makes the event redeliverable.
func (w *ExportWorker) HandleBulkAction(ctx context.Context, msg *amqp.BulkActionMessage) error {
	if msg.Table != tables.Expenses || msg.Action != services.ActionApprove {
		w.logger.DebugContext(ctx, "Ignoring bulk action event",
			log.FieldTable, msg.Table,
			log.FieldAction, msg.Action)
		return nil
	}

	n, err := w.mirror.MirrorApproved(ctx, msg.IDs)
	if errors.Is(err, services.ErrSheetsDisabled) {
		w.logger.WarnContext(ctx, "Spreadsheet not configured, dropping approval event",
			log.FieldSelected, len(msg.IDs))
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror approved expenses: %w", err)
	}

	w.logger.InfoContext(ctx, "Processed approval event",
		log.FieldOperation, log.OpConsume,
		log.FieldSelected, len(msg.IDs),
		log.FieldRows, n,
		"published_at", msg.Timestamp)
	return nil
}
