package services

import (
	"context"
	"errors"
	"fmt"

	"villeto/internal/amqp"
	"villeto/internal/core"
	"villeto/internal/log"
	"villeto/internal/storage"
	"villeto/internal/tables"
)

// Bulk actions on expenses.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var (
	ErrUnknownAction  = errors.New("unknown bulk action")
	ErrEmptySelection = errors.New("no rows selected")
)

// Publisher announces bulk actions to other processes.
type Publisher interface {
	PublishBulkAction(ctx context.Context, msg *amqp.BulkActionMessage) error
}

// BulkService applies status changes to selected expenses.
type BulkService struct {
	store     storage.ExpenseStore
	publisher Publisher
	onChange  []func()
	logger    *log.Logger
}

// NewBulkService creates the service. publisher may be nil; onChange
// callbacks run after every applied action, typically cache invalidation.
func NewBulkService(store storage.ExpenseStore, publisher Publisher, logger *log.Logger, onChange ...func()) *BulkService {
	return &BulkService{
		store:     store,
		publisher: publisher,
		onChange:  onChange,
		logger:    logger.WithComponent(log.ComponentTable),
	}
}

// StatusFor maps an action name to the status it sets.
func StatusFor(action string) (core.ExpenseStatus, error) {
	switch action {
	case ActionApprove:
		return core.StatusApproved, nil
	case ActionReject:
		return core.StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// Apply sets the status for action on every id and returns how many rows
// changed. A failed publish is logged, not returned: the update is already
// committed.
func (s *BulkService) Apply(ctx context.Context, action string, ids []string) (int, error) {
	status, err := StatusFor(action)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}

	n, err := s.store.UpdateExpenseStatus(ctx, ids, status)
	if err != nil {
		return 0, fmt.Errorf("bulk %s: %w", action, err)
	}
	for _, fn := range s.onChange {
		fn()
	}

	log.NewStructuredLogger(s.logger).LogBulkAction(ctx, tables.Expenses, action, n)

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping bulk action event")
		return n, nil
	}
	if err := s.publisher.PublishBulkAction(ctx, amqp.NewBulkActionMessage(tables.Expenses, action, ids)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish bulk action event",
			log.FieldAction, action,
			log.FieldError, err)
	}
	return n, nil
}
