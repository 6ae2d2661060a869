// Package storage persists expenses and users and answers the paged,
// sorted and filtered list queries behind the remote tables.
package storage

import (
	"context"
	"errors"
	"maps"
	"slices"

	"villeto/internal/core"
	"villeto/internal/table"
)

var (
	// ErrInvalidFilter is returned when a filter value cannot be applied,
	// such as a non-numeric amount bound.
	ErrInvalidFilter = errors.New("invalid filter value")
	// ErrNotFound is returned when a row lookup matches nothing.
	ErrNotFound = errors.New("not found")
)

// ListParams is the storage view of a table state. PageSize <= 0 means
// every matching row.
type ListParams struct {
	Page     int
	PageSize int
	Sort     []table.SortKey
	Search   string
	Filters  map[string]string
}

// ParamsFromState copies the query-relevant parts of a table state.
func ParamsFromState(st table.State) ListParams {
	return ListParams{
		Page:     st.Page,
		PageSize: st.PageSize,
		Sort:     slices.Clone(st.SortBy),
		Search:   st.GlobalSearch,
		Filters:  maps.Clone(st.FilterBy),
	}
}

// All returns p without its page window.
func (p ListParams) All() ListParams {
	p.Page, p.PageSize = 1, 0
	return p
}

func (p ListParams) offset() int {
	if p.PageSize <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// ExpenseStore reads and writes expenses.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, p ListParams) ([]core.Expense, error)
	CountExpenses(ctx context.Context, p ListParams) (int, error)
	GetExpenses(ctx context.Context, ids []string) ([]core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) error
	// UpdateExpenseStatus sets status on every listed expense and returns
	// how many rows changed.
	UpdateExpenseStatus(ctx context.Context, ids []string, status core.ExpenseStatus) (int, error)
}

// UserStore reads and writes users.
type UserStore interface {
	ListUsers(ctx context.Context, p ListParams) ([]core.User, error)
	CountUsers(ctx context.Context, p ListParams) (int, error)
	CreateUser(ctx context.Context, u core.User) error
}

// Store is a complete storage backend.
type Store interface {
	ExpenseStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
