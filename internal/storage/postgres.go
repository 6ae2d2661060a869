package storage

import (
	"context"
	"fmt"
	"time"

	"villeto/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the shared multi-instance backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool to url and brings the schema up to date.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URL: %w", err)
	}

	config.MaxConns = 16
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunPostgresMigrations(url); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) ListExpenses(ctx context.Context, p ListParams) ([]core.Expense, error) {
	q, args, err := listQuery(Postgres, expenseEntity, p)
	if err != nil {
		return nil, err
	}
	return queryExpenses(ctx, s.pool, q, args)
}

func (s *PostgresStore) CountExpenses(ctx context.Context, p ListParams) (int, error) {
	return s.count(ctx, expenseEntity, p)
}

func (s *PostgresStore) GetExpenses(ctx context.Context, ids []string) ([]core.Expense, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args := getExpensesQuery(Postgres, ids)
	return queryExpenses(ctx, s.pool, q, args)
}

func queryExpenses(ctx context.Context, pool *pgxpool.Pool, q string, args []any) ([]core.Expense, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Expense, error) {
		return scanExpense(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	q, args := insertQuery(Postgres, expenseEntity, expenseValues(e)...)
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateExpenseStatus(ctx context.Context, ids []string, status core.ExpenseStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args := updateStatusQuery(Postgres, ids, status)
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("update expense status: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, p ListParams) ([]core.User, error) {
	q, args, err := listQuery(Postgres, userEntity, p)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context, p ListParams) (int, error) {
	return s.count(ctx, userEntity, p)
}

func (s *PostgresStore) CreateUser(ctx context.Context, u core.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	q, args := insertQuery(Postgres, userEntity, userValues(u)...)
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) count(ctx context.Context, e entity, p ListParams) (int, error) {
	q, args, err := countQuery(Postgres, e, p)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", e.table, err)
	}
	return int(n), nil
}
