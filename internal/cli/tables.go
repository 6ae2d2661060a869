package cli

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"villeto/internal/core"
	"villeto/internal/filter"
	"villeto/internal/services"
	"villeto/internal/table"
	"villeto/internal/tables"
)

// listing is a remote table the commands can page through.
type listing[R any] struct {
	name    string
	lister  *services.Lister[R]
	columns []table.Column[R]
	rowID   func(R) string
	sort    []table.SortKey
	hidden  []string
}

func expenseListing(rt *runtime) listing[core.Expense] {
	return listing[core.Expense]{
		name:    tables.Expenses,
		lister:  rt.expenses,
		columns: tables.ExpenseColumns(),
		rowID:   tables.ExpenseID,
		sort:    tables.ExpenseDefaultSort,
		hidden:  tables.ExpenseHidden,
	}
}

func userListing(rt *runtime) listing[core.User] {
	return listing[core.User]{
		name:    tables.Users,
		lister:  rt.users,
		columns: tables.UserColumns(),
		rowID:   tables.UserID,
		sort:    tables.UserDefaultSort,
	}
}

// load syncs the page q describes, the way the HTTP handlers do.
func (l listing[R]) load(ctx context.Context, q url.Values, pageSize int) (*table.Table[R], table.Page[R], error) {
	opts := table.DecodeQuery(q, table.Options{
		InitialPageSize: pageSize,
		InitialSortBy:   l.sort,
		Modes:           table.RemoteModes,
	})
	hidden := l.hidden
	if q.Has(table.ParamHide) {
		hidden = table.HiddenFromQuery(q)
	}
	t := table.New(table.Config[R]{
		Columns: l.columns,
		RowID:   l.rowID,
		Options: opts,
		Hidden:  hidden,
	})
	rows, err := l.lister.Load(ctx, t.Controller())
	if err != nil {
		return nil, table.Page[R]{}, err
	}
	return t, t.Sync(rows), nil
}

// addQueryFlags registers the table state flags shared by list and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("sort", "", `Sort keys, e.g. "amount:desc,spent"`)
	cmd.Flags().StringP("search", "q", "", "Search text")
	cmd.Flags().StringArrayP("filter", "f", nil, `Filter as name=value, e.g. "status=approved"; repeatable`)
	cmd.Flags().String("query", "", `Raw table query, e.g. "dateRanges[spent][startDate]=2026-03-01"`)
	cmd.Flags().String("hide", "", "Comma-separated columns to hide")
}

// stateQuery turns the flags into the query the table decodes.
func stateQuery(cmd *cobra.Command) (url.Values, error) {
	raw, _ := cmd.Flags().GetString("query")
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}

	if cmd.Flags().Changed("sort") {
		sort, _ := cmd.Flags().GetString("sort")
		q.Set(table.ParamSort, sort)
	}
	if search, _ := cmd.Flags().GetString("search"); search != "" {
		q.Set(table.ParamSearch, search)
	}
	if cmd.Flags().Changed("hide") {
		hide, _ := cmd.Flags().GetString("hide")
		q.Set(table.ParamHide, hide)
	}
	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, f := range filters {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --filter %q: want name=value", f)
		}
		q.Set(filter.ScalarKey(name), strings.TrimSpace(value))
	}
	return q, nil
}

func tableArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	switch args[0] {
	case tables.Expenses, tables.Users:
		return nil
	}
	return fmt.Errorf("unknown table %q: want %s or %s", args[0], tables.Expenses, tables.Users)
}
