package cli

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"villeto/internal/grid"
	"villeto/internal/table"
	"villeto/internal/tables"
)

func newListCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list expenses|users",
		Short: "Print one page of a table",
		Long: `Prints one page of the expenses or users table, sorted, searched and
filtered like the web view.

Examples:
  villeto list expenses
  villeto list expenses --sort amount:desc -f status=pending
  villeto list users -q engineering --page 2 --page-size 5`,
		ValidArgs: []string{tables.Expenses, tables.Users},
		Args:      tableArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := stateQuery(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("page") {
				page, _ := cmd.Flags().GetInt("page")
				q.Set(table.ParamPage, strconv.Itoa(page))
			}
			if cmd.Flags().Changed("page-size") {
				size, _ := cmd.Flags().GetInt("page-size")
				q.Set(table.ParamPageSize, strconv.Itoa(size))
			}

			rt, err := openRuntime(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if args[0] == tables.Users {
				return printPage(cmd.Context(), out, userListing(rt), q, e.cfg.DefaultPageSize)
			}
			return printPage(cmd.Context(), out, expenseListing(rt), q, e.cfg.DefaultPageSize)
		},
	}
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", 0, "Rows per page (default DEFAULT_PAGE_SIZE)")
	addQueryFlags(cmd)
	return cmd
}

func printPage[R any](ctx context.Context, w io.Writer, l listing[R], q url.Values, pageSize int) error {
	t, page, err := l.load(ctx, q, pageSize)
	if err != nil {
		return err
	}
	v := grid.Build(grid.Source[R]{Name: l.name, Table: t, Page: page})
	return grid.RenderText(w, v, grid.TerminalWidth())
}
