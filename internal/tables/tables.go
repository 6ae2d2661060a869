// Package tables declares the columns of every list view. Column keys are
// shared with the storage sort whitelist and the filter schema.
package tables

import (
	"strconv"

	"villeto/internal/core"
	"villeto/internal/table"
)

// Table names, used in routes, cache keys and filter schemas.
const (
	Expenses = "expenses"
	Users    = "users"
	Preview  = "csv-preview"
)

// ExpenseDefaultSort lists the newest expenses first.
var ExpenseDefaultSort = []table.SortKey{{Column: "spent", Desc: true}}

// UserDefaultSort orders users by name.
var UserDefaultSort = []table.SortKey{{Column: "name"}}

func ExpenseID(e core.Expense) string { return e.ID }
func UserID(u core.User) string       { return u.ID }

func ExpenseColumns() []table.Column[core.Expense] {
	return []table.Column[core.Expense]{
		{
			Key: "spent", Header: "Date", Sortable: true,
			Cell:  func(e core.Expense) string { return e.SpentOn.String() },
			Value: func(e core.Expense) any { return e.SpentOn.Time },
		},
		{
			Key: "description", Header: "Description", Sortable: true,
			Cell: func(e core.Expense) string { return e.Description },
		},
		{
			Key: "amount", Header: "Amount", Sortable: true,
			Cell:  func(e core.Expense) string { return e.Amount.String() },
			Value: func(e core.Expense) any { return e.Amount.Cents },
		},
		{
			Key: "category", Header: "Category", Sortable: true, Hideable: true,
			Cell: func(e core.Expense) string { return e.Category },
		},
		{
			Key: "status", Header: "Status", Sortable: true,
			Cell: func(e core.Expense) string { return string(e.Status) },
		},
		{
			Key: "submitter", Header: "Submitted by", Sortable: true, Hideable: true,
			Cell: func(e core.Expense) string { return e.Submitter },
		},
		{
			Key: "created", Header: "Created", Sortable: true, Hideable: true,
			Cell: func(e core.Expense) string {
				if e.CreatedAt.IsZero() {
					return ""
				}
				return e.CreatedAt.UTC().Format("2006-01-02 15:04")
			},
			Value: func(e core.Expense) any { return e.CreatedAt },
		},
	}
}

// ExpenseHidden is the column set hidden until the user asks for it.
var ExpenseHidden = []string{"created"}

func UserColumns() []table.Column[core.User] {
	return []table.Column[core.User]{
		{
			Key: "name", Header: "Name", Sortable: true,
			Cell: func(u core.User) string { return u.Name },
		},
		{
			Key: "email", Header: "Email", Sortable: true, Hideable: true,
			Cell: func(u core.User) string { return u.Email },
		},
		{
			Key: "role", Header: "Role", Sortable: true,
			Cell: func(u core.User) string { return string(u.Role) },
		},
		{
			Key: "department", Header: "Department", Sortable: true, Hideable: true,
			Cell: func(u core.User) string { return u.Department },
		},
		{
			Key: "active", Header: "Active", Sortable: true,
			Cell: func(u core.User) string {
				if u.Active {
					return "yes"
				}
				return "no"
			},
			Value: func(u core.User) any { return u.Active },
		},
		{
			Key: "joined", Header: "Joined", Sortable: true, Hideable: true,
			Cell:  func(u core.User) string { return u.JoinedOn.String() },
			Value: func(u core.User) any { return u.JoinedOn.Time },
		},
	}
}

// PreviewRow is one data line of an uploaded CSV.
type PreviewRow struct {
	ID    string
	Cells []string
}

func PreviewID(r PreviewRow) string { return r.ID }

// PreviewColumns builds one sortable column per CSV header. Keys are
// positional so duplicate or blank headers stay addressable. Every column
// but the first can be hidden.
func PreviewColumns(header []string) []table.Column[PreviewRow] {
	cols := make([]table.Column[PreviewRow], len(header))
	for i, h := range header {
		if h == "" {
			h = "Column " + strconv.Itoa(i+1)
		}
		cols[i] = table.Column[PreviewRow]{
			Key:      "c" + strconv.Itoa(i),
			Header:   h,
			Sortable: true,
			Hideable: i > 0,
			Cell: func(r PreviewRow) string {
				if i < len(r.Cells) {
					return r.Cells[i]
				}
				return ""
			},
		}
	}
	return cols
}
