package tables

import (
	"testing"
	"time"

	"villeto/internal/core"
	"villeto/internal/filter"
)

func TestExpenseColumns(t *testing.T) {
	e := core.Expense{
		ID:          "e1",
		SpentOn:     core.NewDate(2026, 3, 4),
		Description: "Taxi",
		Amount:      core.Money{Cents: 4250},
		Category:    "travel",
		Status:      core.StatusPending,
		Submitter:   "Ada",
		CreatedAt:   time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
	}
	want := map[string]string{
		"spent":       "2026-03-04",
		"description": "Taxi",
		"amount":      "42.50",
		"category":    "travel",
		"status":      "pending",
		"submitter":   "Ada",
		"created":     "2026-03-04 09:30",
	}
	for _, c := range ExpenseColumns() {
		if got := c.Cell(e); got != want[c.Key] {
			t.Errorf("column %s = %q, want %q", c.Key, got, want[c.Key])
		}
	}
}

func TestColumnKeysMatchFilterSchema(t *testing.T) {
	schema := filter.DefaultSchema()
	check := func(table string, keys map[string]bool) {
		for _, d := range schema.For(table) {
			if !keys[d.Name] {
				t.Errorf("%s filter %q has no column", table, d.Name)
			}
		}
	}

	expenseKeys := map[string]bool{}
	for _, c := range ExpenseColumns() {
		expenseKeys[c.Key] = true
	}
	userKeys := map[string]bool{}
	for _, c := range UserColumns() {
		userKeys[c.Key] = true
	}
	check(Expenses, expenseKeys)
	check(Users, userKeys)
}

func TestPreviewColumns(t *testing.T) {
	cols := PreviewColumns([]string{"Name", "", "Amount"})
	if len(cols) != 3 {
		t.Fatalf("len = %d", len(cols))
	}
	if cols[1].Header != "Column 2" || cols[2].Key != "c2" {
		t.Errorf("columns = %+v %+v", cols[1], cols[2])
	}
	if cols[0].Hideable || !cols[1].Hideable {
		t.Error("only the first column is pinned")
	}

	short := PreviewRow{ID: "r", Cells: []string{"Ada"}}
	if cols[0].Cell(short) != "Ada" || cols[2].Cell(short) != "" {
		t.Error("cells must tolerate short rows")
	}
}
