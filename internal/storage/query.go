package storage

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"villeto/internal/core"
	"villeto/internal/filter"
	"villeto/internal/table"
)

// Dialect picks the placeholder style of the generated SQL.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

type matchKind int

const (
	matchEqual matchKind = iota
	matchContains
	matchBool
	matchDate
	matchCents
)

type filterRule struct {
	column string
	kind   matchKind
}

// entity whitelists everything a list query may reference. Table state
// keys never reach the SQL text directly.
type entity struct {
	table        string
	columns      []string
	sorts        map[string]string
	defaultOrder string
	search       []string
	filters      map[string]filterRule
}

var expenseEntity = entity{
	table:   "expenses",
	columns: []string{"id", "spent_on", "description", "amount_cents", "category", "status", "submitter", "created_at"},
	sorts: map[string]string{
		"spent":       "spent_on",
		"description": "description",
		"amount":      "amount_cents",
		"category":    "category",
		"status":      "status",
		"submitter":   "submitter",
		"created":     "created_at",
	},
	defaultOrder: "spent_on DESC, id DESC",
	search:       []string{"description", "submitter", "category"},
	filters: map[string]filterRule{
		"status":    {column: "status", kind: matchEqual},
		"category":  {column: "category", kind: matchEqual},
		"submitter": {column: "submitter", kind: matchContains},
		"spent":     {column: "spent_on", kind: matchDate},
		"amount":    {column: "amount_cents", kind: matchCents},
	},
}

var userEntity = entity{
	table:   "users",
	columns: []string{"id", "name", "email", "role", "department", "active", "joined_on"},
	sorts: map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"department": "department",
		"joined":     "joined_on",
		"active":     "active",
	},
	defaultOrder: "name ASC, id ASC",
	search:       []string{"name", "email", "department"},
	filters: map[string]filterRule{
		"role":       {column: "role", kind: matchEqual},
		"department": {column: "department", kind: matchContains},
		"active":     {column: "active", kind: matchBool},
		"joined":     {column: "joined_on", kind: matchDate},
	},
}

const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern turns a user term into a case-folded LIKE pattern that
// matches the term literally anywhere in the value.
func containsPattern(term string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(term)) + "%"
}

type builder struct {
	dialect Dialect
	args    []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

// where renders the search and filter conditions of p. Filters naming
// columns the entity does not know are ignored.
func (b *builder) where(e entity, p ListParams) (string, error) {
	var conds []string

	if term := strings.TrimSpace(p.Search); term != "" {
		like := containsPattern(term)
		ors := make([]string, 0, len(e.search))
		for _, col := range e.search {
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE %s"+likeEscape, col, b.arg(like)))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	crit := filter.Decode(p.Filters)
	for _, name := range sortedKeys(crit.Values) {
		rule, ok := e.filters[name]
		if !ok {
			continue
		}
		v := crit.Values[name]
		switch rule.kind {
		case matchEqual:
			conds = append(conds, fmt.Sprintf("LOWER(%s) = %s", rule.column, b.arg(strings.ToLower(v))))
		case matchContains:
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE %s"+likeEscape, rule.column, b.arg(containsPattern(v))))
		case matchBool:
			on, err := strconv.ParseBool(v)
			if err != nil {
				return "", fmt.Errorf("%w: %s=%q", ErrInvalidFilter, name, v)
			}
			conds = append(conds, fmt.Sprintf("%s = %s", rule.column, b.arg(on)))
		case matchDate:
			if _, err := core.ParseDate(v); err != nil {
				return "", fmt.Errorf("%w: %s=%q", ErrInvalidFilter, name, v)
			}
			conds = append(conds, fmt.Sprintf("%s = %s", rule.column, b.arg(v)))
		case matchCents:
			cents, err := parseCents(v)
			if err != nil {
				return "", fmt.Errorf("%w: %s=%q", ErrInvalidFilter, name, v)
			}
			conds = append(conds, fmt.Sprintf("%s = %s", rule.column, b.arg(cents)))
		}
	}

	for _, name := range sortedKeys(crit.Dates) {
		rule, ok := e.filters[name]
		if !ok || rule.kind != matchDate {
			continue
		}
		r := crit.Dates[name]
		if r.Start != "" {
			conds = append(conds, fmt.Sprintf("%s >= %s", rule.column, b.arg(r.Start)))
		}
		if r.End != "" {
			conds = append(conds, fmt.Sprintf("%s <= %s", rule.column, b.arg(r.End)))
		}
	}

	for _, name := range sortedKeys(crit.Numbers) {
		rule, ok := e.filters[name]
		if !ok || rule.kind != matchCents {
			continue
		}
		r := crit.Numbers[name]
		for _, bound := range []struct {
			v  string
			op string
		}{{r.Min, ">="}, {r.Max, "<="}} {
			if bound.v == "" {
				continue
			}
			cents, err := parseCents(bound.v)
			if err != nil {
				return "", fmt.Errorf("%w: %s=%q", ErrInvalidFilter, name, bound.v)
			}
			conds = append(conds, fmt.Sprintf("%s %s %s", rule.column, bound.op, b.arg(cents)))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func (e entity) orderBy(keys []table.SortKey) string {
	var parts []string
	for _, k := range keys {
		col, ok := e.sorts[k.Column]
		if !ok {
			continue
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return " ORDER BY " + e.defaultOrder
	}
	return " ORDER BY " + strings.Join(parts, ", ") + ", id ASC"
}

// listQuery builds the page query for p.
func listQuery(d Dialect, e entity, p ListParams) (string, []any, error) {
	b := &builder{dialect: d}
	where, err := b.where(e, p)
	if err != nil {
		return "", nil, err
	}
	q := "SELECT " + strings.Join(e.columns, ", ") + " FROM " + e.table + where + e.orderBy(p.Sort)
	if p.PageSize > 0 {
		q += " LIMIT " + b.arg(p.PageSize) + " OFFSET " + b.arg(p.offset())
	}
	return q, b.args, nil
}

// countQuery builds the total-count query for p. Paging is ignored.
func countQuery(d Dialect, e entity, p ListParams) (string, []any, error) {
	b := &builder{dialect: d}
	where, err := b.where(e, p)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + e.table + where, b.args, nil
}

// inList renders "col IN (...)" for ids, appending to b.
func (b *builder) inList(col string, ids []string) string {
	ph := make([]string, len(ids))
	for i, id := range ids {
		ph[i] = b.arg(id)
	}
	return col + " IN (" + strings.Join(ph, ", ") + ")"
}

func getExpensesQuery(d Dialect, ids []string) (string, []any) {
	b := &builder{dialect: d}
	q := "SELECT " + strings.Join(expenseEntity.columns, ", ") + " FROM expenses WHERE " +
		b.inList("id", ids) + " ORDER BY " + expenseEntity.defaultOrder
	return q, b.args
}

func updateStatusQuery(d Dialect, ids []string, status core.ExpenseStatus) (string, []any) {
	b := &builder{dialect: d}
	set := b.arg(string(status))
	return "UPDATE expenses SET status = " + set + " WHERE " + b.inList("id", ids), b.args
}

func insertQuery(d Dialect, e entity, values ...any) (string, []any) {
	b := &builder{dialect: d}
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = b.arg(v)
	}
	return "INSERT INTO " + e.table + " (" + strings.Join(e.columns, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")", b.args
}

func expenseValues(e core.Expense) []any {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return []any{
		e.ID, e.SpentOn.String(), e.Description, e.Amount.Cents,
		e.Category, string(e.Status), e.Submitter, created.UTC().Format(time.RFC3339Nano),
	}
}

func userValues(u core.User) []any {
	return []any{u.ID, u.Name, u.Email, string(u.Role), u.Department, u.Active, u.JoinedOn.String()}
}

// parseCents reads a decimal amount filter. Unlike amounts on expenses a
// zero bound is allowed.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
		return 0, nil
	}
	return core.ParseDecimalToCents(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e              core.Expense
		spent, created string
		status         string
	)
	if err := s.Scan(&e.ID, &spent, &e.Description, &e.Amount.Cents, &e.Category, &status, &e.Submitter, &created); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(spent)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: spent_on: %w", e.ID, err)
	}
	e.SpentOn = d
	e.Status = core.ExpenseStatus(status)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		e.CreatedAt = t
	}
	return e, nil
}

func scanUser(s scanner) (core.User, error) {
	var (
		u      core.User
		role   string
		joined string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Department, &u.Active, &joined); err != nil {
		return core.User{}, err
	}
	d, err := core.ParseDate(joined)
	if err != nil {
		return core.User{}, fmt.Errorf("user %s: joined_on: %w", u.ID, err)
	}
	u.Role = core.Role(role)
	u.JoinedOn = d
	return u, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
