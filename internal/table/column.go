package table

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column describes one column of a table. Columns are fixed for the life
// of a table instance.
type Column[R any] struct {
	Key    string
	Header string
	// Cell renders the display text of the column for a row.
	Cell func(R) string
	// Value is the typed value used for local sorting and filtering.
	// When nil, Cell is used.
	Value    func(R) any
	Sortable bool
	Hideable bool
}

func (c Column[R]) value(row R) any {
	if c.Value != nil {
		return c.Value(row)
	}
	if c.Cell != nil {
		return c.Cell(row)
	}
	return nil
}

func (c Column[R]) text(row R) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return fmt.Sprint(c.value(row))
}

// compareValues orders two column values. Numbers, times and bools compare
// naturally; strings that both parse as numbers compare numerically, other
// strings case-insensitively. Nil sorts last.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

type timeLike interface {
	IsZero() bool
	Format(layout string) string
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case timeLike:
		if t.IsZero() {
			return time.Time{}, false
		}
		parsed, err := time.Parse(time.RFC3339Nano, t.Format(time.RFC3339Nano))
		return parsed, err == nil
	}
	return time.Time{}, false
}

// calendarDate renders v as YYYY-MM-DD when it is a time or an ISO date string.
func calendarDate(v any) (string, bool) {
	if t, ok := asTime(v); ok {
		return t.Format(time.DateOnly), true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if len(s) >= 10 {
			if _, err := time.Parse(time.DateOnly, s[:10]); err == nil {
				return s[:10], true
			}
		}
	}
	return "", false
}
