package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"villeto/internal/filter"
)

// Matcher reports whether row passes the structured filter map.
type Matcher[R any] func(row R, cols []Column[R], filters map[string]string) bool

// Stage transforms the row slice for one concern. Stages never modify the
// slice they are given.
type Stage[R any] func(rows []R, st State) []R

// Pipeline applies filtering, sorting and pagination in that order. Each
// stage is either local (computed here) or a pass-through when the caller
// already applied it.
type Pipeline[R any] struct {
	Filter   Stage[R]
	Sort     Stage[R]
	Paginate Stage[R]
	manual   bool
}

// NewPipeline picks a stage per mode flag. A nil match falls back to
// MatchCriteria.
func NewPipeline[R any](cols []Column[R], modes Modes, match Matcher[R]) Pipeline[R] {
	if match == nil {
		match = MatchCriteria[R]
	}
	p := Pipeline[R]{
		Filter:   passThrough[R],
		Sort:     passThrough[R],
		Paginate: passThrough[R],
		manual:   modes.ManualPagination,
	}
	if !modes.ManualFiltering {
		p.Filter = localFilter(cols, match)
	}
	if !modes.ManualSorting {
		p.Sort = localSort(cols)
	}
	if !modes.ManualPagination {
		p.Paginate = localPage[R]
	}
	return p
}

// Run returns the visible window and the total row count it belongs to.
// For manual pagination the total is the caller-supplied one.
func (p Pipeline[R]) Run(rows []R, st State) ([]R, int) {
	filtered := p.Filter(rows, st)
	sorted := p.Sort(filtered, st)
	window := p.Paginate(sorted, st)
	if p.manual {
		return window, st.TotalItems
	}
	return window, len(filtered)
}

func passThrough[R any](rows []R, _ State) []R { return rows }

func localFilter[R any](cols []Column[R], match Matcher[R]) Stage[R] {
	return func(rows []R, st State) []R {
		term := strings.ToLower(strings.TrimSpace(st.GlobalSearch))
		if term == "" && len(st.FilterBy) == 0 {
			return rows
		}
		out := make([]R, 0, len(rows))
		for _, row := range rows {
			if term != "" && !rowContains(row, cols, term) {
				continue
			}
			if len(st.FilterBy) > 0 && !match(row, cols, st.FilterBy) {
				continue
			}
			out = append(out, row)
		}
		return out
	}
}

func rowContains[R any](row R, cols []Column[R], term string) bool {
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c.text(row)), term) {
			return true
		}
	}
	return false
}

func localSort[R any](cols []Column[R]) Stage[R] {
	byKey := make(map[string]Column[R], len(cols))
	for _, c := range cols {
		if c.Sortable {
			byKey[c.Key] = c
		}
	}
	return func(rows []R, st State) []R {
		keys := make([]SortKey, 0, len(st.SortBy))
		for _, k := range st.SortBy {
			if _, ok := byKey[k.Column]; ok {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return rows
		}
		out := slices.Clone(rows)
		slices.SortStableFunc(out, func(a, b R) int {
			for _, k := range keys {
				col := byKey[k.Column]
				n := compareValues(col.value(a), col.value(b))
				if k.Desc {
					n = -n
				}
				if n != 0 {
					return n
				}
			}
			return 0
		})
		return out
	}
}

func localPage[R any](rows []R, st State) []R {
	if st.PageSize <= 0 {
		return rows
	}
	start := (st.Page - 1) * st.PageSize
	if start < 0 || start >= len(rows) {
		return rows[:0:0]
	}
	end := min(len(rows), start+st.PageSize)
	return rows[start:end:end]
}

// MatchCriteria is the default local matcher. Scalar filters compare the
// column with the same key case-insensitively, date ranges compare
// calendar dates inclusively and numeric ranges compare numbers
// inclusively. Filters naming unknown columns are ignored.
func MatchCriteria[R any](row R, cols []Column[R], filters map[string]string) bool {
	c := filter.Decode(filters)
	if c.Empty() {
		return true
	}
	byKey := make(map[string]Column[R], len(cols))
	for _, col := range cols {
		byKey[col.Key] = col
	}
	for name, want := range c.Values {
		col, ok := byKey[name]
		if !ok {
			continue
		}
		if !scalarMatches(col.value(row), col.text(row), want) {
			return false
		}
	}
	for name, r := range c.Dates {
		col, ok := byKey[name]
		if !ok {
			continue
		}
		d, ok := calendarDate(col.value(row))
		if !ok {
			return false
		}
		if (r.Start != "" && d < r.Start) || (r.End != "" && d > r.End) {
			return false
		}
	}
	for name, r := range c.Numbers {
		col, ok := byKey[name]
		if !ok {
			continue
		}
		n, ok := asFloat(col.value(row))
		if !ok {
			return false
		}
		if lo, ok := asFloat(r.Min); ok && n < lo {
			return false
		}
		if hi, ok := asFloat(r.Max); ok && n > hi {
			return false
		}
	}
	return true
}

func scalarMatches(v any, text, want string) bool {
	if b, ok := v.(bool); ok {
		wb, err := strconv.ParseBool(want)
		return err == nil && b == wb
	}
	if v != nil && strings.EqualFold(fmt.Sprint(v), want) {
		return true
	}
	return strings.EqualFold(text, want)
}
