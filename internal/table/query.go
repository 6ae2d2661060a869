package table

import (
	"net/url"
	"strconv"
	"strings"

	"villeto/internal/filter"
)

// Query parameter names.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamSort     = "sort"
	ParamSearch   = "q"
	ParamHide     = "hide"
)

// MaxPageSize bounds page sizes requested through a query.
const MaxPageSize = 200

// ParseSort decodes "col:desc,other:asc". A bare column sorts ascending.
func ParseSort(s string) []SortKey {
	var keys []SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, dir, _ := strings.Cut(part, ":")
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		keys = append(keys, SortKey{Column: col, Desc: strings.EqualFold(strings.TrimSpace(dir), "desc")})
	}
	return keys
}

// FormatSort is the inverse of ParseSort.
func FormatSort(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		dir := "asc"
		if k.Desc {
			dir = "desc"
		}
		parts[i] = k.Column + ":" + dir
	}
	return strings.Join(parts, ",")
}

// DecodeQuery layers the state carried by q over base. Malformed numbers
// keep the base value; filter keys replace the base filters when present.
func DecodeQuery(q url.Values, base Options) Options {
	opts := base
	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil && n >= 1 {
		opts.InitialPage = n
	}
	if n, err := strconv.Atoi(q.Get(ParamPageSize)); err == nil && n >= 1 {
		opts.InitialPageSize = min(n, MaxPageSize)
	}
	if q.Has(ParamSort) {
		opts.InitialSortBy = ParseSort(q.Get(ParamSort))
	}
	if q.Has(ParamSearch) {
		opts.InitialSearch = strings.TrimSpace(q.Get(ParamSearch))
	}
	if f := filter.FromQuery(q); len(f) > 0 {
		opts.InitialFilters = f
	}
	return opts
}

// HiddenFromQuery returns the column keys listed in the hide parameter.
func HiddenFromQuery(q url.Values) []string {
	var out []string
	for _, v := range q[ParamHide] {
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				out = append(out, key)
			}
		}
	}
	return out
}

// Query encodes the navigable parts of the state. Selection and totals are
// not carried. The sort is always present so that a cleared sort does not
// fall back to the default on the next request.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set(ParamPage, strconv.Itoa(s.Page))
	q.Set(ParamPageSize, strconv.Itoa(s.PageSize))
	q.Set(ParamSort, FormatSort(s.SortBy))
	if s.GlobalSearch != "" {
		q.Set(ParamSearch, s.GlobalSearch)
	}
	for k, v := range s.FilterBy {
		q.Set(k, v)
	}
	return q
}

// Query is the state query plus the hidden columns. hide is always set,
// empty when every column shows, so the visibility choice outlives links
// that drop other parameters.
func (t *Table[R]) Query() url.Values {
	q := t.State().Query()
	q.Set(ParamHide, strings.Join(t.HiddenColumns(), ","))
	return q
}
