package table

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func render(items []PageItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		switch {
		case it.Ellipsis:
			parts[i] = "…"
		case it.Current:
			parts[i] = "[" + strconv.Itoa(it.Page) + "]"
		default:
			parts[i] = strconv.Itoa(it.Page)
		}
	}
	return strings.Join(parts, " ")
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           string
	}{
		{10, 20, "1 … 8 9 [10] 11 12 … 20"},
		{1, 20, "[1] 2 3 … 20"},
		{3, 20, "1 2 [3] 4 5 … 20"},
		{4, 20, "1 2 3 [4] 5 6 … 20"},
		{5, 20, "1 … 3 4 [5] 6 7 … 20"},
		{20, 20, "1 … 18 19 [20]"},
		{17, 20, "1 … 15 16 [17] 18 19 20"},
		{1, 1, "[1]"},
		{2, 3, "1 [2] 3"},
		{1, 0, "[1]"},
		{7, 5, "1 … 3 4 5"},
		{0, 5, "1 2 3 … 5"},
	}
	for _, tc := range cases {
		if got := render(PageWindow(tc.current, tc.total)); got != tc.want {
			t.Errorf("PageWindow(%d, %d) = %q, want %q", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestPagerBounds(t *testing.T) {
	first := NewPager(State{Page: 1, TotalPages: 4})
	if first.HasPrevious || !first.HasNext || first.Previous() != 1 || first.Next() != 2 {
		t.Fatalf("first = %+v", first)
	}
	last := NewPager(State{Page: 4, TotalPages: 4})
	if !last.HasPrevious || last.HasNext || last.Next() != 4 {
		t.Fatalf("last = %+v", last)
	}
	only := NewPager(State{Page: 1, TotalPages: 1})
	if only.HasPrevious || only.HasNext {
		t.Fatalf("single page = %+v", only)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	c := NewController(Options{
		InitialPage:     3,
		InitialPageSize: 25,
		InitialSortBy:   []SortKey{{Column: "amount", Desc: true}, {Column: "spent"}},
		InitialSearch:   "taxi",
		InitialFilters:  map[string]string{"filters[status]": "approved", "dateRanges[spent][startDate]": "2024-01-01"},
	})
	st := c.State()
	back := NewController(DecodeQuery(st.Query(), Options{})).State()

	if back.Page != 3 || back.PageSize != 25 || back.GlobalSearch != "taxi" {
		t.Fatalf("scalars = %+v", back)
	}
	if !slices.Equal(back.SortBy, st.SortBy) {
		t.Fatalf("sort = %v, want %v", back.SortBy, st.SortBy)
	}
	if !maps.Equal(back.FilterBy, st.FilterBy) {
		t.Fatalf("filters = %v, want %v", back.FilterBy, st.FilterBy)
	}
}

func TestDecodeQueryKeepsBaseOnBadInput(t *testing.T) {
	base := Options{InitialPage: 2, InitialPageSize: 10, Modes: RemoteModes}
	q := url.Values{"page": {"zero"}, "pageSize": {"-4"}, "unrelated": {"x"}}
	got := DecodeQuery(q, base)
	if got.InitialPage != 2 || got.InitialPageSize != 10 || !got.Modes.Remote() {
		t.Fatalf("opts = %+v", got)
	}
	big := DecodeQuery(url.Values{"pageSize": {"100000"}}, base)
	if big.InitialPageSize != MaxPageSize {
		t.Fatalf("page size = %d, want %d", big.InitialPageSize, MaxPageSize)
	}
}

func TestParseSort(t *testing.T) {
	got := ParseSort(" amount:DESC, ,name,:asc,spent:asc")
	want := []SortKey{{Column: "amount", Desc: true}, {Column: "name"}, {Column: "spent"}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if FormatSort(want) != "amount:desc,name:asc,spent:asc" {
		t.Fatalf("format = %s", FormatSort(want))
	}
}

func TestTableQueryCarriesHiddenColumns(t *testing.T) {
	tbl := New(Config[expense]{Columns: expenseColumns, RowID: expenseID, Hidden: []string{"approved", "status"}})
	q := tbl.Query()
	if got := HiddenFromQuery(q); !slices.Equal(got, []string{"status", "approved"}) {
		t.Fatalf("hidden = %v", got)
	}

	shown := New(Config[expense]{Columns: expenseColumns, RowID: expenseID}).Query()
	if !shown.Has(ParamHide) || shown.Get(ParamHide) != "" {
		t.Fatalf("query %q should carry an empty hide", shown.Encode())
	}
}

func TestQueryKeepsClearedSort(t *testing.T) {
	base := Options{InitialSortBy: []SortKey{{Column: "spent", Desc: true}}}
	cleared := NewController(Options{}).State().Query()
	if !cleared.Has(ParamSort) {
		t.Fatalf("query %q lacks sort", cleared.Encode())
	}
	if got := DecodeQuery(cleared, base).InitialSortBy; len(got) != 0 {
		t.Fatalf("sort = %v, want none", got)
	}
}
