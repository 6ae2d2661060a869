package grid

import (
	"bytes"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"testing"

	"villeto/internal/filter"
	"villeto/internal/table"
	"villeto/internal/toolbar"
)

type item struct {
	id   string
	name string
	qty  int
}

var itemColumns = []table.Column[item]{
	{Key: "name", Header: "Name", Cell: func(i item) string { return i.name }, Sortable: true},
	{Key: "qty", Header: "Qty", Cell: func(i item) string { return strconv.Itoa(i.qty) }, Value: func(i item) any { return i.qty }, Sortable: true, Hideable: true},
	{Key: "note", Header: "Note", Cell: func(item) string { return "-" }, Hideable: true},
}

func items(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: "i" + strconv.Itoa(i), name: "Item " + strconv.Itoa(i), qty: i}
	}
	return out
}

func newTable(opts table.Options, hidden ...string) *table.Table[item] {
	return table.New(table.Config[item]{
		Columns: itemColumns,
		RowID:   func(i item) string { return i.id },
		Options: opts,
		Hidden:  hidden,
	})
}

func TestNextSortCycle(t *testing.T) {
	var sort []table.SortKey
	want := [][]table.SortKey{
		{{Column: "name"}},
		{{Column: "name", Desc: true}},
		nil,
		{{Column: "name"}},
	}
	for i, w := range want {
		sort = NextSort(sort, "name")
		if !slices.Equal(sort, w) {
			t.Fatalf("click %d: %v, want %v", i+1, sort, w)
		}
	}
	if got := NextSort([]table.SortKey{{Column: "qty", Desc: true}}, "name"); !slices.Equal(got, []table.SortKey{{Column: "name"}}) {
		t.Fatalf("other column: %v", got)
	}
}

func TestBuildHeaders(t *testing.T) {
	tbl := newTable(table.Options{InitialSortBy: []table.SortKey{{Column: "qty", Desc: true}, {Column: "name"}}}, "note")
	page := tbl.Sync(items(3))
	v := Build(Source[item]{Name: "items", Endpoint: "/ui/items", Table: tbl, Page: page})

	if len(v.Headers) != 2 {
		t.Fatalf("headers = %+v", v.Headers)
	}
	qty := v.Headers[1]
	if qty.Direction != "desc" || qty.Priority != 1 {
		t.Fatalf("qty header = %+v", qty)
	}
	u, err := url.Parse(qty.SortURL)
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/ui/items" || u.Query().Get("sort") != "" || !u.Query().Has("sort") || u.Query().Get("page") != "1" {
		t.Fatalf("qty sort url = %s", qty.SortURL)
	}
	if v.Headers[0].Direction != "asc" || v.Headers[0].Priority != 2 {
		t.Fatalf("name header = %+v", v.Headers[0])
	}
	if got := v.Rows[0].Cells[0].Text; got != "Item 2" {
		t.Fatalf("first cell = %q", got)
	}
}

func TestBuildEmptyAndLoading(t *testing.T) {
	tbl := newTable(table.Options{})
	page := tbl.Sync(nil)

	v := Build(Source[item]{Name: "items", Table: tbl, Page: page})
	if !v.Empty || v.EmptyMessage != DefaultEmptyMessage {
		t.Fatalf("empty view = %+v", v)
	}
	v = Build(Source[item]{Name: "items", Table: tbl, Page: page, Loading: true, EmptyMessage: "Nothing yet"})
	if v.Empty || !v.Loading {
		t.Fatalf("loading view: empty=%v loading=%v", v.Empty, v.Loading)
	}
}

func TestBuildPagerLinks(t *testing.T) {
	tbl := newTable(table.Options{InitialPage: 10, InitialPageSize: 5})
	page := tbl.Sync(items(100))
	v := Build(Source[item]{Name: "items", Endpoint: "/ui/items", Table: tbl, Page: page})

	var got []string
	for _, p := range v.Pages {
		if p.Ellipsis {
			got = append(got, "…")
			continue
		}
		got = append(got, strconv.Itoa(p.Page))
	}
	want := []string{"1", "…", "8", "9", "10", "11", "12", "…", "20"}
	if !slices.Equal(got, want) {
		t.Fatalf("pages = %v, want %v", got, want)
	}
	if !strings.Contains(v.PreviousURL, "page=9") || !strings.Contains(v.NextURL, "page=11") {
		t.Fatalf("prev=%s next=%s", v.PreviousURL, v.NextURL)
	}
}

func TestBuildSelection(t *testing.T) {
	tbl := newTable(table.Options{InitialSelection: table.NewIDSet("i1", "elsewhere")})
	page := tbl.Sync(items(3))
	v := Build(Source[item]{Name: "items", Table: tbl, Page: page, Selectable: true, SelectURL: "/ui/items/select"})
	if !v.Rows[1].Selected || v.Rows[0].Selected {
		t.Fatalf("rows = %+v", v.Rows)
	}
	if v.Selected != 2 || v.AllSelected {
		t.Fatalf("selected=%d all=%v", v.Selected, v.AllSelected)
	}
	if !strings.HasPrefix(v.SelectURL, "/ui/items/select?") {
		t.Fatalf("select url = %s", v.SelectURL)
	}
}

func TestColumnLinksToggleHide(t *testing.T) {
	tbl := newTable(table.Options{}, "note")
	page := tbl.Sync(items(1))
	v := Build(Source[item]{Name: "items", Endpoint: "/ui/items", Table: tbl, Page: page})
	if len(v.Columns) != 2 {
		t.Fatalf("columns = %+v", v.Columns)
	}
	qty, _ := url.Parse(v.Columns[0].URL)
	if got := qty.Query().Get("hide"); got != "note,qty" {
		t.Fatalf("hiding qty -> %q", got)
	}
	note, _ := url.Parse(v.Columns[1].URL)
	if hide, ok := note.Query()["hide"]; !ok || hide[0] != "" {
		t.Fatalf("showing note should keep an empty hide: %s", v.Columns[1].URL)
	}
	search, _ := url.Parse(v.SearchURL)
	if got := search.Query().Get("hide"); got != "note" {
		t.Fatalf("search url hide = %q, want note", got)
	}
}

func TestRendererTable(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	tbl := newTable(table.Options{InitialPageSize: 2, InitialSelection: table.NewIDSet("i0")})
	page := tbl.Sync(items(5))
	form := filter.NewForm([]filter.Descriptor{{Name: "name", Label: "Name", Kind: filter.KindText}}, nil)
	bar := toolbar.Compose(toolbar.Config{
		Filters:     1,
		Columns:     toolbar.Columns(tbl),
		Selected:    1,
		BulkActions: []toolbar.Action{{Name: "archive", Label: "Archive", URL: "/ui/items/bulk/archive"}},
		MountID:     "table-toolbar",
	}, toolbar.Mounts("table-toolbar"))

	v := Build(Source[item]{Name: "items", Endpoint: "/ui/items", Table: tbl, Page: page, Toolbar: bar, Filters: form, Selectable: true, SelectURL: "/ui/items/select"})
	var buf bytes.Buffer
	if err := r.Table(&buf, v); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`id="items-table"`,
		`hx-swap-oob="innerHTML:#table-toolbar"`,
		`1 selected`,
		`name="filters[name]"`,
		`data-id="i0" class="selected"`,
		`Item 1`,
		`aria-current="page"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Item 2") {
		t.Errorf("rendered a row from page 2")
	}
}

func TestRendererInlineToolbarAndEmpty(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	tbl := newTable(table.Options{})
	page := tbl.Sync(nil)
	v := Build(Source[item]{Name: "items", Table: tbl, Page: page, Toolbar: toolbar.Compose(toolbar.Config{MountID: "missing"}, toolbar.Mounts()), EmptyMessage: "No items match."})
	var buf bytes.Buffer
	if err := r.Table(&buf, v); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "hx-swap-oob") {
		t.Errorf("toolbar should render inline")
	}
	if !strings.Contains(out, "No items match.") {
		t.Errorf("empty message missing")
	}
}

func TestRenderText(t *testing.T) {
	tbl := newTable(table.Options{InitialPageSize: 2, InitialSortBy: []table.SortKey{{Column: "name"}}})
	page := tbl.Sync(items(3))
	v := Build(Source[item]{Name: "items", Table: tbl, Page: page})

	var buf bytes.Buffer
	if err := RenderText(&buf, v, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Name ▲", "Qty", "Item 0", "Item 1", "page 1 of 2 (3 items)"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestPadTruncates(t *testing.T) {
	if got := pad("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("pad = %q", got)
	}
	if got := pad("ab", 4); got != "ab  " {
		t.Fatalf("pad = %q", got)
	}
}
