// Package grid turns a synced table into a render model and writes it as
// HTML or as a terminal table.
package grid

import (
	"net/url"
	"strconv"
	"strings"

	"villeto/internal/filter"
	"villeto/internal/table"
	"villeto/internal/toolbar"
)

// DefaultEmptyMessage is shown when a table has no rows.
const DefaultEmptyMessage = "No results."

// Header is one column header.
type Header struct {
	Key       string
	Label     string
	Sortable  bool
	Direction string
	// Priority is the 1-based position of the column in a multi-key sort.
	Priority int
	// SortURL reloads the table with the next sort for this column.
	SortURL string
}

type Cell struct {
	Key  string
	Text string
}

type Row struct {
	ID       string
	Index    int
	Cells    []Cell
	Selected bool
}

// PageLink is a pager slot with its target.
type PageLink struct {
	table.PageItem
	URL string
}

// Link is a labelled target.
type Link struct {
	Name  string
	Label string
	URL   string
}

// ColumnLink toggles one hideable column.
type ColumnLink struct {
	Key     string
	Label   string
	Visible bool
	URL     string
}

// View is everything a renderer needs for one table.
type View struct {
	Name         string
	Endpoint     string
	Query        string
	Headers      []Header
	Rows         []Row
	Loading      bool
	Empty        bool
	EmptyMessage string
	Selectable   bool
	AllSelected  bool
	Selected     int
	Pager        table.Pager
	Pages        []PageLink
	PreviousURL  string
	NextURL      string
	Toolbar      toolbar.Bar
	Filters      []filter.Field
	FilterOpen   bool
	SearchURL    string
	FilterURL    string
	SelectURL    string
	Columns      []ColumnLink
	Exports      []Link
}

// Source feeds Build.
type Source[R any] struct {
	// Name identifies the table in element ids and selection requests.
	Name     string
	Endpoint string
	Table    *table.Table[R]
	Page     table.Page[R]
	Loading  bool
	// Selectable adds the selection column.
	Selectable   bool
	EmptyMessage string
	Toolbar      toolbar.Bar
	Filters      *filter.Form
	// SelectURL receives row and page toggles.
	SelectURL string
}

// Build assembles the view of the page last synced into src.Table.
func Build[R any](src Source[R]) View {
	t := src.Table
	st := src.Page.State
	base := t.Query()

	v := View{
		Name:         src.Name,
		Endpoint:     src.Endpoint,
		Query:        base.Encode(),
		Loading:      src.Loading,
		EmptyMessage: src.EmptyMessage,
		Selectable:   src.Selectable,
		Selected:     st.SelectedRowIDs.Len(),
		Pager:        table.NewPager(st),
		Toolbar:      src.Toolbar,
	}
	if v.EmptyMessage == "" {
		v.EmptyMessage = DefaultEmptyMessage
	}
	if src.Filters != nil {
		v.Filters = src.Filters.Fields()
		v.FilterOpen = src.Filters.IsOpen()
	}

	cols := t.VisibleColumns()
	for _, c := range cols {
		h := Header{Key: c.Key, Label: c.Header, Sortable: c.Sortable}
		if h.Label == "" {
			h.Label = c.Key
		}
		for i, k := range st.SortBy {
			if k.Column == c.Key {
				h.Priority = i + 1
				h.Direction = "asc"
				if k.Desc {
					h.Direction = "desc"
				}
				break
			}
		}
		if c.Sortable {
			q := clone(base)
			q.Set(table.ParamSort, table.FormatSort(NextSort(st.SortBy, c.Key)))
			q.Set(table.ParamPage, "1")
			h.SortURL = link(src.Endpoint, q)
		}
		v.Headers = append(v.Headers, h)
	}

	v.Rows = make([]Row, 0, len(src.Page.Rows))
	for i, r := range src.Page.Rows {
		row := Row{ID: t.RowID(r), Index: i, Selected: src.Page.Selection[i]}
		for _, c := range cols {
			text := ""
			if c.Cell != nil {
				text = c.Cell(r)
			}
			row.Cells = append(row.Cells, Cell{Key: c.Key, Text: text})
		}
		v.Rows = append(v.Rows, row)
	}
	v.Empty = len(v.Rows) == 0 && !v.Loading
	v.AllSelected = len(v.Rows) > 0 && len(src.Page.Selection.Indexes()) == len(v.Rows)

	v.SearchURL = link(src.Endpoint, without(base, func(k string) bool {
		return k == table.ParamSearch || k == table.ParamPage
	}))
	v.FilterURL = link(src.Endpoint, without(base, func(k string) bool {
		return filter.IsKey(k) || k == table.ParamPage
	}))
	if src.SelectURL != "" {
		v.SelectURL = link(src.SelectURL, base)
	}
	v.Columns = columnLinks(src, base)
	if it, ok := src.Toolbar.Item(toolbar.KindExport); ok {
		for _, a := range it.Actions {
			q := clone(base)
			q.Del(table.ParamPage)
			v.Exports = append(v.Exports, Link{Name: a.Name, Label: a.Label, URL: link(a.URL, q)})
		}
	}

	for _, it := range v.Pager.Items {
		pl := PageLink{PageItem: it}
		if !it.Ellipsis {
			pl.URL = pageURL(src.Endpoint, base, it.Page)
		}
		v.Pages = append(v.Pages, pl)
	}
	if v.Pager.HasPrevious {
		v.PreviousURL = pageURL(src.Endpoint, base, v.Pager.Previous())
	}
	if v.Pager.HasNext {
		v.NextURL = pageURL(src.Endpoint, base, v.Pager.Next())
	}
	return v
}

// NextSort cycles the clicked column through ascending, descending and
// unsorted. The result sorts by that column alone.
func NextSort(current []table.SortKey, key string) []table.SortKey {
	for _, k := range current {
		if k.Column != key {
			continue
		}
		if !k.Desc {
			return []table.SortKey{{Column: key, Desc: true}}
		}
		return nil
	}
	return []table.SortKey{{Column: key}}
}

func columnLinks[R any](src Source[R], base url.Values) []ColumnLink {
	t := src.Table
	var out []ColumnLink
	for _, c := range t.HideableColumns() {
		visible := t.ColumnVisible(c.Key)
		var hidden []string
		for _, key := range t.HiddenColumns() {
			if key != c.Key {
				hidden = append(hidden, key)
			}
		}
		if visible {
			hidden = append(hidden, c.Key)
		}
		q := clone(base)
		q.Set(table.ParamHide, strings.Join(hidden, ","))
		label := c.Header
		if label == "" {
			label = c.Key
		}
		out = append(out, ColumnLink{Key: c.Key, Label: label, Visible: visible, URL: link(src.Endpoint, q)})
	}
	return out
}

func without(q url.Values, drop func(string) bool) url.Values {
	out := url.Values{}
	for k, v := range q {
		if !drop(k) {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

func pageURL(endpoint string, base url.Values, page int) string {
	q := clone(base)
	q.Set(table.ParamPage, strconv.Itoa(page))
	return link(endpoint, q)
}

func clone(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func link(endpoint string, q url.Values) string {
	if len(q) == 0 {
		return endpoint
	}
	if strings.Contains(endpoint, "?") {
		return endpoint + "&" + q.Encode()
	}
	return endpoint + "?" + q.Encode()
}
