// Package toolbar composes the action bar shown above a table.
package toolbar

import "villeto/internal/table"

// Kind identifies a bar item.
type Kind string

const (
	KindAction  Kind = "action"
	KindSearch  Kind = "search"
	KindFilter  Kind = "filter"
	KindColumns Kind = "columns"
	KindExport  Kind = "export"
	KindBulk    Kind = "bulk"
)

// Action is a button the caller supplies.
type Action struct {
	Name    string
	Label   string
	URL     string
	Method  string
	Confirm string
}

// ColumnToggle is one entry of the column-visibility menu.
type ColumnToggle struct {
	Key     string
	Label   string
	Visible bool
}

// Config lists what the caller wants on the bar.
type Config struct {
	Action            *Action
	DisableSearch     bool
	Search            string
	SearchPlaceholder string
	// Filters is the number of filter descriptors; zero hides the trigger.
	Filters       int
	ActiveFilters int
	FilterOpen    bool
	Columns       []ColumnToggle
	Export        []Action
	Selected      int
	BulkActions   []Action
	// MountID names the page region the bar should move into.
	MountID string
}

// Item is one element of the bar. Only the members matching Kind are set.
type Item struct {
	Kind          Kind
	Action        *Action
	Search        string
	Placeholder   string
	ActiveFilters int
	FilterOpen    bool
	Columns       []ColumnToggle
	Actions       []Action
	Selected      int
}

// Placement says where the bar renders. An empty MountID means inline.
type Placement struct {
	MountID string
}

func (p Placement) Inline() bool { return p.MountID == "" }

// Bar is the composed action bar.
type Bar struct {
	Items     []Item
	Placement Placement
}

// Has reports whether the bar carries an item of kind k.
func (b Bar) Has(k Kind) bool {
	_, ok := b.Item(k)
	return ok
}

// Item returns the item of kind k.
func (b Bar) Item(k Kind) (Item, bool) {
	for _, it := range b.Items {
		if it.Kind == k {
			return it, true
		}
	}
	return Item{}, false
}

// MountLookup reports whether the surrounding page has a mount point.
type MountLookup func(id string) bool

// Compose builds the bar in its fixed order: action, search, filter,
// columns, export, bulk. Placement moves the bar into the configured
// mount when lookup knows it and never affects table state.
func Compose(cfg Config, lookup MountLookup) Bar {
	var b Bar
	if cfg.Action != nil {
		a := *cfg.Action
		b.Items = append(b.Items, Item{Kind: KindAction, Action: &a})
	}
	if !cfg.DisableSearch {
		b.Items = append(b.Items, Item{Kind: KindSearch, Search: cfg.Search, Placeholder: cfg.SearchPlaceholder})
	}
	if cfg.Filters > 0 {
		b.Items = append(b.Items, Item{Kind: KindFilter, ActiveFilters: cfg.ActiveFilters, FilterOpen: cfg.FilterOpen})
	}
	if len(cfg.Columns) > 0 {
		b.Items = append(b.Items, Item{Kind: KindColumns, Columns: cfg.Columns})
	}
	if len(cfg.Export) > 0 {
		b.Items = append(b.Items, Item{Kind: KindExport, Actions: cfg.Export})
	}
	if cfg.Selected > 0 {
		b.Items = append(b.Items, Item{Kind: KindBulk, Selected: cfg.Selected, Actions: cfg.BulkActions})
	}
	if cfg.MountID != "" && lookup != nil && lookup(cfg.MountID) {
		b.Placement.MountID = cfg.MountID
	}
	return b
}

// Columns lists the hideable columns of t with their visibility.
func Columns[R any](t *table.Table[R]) []ColumnToggle {
	var out []ColumnToggle
	for _, c := range t.HideableColumns() {
		label := c.Header
		if label == "" {
			label = c.Key
		}
		out = append(out, ColumnToggle{Key: c.Key, Label: label, Visible: t.ColumnVisible(c.Key)})
	}
	return out
}

// Mounts returns a lookup over a fixed set of mount ids.
func Mounts(ids ...string) MountLookup {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}
