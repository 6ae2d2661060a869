package table

import "slices"

// Config describes one table instance.
type Config[R any] struct {
	Columns []Column[R]
	// RowID must be pure and stable across re-fetches.
	RowID   func(R) string
	Options Options
	// Match overrides the local filter matcher.
	Match Matcher[R]
	// Hidden lists column keys hidden at start. Only hideable columns are
	// honored.
	Hidden []string
}

// Page is the result of one Sync.
type Page[R any] struct {
	Rows       []R
	TotalItems int
	TotalPages int
	Selection  RowSelection
	State      State
}

// Table binds a controller, its columns and the selection reconciler.
type Table[R any] struct {
	ctrl   *Controller
	cols   []Column[R]
	rowID  func(R) string
	match  Matcher[R]
	hidden map[string]bool
	recon  *Reconciler[R]
	rows   []R
}

// New creates a table from cfg.
func New[R any](cfg Config[R]) *Table[R] {
	t := &Table[R]{
		ctrl:   NewController(cfg.Options),
		cols:   slices.Clone(cfg.Columns),
		rowID:  cfg.RowID,
		match:  cfg.Match,
		hidden: map[string]bool{},
	}
	for _, key := range cfg.Hidden {
		t.SetColumnVisible(key, false)
	}
	t.recon = NewReconciler(t.rowID,
		func() IDSet { return t.ctrl.st.SelectedRowIDs },
		t.ctrl.SetSelectedRowIDs,
	)
	return t
}

func (t *Table[R]) Controller() *Controller { return t.ctrl }
func (t *Table[R]) State() State            { return t.ctrl.State() }
func (t *Table[R]) Columns() []Column[R]    { return t.cols }
func (t *Table[R]) RowID(row R) string      { return t.rowID(row) }

// VisibleColumns returns the columns not hidden, in declaration order.
func (t *Table[R]) VisibleColumns() []Column[R] {
	out := make([]Column[R], 0, len(t.cols))
	for _, c := range t.cols {
		if !t.hidden[c.Key] {
			out = append(out, c)
		}
	}
	return out
}

// HideableColumns returns the columns the user may toggle.
func (t *Table[R]) HideableColumns() []Column[R] {
	var out []Column[R]
	for _, c := range t.cols {
		if c.Hideable {
			out = append(out, c)
		}
	}
	return out
}

// SetColumnVisible shows or hides a hideable column. It reports whether
// the key named a hideable column.
func (t *Table[R]) SetColumnVisible(key string, visible bool) bool {
	for _, c := range t.cols {
		if c.Key != key {
			continue
		}
		if !c.Hideable {
			return false
		}
		if visible {
			delete(t.hidden, key)
		} else {
			t.hidden[key] = true
		}
		return true
	}
	return false
}

func (t *Table[R]) ColumnVisible(key string) bool { return !t.hidden[key] }

// HiddenColumns returns the hidden column keys in declaration order.
func (t *Table[R]) HiddenColumns() []string {
	var out []string
	for _, c := range t.cols {
		if t.hidden[c.Key] {
			out = append(out, c.Key)
		}
	}
	return out
}

// Sync runs the pipeline over rows and reconciles the selection against
// the resulting window. For remote tables rows is the fetched page and the
// total comes from the controller; for local tables rows is the full set.
func (t *Table[R]) Sync(rows []R) Page[R] {
	st := t.ctrl.State()
	window, total := NewPipeline(t.cols, st.Modes, t.match).Run(rows, st)
	if !st.Modes.ManualPagination {
		t.ctrl.SetTotalItems(total)
	}
	t.rows = window
	t.recon.Reconcile(window)
	st = t.ctrl.State()
	return Page[R]{
		Rows:       window,
		TotalItems: st.TotalItems,
		TotalPages: st.TotalPages,
		Selection:  t.recon.Internal(),
		State:      st,
	}
}

// Rows returns the rows of the last Sync.
func (t *Table[R]) Rows() []R { return t.rows }

// Selection returns the index selection of the rendered rows.
func (t *Table[R]) Selection() RowSelection { return t.recon.Internal() }

// SelectedIDs returns the external selection across all pages.
func (t *Table[R]) SelectedIDs() IDSet { return t.ctrl.st.SelectedRowIDs }

// ToggleRow selects or clears a rendered row by index.
func (t *Table[R]) ToggleRow(index int, selected bool) {
	t.recon.Toggle(t.rows, index, selected)
}

// ToggleRowByID selects or clears a rendered row by id. It reports whether
// the id is on the current page.
func (t *Table[R]) ToggleRowByID(id string, selected bool) bool {
	for i, row := range t.rows {
		if t.rowID(row) == id {
			t.recon.Toggle(t.rows, i, selected)
			return true
		}
	}
	return false
}

// TogglePage selects or clears every rendered row.
func (t *Table[R]) TogglePage(selected bool) {
	t.recon.ToggleAll(t.rows, selected)
}

// ClearSelection empties the selection on every page.
func (t *Table[R]) ClearSelection() {
	t.ctrl.SetSelectedRowIDs(IDSet{})
	t.recon.Reconcile(t.rows)
}
