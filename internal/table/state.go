// Package table is the state engine behind every list view: pagination,
// sorting, search, filters and row selection for one table instance.
//
// The engine performs no I/O. Callers hand it rows and (for remote tables)
// a total count; it hands back the visible window and the state needed to
// fetch the next one.
package table

import (
	"maps"
	"slices"
)

// DefaultPageSize is used when Options leaves the page size unset.
const DefaultPageSize = 10

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Desc   bool
}

// Modes selects which concerns the caller has already applied to the rows
// it passes in. A true flag means "trust the rows as given".
type Modes struct {
	ManualPagination bool
	ManualSorting    bool
	ManualFiltering  bool
}

// Remote reports whether all three concerns are owned by the caller.
func (m Modes) Remote() bool {
	return m.ManualPagination && m.ManualSorting && m.ManualFiltering
}

// RemoteModes is the mode set for server-backed tables.
var RemoteModes = Modes{ManualPagination: true, ManualSorting: true, ManualFiltering: true}

// Options seeds a Controller.
type Options struct {
	InitialPage      int
	InitialPageSize  int
	TotalItems       int
	InitialSortBy    []SortKey
	InitialSearch    string
	InitialFilters   map[string]string
	InitialSelection IDSet
	Modes            Modes
}

// State is a snapshot of a table instance. Slices and maps inside a
// snapshot are never shared with the controller.
type State struct {
	Page           int
	PageSize       int
	TotalItems     int
	TotalPages     int
	SortBy         []SortKey
	GlobalSearch   string
	FilterBy       map[string]string
	SelectedRowIDs IDSet
	Modes          Modes
}

// TotalPages returns max(1, ceil(totalItems/pageSize)). Non-positive page
// sizes are not validated; they collapse to a single page.
func TotalPages(totalItems, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 1
	}
	return max(1, (totalItems+pageSize-1)/pageSize)
}

// Controller owns the state of one table. Setters never fail and never
// clamp; callers that compute pages are responsible for staying inside
// [1, TotalPages].
type Controller struct {
	st       State
	onChange []func(State)
}

// NewController builds a controller from opts.
func NewController(opts Options) *Controller {
	c := &Controller{}
	c.st = stateFromOptions(opts)
	return c
}

func stateFromOptions(opts Options) State {
	st := State{
		Page:           opts.InitialPage,
		PageSize:       opts.InitialPageSize,
		TotalItems:     max(0, opts.TotalItems),
		SortBy:         slices.Clone(opts.InitialSortBy),
		GlobalSearch:   opts.InitialSearch,
		FilterBy:       maps.Clone(opts.InitialFilters),
		SelectedRowIDs: maps.Clone(opts.InitialSelection),
		Modes:          opts.Modes,
	}
	if st.Page < 1 {
		st.Page = 1
	}
	if st.PageSize == 0 {
		st.PageSize = DefaultPageSize
	}
	if st.FilterBy == nil {
		st.FilterBy = map[string]string{}
	}
	st.TotalPages = TotalPages(st.TotalItems, st.PageSize)
	return st
}

// OnChange registers fn to run after every setter that changed the state.
// Remote tables use it to trigger their fetch.
func (c *Controller) OnChange(fn func(State)) {
	c.onChange = append(c.onChange, fn)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	st := c.st
	st.SortBy = slices.Clone(c.st.SortBy)
	st.FilterBy = maps.Clone(c.st.FilterBy)
	st.SelectedRowIDs = maps.Clone(c.st.SelectedRowIDs)
	return st
}

func (c *Controller) notify() {
	if len(c.onChange) == 0 {
		return
	}
	snap := c.State()
	for _, fn := range c.onChange {
		fn(snap)
	}
}

// SetPage sets the current page without bounds checks.
func (c *Controller) SetPage(n int) {
	if c.st.Page == n {
		return
	}
	c.st.Page = n
	c.notify()
}

// SetPageSize sets the page size and recomputes TotalPages. The page is
// left alone: callers changing the size reset the page to 1 themselves.
func (c *Controller) SetPageSize(n int) {
	if c.st.PageSize == n {
		return
	}
	c.st.PageSize = n
	c.st.TotalPages = TotalPages(c.st.TotalItems, n)
	c.notify()
}

// SetTotalItems updates the total row count and recomputes TotalPages.
func (c *Controller) SetTotalItems(n int) {
	if c.st.TotalItems == n {
		return
	}
	c.st.TotalItems = n
	c.st.TotalPages = TotalPages(n, c.st.PageSize)
	c.notify()
}

// SetSortBy replaces the sort sequence. Toggling lives with whoever
// handles the header click.
func (c *Controller) SetSortBy(keys []SortKey) {
	if slices.Equal(c.st.SortBy, keys) {
		return
	}
	c.st.SortBy = slices.Clone(keys)
	c.notify()
}

// SetGlobalSearch replaces the free-text search term.
func (c *Controller) SetGlobalSearch(s string) {
	if c.st.GlobalSearch == s {
		return
	}
	c.st.GlobalSearch = s
	c.notify()
}

// SetFilterBy replaces the filter map.
func (c *Controller) SetFilterBy(m map[string]string) {
	if maps.Equal(c.st.FilterBy, m) {
		return
	}
	c.st.FilterBy = maps.Clone(m)
	if c.st.FilterBy == nil {
		c.st.FilterBy = map[string]string{}
	}
	c.notify()
}

// SetSelectedRowIDs replaces the external selection set.
func (c *Controller) SetSelectedRowIDs(ids IDSet) {
	if c.st.SelectedRowIDs.Equal(ids) {
		return
	}
	c.st.SelectedRowIDs = maps.Clone(ids)
	c.notify()
}

// SetModes replaces all three mode flags.
func (c *Controller) SetModes(m Modes) {
	if c.st.Modes == m {
		return
	}
	c.st.Modes = m
	c.notify()
}

func (c *Controller) SetManualPagination(v bool) {
	m := c.st.Modes
	m.ManualPagination = v
	c.SetModes(m)
}

func (c *Controller) SetManualSorting(v bool) {
	m := c.st.Modes
	m.ManualSorting = v
	c.SetModes(m)
}

func (c *Controller) SetManualFiltering(v bool) {
	m := c.st.Modes
	m.ManualFiltering = v
	c.SetModes(m)
}

// Reset reinitializes every field from opts and clears the selection.
func (c *Controller) Reset(opts Options) {
	opts.InitialSelection = nil
	c.st = stateFromOptions(opts)
	c.notify()
}
