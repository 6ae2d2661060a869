package table

// PageItem is one slot of the pager: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// PageWindow returns the pages shown around current: the window
// [current-2, current+2] clipped to [1, total], with the first and last
// pages added when outside it and an ellipsis wherever numbers are skipped.
// A current page outside [1, total] anchors the window at the nearest bound
// and no slot is marked current.
func PageWindow(current, total int) []PageItem {
	if total < 1 {
		total = 1
	}
	anchor := min(max(current, 1), total)
	start := max(1, anchor-2)
	end := min(total, anchor+2)

	var out []PageItem
	if start > 1 {
		out = append(out, PageItem{Page: 1})
		if start > 2 {
			out = append(out, PageItem{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		out = append(out, PageItem{Page: p, Current: p == current})
	}
	if end < total {
		if end < total-1 {
			out = append(out, PageItem{Ellipsis: true})
		}
		out = append(out, PageItem{Page: total})
	}
	return out
}

// Pager is the pagination strip of a state.
type Pager struct {
	Page        int
	TotalPages  int
	TotalItems  int
	PageSize    int
	Items       []PageItem
	HasPrevious bool
	HasNext     bool
}

// NewPager builds the strip for st.
func NewPager(st State) Pager {
	return Pager{
		Page:        st.Page,
		TotalPages:  st.TotalPages,
		TotalItems:  st.TotalItems,
		PageSize:    st.PageSize,
		Items:       PageWindow(st.Page, st.TotalPages),
		HasPrevious: st.Page > 1,
		HasNext:     st.Page < st.TotalPages,
	}
}

// Previous and Next are the neighbouring page numbers.
func (p Pager) Previous() int { return max(1, p.Page-1) }
func (p Pager) Next() int     { return min(p.TotalPages, p.Page+1) }
