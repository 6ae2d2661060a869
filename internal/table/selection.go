package table

import "slices"

// RowSelection is the index-based selection of the rows currently
// rendered. Only selected indexes are stored.
type RowSelection map[int]bool

// Equal compares the selected indexes of r and o.
func (r RowSelection) Equal(o RowSelection) bool {
	return slices.Equal(r.Indexes(), o.Indexes())
}

// Indexes returns the selected indexes in ascending order.
func (r RowSelection) Indexes() []int {
	out := make([]int, 0, len(r))
	for i, on := range r {
		if on {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

func (r RowSelection) clone() RowSelection {
	out := make(RowSelection, len(r))
	for i, on := range r {
		if on {
			out[i] = true
		}
	}
	return out
}

// SyncInternal derives the index selection for rows from the external id
// set. It returns prev and false when the result is structurally equal,
// which is what keeps the two representations from chasing each other.
func SyncInternal[R any](prev RowSelection, rows []R, ids IDSet, rowID func(R) string) (RowSelection, bool) {
	next := RowSelection{}
	for i, row := range rows {
		if ids.Has(rowID(row)) {
			next[i] = true
		}
	}
	if next.Equal(prev) {
		return prev, false
	}
	return next, true
}

// SyncExternal rebuilds the external id set from the index selection.
// Ids of rows on the current page follow sel; ids of rows elsewhere are
// carried over from prev untouched. Indexes with no matching row are
// dropped. It returns prev and false when the sorted id keys match.
func SyncExternal[R any](prev IDSet, sel RowSelection, rows []R, rowID func(R) string) (IDSet, bool) {
	onPage := make(map[string]struct{}, len(rows))
	next := IDSet{}
	for i, row := range rows {
		id := rowID(row)
		if id == "" {
			continue
		}
		onPage[id] = struct{}{}
		if sel[i] {
			next[id] = struct{}{}
		}
	}
	for id := range prev {
		if _, ok := onPage[id]; !ok {
			next[id] = struct{}{}
		}
	}
	if next.Key() == prev.Key() {
		return prev, false
	}
	return next, true
}

// Reconciler keeps an externally owned IDSet and the internal RowSelection
// of the rendered rows equivalent. Each Reconcile runs external→internal
// then internal→external; the external setter is only called when the id
// set actually changes.
type Reconciler[R any] struct {
	rowID    func(R) string
	get      func() IDSet
	set      func(IDSet)
	internal RowSelection
}

// NewReconciler wires a reconciler to the external selection accessors.
func NewReconciler[R any](rowID func(R) string, get func() IDSet, set func(IDSet)) *Reconciler[R] {
	return &Reconciler[R]{rowID: rowID, get: get, set: set, internal: RowSelection{}}
}

// Internal returns a copy of the current index selection.
func (r *Reconciler[R]) Internal() RowSelection {
	return r.internal.clone()
}

// Reconcile runs both passes against the rendered rows and reports which
// side was replaced.
func (r *Reconciler[R]) Reconcile(rows []R) (internalChanged, externalChanged bool) {
	r.internal, internalChanged = SyncInternal(r.internal, rows, r.get(), r.rowID)
	externalChanged = r.push(rows)
	return internalChanged, externalChanged
}

// Toggle selects or clears the row at index and propagates the change
// outward. Out-of-range indexes are ignored.
func (r *Reconciler[R]) Toggle(rows []R, index int, selected bool) {
	if index < 0 || index >= len(rows) {
		return
	}
	next := r.internal.clone()
	if selected {
		next[index] = true
	} else {
		delete(next, index)
	}
	r.internal = next
	r.push(rows)
}

// ToggleAll selects or clears every rendered row.
func (r *Reconciler[R]) ToggleAll(rows []R, selected bool) {
	next := RowSelection{}
	if selected {
		for i := range rows {
			next[i] = true
		}
	}
	r.internal = next
	r.push(rows)
}

func (r *Reconciler[R]) push(rows []R) bool {
	next, changed := SyncExternal(r.get(), r.internal, rows, r.rowID)
	if changed {
		r.set(next)
	}
	return changed
}
