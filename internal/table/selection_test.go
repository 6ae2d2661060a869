package table

import (
	"slices"
	"strconv"
	"testing"
)

type row struct{ id string }

func rowID(r row) string { return r.id }

func rowsOf(ids ...string) []row {
	out := make([]row, len(ids))
	for i, id := range ids {
		out[i] = row{id: id}
	}
	return out
}

// harness holds an external selection and counts writes to it.
type harness struct {
	ids    IDSet
	writes int
}

func (h *harness) get() IDSet { return h.ids }
func (h *harness) set(ids IDSet) { h.ids = ids; h.writes++ }

func TestSyncInternalNoChange(t *testing.T) {
	rows := rowsOf("a", "b", "c")
	prev := RowSelection{1: true}
	next, changed := SyncInternal(prev, rows, NewIDSet("b", "zzz"), rowID)
	if changed {
		t.Fatalf("unexpected change: %v", next)
	}
}

func TestSyncExternalKeepsOffPageIDs(t *testing.T) {
	rows := rowsOf("a", "b")
	next, changed := SyncExternal(NewIDSet("x", "a"), RowSelection{1: true}, rows, rowID)
	if !changed {
		t.Fatalf("expected change")
	}
	if got := next.Key(); got != "b,x" {
		t.Fatalf("ids = %s, want b,x", got)
	}
}

func TestSyncExternalDropsUnresolvedIndexes(t *testing.T) {
	rows := rowsOf("a")
	next, changed := SyncExternal(IDSet{}, RowSelection{0: true, 5: true}, rows, rowID)
	if !changed || next.Key() != "a" {
		t.Fatalf("ids = %s changed=%v", next.Key(), changed)
	}
}

func TestReconcileConvergesWithoutWrites(t *testing.T) {
	h := &harness{ids: NewIDSet("b", "elsewhere")}
	r := NewReconciler(rowID, h.get, h.set)
	rows := rowsOf("a", "b", "c")

	internal, external := r.Reconcile(rows)
	if !internal || external {
		t.Fatalf("first pass internal=%v external=%v", internal, external)
	}
	for i := 0; i < 3; i++ {
		internal, external = r.Reconcile(rowsOf("a", "b", "c"))
		if internal || external {
			t.Fatalf("re-render %d changed state: internal=%v external=%v", i, internal, external)
		}
	}
	if h.writes != 0 {
		t.Fatalf("external setter called %d times", h.writes)
	}
	if got := r.Internal().Indexes(); !slices.Equal(got, []int{1}) {
		t.Fatalf("internal = %v", got)
	}
}

func TestSelectionSurvivesPaging(t *testing.T) {
	var all []row
	for i := 0; i < 12; i++ {
		all = append(all, row{id: "r" + strconv.Itoa(i)})
	}
	tbl := New(Config[row]{
		Columns: []Column[row]{{Key: "id", Cell: rowID}},
		RowID:   rowID,
		Options: Options{InitialPageSize: 5},
	})

	tbl.Sync(all)
	tbl.ToggleRow(0, true)
	tbl.ToggleRow(1, true)

	tbl.Controller().SetPage(2)
	p2 := tbl.Sync(all)
	if len(p2.Selection) != 0 {
		t.Fatalf("page 2 selection = %v", p2.Selection)
	}
	tbl.ToggleRow(2, true)

	tbl.Controller().SetPage(1)
	p1 := tbl.Sync(all)
	if got := p1.Selection.Indexes(); !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("page 1 selection = %v, want [0 1]", got)
	}
	if got := tbl.SelectedIDs().Key(); got != "r0,r1,r7" {
		t.Fatalf("selected ids = %s", got)
	}
}

func TestToggleOffOnlyAffectsCurrentPage(t *testing.T) {
	h := &harness{ids: NewIDSet("a", "z")}
	r := NewReconciler(rowID, h.get, h.set)
	rows := rowsOf("a", "b")
	r.Reconcile(rows)

	r.Toggle(rows, 0, false)
	if got := h.ids.Key(); got != "z" {
		t.Fatalf("ids = %s, want z", got)
	}
	r.ToggleAll(rows, true)
	if got := h.ids.Key(); got != "a,b,z" {
		t.Fatalf("ids = %s, want a,b,z", got)
	}
	r.Toggle(rows, 9, true)
	if h.writes != 2 {
		t.Fatalf("writes = %d, want 2", h.writes)
	}
}

func TestExternalSetIsReplacedNotMutated(t *testing.T) {
	orig := NewIDSet("a")
	h := &harness{ids: orig}
	r := NewReconciler(rowID, h.get, h.set)
	rows := rowsOf("a", "b")
	r.Reconcile(rows)
	r.Toggle(rows, 1, true)
	if orig.Key() != "a" {
		t.Fatalf("original set mutated: %s", orig.Key())
	}
}
