package toolbar

import (
	"slices"
	"testing"

	"villeto/internal/table"
)

func kinds(b Bar) []Kind {
	out := make([]Kind, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Kind
	}
	return out
}

func TestComposeOrder(t *testing.T) {
	cfg := Config{
		Action:      &Action{Label: "New expense"},
		Filters:     3,
		Columns:     []ColumnToggle{{Key: "status", Visible: true}},
		Export:      []Action{{Name: "csv", Label: "CSV"}},
		Selected:    2,
		BulkActions: []Action{{Name: "approve", Label: "Approve"}},
	}
	got := kinds(Compose(cfg, nil))
	want := []Kind{KindAction, KindSearch, KindFilter, KindColumns, KindExport, KindBulk}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestComposeOmitsEmptyParts(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want []Kind
	}{
		{"search only", Config{}, []Kind{KindSearch}},
		{"nothing", Config{DisableSearch: true}, []Kind{}},
		{"no selection no bulk", Config{BulkActions: []Action{{Name: "approve"}}}, []Kind{KindSearch}},
		{"filters without columns", Config{Filters: 1}, []Kind{KindSearch, KindFilter}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := kinds(Compose(tc.cfg, nil)); !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBulkCarriesCount(t *testing.T) {
	b := Compose(Config{Selected: 7, BulkActions: []Action{{Name: "reject"}}}, nil)
	it, ok := b.Item(KindBulk)
	if !ok || it.Selected != 7 || len(it.Actions) != 1 {
		t.Fatalf("bulk = %+v ok=%v", it, ok)
	}
}

func TestPlacement(t *testing.T) {
	lookup := Mounts("table-toolbar")
	cases := []struct {
		name  string
		mount string
		want  string
	}{
		{"known mount", "table-toolbar", "table-toolbar"},
		{"missing mount", "sidebar", ""},
		{"no mount", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Compose(Config{MountID: tc.mount}, lookup)
			if b.Placement.MountID != tc.want {
				t.Fatalf("placement = %q, want %q", b.Placement.MountID, tc.want)
			}
			if b.Placement.Inline() != (tc.want == "") {
				t.Fatalf("inline mismatch")
			}
		})
	}
}

func TestColumnsOnlyHideable(t *testing.T) {
	type r struct{ id string }
	tbl := table.New(table.Config[r]{
		Columns: []table.Column[r]{
			{Key: "id", Header: "ID"},
			{Key: "name", Header: "Name", Hideable: true},
			{Key: "note", Hideable: true},
		},
		RowID:  func(x r) string { return x.id },
		Hidden: []string{"note"},
	})
	got := Columns(tbl)
	want := []ColumnToggle{{Key: "name", Label: "Name", Visible: true}, {Key: "note", Label: "note", Visible: false}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
