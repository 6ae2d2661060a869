package memory

import (
	"context"
	"testing"
)

func TestMemoryStoreReplaceAndAppend(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.ReplaceSheet(ctx, "Expenses", [][]string{{"Description"}, {"Taxi"}})
	if err != nil || ref != "mem:Expenses!1:2" {
		t.Fatalf("ReplaceSheet() = %q, %v", ref, err)
	}

	ref, err = s.AppendRows(ctx, "Expenses", [][]string{{"Lunch"}, {"Hotel"}})
	if err != nil || ref != "mem:Expenses!3:4" {
		t.Fatalf("AppendRows() = %q, %v", ref, err)
	}

	got := s.Sheet("Expenses")
	if len(got) != 4 || got[3][0] != "Hotel" {
		t.Fatalf("Sheet() = %v", got)
	}

	got[0][0] = "changed"
	if s.Sheet("Expenses")[0][0] != "Description" {
		t.Error("Sheet() returned shared storage")
	}

	if _, err := s.ReplaceSheet(ctx, "Expenses", [][]string{{"Only"}}); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Sheet("Expenses")); n != 1 {
		t.Errorf("rows after replace = %d, want 1", n)
	}
}

func TestMemoryStoreRejectsEmptySheet(t *testing.T) {
	if _, err := New().ReplaceSheet(context.Background(), " ", nil); err == nil {
		t.Error("expected error for empty sheet name")
	}
}
