package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type recordedCall struct {
	method string
	path   string
	body   string
}

func newTestClient(t *testing.T, respond func(r *http.Request) any) (*Client, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(respond(r))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-id"), &calls
}

func TestReplaceSheet(t *testing.T) {
	c, calls := newTestClient(t, func(r *http.Request) any {
		if strings.HasSuffix(r.URL.Path, ":clear") {
			return map[string]any{"clearedRange": "Expenses!A1:Z100"}
		}
		return map[string]any{"updatedRange": "Expenses!A1:B3"}
	})

	records := [][]string{{"Description", "Amount"}, {"Taxi", "42.50"}, {"Lunch", "12.00"}}
	ref, err := c.ReplaceSheet(context.Background(), "Expenses", records)
	if err != nil {
		t.Fatalf("ReplaceSheet() error = %v", err)
	}
	if ref != "Expenses!A1:B3" {
		t.Errorf("ref = %q", ref)
	}

	if len(*calls) != 2 {
		t.Fatalf("calls = %+v, want clear then update", *calls)
	}
	clear, update := (*calls)[0], (*calls)[1]
	if clear.method != http.MethodPost || !strings.HasSuffix(clear.path, "/values/Expenses:clear") {
		t.Errorf("clear call = %+v", clear)
	}
	if update.method != http.MethodPut || !strings.Contains(update.path, "/spreadsheets/sheet-id/values/Expenses!A1") {
		t.Errorf("update call = %+v", update)
	}
	if !strings.Contains(update.body, `["Taxi","42.50"]`) {
		t.Errorf("update body = %s", update.body)
	}
}

func TestAppendRows(t *testing.T) {
	c, calls := newTestClient(t, func(*http.Request) any {
		return map[string]any{"updates": map[string]any{"updatedRange": "Approved!A7:B7"}}
	})

	ref, err := c.AppendRows(context.Background(), "Approved", [][]string{{"Taxi", "42.50"}})
	if err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if ref != "Approved!A7:B7" {
		t.Errorf("ref = %q", ref)
	}
	if len(*calls) != 1 || !strings.HasSuffix((*calls)[0].path, ":append") {
		t.Errorf("calls = %+v", *calls)
	}

	if ref, err := c.AppendRows(context.Background(), "Approved", nil); err != nil || ref != "" {
		t.Errorf("empty append = %q, %v", ref, err)
	}
	if len(*calls) != 1 {
		t.Error("empty append reached the API")
	}
}

func TestReplaceSheetAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(), goption.WithEndpoint(srv.URL+"/"), goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewWithService(svc, "id").ReplaceSheet(context.Background(), "Expenses", [][]string{{"a"}})
	if err == nil || !strings.Contains(err.Error(), "clear sheet Expenses") {
		t.Errorf("error = %v", err)
	}
}

func TestNilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.ReplaceSheet(context.Background(), "Expenses", nil); err == nil {
		t.Error("expected error with nil service")
	}
	if _, err := c.AppendRows(context.Background(), "Expenses", [][]string{{"x"}}); err == nil {
		t.Error("expected error with nil service")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"missing spreadsheet", Options{}, "missing GOOGLE_SPREADSHEET_ID"},
		{"missing credentials", Options{SpreadsheetID: "id"}, "missing service account credentials"},
		{"unreadable file", Options{SpreadsheetID: "id", ServiceAccountFile: filepath.Join(os.TempDir(), "does-not-exist.json")}, "read service account file"},
		{"invalid json", Options{SpreadsheetID: "id", ServiceAccountJSON: "not-json"}, "parse service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
