package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerSelectionChanged("expenses", 3).
		TriggerTableRefresh("expenses").
		TriggerSuccessNotification("Approved 3 expenses").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, part := range []string{
		`"selection:changed":{"count":3,"table":"expenses"}`,
		`"table:refresh":{"table":"expenses"}`,
		`"show-notification":{"duration":3000,"message":"Approved 3 expenses","type":"success"}`,
	} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %s: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().BodyHTML("<p>ok</p>").Write(w)

	if got := w.Header().Get("HX-Trigger"); got != "" {
		t.Errorf("HX-Trigger = %q, want empty", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Code != http.StatusOK || w.Body.String() != "<p>ok</p>" {
		t.Errorf("response = %d %q", w.Code, w.Body.String())
	}
}

func TestHTMXResponseBuilder_Header(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("HX-Push-Url", "/csv-preview?id=1").
		Header("HX-Push-Url", "/csv-preview?id=2").
		Status(http.StatusCreated).
		Write(w)

	if got := w.Header().Get("HX-Push-Url"); got != "/csv-preview?id=2" {
		t.Errorf("HX-Push-Url = %q", got)
	}
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantText   string
	}{
		{"bad request", BadRequestError("Nothing to select"), http.StatusBadRequest, "Nothing to select"},
		{"unprocessable", UnprocessableEntityError("no rows selected"), http.StatusUnprocessableEntity, "no rows selected"},
		{"not found", NotFoundError("preview expired"), http.StatusNotFound, "preview expired"},
		{"internal", InternalServerError("Something went wrong"), http.StatusInternalServerError, "Something went wrong"},
		{"escaped", BadRequestError("<script>alert('x')</script>"), http.StatusBadRequest, "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			want := `<div class="error" role="alert">` + tt.wantText + `</div>`
			if w.Body.String() != want {
				t.Errorf("body = %q, want %q", w.Body.String(), want)
			}
		})
	}
}
