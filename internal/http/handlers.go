package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"villeto/internal/core"
	"villeto/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks templates and storage.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.renderer == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.deps.Store == nil:
		checks["storage"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.deps.Store.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	if s.deps.Sheets.Enabled() {
		checks["sheets"] = "configured"
	} else {
		checks["sheets"] = "not_configured"
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	trace := s.traceMiddleware.GetMetrics()
	limits := s.rateLimiter.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", trace.TotalRequests)
	metric("http_response_time_average_microseconds", "gauge", "Average response time", trace.AverageResponseTime)
	metric("table_pages_served_total", "counter", "Table fragments rendered", s.appMetrics.tablePages.Load())
	metric("bulk_actions_total", "counter", "Bulk actions applied", s.appMetrics.bulkActions.Load())
	metric("exports_total", "counter", "Table exports", s.appMetrics.exports.Load())
	metric("csv_uploads_total", "counter", "CSV files previewed", s.appMetrics.uploads.Load())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", limits.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", limits.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", s.securityDetector.SuspiciousRequests())

	if len(s.deps.Caches) > 0 {
		fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n# TYPE cache_entries gauge\n")
		names := make([]string, 0, len(s.deps.Caches))
		for name := range s.deps.Caches {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(w, "cache_entries{type=%q} %d\n", name, s.deps.Caches[name].Size())
		}
		fmt.Fprintln(w)
	}

	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}

type navLink struct {
	URL     string
	Label   string
	Current bool
}

type page struct {
	Title  string
	Path   string
	Source string
	Upload bool
}

var (
	pageExpenses = page{Title: "Expenses", Path: "/", Source: "/ui/expenses"}
	pageUsers    = page{Title: "Users", Path: "/users", Source: "/ui/users"}
	pagePreview  = page{Title: "CSV preview", Path: "/csv-preview", Upload: true}
)

// handlePage renders the page shell; the table loads into it over HTMX.
func (s *Server) handlePage(p page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.renderer == nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
				log.FieldPath, r.URL.Path,
				log.FieldComponent, log.ComponentTemplate)
			http.Error(w, "templates not loaded", http.StatusInternalServerError)
			return
		}

		data := struct {
			page
			Nav []navLink
		}{page: p}
		if p.Upload {
			if id := r.URL.Query().Get("id"); core.ValidID(id) {
				data.Source = "/ui/csv-preview/" + id
			}
		}
		for _, other := range []page{pageExpenses, pageUsers, pagePreview} {
			data.Nav = append(data.Nav, navLink{URL: other.Path, Label: other.Title, Current: other.Path == p.Path})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.Page(w, "index.html", data); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
				log.FieldError, err,
				log.FieldComponent, log.ComponentTemplate)
		}
	}
}
