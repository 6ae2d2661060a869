package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"villeto/internal/filter"
	"villeto/internal/grid"
	"villeto/internal/log"
	"villeto/internal/services"
	"villeto/internal/storage"
	"villeto/internal/table"
	"villeto/internal/toolbar"
)

// tableDef describes one table endpoint. Remote tables page through a
// lister; local tables get every row from rows and page in memory.
type tableDef[R any] struct {
	name              string
	endpoint          string
	columns           []table.Column[R]
	rowID             func(R) string
	hidden            []string
	sort              []table.SortKey
	filters           []filter.Descriptor
	searchPlaceholder string
	emptyMessage      string
	selectable        bool
	// selection keys the session selection; empty means name.
	selection         string
	bulk              []toolbar.Action
	exports           []toolbar.Action

	lister *services.Lister[R]
	rows   func(r *http.Request) ([]R, error)
}

func (def tableDef[R]) remote() bool { return def.lister != nil }

func (def tableDef[R]) selectURL() string { return def.endpoint + "/select" }

func (def tableDef[R]) selectionKey() string {
	if def.selection != "" {
		return def.selection
	}
	return def.name
}

// loaded is a table synced for one request. rows is what was fed to Sync:
// the page for remote tables, every row for local ones.
type loaded[R any] struct {
	table *table.Table[R]
	rows  []R
	page  table.Page[R]
	form  *filter.Form
	q     url.Values
}

// resync re-runs the pipeline after a selection change.
func (l *loaded[R]) resync() {
	l.page = l.table.Sync(l.rows)
}

// loadTable rebuilds the table state carried by the request query,
// restores the session selection and syncs the current page.
func loadTable[R any](s *Server, w http.ResponseWriter, r *http.Request, def tableDef[R]) (*loaded[R], error) {
	q := r.URL.Query()
	base := table.Options{
		InitialPageSize: s.opts.DefaultPageSize,
		InitialSortBy:   def.sort,
	}
	if def.remote() {
		base.Modes = table.RemoteModes
	}
	opts := table.DecodeQuery(q, base)
	if def.selectable {
		opts.InitialSelection = s.deps.Selections.Get(sessionID(w, r), def.selectionKey())
	}

	// Every link a rendered table builds carries hide, empty when all
	// columns show; only a first load falls back to the default.
	hidden := def.hidden
	if q.Has(table.ParamHide) {
		hidden = table.HiddenFromQuery(q)
	}

	t := table.New(table.Config[R]{
		Columns: def.columns,
		RowID:   def.rowID,
		Options: opts,
		Hidden:  hidden,
	})

	var (
		rows []R
		err  error
	)
	if def.remote() {
		rows, err = def.lister.Load(r.Context(), t.Controller())
	} else {
		rows, err = def.rows(r)
	}
	if err != nil {
		return nil, err
	}

	l := &loaded[R]{table: t, rows: rows, q: q, form: filter.FormFromQuery(def.filters, q, nil)}
	l.resync()
	if st := l.page.State; !def.remote() && st.Page > st.TotalPages {
		t.Controller().SetPage(st.TotalPages)
		l.resync()
	}
	return l, nil
}

// serveTable handles GET on a table endpoint.
func serveTable[R any](s *Server, w http.ResponseWriter, r *http.Request, def tableDef[R]) {
	l, err := loadTable(s, w, r, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	renderTable(s, w, r, def, l, NewHTMXResponse())
}

// renderTable writes the table fragment through resp, so handlers can add
// triggers before the body goes out.
func renderTable[R any](s *Server, w http.ResponseWriter, r *http.Request, def tableDef[R], l *loaded[R], resp *HTMXResponseBuilder) {
	if s.renderer == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	st := l.page.State
	state := l.table.Query().Encode()
	bulk := make([]toolbar.Action, len(def.bulk))
	for i, a := range def.bulk {
		a.URL += "?" + state
		bulk[i] = a
	}

	mounts := toolbar.Mounts()
	if r.Header.Get("HX-Request") == "true" {
		mounts = toolbar.Mounts(pageToolbarID)
	}
	bar := toolbar.Compose(toolbar.Config{
		Search:            st.GlobalSearch,
		SearchPlaceholder: def.searchPlaceholder,
		Filters:           len(def.filters),
		ActiveFilters:     l.form.ActiveCount(),
		Columns:           toolbar.Columns(l.table),
		Export:            def.exports,
		Selected:          st.SelectedRowIDs.Len(),
		BulkActions:       bulk,
		MountID:           pageToolbarID,
	}, mounts)

	src := grid.Source[R]{
		Name:         def.name,
		Endpoint:     def.endpoint,
		Table:        l.table,
		Page:         l.page,
		Selectable:   def.selectable,
		EmptyMessage: def.emptyMessage,
		Toolbar:      bar,
		Filters:      l.form,
	}
	if def.selectable {
		src.SelectURL = def.selectURL()
	}

	var buf bytes.Buffer
	if err := s.renderer.Table(&buf, grid.Build(src)); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.appMetrics.tablePages.Add(1)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogTableServed(r.Context(), def.name, st.Page, st.PageSize, st.TotalItems, len(l.page.Rows))
	resp.BodyHTML(buf.String()).Write(w)
}

// selectRows applies a selection toggle posted by a checkbox and renders
// the table again. The body carries id and selected for one row, all for
// the whole page, or clear to empty the selection on every page.
func selectRows[R any](s *Server, w http.ResponseWriter, r *http.Request, def tableDef[R]) {
	l, err := loadTable(s, w, r, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Malformed selection request").Write(w)
		return
	}

	switch {
	case parseBool(p.Get("clear")):
		l.table.ClearSelection()
	case p.Get("all") != "":
		l.table.TogglePage(parseBool(p.Get("all")))
	case p.Get("id") != "":
		if !l.table.ToggleRowByID(p.Get("id"), parseBool(p.Get("selected"))) {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Selection toggle for a row not on the page",
				log.FieldTable, def.name)
		}
	default:
		BadRequestError("Nothing to select").Write(w)
		return
	}

	selected := l.table.SelectedIDs()
	s.deps.Selections.Set(sessionID(w, r), def.selectionKey(), selected)
	l.resync()

	renderTable(s, w, r, def, l, NewHTMXResponse().TriggerSelectionChanged(def.name, selected.Len()))
}

// exportTable writes every row matching the table state, across pages, as
// CSV of the visible columns. format=sheet replaces the export sheet
// instead.
func exportTable[R any](s *Server, w http.ResponseWriter, r *http.Request, def tableDef[R]) {
	l, err := loadTable(s, w, r, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	exp := l.table.LocalExporter(l.rows)
	if def.remote() {
		exp = def.lister.Exporter(l.table.State())
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		name := fmt.Sprintf("%s-%s.csv", def.name, time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		if err := l.table.Export(ctx, w, exp); err != nil {
			// Headers are gone by now; the client sees a truncated file.
			logger.ErrorContext(ctx, "CSV export failed", log.FieldTable, def.name, log.FieldError, err)
			return
		}
	case "sheet":
		records, err := l.table.ExportRecords(ctx, exp)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ref, err := s.deps.Sheets.Replace(ctx, records)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		msg := fmt.Sprintf("Exported %d rows to %s", len(records)-1, ref)
		logger.InfoContext(ctx, "Table exported to sheet",
			log.FieldOperation, log.OpExport,
			log.FieldTable, def.name,
			log.FieldRows, len(records)-1,
			log.FieldSheetsRef, ref)
		NewHTMXResponse().TriggerSuccessNotification(msg).BodyHTML(`<div class="success">` + htmlEscape(msg) + `</div>`).Write(w)
	default:
		BadRequestError("Unknown export format " + strconv.Quote(format)).Write(w)
		return
	}
	s.appMetrics.exports.Add(1)
}

// writeError maps service errors to responses. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var resp *HTMXResponseBuilder
	switch {
	case errors.Is(err, storage.ErrInvalidFilter):
		resp = UnprocessableEntityError(err.Error())
	case errors.Is(err, services.ErrEmptySelection),
		errors.Is(err, services.ErrEmptyCSV),
		errors.Is(err, services.ErrTooManyRows):
		resp = UnprocessableEntityError(capitalize(err.Error()))
	case errors.Is(err, services.ErrUnknownAction),
		errors.Is(err, services.ErrPreviewMissing):
		resp = NotFoundError(capitalize(err.Error()))
	case errors.Is(err, services.ErrSheetsDisabled):
		resp = ErrorResponse(http.StatusServiceUnavailable, capitalize(err.Error()))
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path, log.NewFields())
		resp = InternalServerError("Something went wrong. Please try again.")
		resp.TriggerErrorNotification("Something went wrong. Please try again.")
		resp.Write(w)
		return
	}
	resp.TriggerErrorNotification(capitalize(err.Error())).Write(w)
}
