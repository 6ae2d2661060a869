package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"villeto/internal/core"
	"villeto/internal/log"
	"villeto/internal/services"
	"villeto/internal/tables"
	"villeto/internal/toolbar"
)

func (s *Server) expenseDef() tableDef[core.Expense] {
	def := tableDef[core.Expense]{
		name:              tables.Expenses,
		endpoint:          "/ui/expenses",
		columns:           tables.ExpenseColumns(),
		rowID:             tables.ExpenseID,
		hidden:            tables.ExpenseHidden,
		sort:              tables.ExpenseDefaultSort,
		filters:           s.deps.Filters.For(tables.Expenses),
		searchPlaceholder: "Search description, submitter or category",
		emptyMessage:      "No expenses match the current search and filters.",
		selectable:        true,
		bulk: []toolbar.Action{
			{Name: services.ActionApprove, Label: "Approve", URL: "/ui/expenses/bulk/" + services.ActionApprove,
				Method: http.MethodPost, Confirm: "Approve the selected expenses?"},
			{Name: services.ActionReject, Label: "Reject", URL: "/ui/expenses/bulk/" + services.ActionReject,
				Method: http.MethodPost, Confirm: "Reject the selected expenses?"},
		},
		exports: []toolbar.Action{{Name: "csv", Label: "Export CSV", URL: "/ui/expenses/export"}},
		lister:  s.deps.Expenses,
	}
	if s.deps.Sheets.Enabled() {
		def.exports = append(def.exports, toolbar.Action{Name: "sheet", Label: "Export to sheet", URL: "/ui/expenses/export?format=sheet"})
	}
	return def
}

func (s *Server) userDef() tableDef[core.User] {
	return tableDef[core.User]{
		name:              tables.Users,
		endpoint:          "/ui/users",
		columns:           tables.UserColumns(),
		rowID:             tables.UserID,
		sort:              tables.UserDefaultSort,
		filters:           s.deps.Filters.For(tables.Users),
		searchPlaceholder: "Search name, email or department",
		emptyMessage:      "No users found.",
		selectable:        true,
		exports:           []toolbar.Action{{Name: "csv", Label: "Export CSV", URL: "/ui/users/export"}},
		lister:            s.deps.Users,
	}
}

// previewDef describes the table of one uploaded CSV. The preview id is
// part of the endpoint so every link the grid builds keeps it.
func (s *Server) previewDef(p services.Preview) tableDef[tables.PreviewRow] {
	endpoint := "/ui/csv-preview/" + p.ID
	return tableDef[tables.PreviewRow]{
		name:              tables.Preview,
		endpoint:          endpoint,
		columns:           tables.PreviewColumns(p.Header),
		rowID:             tables.PreviewID,
		searchPlaceholder: "Search " + p.Name,
		emptyMessage:      "No lines match the current search.",
		selectable:        true,
		selection:         tables.Preview + ":" + p.ID,
		exports:           []toolbar.Action{{Name: "csv", Label: "Export CSV", URL: endpoint + "/export"}},
		rows: func(*http.Request) ([]tables.PreviewRow, error) {
			return p.Rows, nil
		},
	}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	serveTable(s, w, r, s.expenseDef())
}

func (s *Server) handleExpensesSelect(w http.ResponseWriter, r *http.Request) {
	selectRows(s, w, r, s.expenseDef())
}

func (s *Server) handleExpensesExport(w http.ResponseWriter, r *http.Request) {
	exportTable(s, w, r, s.expenseDef())
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	serveTable(s, w, r, s.userDef())
}

func (s *Server) handleUsersSelect(w http.ResponseWriter, r *http.Request) {
	selectRows(s, w, r, s.userDef())
}

func (s *Server) handleUsersExport(w http.ResponseWriter, r *http.Request) {
	exportTable(s, w, r, s.userDef())
}

// handleBulk applies an action to every selected expense, across pages,
// then clears the selection and renders the table again with the state
// carried in the query.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	if _, err := services.StatusFor(action); err != nil {
		s.writeError(w, r, err)
		return
	}

	sid := sessionID(w, r)
	ids := s.deps.Selections.Get(sid, tables.Expenses).Sorted()
	n, err := s.deps.Bulk.Apply(r.Context(), action, ids)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.deps.Selections.Clear(sid, tables.Expenses)
	s.appMetrics.bulkActions.Add(1)

	def := s.expenseDef()
	l, err := loadTable(s, w, r, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	msg := fmt.Sprintf("%s %d of %d selected expenses", pastTense(action), n, len(ids))
	renderTable(s, w, r, def, l, NewHTMXResponse().
		TriggerSuccessNotification(msg).
		TriggerSelectionChanged(def.name, 0).
		TriggerTableRefresh(def.name))
}

func pastTense(action string) string {
	switch action {
	case services.ActionApprove:
		return "Approved"
	case services.ActionReject:
		return "Rejected"
	}
	return capitalize(action)
}

// handleUpload parses a CSV upload, keeps it as a preview and renders its
// first page.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "File is too large").
				TriggerErrorNotification("File is too large").Write(w)
			return
		}
		BadRequestError("Malformed upload").Write(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("Choose a CSV file to preview").Write(w)
		return
	}
	defer file.Close()

	name := sanitizeInput(header.Filename)
	if !strings.EqualFold(extension(name), ".csv") {
		UnprocessableEntityError("Only .csv files can be previewed").Write(w)
		return
	}

	p, err := services.ParseCSV(name, file, s.opts.MaxPreviewRows)
	if err != nil {
		if !errors.Is(err, services.ErrEmptyCSV) && !errors.Is(err, services.ErrTooManyRows) {
			UnprocessableEntityError("Could not read " + name + ": " + err.Error()).Write(w)
			return
		}
		s.writeError(w, r, err)
		return
	}
	p.ID = s.deps.Previews.Save(p)
	s.appMetrics.uploads.Add(1)

	log.FromContext(r.Context()).InfoContext(r.Context(), "CSV preview created",
		log.FieldTable, tables.Preview,
		log.FieldRows, len(p.Rows),
		log.FieldOperation, log.OpUpload)

	def := s.previewDef(p)
	l, err := loadTable(s, w, r, def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	renderTable(s, w, r, def, l, NewHTMXResponse().
		Header("HX-Push-Url", "/csv-preview?id="+p.ID).
		TriggerSuccessNotification(fmt.Sprintf("Loaded %d lines from %s", len(p.Rows), name)))
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) (tableDef[tables.PreviewRow], bool) {
	p, err := s.deps.Previews.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return tableDef[tables.PreviewRow]{}, false
	}
	return s.previewDef(p), true
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if def, ok := s.preview(w, r); ok {
		serveTable(s, w, r, def)
	}
}

func (s *Server) handlePreviewSelect(w http.ResponseWriter, r *http.Request) {
	if def, ok := s.preview(w, r); ok {
		selectRows(s, w, r, def)
	}
}

func (s *Server) handlePreviewExport(w http.ResponseWriter, r *http.Request) {
	if def, ok := s.preview(w, r); ok {
		exportTable(s, w, r, def)
	}
}
