package grid

import (
	"fmt"
	"html/template"
	"io"

	"villeto/web"
)

// Renderer writes views with the embedded HTML templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Table writes the table fragment. When the toolbar is placed in a mount
// point it is written out of band.
func (r *Renderer) Table(w io.Writer, v View) error {
	if err := r.tmpl.ExecuteTemplate(w, "table", v); err != nil {
		return fmt.Errorf("render table %s: %w", v.Name, err)
	}
	return nil
}

// Page writes a full page template such as index.html.
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
