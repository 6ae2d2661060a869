package grid

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	colGap      = "  "
	minColWidth = 4
)

// TerminalWidth returns the width of stdout, or 0 when it is not a
// terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// RenderText writes v as a plain table followed by a pager line. Columns
// are shrunk to fit width when width is positive.
func RenderText(w io.Writer, v View, width int) error {
	if v.Loading {
		_, err := fmt.Fprintln(w, mutedStyle.Render("Loading…"))
		return err
	}

	labels := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		labels[i] = h.Label
		switch h.Direction {
		case "asc":
			labels[i] += " ▲"
		case "desc":
			labels[i] += " ▼"
		}
	}
	widths := make([]int, len(labels))
	for i, l := range labels {
		widths[i] = lipgloss.Width(l)
	}
	for _, r := range v.Rows {
		for i, c := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(c.Text))
			}
		}
	}
	if width > 0 {
		fit(widths, width)
	}

	var b strings.Builder
	cells := make([]string, len(labels))
	for i, l := range labels {
		cells[i] = pad(l, widths[i])
	}
	b.WriteString(headerStyle.Render(strings.Join(cells, colGap)))
	b.WriteByte('\n')
	for i := range widths {
		cells[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(mutedStyle.Render(strings.Join(cells, colGap)))
	b.WriteByte('\n')

	if v.Empty {
		b.WriteString(mutedStyle.Render(v.EmptyMessage))
		b.WriteByte('\n')
	}
	for _, r := range v.Rows {
		for i := range cells {
			text := ""
			if i < len(r.Cells) {
				text = r.Cells[i].Text
			}
			cells[i] = pad(text, widths[i])
		}
		line := strings.Join(cells, colGap)
		if r.Selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(mutedStyle.Render(pagerLine(v)))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func pagerLine(v View) string {
	parts := make([]string, 0, len(v.Pages))
	for _, p := range v.Pages {
		switch {
		case p.Ellipsis:
			parts = append(parts, "…")
		case p.Current:
			parts = append(parts, fmt.Sprintf("[%d]", p.Page))
		default:
			parts = append(parts, fmt.Sprint(p.Page))
		}
	}
	line := fmt.Sprintf("page %d of %d (%d items)  %s", v.Pager.Page, v.Pager.TotalPages, v.Pager.TotalItems, strings.Join(parts, " "))
	if v.Selected > 0 {
		line += fmt.Sprintf("  %d selected", v.Selected)
	}
	return line
}

// fit shrinks the widest columns until the row fits in total.
func fit(widths []int, total int) {
	avail := total - len(colGap)*max(0, len(widths)-1)
	for sum(widths) > avail {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			return
		}
		widths[widest]--
	}
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

// pad left-aligns s in width cells, truncating with an ellipsis.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	return s + strings.Repeat(" ", width-w)
}
