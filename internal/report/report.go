// Package report renders stored runs for the terminal, either as a styled
// table or as markdown passed through glamour.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"nadico/internal/store"
)

var headers = []string{"#", "Statement", "Term", "Deontic", "Count", "Or else"}

// Renderer renders runs.
type Renderer struct {
	styles   Styles
	width    int
	mdStyle  string
	markdown *glamour.TermRenderer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the word wrap width (default 100).
func WithWidth(w int) Option {
	return func(r *Renderer) { r.width = w }
}

// WithPlain disables colors, for pipes and tests.
func WithPlain() Option {
	return func(r *Renderer) {
		r.styles = PlainStyles()
		r.mdStyle = "notty"
	}
}

// New returns a renderer.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{styles: DefaultStyles(), width: 100, mdStyle: "dark"}
	for _, opt := range opts {
		opt(r)
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStylePath(r.mdStyle),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	r.markdown = md
	return r, nil
}

// Table renders run as a bordered table with a title line.
func (r *Renderer) Table(run *store.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.Border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			if col == 2 && row >= 0 && row < len(run.Norms) {
				return r.styles.Term(run.Norms[row].Term)
			}
			return r.styles.Cell
		})
	for _, n := range run.Norms {
		t.Row(normRow(n)...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, r.styles.Title.Render(title(run)), t.String())
}

// Markdown renders run through glamour.
func (r *Renderer) Markdown(run *store.Run) (string, error) {
	out, err := r.markdown.Render(Markdown(run))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Markdown returns run as raw markdown.
func Markdown(run *store.Run) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title(run))
	if len(run.Norms) == 0 {
		sb.WriteString("_No norms derived._\n")
		return sb.String()
	}
	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, n := range run.Norms {
		cells := normRow(n)
		for i := range cells {
			cells[i] = escapeCell(cells[i])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

// Summary is a one-line description of run.
func Summary(run store.Run) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), run.Owner, run.Context, run.Strategy)
}

func title(run *store.Run) string {
	s := "Norms of " + run.Owner
	if run.Context != "" {
		s += " in " + run.Context
	}
	if run.Level > 0 {
		s += fmt.Sprintf(" (level %d)", run.Level)
	}
	return s
}

func normRow(n store.Norm) []string {
	orElse := ""
	if n.OrElse != "" {
		orElse = n.OrElse
		if n.OrElseDeontic != nil {
			orElse += " [" + formatValue(*n.OrElseDeontic) + "]"
		}
	}
	return []string{
		strconv.Itoa(n.Position),
		n.Statement,
		string(n.Term),
		formatValue(n.Deontic),
		strconv.Itoa(n.Count),
		orElse,
	}
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
