package report

import (
	"github.com/charmbracelet/lipgloss"

	"nadico/internal/deontic"
)

var (
	// Deontic term colors, from prohibition red to obligation green.
	MustNotColor     = lipgloss.Color("#e53935")
	ShouldNotColor   = lipgloss.Color("#ff8a65")
	MayNotColor      = lipgloss.Color("#ffd54f")
	IndifferentColor = lipgloss.Color("#9e9e9e")
	MayColor         = lipgloss.Color("#4db6ac")
	ShouldColor      = lipgloss.Color("#2196F3")
	MustColor        = lipgloss.Color("#8BC34A")

	HeaderColor = lipgloss.Color("#101F38")
	BorderColor = lipgloss.Color("#2a3850")
)

var termColors = map[deontic.Term]lipgloss.Color{
	deontic.MustNot:     MustNotColor,
	deontic.ShouldNot:   ShouldNotColor,
	deontic.MayNot:      MayNotColor,
	deontic.Indifferent: IndifferentColor,
	deontic.May:         MayColor,
	deontic.Should:      ShouldColor,
	deontic.Must:        MustColor,
}

// Styles holds the lipgloss styles used for tables.
type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
	plain  bool
}

// DefaultStyles returns colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(MustColor).MarginBottom(1),
		Header: lipgloss.NewStyle().Bold(true).Foreground(HeaderColor).Background(MustColor).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(BorderColor),
	}
}

// PlainStyles returns styles without colors or decorations.
func PlainStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle(),
		Header: lipgloss.NewStyle().Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Border: lipgloss.NewStyle(),
		plain:  true,
	}
}

// Term styles a deontic term cell.
func (s Styles) Term(t deontic.Term) lipgloss.Style {
	if s.plain {
		return s.Cell
	}
	c, ok := termColors[t]
	if !ok {
		return s.Cell
	}
	return s.Cell.Foreground(c).Bold(t == deontic.Must || t == deontic.MustNot)
}
