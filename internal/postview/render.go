package postview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	Title       lipgloss.Style
	Meta        lipgloss.Style
	Body        lipgloss.Style
	Saved       lipgloss.Style
	Unsaved     lipgloss.Style
	Placeholder lipgloss.Style
}

func DefaultStyles(dark bool) Styles {
	fg, muted, accent := lipgloss.Color("235"), lipgloss.Color("241"), lipgloss.Color("28")
	if dark {
		fg, muted, accent = lipgloss.Color("252"), lipgloss.Color("245"), lipgloss.Color("42")
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Padding(0, 1)
	return Styles{
		Card:        card,
		CardFocused: card.BorderForeground(accent),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(fg),
		Meta:        lipgloss.NewStyle().Foreground(muted),
		Body:        lipgloss.NewStyle().Foreground(fg),
		Saved:       lipgloss.NewStyle().Foreground(accent),
		Unsaved:     lipgloss.NewStyle().Foreground(muted),
		Placeholder: lipgloss.NewStyle().Foreground(muted).Padding(1, 2),
	}
}

type RenderOptions struct {
	Columns int
	// Width is the total width available to the grid, in cells.
	Width int
	// Height limits the grid to the rows that fit, keeping the focused
	// card's row visible. Zero renders every row.
	Height int
	// Focused is the index of the highlighted card, -1 for none.
	Focused     int
	Placeholder string
	Styles      Styles
}

// Render lays cards out in a grid of opts.Columns columns. No cards renders
// the placeholder instead of an empty grid.
func Render(cards []Card, opts RenderOptions) string {
	if len(cards) == 0 {
		placeholder := opts.Placeholder
		if placeholder == "" {
			placeholder = "No posts found."
		}
		return opts.Styles.Placeholder.Render(placeholder)
	}

	cols := max(opts.Columns, 1)
	const gap = 1
	cardWidth := max((opts.Width-gap*(cols-1))/cols, 16)

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		cells := make([]string, 0, cols*2)
		for i := start; i < end; i++ {
			if i > start {
				cells = append(cells, strings.Repeat(" ", gap))
			}
			cells = append(cells, renderCard(cards[i], cardWidth, i == opts.Focused, opts.Styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if opts.Height > 0 {
		rows = visibleRows(rows, max(opts.Focused, 0)/cols, opts.Height)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// visibleRows returns the run of rows that fits in height, starting at the
// focused row and filling leftover space with the rows before it. The
// focused row is always included even when it alone is taller than height.
func visibleRows(rows []string, focused, height int) []string {
	focused = min(focused, len(rows)-1)
	start, end := focused, focused+1
	used := lipgloss.Height(rows[focused])
	for end < len(rows) && used+lipgloss.Height(rows[end]) <= height {
		used += lipgloss.Height(rows[end])
		end++
	}
	for start > 0 && used+lipgloss.Height(rows[start-1]) <= height {
		start--
		used += lipgloss.Height(rows[start])
	}
	return rows[start:end]
}

func renderCard(c Card, width int, focused bool, st Styles) string {
	box := st.Card
	if focused {
		box = st.CardFocused
	}
	// Border takes one cell each side.
	inner := width - 2
	text := inner - box.GetHorizontalPadding()

	mark := st.Unsaved.Render("☆")
	if c.Saved {
		mark = st.Saved.Render("★")
	}

	var b strings.Builder
	b.WriteString(st.Title.Width(text - 2).Render(c.Title))
	b.WriteString(" ")
	b.WriteString(mark)
	b.WriteString("\n")
	b.WriteString(st.Meta.Render(c.Source + " • " + c.Date))
	if c.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(st.Body.Width(text).Render(c.Description))
	}

	return box.Width(inner).Render(b.String())
}
