package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/thomaskoefod/feeddash/internal/database"
	"github.com/thomaskoefod/feeddash/internal/postview"
)

type styles struct {
	title      lipgloss.Style
	help       lipgloss.Style
	muted      lipgloss.Style
	errorText  lipgloss.Style
	statusText lipgloss.Style

	sidebar       lipgloss.Style
	navItem       lipgloss.Style
	navActive     lipgloss.Style
	navCursor     lipgloss.Style
	panel         lipgloss.Style
	sectionHeader lipgloss.Style
	reopen        lipgloss.Style
	focusedBorder lipgloss.Color

	modal      lipgloss.Style
	tab        lipgloss.Style
	tabActive  lipgloss.Style
	keyDisplay lipgloss.Style

	toastInfo    lipgloss.Style
	toastSuccess lipgloss.Style
	toastError   lipgloss.Style

	cards postview.Styles
}

func newStyles(theme string) styles {
	dark := theme == database.ThemeDark

	accent, muted, fg := lipgloss.Color("205"), lipgloss.Color("241"), lipgloss.Color("235")
	if dark {
		accent, muted, fg = lipgloss.Color("212"), lipgloss.Color("245"), lipgloss.Color("252")
	}

	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("231"))

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		help:       lipgloss.NewStyle().Foreground(muted),
		muted:      lipgloss.NewStyle().Foreground(muted),
		errorText:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		statusText: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),

		sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(muted).
			Padding(0, 1),
		navItem:   lipgloss.NewStyle().Foreground(fg),
		navActive: lipgloss.NewStyle().Bold(true).Foreground(accent),
		navCursor: lipgloss.NewStyle().Reverse(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(muted),
		sectionHeader: lipgloss.NewStyle().Bold(true).Foreground(muted),
		reopen:        lipgloss.NewStyle().Foreground(accent).Padding(0, 1),
		focusedBorder: accent,

		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),
		tab:        lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		tabActive:  lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1),
		keyDisplay: lipgloss.NewStyle().Bold(true).Foreground(fg).Background(lipgloss.Color("237")).Padding(0, 1),

		toastInfo:    toast.Background(lipgloss.Color("33")),
		toastSuccess: toast.Background(lipgloss.Color("28")),
		toastError:   toast.Background(lipgloss.Color("160")),

		cards: postview.DefaultStyles(dark),
	}
}

// glamourStyle picks the markdown style matching the UI theme.
func glamourStyle(theme string) string {
	if theme == database.ThemeDark {
		return "dark"
	}
	return "light"
}
