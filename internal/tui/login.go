package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type loginTab int

const (
	tabNewUser loginTab = iota
	tabAPIKey
)

func (t loginTab) String() string {
	if t == tabNewUser {
		return "New User"
	}
	return "Login with API Key"
}

// loginModal is the two-tab login dialog. It is shown over every view
// until closed or a session is established.
type loginModal struct {
	tab       loginTab
	nameInput textinput.Model
	keyInput  textinput.Model
	busy      bool
	err       string
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newLoginModal(tab loginTab) *loginModal {
	lm := &loginModal{
		tab:       tab,
		nameInput: newInput("Your name", 64),
		keyInput:  newInput("Paste your API key", 128),
	}
	lm.keyInput.EchoMode = textinput.EchoPassword
	lm.focusTab()
	return lm
}

func (lm *loginModal) focusTab() {
	lm.err = ""
	if lm.tab == tabNewUser {
		lm.keyInput.Blur()
		lm.nameInput.Focus()
		return
	}
	lm.nameInput.Blur()
	lm.keyInput.Focus()
}

func (lm *loginModal) switchTab() {
	lm.tab = 1 - lm.tab
	lm.focusTab()
}

// update feeds a key to the active input. submit is true on enter.
func (lm *loginModal) update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return !lm.busy, nil
	}
	if lm.tab == tabNewUser {
		lm.nameInput, cmd = lm.nameInput.Update(msg)
	} else {
		lm.keyInput, cmd = lm.keyInput.Update(msg)
	}
	return false, cmd
}

func (lm *loginModal) value() string {
	if lm.tab == tabNewUser {
		return strings.TrimSpace(lm.nameInput.Value())
	}
	return strings.TrimSpace(lm.keyInput.Value())
}

func (lm *loginModal) view(st styles, spin string) string {
	var tabs []string
	for _, t := range []loginTab{tabNewUser, tabAPIKey} {
		if t == lm.tab {
			tabs = append(tabs, st.tabActive.Render(t.String()))
		} else {
			tabs = append(tabs, st.tab.Render(t.String()))
		}
	}

	var b strings.Builder
	b.WriteString(st.title.Render("Welcome to feeddash"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	if lm.tab == tabNewUser {
		b.WriteString("Create an account to get an API key.\n\n")
		b.WriteString(lm.nameInput.View())
	} else {
		b.WriteString("Already have a key? Paste it below.\n\n")
		b.WriteString(lm.keyInput.View())
	}
	b.WriteString("\n\n")
	switch {
	case lm.busy:
		b.WriteString(spin + " Working...")
	case lm.err != "":
		b.WriteString(st.errorText.Render(lm.err))
	}
	b.WriteString("\n")
	b.WriteString(st.help.Render("enter: submit • tab: switch • esc: close"))
	return st.modal.Render(b.String())
}

// apiKeyModal shows a newly issued key once so the user can copy it.
type apiKeyModal struct {
	key string
}

func (am *apiKeyModal) view(st styles) string {
	var b strings.Builder
	b.WriteString(st.title.Render("Your API Key"))
	b.WriteString("\n")
	b.WriteString("Keep this key safe. You need it to log in again.\n\n")
	b.WriteString(st.keyDisplay.Render(am.key))
	b.WriteString("\n\n")
	b.WriteString(st.help.Render("c: copy • enter/esc: continue"))
	return st.modal.Render(b.String())
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", len(key)-4) + key[len(key)-4:]
}
