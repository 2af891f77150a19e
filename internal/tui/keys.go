package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Select        key.Binding
	Back          key.Binding
	FocusNext     key.Binding
	FocusPrev     key.Binding
	ToggleSidebar key.Binding
	TogglePanel   key.Binding
	Follow        key.Binding
	Save          key.Binding
	Open          key.Binding
	FullArticle   key.Binding
	Search        key.Binding
	Refresh       key.Binding
	Login         key.Binding
	Copy          key.Binding
	Help          key.Binding
	Quit          key.Binding
}

var keys = keyMap{
	Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:          key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:         key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
	Select:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	FocusNext:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
	FocusPrev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
	ToggleSidebar: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "sidebar")),
	TogglePanel:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "feeds panel")),
	Follow:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow/unfollow")),
	Save:          key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save post")),
	Open:          key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
	FullArticle:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full article")),
	Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Login:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
	Copy:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy key")),
	Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusNext, k.Select, k.Save, k.Follow, k.ToggleSidebar, k.TogglePanel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back},
		{k.FocusNext, k.FocusPrev, k.ToggleSidebar, k.TogglePanel, k.Search, k.Refresh},
		{k.Follow, k.Save, k.Open, k.FullArticle, k.Copy},
		{k.Login, k.Help, k.Quit},
	}
}
