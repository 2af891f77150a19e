package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type View int

const (
	ViewNewsfeed View = iota
	ViewSaved
	ViewSearch
	ViewCreateFeed
	ViewNotifications
	ViewSupport
	ViewSettings
	ViewAccount
	// ViewFeedPosts shows one feed's posts. It is reached by selecting a
	// feed, never from the sidebar.
	ViewFeedPosts
)

type navItem struct {
	view  View
	label string
	icon  string
}

var navItems = []navItem{
	{ViewNewsfeed, "Your Feeds", "▤"},
	{ViewSaved, "Saved", "★"},
	{ViewSearch, "Search", "⌕"},
	{ViewCreateFeed, "Create Feed", "+"},
	{ViewNotifications, "Notifications", "◔"},
	{ViewSupport, "Support", "?"},
	{ViewSettings, "Settings", "⚙"},
	{ViewAccount, "Account", "☺"},
}

func (v View) String() string {
	for _, item := range navItems {
		if item.view == v {
			return item.label
		}
	}
	if v == ViewFeedPosts {
		return "Feed Posts"
	}
	return "Unknown"
}

// showsPosts reports whether the view is a post grid loaded on entry.
func (v View) showsPosts() bool {
	return v == ViewNewsfeed || v == ViewSaved || v == ViewFeedPosts
}

// activeNav is the highlighted sidebar entry. A selected feed and an active
// nav entry are mutually exclusive: while a feed is selected there is none.
func (m Model) activeNav() (View, bool) {
	if m.view == ViewFeedPosts {
		return 0, false
	}
	return m.view, true
}

// Navigate switches to a sidebar view, clearing any feed selection.
func (m *Model) Navigate(v View) tea.Cmd {
	if v == ViewFeedPosts {
		return nil
	}
	m.view = v
	m.feedID = uuid.Nil
	m.deps.Cache.SelectFeed(nil)
	m.sidebarCursor = int(v)
	return tea.Batch(m.enterView(), m.rebuildPanel())
}

// SelectFeed shows one feed's posts, clearing the active nav entry.
func (m *Model) SelectFeed(id uuid.UUID) tea.Cmd {
	m.view = ViewFeedPosts
	m.feedID = id
	m.deps.Cache.SelectFeed(&id)
	return tea.Batch(m.enterView(), m.rebuildPanel())
}

// enterView resets per-view state and starts the view's data loading. It
// bumps the generation so results of loads started for the previous view
// are dropped when they arrive.
func (m *Model) enterView() tea.Cmd {
	m.gen++
	m.posts = postsState{}
	m.cardCursor = 0
	m.reader = nil

	m.searchInput.Blur()
	m.nameInput.Blur()
	m.urlInput.Blur()

	switch m.view {
	case ViewSearch:
		m.searchInput.SetValue("")
		m.searchSeq++
		m.searchHint = searchHintShort
		m.posts.phase = phaseIdle
		m.focus = focusMain
		return m.searchInput.Focus()
	case ViewCreateFeed:
		m.createField = 0
		m.createStatus = ""
		m.createFailed = false
		m.focus = focusMain
		return m.nameInput.Focus()
	case ViewNewsfeed, ViewFeedPosts, ViewSaved:
		return m.loadPosts()
	}
	return nil
}

// reload re-runs the current post view's loading under a new generation.
func (m *Model) reload() tea.Cmd {
	if !m.view.showsPosts() {
		return nil
	}
	m.gen++
	return m.loadPosts()
}

func (m *Model) loadPosts() tea.Cmd {
	if m.view == ViewSaved && m.deps.Saved.Len() == 0 {
		m.posts = postsState{phase: phaseEmpty}
		return nil
	}
	if !m.deps.Session.IsAuthenticated() {
		m.posts = postsState{phase: phaseLoginRequired}
		return nil
	}
	m.posts = postsState{phase: phaseLoading}
	return tea.Batch(fetchPosts(m.deps.API, m.gen, 0), m.spinner.Tick)
}
