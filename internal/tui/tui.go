package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thomaskoefod/feeddash/internal/api"
	"github.com/thomaskoefod/feeddash/internal/config"
	"github.com/thomaskoefod/feeddash/internal/database"
	"github.com/thomaskoefod/feeddash/internal/feed"
	"github.com/thomaskoefod/feeddash/internal/layout"
	"github.com/thomaskoefod/feeddash/internal/postview"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// PostsClient is the part of the API the dashboard calls directly. Feed
// and follow calls go through FeedCache.
type PostsClient interface {
	GetPosts(ctx context.Context) ([]models.Post, error)
	CreateUser(ctx context.Context, name string) (*models.User, error)
}

type Session interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Token() string
	IsAuthenticated() bool
}

type FeedCache interface {
	Refresh(ctx context.Context) error
	CreateFeed(ctx context.Context, name, url string) (*models.Feed, error)
	Follow(ctx context.Context, feedID uuid.UUID) (*models.FeedFollow, error)
	Unfollow(ctx context.Context, followID uuid.UUID) error
	FeedsWithFollowStatus() []models.FeedStatus
	FeedByID(id uuid.UUID) (models.Feed, bool)
	SelectFeed(id *uuid.UUID)
	Reset()
}

type SavedSet interface {
	Contains(id uuid.UUID) bool
	Len() int
	Toggle(ctx context.Context, id uuid.UUID) (bool, error)
}

// Prefs holds the persisted UI preferences.
type Prefs interface {
	FeedsPanelExpanded(ctx context.Context) bool
	SetFeedsPanelExpanded(ctx context.Context, expanded bool) error
	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error
}

type Prober interface {
	Probe(ctx context.Context, url string) (*feed.Probe, error)
}

type ArticleReader interface {
	Read(url string) (*feed.Article, error)
}

type Deps struct {
	API     PostsClient
	Session Session
	Cache   FeedCache
	Saved   SavedSet
	Prefs   Prefs
	// Prober checks feed URLs before they are created. Nil skips the check.
	Prober Prober
	// Reader fetches full articles. Nil disables the full-article key.
	Reader    ArticleReader
	Clipboard func(string) error
	OpenURL   func(string) error
	UI        config.UIConfig
	Log       logrus.FieldLogger
}

type focusArea int

const (
	focusSidebar focusArea = iota
	focusPanel
	focusMain
)

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseLoaded
	phaseEmpty
	phaseLoginRequired
	phaseError
)

// postsState is the post grid of the current view. posts is filtered for
// the view and sorted newest first; cards mirrors it one to one.
type postsState struct {
	phase phase
	posts []models.Post
	cards []postview.Card
	err   error
}

type readerState struct {
	post     models.Post
	markdown string
	viewport viewport.Model
	loading  bool
}

const (
	searchHintShort = "Type at least 2 characters to search."

	sidebarWidth = 24
	panelWidth   = 34
	reopenWidth  = 3
	footerHeight = 2
)

type Model struct {
	deps   Deps
	styles styles
	theme  string

	view   View
	feedID uuid.UUID
	// gen identifies the current view instance. Results carrying an older
	// generation belong to a view the user already left.
	gen uint64

	width, height   int
	sized           bool
	overlay         bool
	sidebarExpanded bool
	panelExpanded   bool
	focus           focusArea
	sidebarCursor   int

	panel        list.Model
	pending      map[uuid.UUID]bool
	feedsLoading bool
	feedsErr     error

	posts      postsState
	cardCursor int
	reader     *readerState

	searchInput textinput.Model
	searchSeq   int
	searchHint  string

	nameInput    textinput.Model
	urlInput     textinput.Model
	createField  int
	createStatus string
	createFailed bool
	creating     bool

	login  *loginModal
	apiKey *apiKeyModal

	toast    *toast
	toastSeq int

	spinner  spinner.Model
	help     help.Model
	showHelp bool
}

func New(deps Deps) Model {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.OpenURL == nil {
		deps.OpenURL = openBrowser
	}
	if deps.UI.CellWidthPx <= 0 {
		deps.UI.CellWidthPx = 8
	}

	ctx := context.Background()
	theme := deps.Prefs.Theme(ctx)
	st := newStyles(theme)

	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, panelWidth-1, 0)
	l.Title = "Feeds"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = st.title

	namePlaceholder := "Feed name"
	if deps.Prober != nil {
		namePlaceholder = "Feed name (blank uses the feed's title)"
	}

	m := Model{
		deps:            deps,
		styles:          st,
		theme:           theme,
		panelExpanded:   deps.Prefs.FeedsPanelExpanded(ctx),
		sidebarExpanded: true,
		focus:           focusMain,
		panel:           l,
		pending:         make(map[uuid.UUID]bool),
		searchInput:     newInput("Search posts...", 100),
		nameInput:       newInput(namePlaceholder, 100),
		urlInput:        newInput("https://example.com/feed.xml", 500),
		spinner:         spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:            help.New(),
	}
	if deps.Session.IsAuthenticated() {
		m.feedsLoading = true
	} else {
		m.login = newLoginModal(tabNewUser)
	}
	// Startup always lands on the newsfeed. The load itself is issued by Init.
	m.Navigate(ViewNewsfeed)
	return m
}

func (m Model) Init() tea.Cmd {
	if !m.deps.Session.IsAuthenticated() {
		return nil
	}
	return tea.Batch(
		refreshFeeds(m.deps.Cache),
		fetchPosts(m.deps.API, m.gen, 0),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case RefreshMsg:
		cmd := m.refreshAll()
		return m, cmd

	case feedsLoadedMsg:
		m.feedsLoading = false
		m.feedsErr = msg.err
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("loading feeds failed")
		}
		m.rebuildCards()
		cmd := m.rebuildPanel()
		if msg.err != nil && api.IsUnauthorized(msg.err) {
			m.requireLogin()
		}
		return m, cmd

	case postsLoadedMsg:
		return m.handlePostsLoaded(msg)

	case searchTickMsg:
		if m.view != ViewSearch || msg.seq != m.searchSeq {
			return m, nil
		}
		if !m.deps.Session.IsAuthenticated() {
			m.posts = postsState{phase: phaseLoginRequired}
			return m, nil
		}
		m.posts = postsState{phase: phaseLoading}
		return m, tea.Batch(searchPosts(m.deps.API, m.gen, msg.seq, msg.query), m.spinner.Tick)

	case followDoneMsg:
		delete(m.pending, msg.feedID)
		cmds := []tea.Cmd{m.rebuildPanel()}
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).WithField("feed_id", msg.feedID).Warn("changing follow failed")
			cmd := tea.Batch(append(cmds, m.showToast(toastError, api.Describe(msg.err)))...)
			return m, cmd
		}
		text := "Feed followed successfully!"
		if !msg.followed {
			text = "Feed unfollowed successfully!"
		}
		cmds = append(cmds, m.showToast(toastSuccess, text))
		if m.view == ViewNewsfeed {
			cmds = append(cmds, m.reload())
		}
		return m, tea.Batch(cmds...)

	case feedCreatedMsg:
		m.creating = false
		current := msg.gen == m.gen
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("adding feed failed")
			text := api.Describe(msg.err)
			if current {
				m.createStatus = text
				m.createFailed = true
			}
			cmd := m.showToast(toastError, text)
			return m, cmd
		}
		if current {
			m.createStatus = fmt.Sprintf("Added %q.", msg.feed.Name)
			m.createFailed = false
			m.nameInput.SetValue("")
			m.urlInput.SetValue("")
			m.createField = 0
			if m.focus == focusMain {
				m.setFocus(focusMain)
			}
		}
		cmd := tea.Batch(m.rebuildPanel(), m.showToast(toastSuccess, "Feed added successfully!"))
		return m, cmd

	case userCreatedMsg:
		if msg.err != nil {
			cmd := m.loginFailed(msg.err)
			return m, cmd
		}
		m.login = nil
		m.apiKey = &apiKeyModal{key: msg.user.APIKey}
		m.deps.Log.WithField("user", msg.user.Name).Info("account created")
		cmd := tea.Batch(m.showToast(toastSuccess, "Account created!"), m.afterLogin())
		return m, cmd

	case loggedInMsg:
		if msg.err != nil {
			cmd := m.loginFailed(msg.err)
			return m, cmd
		}
		m.login = nil
		cmd := tea.Batch(m.showToast(toastSuccess, "Logged in successfully!"), m.afterLogin())
		return m, cmd

	case loggedOutMsg:
		// The session drops the key from memory even when removing the
		// stored copy fails, so the dashboard logs out either way.
		m.deps.Cache.Reset()
		m.pending = make(map[uuid.UUID]bool)
		m.feedsErr = nil
		m.feedsLoading = false
		cmd := m.Navigate(ViewNewsfeed)
		m.login = newLoginModal(tabAPIKey)
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("removing stored api key failed")
			toastCmd := m.showToast(toastError, "Logged out, but the stored key could not be removed: "+api.Describe(msg.err))
			return m, tea.Batch(cmd, toastCmd)
		}
		toastCmd := m.showToast(toastInfo, "Logged out")
		return m, tea.Batch(cmd, toastCmd)

	case savedToggledMsg:
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).Warn("saving post failed")
			cmd := m.showToast(toastError, "Could not save post: "+msg.err.Error())
			return m, cmd
		}
		m.rebuildCards()
		if msg.saved {
			cmd := m.showToast(toastSuccess, "Post saved!")
			return m, cmd
		}
		cmd := m.showToast(toastInfo, "Post unsaved")
		return m, cmd

	case articleLoadedMsg:
		if m.reader == nil || m.reader.post.ID != msg.postID {
			return m, nil
		}
		m.reader.loading = false
		if msg.err != nil {
			m.deps.Log.WithError(msg.err).WithField("url", m.reader.post.URL).Warn("reading article failed")
			cmd := m.showToast(toastError, "Could not load the full article")
			return m, cmd
		}
		m.reader.markdown = articleMarkdown(m.reader.post, msg.article)
		m.renderReader()
		return m, nil

	case themeChangedMsg:
		if msg.err != nil {
			cmd := m.showToast(toastError, api.Describe(msg.err))
			return m, cmd
		}
		m.theme = msg.theme
		m.styles = newStyles(msg.theme)
		m.panel.Styles.Title = m.styles.title
		if m.reader != nil {
			m.renderReader()
		}
		return m, nil

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case statusMsg:
		cmd := m.showToast(toastInfo, string(msg))
		return m, cmd

	case errorMsg:
		m.deps.Log.WithError(msg.err).Warn("action failed")
		cmd := m.showToast(toastError, msg.err.Error())
		return m, cmd

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m Model) handlePostsLoaded(msg postsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || (m.view == ViewSearch && msg.seq != m.searchSeq) {
		m.deps.Log.WithFields(logrus.Fields{"gen": msg.gen, "current": m.gen}).Debug("dropping stale posts result")
		return m, nil
	}
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.posts = postsState{phase: phaseLoginRequired}
			if !errors.Is(msg.err, api.ErrUnauthenticated) {
				// The server rejected the stored key.
				m.requireLogin()
			}
			return m, nil
		}
		m.deps.Log.WithError(msg.err).Warn("loading posts failed")
		m.posts = postsState{phase: phaseError, err: msg.err}
		return m, nil
	}

	posts := msg.posts
	switch m.view {
	case ViewSaved:
		posts = postview.FilterSaved(posts, m.deps.Saved.Contains)
	case ViewFeedPosts:
		posts = postview.FilterByFeed(posts, m.feedID)
	case ViewSearch:
		posts = postview.MatchQuery(posts, msg.query)
		m.searchHint = fmt.Sprintf("%d results for %q", len(posts), strings.TrimSpace(msg.query))
	}
	m.posts = postsState{phase: phaseLoaded, posts: postview.SortNewestFirst(posts)}
	m.rebuildCards()
	m.cardCursor = max(min(m.cardCursor, len(posts)-1), 0)
	return m, nil
}

func (m *Model) rebuildCards() {
	if m.posts.phase != phaseLoaded {
		return
	}
	m.posts.cards = postview.BuildCards(m.posts.posts, m.deps.Cache.FeedByID, m.deps.Saved.Contains)
}

func (m *Model) rebuildPanel() tea.Cmd {
	var selected *uuid.UUID
	if m.view == ViewFeedPosts {
		selected = &m.feedID
	}
	return m.panel.SetItems(feedItems(m.deps.Cache.FeedsWithFollowStatus(), m.pending, selected))
}

func (m *Model) requireLogin() {
	if m.login == nil {
		m.login = newLoginModal(tabAPIKey)
	}
}

func (m *Model) loginFailed(err error) tea.Cmd {
	m.deps.Log.WithError(err).Warn("login failed")
	text := api.Describe(err)
	if m.login != nil {
		m.login.busy = false
		m.login.err = text
	}
	return m.showToast(toastError, text)
}

func (m *Model) afterLogin() tea.Cmd {
	m.feedsLoading = true
	return tea.Batch(refreshFeeds(m.deps.Cache), m.reload(), m.spinner.Tick)
}

// refreshAll reloads the feeds panel and the current post view.
func (m *Model) refreshAll() tea.Cmd {
	if !m.deps.Session.IsAuthenticated() {
		return nil
	}
	m.feedsLoading = true
	return tea.Batch(refreshFeeds(m.deps.Cache), m.reload(), m.spinner.Tick)
}

func (m Model) busy() bool {
	return m.posts.phase == phaseLoading ||
		m.feedsLoading ||
		m.creating ||
		(m.login != nil && m.login.busy) ||
		(m.reader != nil && m.reader.loading)
}

func (m Model) viewportPx() int {
	return layout.CellWidth(m.width, m.deps.UI.CellWidthPx)
}

func (m Model) columns() int {
	return layout.GridColumns(m.viewportPx(), m.panelExpanded)
}

func (m Model) sidebarCols() int {
	if m.sidebarExpanded {
		return sidebarWidth
	}
	return reopenWidth
}

func (m Model) panelCols() int {
	if m.panelExpanded {
		return panelWidth
	}
	return reopenWidth
}

func (m Model) mainWidth() int {
	return max(m.width-m.sidebarCols()-m.panelCols(), 20)
}

func (m Model) bodyHeight() int {
	return max(m.height-footerHeight, 5)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	px := m.viewportPx()
	overlay := layout.SidebarIsOverlay(px)
	if !m.sized || overlay != m.overlay {
		m.sidebarExpanded = layout.DefaultSidebarExpanded(px)
	}
	m.sized = true
	m.overlay = overlay
	if !m.sidebarExpanded && m.focus == focusSidebar {
		m.setFocus(focusMain)
	}

	m.panel.SetSize(panelWidth-1, m.bodyHeight())
	m.help.Width = w
	if m.reader != nil {
		m.reader.viewport.Width = m.mainWidth() - 1
		m.reader.viewport.Height = m.bodyHeight() - 1
		m.renderReader()
	}
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.searchInput.Blur()
	m.nameInput.Blur()
	m.urlInput.Blur()
	if f != focusMain {
		return
	}
	switch m.view {
	case ViewSearch:
		m.searchInput.Focus()
	case ViewCreateFeed:
		if m.createField == 0 {
			m.nameInput.Focus()
		} else {
			m.urlInput.Focus()
		}
	}
}

func (m *Model) cycleFocus(dir int) {
	var order []focusArea
	if m.sidebarExpanded {
		order = append(order, focusSidebar)
	}
	if m.panelExpanded && !(m.overlay && m.sidebarExpanded) {
		order = append(order, focusPanel)
	}
	order = append(order, focusMain)

	i := len(order) - 1
	for j, f := range order {
		if f == m.focus {
			i = j
		}
	}
	m.setFocus(order[(i+dir+len(order))%len(order)])
}

func (m *Model) toggleSidebar() {
	m.sidebarExpanded = !m.sidebarExpanded
	if m.sidebarExpanded {
		m.sidebarCursor = max(int(m.view), 0) % len(navItems)
		m.setFocus(focusSidebar)
	} else if m.focus == focusSidebar {
		m.setFocus(focusMain)
	}
}

func (m *Model) togglePanel() tea.Cmd {
	m.panelExpanded = !m.panelExpanded
	if !m.panelExpanded && m.focus == focusPanel {
		m.setFocus(focusMain)
	}
	return persistPanel(m.deps.Prefs, m.panelExpanded)
}

// typing reports whether keys go to a text input rather than shortcuts.
func (m Model) typing() bool {
	return m.focus == focusMain && (m.view == ViewSearch || m.view == ViewCreateFeed)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch {
	case m.apiKey != nil:
		return m.handleAPIKeyKeys(msg)
	case m.login != nil:
		return m.handleLoginKeys(msg)
	case m.showHelp:
		return m.handleHelpKeys(msg)
	case m.reader != nil:
		return m.handleReaderKeys(msg)
	case m.focus == focusPanel && m.panel.SettingFilter():
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, cmd
	case m.typing():
		return m.handleInputKeys(msg)
	}

	switch {
	case key.Matches(msg, keys.Back):
		if m.overlay && m.sidebarExpanded {
			m.toggleSidebar()
		}
		return m, nil
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.FocusNext):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, keys.FocusPrev):
		m.cycleFocus(-1)
		return m, nil
	case key.Matches(msg, keys.ToggleSidebar):
		m.toggleSidebar()
		return m, nil
	case key.Matches(msg, keys.TogglePanel):
		cmd := m.togglePanel()
		return m, cmd
	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, keys.Refresh):
		cmd := m.refreshAll()
		return m, cmd
	case key.Matches(msg, keys.Login):
		if !m.deps.Session.IsAuthenticated() {
			m.login = newLoginModal(tabNewUser)
		}
		return m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		if r := msg.Runes[0]; r >= '1' && r < '1'+rune(len(navItems)) {
			cmd := m.Navigate(navItems[r-'1'].view)
			return m, cmd
		}
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKeys(msg)
	case focusPanel:
		return m.handlePanelKeys(msg)
	default:
		return m.handleMainKeys(msg)
	}
}

func (m Model) handleAPIKeyKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Copy):
		return m, copyToClipboard(m.deps.Clipboard, m.apiKey.key)
	case key.Matches(msg, keys.Select), key.Matches(msg, keys.Back):
		m.apiKey = nil
	}
	return m, nil
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.login = nil
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab:
		m.login.switchTab()
		return m, nil
	}

	submit, cmd := m.login.update(msg)
	if !submit {
		return m, cmd
	}
	value := m.login.value()
	if m.login.tab == tabNewUser {
		if value == "" {
			m.login.err = "Please enter your name."
			return m, nil
		}
		m.login.busy = true
		m.login.err = ""
		return m, tea.Batch(createUser(m.deps.API, m.deps.Session, value), m.spinner.Tick)
	}
	if value == "" {
		m.login.err = "Please enter your API key."
		return m, nil
	}
	m.login.busy = true
	m.login.err = ""
	return m, tea.Batch(login(m.deps.Session, value), m.spinner.Tick)
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.showHelp = false
	}
	return m, nil
}

func (m Model) handleReaderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.reader.post
	switch {
	case msg.String() == "esc", msg.String() == "backspace":
		m.reader = nil
		return m, nil
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Open):
		return m, openURL(m.deps.OpenURL, p.URL)
	case key.Matches(msg, keys.Save):
		return m, toggleSaved(m.deps.Saved, p.ID)
	case key.Matches(msg, keys.FullArticle):
		if m.deps.Reader == nil || m.reader.loading || p.URL == "" {
			return m, nil
		}
		m.reader.loading = true
		return m, tea.Batch(readArticle(m.deps.Reader, p.ID, p.URL), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.reader.viewport, cmd = m.reader.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyTab:
		m.cycleFocus(1)
		return m, nil
	case tea.KeyShiftTab:
		m.cycleFocus(-1)
		return m, nil
	}
	if m.view == ViewSearch {
		return m.updateSearch(msg)
	}
	return m.updateCreateForm(msg)
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.moveCursor(-m.columns())
		return m, nil
	case tea.KeyDown:
		m.moveCursor(m.columns())
		return m, nil
	case tea.KeyEnter:
		if p, ok := m.currentPost(); ok {
			m.openReader(p)
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	q := m.searchInput.Value()
	if q == before {
		return m, cmd
	}

	// Every edit supersedes the pending tick, so only the last keystroke
	// of a burst fetches.
	m.searchSeq++
	if !postview.ValidQuery(q) {
		m.posts = postsState{phase: phaseIdle}
		m.searchHint = searchHintShort
		return m, cmd
	}
	return m, tea.Batch(cmd, debounceSearch(m.deps.UI.SearchDebounce, m.searchSeq, q))
}

func (m Model) updateCreateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.createField = 0
		m.setFocus(focusMain)
		return m, nil
	case tea.KeyDown:
		m.createField = 1
		m.setFocus(focusMain)
		return m, nil
	case tea.KeyEnter:
		if m.createField == 0 {
			m.createField = 1
			m.setFocus(focusMain)
			return m, nil
		}
		cmd := m.submitCreate()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.createField == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.urlInput, cmd = m.urlInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitCreate() tea.Cmd {
	if m.creating {
		return nil
	}
	if !m.deps.Session.IsAuthenticated() {
		m.createStatus = api.Describe(api.ErrUnauthenticated)
		m.createFailed = true
		return nil
	}
	name := strings.TrimSpace(m.nameInput.Value())
	url := strings.TrimSpace(m.urlInput.Value())
	if url == "" || (name == "" && m.deps.Prober == nil) {
		m.createStatus = "Please fill in both fields."
		m.createFailed = true
		return nil
	}
	m.creating = true
	m.createStatus = ""
	m.createFailed = false
	return tea.Batch(createFeed(m.deps.Cache, m.deps.Prober, m.gen, name, url), m.spinner.Tick)
}

func (m Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.sidebarCursor = max(m.sidebarCursor-1, 0)
	case key.Matches(msg, keys.Down):
		m.sidebarCursor = min(m.sidebarCursor+1, len(navItems)-1)
	case key.Matches(msg, keys.Select):
		cmd := m.Navigate(navItems[m.sidebarCursor].view)
		if m.overlay {
			m.sidebarExpanded = false
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	item, ok := m.panel.SelectedItem().(feedItem)
	switch {
	case key.Matches(msg, keys.Select):
		if !ok || item.all {
			cmd := m.Navigate(ViewNewsfeed)
			return m, cmd
		}
		cmd := m.SelectFeed(item.status.ID)
		return m, cmd
	case key.Matches(msg, keys.Follow):
		if !ok || item.all || m.pending[item.status.ID] {
			return m, nil
		}
		if !m.deps.Session.IsAuthenticated() {
			cmd := m.showToast(toastError, api.Describe(api.ErrUnauthenticated))
			return m, cmd
		}
		m.pending[item.status.ID] = true
		cmd := tea.Batch(m.rebuildPanel(), toggleFollow(m.deps.Cache, item.status))
		return m, cmd
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

func (m Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewSettings:
		if key.Matches(msg, keys.Select) {
			next := database.ThemeDark
			if m.theme == database.ThemeDark {
				next = database.ThemeLight
			}
			return m, setTheme(m.deps.Prefs, next)
		}
		return m, nil
	case ViewAccount:
		if !m.deps.Session.IsAuthenticated() {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Copy):
			return m, copyToClipboard(m.deps.Clipboard, m.deps.Session.Token())
		case key.Matches(msg, keys.Select):
			return m, logout(m.deps.Session)
		}
		return m, nil
	}
	if !m.view.showsPosts() {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Search):
		cmd := m.Navigate(ViewSearch)
		return m, cmd
	case key.Matches(msg, keys.Up):
		m.moveCursor(-m.columns())
	case key.Matches(msg, keys.Down):
		m.moveCursor(m.columns())
	case key.Matches(msg, keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, keys.Select):
		if p, ok := m.currentPost(); ok {
			m.openReader(p)
		}
	case key.Matches(msg, keys.Save):
		if p, ok := m.currentPost(); ok {
			return m, toggleSaved(m.deps.Saved, p.ID)
		}
	case key.Matches(msg, keys.Open):
		if p, ok := m.currentPost(); ok {
			return m, openURL(m.deps.OpenURL, p.URL)
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	switch {
	case m.overlay && m.sidebarExpanded && msg.X >= sidebarWidth:
		// A click outside the floating sidebar dismisses it.
		m.toggleSidebar()
	case !m.sidebarExpanded && msg.X < reopenWidth:
		m.toggleSidebar()
	case !m.panelExpanded && msg.X >= m.sidebarCols() && msg.X < m.sidebarCols()+reopenWidth:
		cmd := m.togglePanel()
		return m, cmd
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	n := len(m.posts.posts)
	if n == 0 {
		return
	}
	m.cardCursor = max(min(m.cardCursor+delta, n-1), 0)
}

func (m Model) currentPost() (models.Post, bool) {
	if m.posts.phase != phaseLoaded || m.cardCursor < 0 || m.cardCursor >= len(m.posts.posts) {
		return models.Post{}, false
	}
	return m.posts.posts[m.cardCursor], true
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	switch {
	case m.apiKey != nil:
		return m.place(m.apiKey.view(m.styles))
	case m.login != nil:
		return m.place(m.login.view(m.styles, m.spinner.View()))
	case m.showHelp:
		return m.renderHelp()
	}
	return m.bodyView() + "\n" + m.footerView()
}

func (m Model) place(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
