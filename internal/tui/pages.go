package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/thomaskoefod/feeddash/internal/api"
	"github.com/thomaskoefod/feeddash/internal/database"
	"github.com/thomaskoefod/feeddash/internal/feed"
	"github.com/thomaskoefod/feeddash/internal/postview"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

func (m Model) bodyView() string {
	h := m.bodyHeight()

	var cols []string
	if m.sidebarExpanded {
		cols = append(cols, m.sidebarView(h))
		if m.overlay {
			// The floating sidebar covers everything to its right.
			return cols[0]
		}
	} else {
		cols = append(cols, m.styles.reopen.Height(h).Render("»"))
	}
	if m.panelExpanded {
		cols = append(cols, m.panelView(h))
	} else {
		cols = append(cols, m.styles.reopen.Height(h).Render("≡"))
	}
	cols = append(cols, m.mainView(m.mainWidth(), h))
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) sidebarView(h int) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("feeddash"))
	b.WriteString("\n")

	active, hasActive := m.activeNav()
	for i, item := range navItems {
		style := m.styles.navItem
		if hasActive && item.view == active {
			style = m.styles.navActive
		}
		if m.focus == focusSidebar && i == m.sidebarCursor {
			style = style.Reverse(true)
		}
		b.WriteString(style.Render(fmt.Sprintf("%s %d %s", item.icon, i+1, item.label)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.deps.Session.IsAuthenticated() {
		b.WriteString(m.styles.muted.Render("● Logged in"))
	} else {
		b.WriteString(m.styles.help.Render("l: log in"))
	}

	style := m.styles.sidebar
	if m.focus == focusSidebar {
		style = style.BorderForeground(m.styles.focusedBorder)
	}
	return style.Width(sidebarWidth - 1).Height(h).MaxHeight(h).Render(b.String())
}

func (m Model) panelView(h int) string {
	var content string
	switch {
	case !m.deps.Session.IsAuthenticated():
		content = m.styles.title.Render("Feeds") + "\n" +
			"Please log in to see feeds.\n\n" +
			m.styles.help.Render("l: log in")
	case m.feedsLoading && len(m.panel.Items()) <= 1:
		content = m.styles.title.Render("Feeds") + "\n" + m.spinner.View() + " Loading feeds..."
	case len(m.panel.Items()) <= 1:
		content = m.styles.title.Render("Feeds") + "\n"
		if m.feedsErr != nil {
			content += m.styles.errorText.Render(api.Describe(m.feedsErr)) + "\n\n" + m.styles.help.Render("r: retry")
		} else {
			content += m.styles.muted.Render("No feeds found")
		}
	default:
		content = m.panel.View()
		if m.feedsErr != nil {
			content += "\n" + m.styles.errorText.Render(api.Describe(m.feedsErr))
		}
	}

	style := m.styles.panel
	if m.focus == focusPanel {
		style = style.BorderForeground(m.styles.focusedBorder)
	}
	return style.Width(panelWidth - 1).Height(h).MaxHeight(h).Render(content)
}

func (m Model) viewTitle() string {
	if m.view == ViewFeedPosts {
		if f, ok := m.deps.Cache.FeedByID(m.feedID); ok {
			return f.Name
		}
	}
	return m.view.String()
}

func (m Model) mainView(w, h int) string {
	inner := w - 1
	header := m.styles.title.Render(m.viewTitle())
	bodyHeight := h - lipgloss.Height(header)

	var body string
	switch {
	case m.reader != nil:
		body = m.readerView()
	case m.view == ViewSearch:
		body = m.searchView(inner, bodyHeight)
	case m.view == ViewCreateFeed:
		body = m.createView()
	case m.view == ViewNotifications:
		body = m.styles.muted.Render("No notifications yet.")
	case m.view == ViewSupport:
		body = m.supportView()
	case m.view == ViewSettings:
		body = m.settingsView()
	case m.view == ViewAccount:
		body = m.accountView()
	default:
		body = m.postsView(inner, bodyHeight)
	}

	return lipgloss.NewStyle().
		PaddingLeft(1).
		Width(w).
		Height(h).
		MaxHeight(h).
		Render(header + "\n" + body)
}

func (m Model) emptyText() string {
	switch m.view {
	case ViewSaved:
		return "No saved posts yet. Press s on a post to save it."
	case ViewSearch:
		return "No posts match your search."
	case ViewFeedPosts:
		return "This feed has no posts yet."
	default:
		return "No posts found. Follow some feeds to fill your newsfeed."
	}
}

func (m Model) postsView(w, h int) string {
	switch m.posts.phase {
	case phaseLoading:
		return m.spinner.View() + " Loading posts..."
	case phaseLoginRequired:
		return "Please log in to view posts.\n\n" + m.styles.help.Render("l: log in")
	case phaseEmpty:
		return m.styles.cards.Placeholder.Render(m.emptyText())
	case phaseError:
		return m.styles.errorText.Render(api.Describe(m.posts.err)) + "\n\n" + m.styles.help.Render("r: retry")
	case phaseLoaded:
		focused := -1
		if m.focus == focusMain {
			focused = m.cardCursor
		}
		return postview.Render(m.posts.cards, postview.RenderOptions{
			Columns:     m.columns(),
			Width:       w,
			Height:      h,
			Focused:     focused,
			Placeholder: m.emptyText(),
			Styles:      m.styles.cards,
		})
	}
	return ""
}

func (m Model) searchView(w, h int) string {
	top := m.searchInput.View() + "\n" + m.styles.muted.Render(m.searchHint) + "\n"
	if m.posts.phase == phaseIdle {
		return top
	}
	return top + "\n" + m.postsView(w, h-lipgloss.Height(top)-1)
}

func (m Model) createView() string {
	var b strings.Builder
	b.WriteString("Add a new RSS feed to the aggregator.\n\n")
	b.WriteString("Name\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\nURL\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n\n")
	switch {
	case m.creating:
		b.WriteString(m.spinner.View() + " Adding feed...")
	case m.createStatus != "" && m.createFailed:
		b.WriteString(m.styles.errorText.Render(m.createStatus))
	case m.createStatus != "":
		b.WriteString(m.styles.statusText.Render(m.createStatus))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.help.Render("↑/↓: switch field • enter: next/submit"))
	return b.String()
}

func (m Model) supportView() string {
	return "feeddash is a terminal dashboard for your RSS aggregator.\n\n" +
		"Press ? for keyboard shortcuts. Logs are written to the file\n" +
		"configured under log.path."
}

func (m Model) settingsView() string {
	label := "Light"
	if m.theme == database.ThemeDark {
		label = "Dark"
	}
	return fmt.Sprintf("Theme: %s\n\n", m.styles.navActive.Render(label)) +
		m.styles.help.Render("enter: toggle theme")
}

func (m Model) accountView() string {
	if !m.deps.Session.IsAuthenticated() {
		return "You are not logged in.\n\n" + m.styles.help.Render("l: log in")
	}
	return "API Key\n" + m.styles.keyDisplay.Render(maskKey(m.deps.Session.Token())) + "\n\n" +
		m.styles.help.Render("c: copy key • enter: log out")
}

func (m Model) footerView() string {
	status := m.toastView()
	if status == "" && m.focus == focusMain && m.reader == nil {
		if p, ok := m.currentPost(); ok {
			status = m.styles.muted.Render(p.URL)
		}
	}
	return status + "\n" + m.help.View(keys)
}

func (m Model) renderHelp() string {
	h := help.New()
	h.ShowAll = true
	h.Width = m.width
	return m.styles.title.Render("feeddash - Keyboard Shortcuts") + "\n" +
		h.View(keys) + "\n\n" +
		m.styles.help.Render("Press ? or esc to close help")
}

// openReader shows one post in the scrollable reader.
func (m *Model) openReader(p models.Post) {
	vp := viewport.New(m.mainWidth()-1, m.bodyHeight()-1)
	m.reader = &readerState{
		post:     p,
		markdown: postMarkdown(p, postview.SourceName(p.FeedID, m.deps.Cache.FeedByID)),
		viewport: vp,
	}
	m.renderReader()
}

func (m *Model) renderReader() {
	out := m.reader.markdown
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle(m.theme)),
		glamour.WithWordWrap(max(m.reader.viewport.Width-4, 20)),
	)
	if err == nil {
		if rendered, err := r.Render(m.reader.markdown); err == nil {
			out = rendered
		}
	}
	m.reader.viewport.SetContent(out)
	m.reader.viewport.GotoTop()
}

func (m Model) readerView() string {
	hint := "esc: back • o: open in browser • s: save"
	if m.deps.Reader != nil {
		hint += " • f: full article"
	}
	status := ""
	if m.reader.loading {
		status = m.spinner.View() + " Fetching article...\n"
	}
	return m.reader.viewport.View() + "\n" + status + m.styles.help.Render(hint)
}

func postMarkdown(p models.Post, source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "*%s • %s*\n\n", source, postview.FormatDate(p.PublishedAt))
	if desc := postview.Markdown(p.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	if p.URL != "" {
		fmt.Fprintf(&b, "[Read more](%s)\n", p.URL)
	}
	return b.String()
}

func articleMarkdown(p models.Post, a *feed.Article) string {
	title := a.Title
	if title == "" {
		title = p.Title
	}
	var meta []string
	for _, s := range []string{a.Byline, a.SiteName} {
		if s != "" {
			meta = append(meta, s)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(meta) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " • "))
	}
	for _, para := range strings.Split(a.Text, "\n") {
		if para = strings.TrimSpace(para); para != "" {
			b.WriteString(para)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
