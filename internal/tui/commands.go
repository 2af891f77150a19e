package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/thomaskoefod/feeddash/internal/feed"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// RefreshMsg asks the dashboard to reload feeds and the current post view.
// The scheduler sends it from outside the program.
type RefreshMsg struct{}

type feedsLoadedMsg struct {
	err error
}

type postsLoadedMsg struct {
	gen   uint64
	seq   int
	query string
	posts []models.Post
	err   error
}

type searchTickMsg struct {
	seq   int
	query string
}

type followDoneMsg struct {
	feedID   uuid.UUID
	followed bool
	err      error
}

type feedCreatedMsg struct {
	gen  uint64
	feed *models.Feed
	err  error
}

type userCreatedMsg struct {
	user *models.User
	err  error
}

type loggedInMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}

type savedToggledMsg struct {
	postID uuid.UUID
	saved  bool
	err    error
}

type articleLoadedMsg struct {
	postID  uuid.UUID
	article *feed.Article
	err     error
}

type themeChangedMsg struct {
	theme string
	err   error
}

type toastExpiredMsg struct {
	id int
}

type errorMsg struct {
	err error
}

type statusMsg string

func refreshFeeds(cache FeedCache) tea.Cmd {
	return func() tea.Msg {
		return feedsLoadedMsg{err: cache.Refresh(context.Background())}
	}
}

// fetchPosts loads every post; views filter the result themselves. seq is
// the search keystroke the fetch belongs to, 0 outside search.
func fetchPosts(client PostsClient, gen uint64, seq int) tea.Cmd {
	return func() tea.Msg {
		posts, err := client.GetPosts(context.Background())
		return postsLoadedMsg{gen: gen, seq: seq, posts: posts, err: err}
	}
}

func searchPosts(client PostsClient, gen uint64, seq int, query string) tea.Cmd {
	return func() tea.Msg {
		posts, err := client.GetPosts(context.Background())
		return postsLoadedMsg{gen: gen, seq: seq, query: query, posts: posts, err: err}
	}
}

func debounceSearch(d time.Duration, seq int, query string) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, query: query}
	})
}

func toggleFollow(cache FeedCache, status models.FeedStatus) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if status.Followed {
			err := cache.Unfollow(ctx, status.FollowID)
			return followDoneMsg{feedID: status.ID, followed: false, err: err}
		}
		_, err := cache.Follow(ctx, status.ID)
		return followDoneMsg{feedID: status.ID, followed: true, err: err}
	}
}

// createFeed optionally probes the URL first; a blank name then defaults to
// the feed's own title.
func createFeed(cache FeedCache, prober Prober, gen uint64, name, url string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if prober != nil {
			probe, err := prober.Probe(ctx, url)
			if err != nil {
				return feedCreatedMsg{gen: gen, err: fmt.Errorf("checking feed: %w", err)}
			}
			if name == "" {
				name = probe.Title
			}
		}
		if strings.TrimSpace(name) == "" {
			return feedCreatedMsg{gen: gen, err: errors.New("feed name is required")}
		}
		f, err := cache.CreateFeed(ctx, name, url)
		if f != nil {
			// The feed exists even if the follow-up refresh failed.
			return feedCreatedMsg{gen: gen, feed: f}
		}
		return feedCreatedMsg{gen: gen, err: err}
	}
}

func createUser(client PostsClient, sess Session, name string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		user, err := client.CreateUser(ctx, name)
		if err != nil {
			return userCreatedMsg{err: err}
		}
		if err := sess.SetToken(ctx, user.APIKey); err != nil {
			return userCreatedMsg{err: err}
		}
		return userCreatedMsg{user: user}
	}
}

func login(sess Session, key string) tea.Cmd {
	return func() tea.Msg {
		return loggedInMsg{err: sess.SetToken(context.Background(), key)}
	}
}

func logout(sess Session) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: sess.Clear(context.Background())}
	}
}

func toggleSaved(set SavedSet, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		saved, err := set.Toggle(context.Background(), id)
		return savedToggledMsg{postID: id, saved: saved, err: err}
	}
}

func readArticle(reader ArticleReader, postID uuid.UUID, url string) tea.Cmd {
	return func() tea.Msg {
		article, err := reader.Read(url)
		return articleLoadedMsg{postID: postID, article: article, err: err}
	}
}

func setTheme(prefs Prefs, theme string) tea.Cmd {
	return func() tea.Msg {
		return themeChangedMsg{theme: theme, err: prefs.SetTheme(context.Background(), theme)}
	}
}

func persistPanel(prefs Prefs, expanded bool) tea.Cmd {
	return func() tea.Msg {
		if err := prefs.SetFeedsPanelExpanded(context.Background(), expanded); err != nil {
			return errorMsg{fmt.Errorf("saving panel state: %w", err)}
		}
		return nil
	}
}

func copyToClipboard(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return errorMsg{fmt.Errorf("copying to clipboard: %w", err)}
		}
		return statusMsg("Copied!")
	}
}

func openURL(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errorMsg{fmt.Errorf("opening browser: %w", err)}
		}
		return statusMsg("Opened in browser")
	}
}

func expireToast(d time.Duration, id int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
