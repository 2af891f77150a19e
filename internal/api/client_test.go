package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskoefod/feeddash/internal/apitest"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string) (*Client, *apitest.Server, *test.Hook) {
	t.Helper()
	srv := apitest.New(t)
	logger, hook := test.NewNullLogger()
	c := NewClient(staticToken(token), Options{BaseURL: srv.URL(), Logger: logger})
	return c, srv, hook
}

func TestProtectedCallsWithoutTokenSkipNetwork(t *testing.T) {
	c, srv, _ := newTestClient(t, "")
	ctx := context.Background()

	_, err := c.GetFeeds(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.GetFeedFollows(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.GetPosts(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.CreateFeed(ctx, "Go Blog", "https://go.dev/blog/feed.atom")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = c.FollowFeed(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, c.UnfollowFeed(ctx, uuid.New()), ErrUnauthenticated)

	assert.Empty(t, srv.Requests())
}

func TestAuthorizationHeader(t *testing.T) {
	c, srv, _ := newTestClient(t, "abc123")
	srv.AddFeed("Go Blog", "https://go.dev/blog/feed.atom")

	feeds, err := c.GetFeeds(context.Background())
	require.NoError(t, err)
	require.Len(t, feeds, 1)
	assert.Equal(t, "Go Blog", feeds[0].Name)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/feeds", reqs[0].Path)
	assert.Equal(t, "ApiKey abc123", reqs[0].Authorization)
}

func TestCreateUserIsUnauthenticated(t *testing.T) {
	c, srv, _ := newTestClient(t, "")

	user, err := c.CreateUser(context.Background(), "gopher")
	require.NoError(t, err)
	assert.Equal(t, "gopher", user.Name)
	assert.NotEmpty(t, user.APIKey)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)
}

func TestFollowLifecycle(t *testing.T) {
	c, srv, _ := newTestClient(t, "abc123")
	ctx := context.Background()
	feed := srv.AddFeed("Go Blog", "https://go.dev/blog/feed.atom")

	follow, err := c.FollowFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, feed.ID, follow.FeedID)

	follows, err := c.GetFeedFollows(ctx)
	require.NoError(t, err)
	require.Len(t, follows, 1)

	require.NoError(t, c.UnfollowFeed(ctx, follow.ID))
	assert.Empty(t, srv.Follows())

	err = c.UnfollowFeed(ctx, follow.ID)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}

func TestCreateFeedAndPosts(t *testing.T) {
	c, srv, _ := newTestClient(t, "abc123")
	ctx := context.Background()

	feed, err := c.CreateFeed(ctx, "Go Blog", "https://go.dev/blog/feed.atom")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, feed.ID)

	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv.AddPost(feed.ID, "Range over func", "iterators", published)

	posts, err := c.GetPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Range over func", posts[0].Title)
	assert.True(t, posts[0].PublishedAt.Equal(published))
}

func TestRequestErrorCarriesStatusAndBody(t *testing.T) {
	c, srv, hook := newTestClient(t, "abc123")
	srv.Fail("GET /posts", http.StatusInternalServerError)

	_, err := c.GetPosts(context.Background())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "induced failure")
	assert.False(t, IsUnauthorized(err))
	assert.Contains(t, Describe(err), "500")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 500, hook.LastEntry().Data["status"])
}

func TestRejectedKeyIsUnauthorized(t *testing.T) {
	c, srv, _ := newTestClient(t, "abc123")
	srv.Fail("GET /feeds", http.StatusUnauthorized)

	_, err := c.GetFeeds(context.Background())
	assert.True(t, IsUnauthorized(err))
}

func TestTransportError(t *testing.T) {
	c := NewClient(staticToken("abc123"), Options{BaseURL: "http://127.0.0.1:1/v1", Timeout: time.Second})

	_, err := c.GetFeeds(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "fetching feeds", transportErr.Op)
	assert.NotEmpty(t, Describe(err))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthenticated", ErrUnauthenticated, "Please log in to continue"},
		{"request", &RequestError{Op: "x", StatusCode: 400, Body: "bad"}, "Error: 400 bad"},
		{"request no body", &RequestError{Op: "x", StatusCode: 502}, "Error: 502"},
		{"transport", &TransportError{Op: "x", Err: errors.New("connection refused")}, "connection refused"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}
