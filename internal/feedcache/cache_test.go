package feedcache

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskoefod/feeddash/internal/api"
	"github.com/thomaskoefod/feeddash/internal/apitest"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestCache(t *testing.T) (*Cache, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	logger, _ := test.NewNullLogger()
	client := api.NewClient(staticToken("abc123"), api.Options{BaseURL: srv.URL(), Logger: logger})
	return New(client, logger), srv
}

func ids(feeds []models.Feed) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, f.ID)
	}
	return out
}

func TestPartitionCoversAllFeedsDisjointly(t *testing.T) {
	c, srv := newTestCache(t)
	a := srv.AddFeed("A", "https://a.example/rss")
	b := srv.AddFeed("B", "https://b.example/rss")
	d := srv.AddFeed("D", "https://d.example/rss")
	srv.AddFollow(b.ID)
	// A follow for a feed the server no longer lists must not leak in.
	srv.AddFollow(uuid.New())

	require.NoError(t, c.Refresh(context.Background()))

	followed := ids(c.FollowedFeeds())
	available := ids(c.AvailableFeeds())
	assert.Equal(t, []uuid.UUID{b.ID}, followed)
	assert.Equal(t, []uuid.UUID{a.ID, d.ID}, available)

	union := map[uuid.UUID]bool{}
	for _, id := range append(followed, available...) {
		assert.False(t, union[id], "feed %s in both partitions", id)
		union[id] = true
	}
	assert.Len(t, union, len(c.Feeds()))
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	b := srv.AddFeed("B", "https://b.example/rss")
	srv.AddFollow(a.ID)
	require.NoError(t, c.Refresh(ctx))

	beforeFollowed, beforeAvailable := ids(c.FollowedFeeds()), ids(c.AvailableFeeds())

	follow, err := c.Follow(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids(c.FollowedFeeds()))
	followID, ok := c.FollowIDFor(b.ID)
	require.True(t, ok)
	assert.Equal(t, follow.ID, followID)

	require.NoError(t, c.Unfollow(ctx, follow.ID))
	assert.Equal(t, beforeFollowed, ids(c.FollowedFeeds()))
	assert.Equal(t, beforeAvailable, ids(c.AvailableFeeds()))

	// Local mutations only: one refresh's worth of GETs.
	assert.Equal(t, 1, srv.Count("GET /feeds"))
}

func TestFailedFollowLeavesCacheAlone(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	require.NoError(t, c.Refresh(ctx))

	srv.Fail("POST /feed_follows", http.StatusInternalServerError)
	_, err := c.Follow(ctx, a.ID)
	require.Error(t, err)
	assert.Empty(t, c.FollowedFeeds())
}

func TestPartialRefreshFailureKeepsPreviousCache(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	srv.AddFollow(a.ID)
	require.NoError(t, c.Refresh(ctx))

	srv.AddFeed("B", "https://b.example/rss")
	srv.Fail("GET /feed_follows", http.StatusInternalServerError)

	err := c.Refresh(ctx)
	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)

	assert.Len(t, c.Feeds(), 1, "feeds must not be replaced when follows failed")
	assert.Equal(t, []uuid.UUID{a.ID}, ids(c.FollowedFeeds()))
}

func TestCreateFeedRefreshes(t *testing.T) {
	c, _ := newTestCache(t)

	feed, err := c.CreateFeed(context.Background(), "Go Blog", "https://go.dev/blog/feed.atom")
	require.NoError(t, err)

	got, ok := c.FeedByID(feed.ID)
	require.True(t, ok)
	assert.Equal(t, "Go Blog", got.Name)
	assert.Equal(t, []uuid.UUID{feed.ID}, ids(c.AvailableFeeds()))
}

func TestConcurrentFollowsAreNotLost(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	b := srv.AddFeed("B", "https://b.example/rss")
	require.NoError(t, c.Refresh(ctx))

	gate := srv.Gate("POST /feed_follows")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Follow(ctx, id)
		}()
	}

	<-gate.Arrived
	gate.Release()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, ids(c.FollowedFeeds()))
	assert.Empty(t, c.AvailableFeeds())
}

func TestFollowWaitsForInFlightRefresh(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	require.NoError(t, c.Refresh(ctx))

	gate := srv.Gate("GET /feed_follows")

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- c.Refresh(ctx) }()
	<-gate.Arrived

	followDone := make(chan error, 1)
	go func() {
		_, err := c.Follow(ctx, a.ID)
		followDone <- err
	}()

	assert.Never(t, func() bool { return srv.Count("POST /feed_follows") > 0 },
		100*time.Millisecond, 10*time.Millisecond, "follow must wait for the refresh")

	gate.Release()
	require.NoError(t, <-refreshDone)
	require.NoError(t, <-followDone)

	assert.Equal(t, []uuid.UUID{a.ID}, ids(c.FollowedFeeds()), "follow survives the refresh")
}

func TestSelection(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok := c.Selected()
	assert.False(t, ok)

	id := uuid.New()
	c.SelectFeed(&id)
	got, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, id, got)

	c.SelectFeed(nil)
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestFeedsWithFollowStatus(t *testing.T) {
	c, srv := newTestCache(t)
	a := srv.AddFeed("A", "https://a.example/rss")
	b := srv.AddFeed("B", "https://b.example/rss")
	follow := srv.AddFollow(b.ID)
	require.NoError(t, c.Refresh(context.Background()))

	statuses := c.FeedsWithFollowStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, a.ID, statuses[0].ID)
	assert.False(t, statuses[0].Followed)
	assert.True(t, statuses[1].Followed)
	assert.Equal(t, follow.ID, statuses[1].FollowID)

	c.Reset()
	assert.Empty(t, c.Feeds())
}

func TestResetDoesNotWaitForInFlightFollow(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()
	a := srv.AddFeed("A", "https://a.example/rss")
	require.NoError(t, c.Refresh(ctx))

	gate := srv.Gate("POST /feed_follows")
	followDone := make(chan error, 1)
	go func() {
		_, err := c.Follow(ctx, a.ID)
		followDone <- err
	}()
	<-gate.Arrived

	resetDone := make(chan struct{})
	go func() {
		c.Reset()
		close(resetDone)
	}()
	select {
	case <-resetDone:
	case <-time.After(time.Second):
		t.Fatal("Reset blocked on a follow in flight")
	}

	gate.Release()
	require.NoError(t, <-followDone)
	assert.Empty(t, c.Feeds())
	assert.Empty(t, c.FollowedFeeds(), "a follow started before the reset must not repopulate the cache")
	_, ok := c.FollowIDFor(a.ID)
	assert.False(t, ok)
}
