// Package feedcache mirrors the feeds and feed follows known to the API and
// tracks which feed, if any, the user selected.
package feedcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thomaskoefod/feeddash/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Client is the subset of the API the cache needs.
type Client interface {
	GetFeeds(ctx context.Context) ([]models.Feed, error)
	GetFeedFollows(ctx context.Context) ([]models.FeedFollow, error)
	CreateFeed(ctx context.Context, name, url string) (*models.Feed, error)
	FollowFeed(ctx context.Context, feedID uuid.UUID) (*models.FeedFollow, error)
	UnfollowFeed(ctx context.Context, followID uuid.UUID) error
}

// Cache is safe for concurrent use. Mutations (Refresh, Follow, Unfollow,
// CreateFeed) hold mutateMu across their network round trip, so they apply
// one at a time and a refresh can never overwrite a follow that completed
// while it was in flight. Readers and Reset only take mu and never wait on
// the network.
type Cache struct {
	client Client
	log    logrus.FieldLogger

	mutateMu sync.Mutex

	mu       sync.RWMutex
	feeds    []models.Feed
	follows  []models.FeedFollow
	selected *uuid.UUID
	// epoch changes on Reset. A mutation started under an older epoch
	// drops its result instead of committing it.
	epoch uint64
}

func New(client Client, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{client: client, log: log}
}

// Refresh reloads feeds and follows in parallel. The cache is replaced only
// if both requests succeed; otherwise the previous contents stay.
func (c *Cache) Refresh(ctx context.Context) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()
	return c.refreshLocked(ctx, c.currentEpoch())
}

// refreshLocked commits only if no Reset happened since epoch was read.
func (c *Cache) refreshLocked(ctx context.Context, epoch uint64) error {
	var (
		feeds   []models.Feed
		follows []models.FeedFollow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feeds, err = c.client.GetFeeds(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		follows, err = c.client.GetFeedFollows(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.WithError(err).Warn("feed refresh failed, keeping cached feeds")
		return fmt.Errorf("refreshing feeds: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.log.Debug("cache reset during refresh, dropping result")
		return nil
	}
	c.feeds = feeds
	c.follows = follows

	c.log.WithFields(logrus.Fields{"feeds": len(feeds), "follows": len(follows)}).Debug("feeds refreshed")
	return nil
}

// CreateFeed creates a feed and then reloads the cache so it shows up.
func (c *Cache) CreateFeed(ctx context.Context, name, url string) (*models.Feed, error) {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	epoch := c.currentEpoch()
	feed, err := c.client.CreateFeed(ctx, name, url)
	if err != nil {
		return nil, err
	}
	if err := c.refreshLocked(ctx, epoch); err != nil {
		return feed, err
	}
	return feed, nil
}

// Follow records a follow once the server confirmed it.
func (c *Cache) Follow(ctx context.Context, feedID uuid.UUID) (*models.FeedFollow, error) {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	epoch := c.currentEpoch()
	follow, err := c.client.FollowFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.epoch == epoch {
		c.follows = append(c.follows, *follow)
	}
	c.mu.Unlock()

	c.log.WithField("feed_id", feedID).Info("feed followed")
	return follow, nil
}

// Unfollow drops a follow once the server confirmed the delete.
func (c *Cache) Unfollow(ctx context.Context, followID uuid.UUID) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	epoch := c.currentEpoch()
	if err := c.client.UnfollowFeed(ctx, followID); err != nil {
		return err
	}

	c.mu.Lock()
	if c.epoch == epoch {
		kept := make([]models.FeedFollow, 0, len(c.follows))
		for _, f := range c.follows {
			if f.ID != followID {
				kept = append(kept, f)
			}
		}
		c.follows = kept
	}
	c.mu.Unlock()

	c.log.WithField("follow_id", followID).Info("feed unfollowed")
	return nil
}

func (c *Cache) Feeds() []models.Feed {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Feed(nil), c.feeds...)
}

// FollowedFeeds returns the cached feeds with a follow, in feed order.
func (c *Cache) FollowedFeeds() []models.Feed {
	return c.partition(true)
}

// AvailableFeeds returns the cached feeds without a follow, in feed order.
func (c *Cache) AvailableFeeds() []models.Feed {
	return c.partition(false)
}

func (c *Cache) partition(followed bool) []models.Feed {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Feed
	for _, feed := range c.feeds {
		if c.isFollowedLocked(feed.ID) == followed {
			out = append(out, feed)
		}
	}
	return out
}

func (c *Cache) FeedsWithFollowStatus() []models.FeedStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.FeedStatus, 0, len(c.feeds))
	for _, feed := range c.feeds {
		status := models.FeedStatus{Feed: feed}
		if id, ok := c.followIDLocked(feed.ID); ok {
			status.Followed = true
			status.FollowID = id
		}
		out = append(out, status)
	}
	return out
}

func (c *Cache) FeedByID(id uuid.UUID) (models.Feed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, feed := range c.feeds {
		if feed.ID == id {
			return feed, true
		}
	}
	return models.Feed{}, false
}

// FollowIDFor returns the id of the follow for feedID, if followed.
func (c *Cache) FollowIDFor(feedID uuid.UUID) (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.followIDLocked(feedID)
}

func (c *Cache) isFollowedLocked(feedID uuid.UUID) bool {
	_, ok := c.followIDLocked(feedID)
	return ok
}

func (c *Cache) followIDLocked(feedID uuid.UUID) (uuid.UUID, bool) {
	for _, f := range c.follows {
		if f.FeedID == feedID {
			return f.ID, true
		}
	}
	return uuid.Nil, false
}

// SelectFeed sets the single selected feed; nil clears the selection.
func (c *Cache) SelectFeed(id *uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == nil {
		c.selected = nil
		return
	}
	sel := *id
	c.selected = &sel
}

func (c *Cache) Selected() (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return uuid.Nil, false
	}
	return *c.selected, true
}

// Reset forgets everything, used on logout. It does not wait for mutations
// in flight; their results are discarded when they complete.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.feeds = nil
	c.follows = nil
	c.selected = nil
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}
