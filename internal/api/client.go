package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

const DefaultBaseURL = "http://localhost:8080/v1"

// TokenSource supplies the bearer token at call time; "" means logged out.
type TokenSource interface {
	Token() string
}

// Client talks to the aggregator's JSON API. It never retries and never
// caches: every call is one round trip.
type Client struct {
	tokens TokenSource
	http   *resty.Client
	log    logrus.FieldLogger
}

type Options struct {
	BaseURL string
	// Timeout bounds a single request; zero means no timeout.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

func NewClient(tokens TokenSource, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(opts.Logger)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{
		tokens: tokens,
		http:   rc,
		log:    opts.Logger,
	}
}

type createUserRequest struct {
	Name string `json:"name"`
}

type createFeedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type followFeedRequest struct {
	FeedID uuid.UUID `json:"feed_id"`
}

// CreateUser registers a new user. It is the only unauthenticated call.
func (c *Client) CreateUser(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "creating user", http.MethodPost, "/users", false, createUserRequest{Name: name}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetFeeds(ctx context.Context) ([]models.Feed, error) {
	var feeds []models.Feed
	if err := c.do(ctx, "fetching feeds", http.MethodGet, "/feeds", true, nil, &feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

func (c *Client) CreateFeed(ctx context.Context, name, url string) (*models.Feed, error) {
	var feed models.Feed
	if err := c.do(ctx, "creating feed", http.MethodPost, "/feeds", true, createFeedRequest{Name: name, URL: url}, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

func (c *Client) GetFeedFollows(ctx context.Context) ([]models.FeedFollow, error) {
	var follows []models.FeedFollow
	if err := c.do(ctx, "fetching feed follows", http.MethodGet, "/feed_follows", true, nil, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}

func (c *Client) FollowFeed(ctx context.Context, feedID uuid.UUID) (*models.FeedFollow, error) {
	var follow models.FeedFollow
	if err := c.do(ctx, "following feed", http.MethodPost, "/feed_follows", true, followFeedRequest{FeedID: feedID}, &follow); err != nil {
		return nil, err
	}
	return &follow, nil
}

func (c *Client) UnfollowFeed(ctx context.Context, followID uuid.UUID) error {
	return c.do(ctx, "unfollowing feed", http.MethodDelete, "/feed_follows/"+followID.String(), true, nil, nil)
}

func (c *Client) GetPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, "fetching posts", http.MethodGet, "/posts", true, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// do performs one request. A nil out skips decoding, so an empty 2xx body
// is accepted.
func (c *Client) do(ctx context.Context, op, method, path string, protected bool, body, out any) error {
	req := c.http.R().SetContext(ctx)

	if protected {
		token := c.tokens.Token()
		if token == "" {
			return ErrUnauthenticated
		}
		req.SetHeader("Authorization", "ApiKey "+token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "path": path}).WithError(err).Warn("request failed")
		return &TransportError{Op: op, Err: err}
	}

	if !resp.IsSuccess() {
		c.log.WithFields(logrus.Fields{"op": op, "path": path, "status": resp.StatusCode()}).Warn("API returned an error")
		return &RequestError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}
