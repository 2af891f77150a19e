// Package apitest runs an in-process stand-in for the aggregator API so
// client-side packages can be tested against real HTTP round trips.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// Request is what the server saw for one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
}

// Gate holds every request to one route until Release is called.
type Gate struct {
	// Arrived receives once per request that reached the gate.
	Arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	users    []models.User
	feeds    []models.Feed
	follows  []models.FeedFollow
	posts    []models.Post
	requests []Request
	failures map[string]int
	gates    map[string]*Gate
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	s := &Server{
		failures: make(map[string]int),
		gates:    make(map[string]*Gate),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/users", s.createUser)
		r.Group(func(r chi.Router) {
			r.Use(requireAPIKey)
			r.Get("/feeds", s.listFeeds)
			r.Post("/feeds", s.createFeed)
			r.Get("/feed_follows", s.listFollows)
			r.Post("/feed_follows", s.createFollow)
			r.Delete("/feed_follows/{followID}", s.deleteFollow)
			r.Get("/posts", s.listPosts)
		})
	})

	s.srv = httptest.NewServer(r)
	t.Cleanup(func() {
		s.mu.Lock()
		for _, g := range s.gates {
			g.Release()
		}
		s.mu.Unlock()
		s.srv.Close()
	})
	return s
}

// URL is the API base URL, including the /v1 prefix.
func (s *Server) URL() string {
	return s.srv.URL + "/v1"
}

func (s *Server) AddFeed(name, url string) models.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	feed := models.Feed{ID: uuid.New(), Name: name, URL: url, CreatedAt: time.Now().UTC()}
	s.feeds = append(s.feeds, feed)
	return feed
}

func (s *Server) AddFollow(feedID uuid.UUID) models.FeedFollow {
	s.mu.Lock()
	defer s.mu.Unlock()
	follow := models.FeedFollow{ID: uuid.New(), FeedID: feedID, CreatedAt: time.Now().UTC()}
	s.follows = append(s.follows, follow)
	return follow
}

func (s *Server) AddPost(feedID uuid.UUID, title, description string, publishedAt time.Time) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	post := models.Post{
		ID:          uuid.New(),
		FeedID:      feedID,
		Title:       title,
		Description: description,
		URL:         "https://example.com/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		PublishedAt: publishedAt.UTC(),
	}
	s.posts = append(s.posts, post)
	return post
}

func (s *Server) Follows() []models.FeedFollow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FeedFollow(nil), s.follows...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit route, e.g. "GET /posts".
func (s *Server) Count(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if routeKey(r.Method, r.Path) == route {
			n++
		}
	}
	return n
}

// Fail makes every request to route answer with status until Recover.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Gate installs a gate on route. Requests block until the gate is released.
func (s *Server) Gate(route string) *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &Gate{Arrived: make(chan struct{}, 16), release: make(chan struct{})}
	s.gates[route] = g
	return g
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/v1")
		route := routeKey(r.Method, path)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          path,
			Authorization: r.Header.Get("Authorization"),
		})
		status, failing := s.failures[route]
		gate := s.gates[route]
		s.mu.Unlock()

		if gate != nil {
			gate.Arrived <- struct{}{}
			<-gate.release
		}
		if failing {
			writeError(w, status, "induced failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routeKey collapses a path to "METHOD /resource" so ids do not matter.
func routeKey(method, path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	return method + " /" + parts[0]
}

func requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := strings.CutPrefix(r.Header.Get("Authorization"), "ApiKey ")
		if !ok || strings.TrimSpace(key) == "" {
			writeError(w, http.StatusUnauthorized, "Couldn't find api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeError(w, http.StatusBadRequest, "Couldn't decode parameters")
		return
	}

	s.mu.Lock()
	user := models.User{
		ID:        uuid.New(),
		Name:      body.Name,
		APIKey:    strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt: time.Now().UTC(),
	}
	s.users = append(s.users, user)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) listFeeds(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	feeds := append([]models.Feed{}, s.feeds...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) createFeed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.URL == "" {
		writeError(w, http.StatusBadRequest, "Couldn't decode parameters")
		return
	}

	s.mu.Lock()
	for _, f := range s.feeds {
		if f.URL == body.URL {
			s.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Couldn't create feed")
			return
		}
	}
	feed := models.Feed{ID: uuid.New(), Name: body.Name, URL: body.URL, CreatedAt: time.Now().UTC()}
	s.feeds = append(s.feeds, feed)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, feed)
}

func (s *Server) listFollows(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	follows := append([]models.FeedFollow{}, s.follows...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, follows)
}

func (s *Server) createFollow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FeedID uuid.UUID `json:"feed_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Couldn't decode parameters")
		return
	}

	s.mu.Lock()
	follow := models.FeedFollow{ID: uuid.New(), FeedID: body.FeedID, CreatedAt: time.Now().UTC()}
	s.follows = append(s.follows, follow)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, follow)
}

func (s *Server) deleteFollow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "followID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid feed follow ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.follows {
		if f.ID == id {
			s.follows = append(s.follows[:i], s.follows[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Couldn't find feed follow")
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	posts := append([]models.Post{}, s.posts...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, posts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
