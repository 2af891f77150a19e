// Package saved keeps the client-only set of bookmarked posts.
package saved

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type Store interface {
	SavedPosts(ctx context.Context) ([]uuid.UUID, error)
	SetSavedPosts(ctx context.Context, ids []uuid.UUID) error
}

// Set is persisted on every change. Ids keep the order they were saved in.
type Set struct {
	store Store

	mu  sync.Mutex
	ids []uuid.UUID
}

// New returns an empty set backed by store.
func New(store Store) *Set {
	return &Set{store: store}
}

func Load(ctx context.Context, store Store) (*Set, error) {
	ids, err := store.SavedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading saved posts: %w", err)
	}
	return &Set{store: store, ids: ids}, nil
}

func (s *Set) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, id)
}

func (s *Set) IDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Toggle flips id's membership and reports whether it is now saved. If the
// store rejects the write, membership is left unchanged.
func (s *Set) Toggle(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.ids)
	i := slices.Index(next, id)
	saved := i == -1
	if saved {
		next = append(next, id)
	} else {
		next = slices.Delete(next, i, i+1)
	}

	if err := s.store.SetSavedPosts(ctx, next); err != nil {
		return !saved, fmt.Errorf("saving bookmarks: %w", err)
	}
	s.ids = next
	return saved, nil
}
