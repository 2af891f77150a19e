package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Keys of the persisted client state.
const (
	KeyAPIKey             = "apiKey"
	KeyFeedsPanelExpanded = "feedsPanelExpanded"
	KeySavedPosts         = "savedPosts"
	KeyTheme              = "theme"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Get decodes the JSON value stored under key into dest.
// Returns ErrNotFound if the key does not exist.
func (db *DB) Get(ctx context.Context, key string, dest any) error {
	var raw string
	err := db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying key %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decoding key %q: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing any previous value.
func (db *DB) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding key %q: %w", key, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("storing key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (db *DB) Remove(ctx context.Context, key string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// APIKey returns the persisted bearer token, or "" when logged out.
func (db *DB) APIKey(ctx context.Context) (string, error) {
	var key string
	err := db.Get(ctx, KeyAPIKey, &key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return key, err
}

func (db *DB) SetAPIKey(ctx context.Context, key string) error {
	return db.Set(ctx, KeyAPIKey, key)
}

func (db *DB) ClearAPIKey(ctx context.Context) error {
	return db.Remove(ctx, KeyAPIKey)
}

// FeedsPanelExpanded defaults to true when unset or unreadable.
func (db *DB) FeedsPanelExpanded(ctx context.Context) bool {
	var expanded bool
	if err := db.Get(ctx, KeyFeedsPanelExpanded, &expanded); err != nil {
		return true
	}
	return expanded
}

func (db *DB) SetFeedsPanelExpanded(ctx context.Context, expanded bool) error {
	return db.Set(ctx, KeyFeedsPanelExpanded, expanded)
}

// SavedPosts returns the saved post ids in the order they were saved.
func (db *DB) SavedPosts(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Get(ctx, KeySavedPosts, &ids)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ids, err
}

func (db *DB) SetSavedPosts(ctx context.Context, ids []uuid.UUID) error {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return db.Set(ctx, KeySavedPosts, ids)
}

// Theme defaults to light when unset or holding an unknown value.
func (db *DB) Theme(ctx context.Context) string {
	var theme string
	if err := db.Get(ctx, KeyTheme, &theme); err != nil {
		return ThemeLight
	}
	if theme != ThemeDark {
		return ThemeLight
	}
	return theme
}

func (db *DB) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return db.Set(ctx, KeyTheme, theme)
}
