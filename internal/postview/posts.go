// Package postview turns post records into the cards shown in every post
// grid: ordering, filtering, and rendering.
package postview

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// MinQueryLength is the shortest search query that triggers a fetch.
const MinQueryLength = 2

// SortNewestFirst returns a copy of posts ordered by publish time, newest
// first. Posts published at the same instant keep their input order.
func SortNewestFirst(posts []models.Post) []models.Post {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b models.Post) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return sorted
}

// ValidQuery reports whether q is long enough to search for.
func ValidQuery(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= MinQueryLength
}

// MatchQuery keeps posts whose title or description contains q, ignoring case.
func MatchQuery(posts []models.Post, q string) []models.Post {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []models.Post
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

func FilterByFeed(posts []models.Post, feedID uuid.UUID) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if p.FeedID == feedID {
			out = append(out, p)
		}
	}
	return out
}

// FilterSaved keeps the posts for which isSaved holds.
func FilterSaved(posts []models.Post, isSaved func(uuid.UUID) bool) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if isSaved(p.ID) {
			out = append(out, p)
		}
	}
	return out
}
