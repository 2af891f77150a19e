package postview

import (
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/google/uuid"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

const (
	UnknownSource = "Unknown Source"
	dateLayout    = "Jan 2, 2006"
)

// Card is one rendered post.
type Card struct {
	PostID      uuid.UUID
	Title       string
	Description string
	Source      string
	Date        string
	URL         string
	Saved       bool
}

// FeedLookup resolves a feed by id.
type FeedLookup func(id uuid.UUID) (models.Feed, bool)

var converter = md.NewConverter("", true, nil)

// BuildCards sorts posts newest first and builds a card for each.
func BuildCards(posts []models.Post, lookup FeedLookup, isSaved func(uuid.UUID) bool) []Card {
	sorted := SortNewestFirst(posts)
	cards := make([]Card, 0, len(sorted))
	for _, p := range sorted {
		cards = append(cards, Card{
			PostID:      p.ID,
			Title:       p.Title,
			Description: Markdown(p.Description),
			Source:      SourceName(p.FeedID, lookup),
			Date:        FormatDate(p.PublishedAt),
			URL:         p.URL,
			Saved:       isSaved(p.ID),
		})
	}
	return cards
}

// SourceName is the name of the post's feed, or UnknownSource when the
// cache does not know it.
func SourceName(feedID uuid.UUID, lookup FeedLookup) string {
	if lookup == nil {
		return UnknownSource
	}
	feed, ok := lookup(feedID)
	if !ok || feed.Name == "" {
		return UnknownSource
	}
	return feed.Name
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Unknown date"
	}
	return t.Local().Format(dateLayout)
}

// Markdown converts a feed-supplied HTML description to markdown. Plain text
// passes through; input that fails to convert is returned as is.
func Markdown(description string) string {
	if !strings.ContainsAny(description, "<&") {
		return strings.TrimSpace(description)
	}
	out, err := converter.ConvertString(description)
	if err != nil {
		return description
	}
	return strings.TrimSpace(out)
}
