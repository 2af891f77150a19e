package opml

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

type fakeCreator struct {
	created []string
	fail    map[string]bool
}

func (f *fakeCreator) CreateFeed(_ context.Context, name, url string) (*models.Feed, error) {
	if f.fail[url] {
		return nil, errors.New("Couldn't create feed")
	}
	f.created = append(f.created, name+"|"+url)
	return &models.Feed{ID: uuid.New(), Name: name, URL: url}, nil
}

func TestExportImportRoundTrip(t *testing.T) {
	feeds := []models.FeedStatus{
		{Feed: models.Feed{Name: "Go Blog", URL: "https://go.dev/blog/feed.atom"}, Followed: true},
		{Feed: models.Feed{Name: "Lobsters", URL: "https://lobste.rs/rss"}},
	}

	data, err := Export(feeds, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(data), `xmlUrl="https://go.dev/blog/feed.atom"`)
	assert.Contains(t, string(data), "Following")

	creator := &fakeCreator{}
	result, err := Import(context.Background(), data, nil, creator)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, []string{
		"Go Blog|https://go.dev/blog/feed.atom",
		"Lobsters|https://lobste.rs/rss",
	}, creator.created)
}

func TestImportSkipsKnownAndCollectsErrors(t *testing.T) {
	doc := `<?xml version="1.0"?>
<opml version="2.0">
  <head><title>subs</title></head>
  <body>
    <outline text="Tech">
      <outline type="rss" text="Go Blog" xmlUrl="https://go.dev/blog/feed.atom/"/>
      <outline type="rss" text="Broken" xmlUrl="https://broken.example/rss"/>
    </outline>
    <outline type="rss" text="" xmlUrl="https://untitled.example/rss"/>
  </body>
</opml>`
	known := []models.Feed{{URL: "https://go.dev/blog/feed.atom"}}
	creator := &fakeCreator{fail: map[string]bool{"https://broken.example/rss": true}}

	result, err := Import(context.Background(), []byte(doc), known, creator)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken.example")
	assert.Equal(t, []string{"https://untitled.example/rss|https://untitled.example/rss"}, creator.created)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := Import(context.Background(), []byte("not xml <"), nil, &fakeCreator{})
	assert.Error(t, err)
}
