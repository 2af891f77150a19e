package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var ErrNoItems = errors.New("feed has no items")

// Probe is what a feed URL looked like when fetched.
type Probe struct {
	Title       string
	Description string
	Items       int
	Latest      time.Time
}

// Fetcher checks that a URL serves a parseable RSS/Atom/JSON feed before it
// is registered with the aggregator.
type Fetcher struct {
	parser *gofeed.Parser
}

func NewFetcher(timeout time.Duration) *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	return &Fetcher{parser: p}
}

// Probe fetches and parses feedURL. Empty feeds are accepted; ErrNoItems is
// only reported by RequireItems.
func (f *Fetcher) Probe(ctx context.Context, feedURL string) (*Probe, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	probe := &Probe{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Items:       len(parsed.Items),
	}
	for _, item := range parsed.Items {
		if t := publishedAt(item); t.After(probe.Latest) {
			probe.Latest = t
		}
	}
	return probe, nil
}

// RequireItems fails probes of feeds that have never published anything.
func (p *Probe) RequireItems() error {
	if p.Items == 0 {
		return ErrNoItems
	}
	return nil
}

func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
