// Package opml moves feed lists in and out of the aggregator as OPML.
package opml

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/gilliek/go-opml/opml"
	"github.com/thomaskoefod/feeddash/pkg/models"
)

// FeedCreator registers a feed with the aggregator.
type FeedCreator interface {
	CreateFeed(ctx context.Context, name, url string) (*models.Feed, error)
}

type ImportResult struct {
	Total    int
	Imported int
	Skipped  int
	Errors   []string
}

// Export renders feeds as an OPML 2.0 document. Followed feeds are grouped
// under a "Following" outline, the rest under "Available".
func Export(feeds []models.FeedStatus, now time.Time) ([]byte, error) {
	doc := opml.OPML{
		Version: "2.0",
		Head: opml.Head{
			Title:       "feeddash export",
			DateCreated: now.Format(time.RFC1123Z),
		},
	}

	following := opml.Outline{Text: "Following", Title: "Following"}
	available := opml.Outline{Text: "Available", Title: "Available"}
	for _, f := range feeds {
		o := opml.Outline{Type: "rss", Text: f.Name, Title: f.Name, XMLURL: f.URL}
		if f.Followed {
			following.Outlines = append(following.Outlines, o)
		} else {
			available.Outlines = append(available.Outlines, o)
		}
	}
	for _, group := range []opml.Outline{following, available} {
		if len(group.Outlines) > 0 {
			doc.Body.Outlines = append(doc.Body.Outlines, group)
		}
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling OPML: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// Import creates a feed for every outline with an xmlUrl that is not in
// known. Failures are collected, not fatal.
func Import(ctx context.Context, data []byte, known []models.Feed, creator FeedCreator) (*ImportResult, error) {
	var doc opml.OPML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing OPML: %w", err)
	}

	seen := make(map[string]bool, len(known))
	for _, f := range known {
		seen[normalizeURL(f.URL)] = true
	}

	result := &ImportResult{}
	var walk func(outlines []opml.Outline)
	walk = func(outlines []opml.Outline) {
		for _, o := range outlines {
			if o.XMLURL != "" {
				importOne(ctx, o, seen, creator, result)
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)

	return result, nil
}

func importOne(ctx context.Context, o opml.Outline, seen map[string]bool, creator FeedCreator, result *ImportResult) {
	result.Total++
	key := normalizeURL(o.XMLURL)
	if seen[key] {
		result.Skipped++
		return
	}

	name := strings.TrimSpace(o.Title)
	if name == "" {
		name = strings.TrimSpace(o.Text)
	}
	if name == "" {
		name = o.XMLURL
	}

	if _, err := creator.CreateFeed(ctx, name, o.XMLURL); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", o.XMLURL, err))
		return
	}
	seen[key] = true
	result.Imported++
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
