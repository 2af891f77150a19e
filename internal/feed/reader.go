package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Article is the readable part of a post's web page.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	Text     string
}

// Reader extracts the main text of a post's page for the in-terminal reader.
type Reader struct {
	timeout time.Duration
}

func NewReader(timeout time.Duration) *Reader {
	return &Reader{timeout: timeout}
}

func readerHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; feeddash/1.0)")
}

func (r *Reader) Read(pageURL string) (*Article, error) {
	article, err := readability.FromURL(pageURL, r.timeout, readerHeaders)
	if err != nil {
		return nil, fmt.Errorf("extracting article %s: %w", pageURL, err)
	}
	return &Article{
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		Text:     strings.TrimSpace(article.TextContent),
	}, nil
}
