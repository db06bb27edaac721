package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/newsbot/pkg/domain"
)

// Parser fetches RSS/Atom feeds and converts entries to articles
type Parser struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	sanitizer *bluemonday.Policy
}

// NewParser creates a new feed parser, timeout applies to each feed separately
func NewParser(timeout time.Duration, userAgent string) *Parser {
	return &Parser{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		timeout:   timeout,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FetchArticles retrieves every feed in order and takes up to perFeedLimit entries from each.
// A failed feed is reported in the result failures and contributes no articles, it never stops
// processing of the remaining feeds.
func (p *Parser) FetchArticles(ctx context.Context, feedURLs []string, perFeedLimit int) domain.FetchResult {
	res := domain.FetchResult{Articles: []domain.Article{}}
	for _, u := range feedURLs {
		u = strings.TrimSpace(u)
		articles, err := p.Parse(ctx, u, perFeedLimit)
		if err != nil {
			lgr.Printf("[WARN] skip feed %s: %v", u, err)
			res.Failures = append(res.Failures, &domain.FeedError{URL: u, Err: err})
			continue
		}
		lgr.Printf("[DEBUG] fetched %d articles from %s", len(articles), u)
		res.Articles = append(res.Articles, articles...)
	}
	return res
}

// Parse fetches a single feed and returns up to limit articles in feed order
func (p *Parser) Parse(ctx context.Context, feedURL string, limit int) ([]domain.Article, error) {
	if feedURL == "" {
		return nil, fmt.Errorf("empty feed url")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	// fetch feed content
	body, err := p.fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	// parse feed
	parser := gofeed.NewParser()
	feed, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if limit < 0 {
		limit = 0
	}
	if len(items) > limit {
		items = items[:limit]
	}

	result := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article := domain.Article{
			Title:   strings.TrimSpace(item.Title),
			Link:    strings.TrimSpace(item.Link),
			Excerpt: p.plainText(item.Description),
		}
		if article.Title == "" {
			article.Title = domain.NoTitle
		}
		result = append(result, article)
	}

	return result, nil
}

// plainText strips html tags and entities from feed excerpts and collapses whitespace
func (p *Parser) plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(p.sanitizer.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// fetch retrieves content from a URL
func (p *Parser) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	// add browser-like headers
	addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
