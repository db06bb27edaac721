package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsbot/pkg/domain"
	"github.com/umputun/newsbot/pkg/post"
	"github.com/umputun/newsbot/pkg/publisher"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/summarizer.go -pkg mocks -skip-ensure -fmt goimports . Summarizer
//go:generate moq -out mocks/publisher.go -pkg mocks -skip-ensure -fmt goimports . Publisher
//go:generate moq -out mocks/authenticator.go -pkg mocks -skip-ensure -fmt goimports . Authenticator

// Fetcher retrieves articles from feeds
type Fetcher interface {
	FetchArticles(ctx context.Context, feedURLs []string, perFeedLimit int) domain.FetchResult
}

// Summarizer makes a summary of an article, returns usable text even with error
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (string, error)
}

// Publisher submits a post and returns its id
type Publisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

// Authenticator makes a publisher bound to credentials, called once per run
type Authenticator interface {
	Authenticate(ctx context.Context) (Publisher, error)
}

// AuthFunc is an adapter to use a function as Authenticator
type AuthFunc func(ctx context.Context) (Publisher, error)

// Authenticate calls f(ctx)
func (f AuthFunc) Authenticate(ctx context.Context) (Publisher, error) { return f(ctx) }

// Bot runs the fetch, summarize, compose and publish pipeline.
// Single run is a bounded linear scan over fetched articles, stopping at MaxPosts attempts.
type Bot struct {
	Params
	composer post.Composer
}

// Params for the bot
type Params struct {
	Fetcher       Fetcher
	Summarizer    Summarizer
	Authenticator Authenticator
	Feeds         []string
	PerFeedLimit  int
	MaxPosts      int
	PostDelay     time.Duration // pause between posts
	Hashtags      string
	MaxPostLength int
}

// New makes a bot with the given params
func New(params Params) *Bot {
	return &Bot{
		Params:   params,
		composer: post.Composer{Hashtags: params.Hashtags, Limit: params.MaxPostLength},
	}
}

// Run executes the pipeline once. Failures of a single feed, summary or post are logged and counted,
// they never stop the run. Error returned only if authentication fails or the context is canceled,
// stats collected so far are returned in both cases.
func (b *Bot) Run(ctx context.Context) (domain.RunStats, error) {
	var stats domain.RunStats

	pub, err := b.Authenticator.Authenticate(ctx)
	if err != nil {
		return stats, fmt.Errorf("authenticate: %w", err)
	}

	res := b.Fetcher.FetchArticles(ctx, b.Feeds, b.PerFeedLimit)
	stats.Fetched = len(res.Articles)
	stats.FeedErrors = len(res.Failures)
	for _, f := range res.Failures {
		lgr.Printf("[WARN] %v", f)
	}
	lgr.Printf("[INFO] fetched %d articles from %d feeds, %d feeds failed", stats.Fetched, len(b.Feeds), stats.FeedErrors)

	for i, article := range res.Articles {
		if stats.Attempted >= b.MaxPosts {
			break
		}

		b.processArticle(ctx, pub, article, &stats)

		// pause only if another post may follow
		if stats.Attempted < b.MaxPosts && i < len(res.Articles)-1 {
			if err := sleep(ctx, b.PostDelay); err != nil {
				return stats, fmt.Errorf("run interrupted: %w", err)
			}
		}
	}

	lgr.Printf("[INFO] run completed, %s", stats)
	return stats, nil
}

// processArticle summarizes, composes and publishes a single article
func (b *Bot) processArticle(ctx context.Context, pub Publisher, article domain.Article, stats *domain.RunStats) {
	summary, err := b.Summarizer.Summarize(ctx, article)
	if err != nil {
		stats.Fallbacks++
		lgr.Printf("[WARN] summarization failed, using title: %v", err)
	}

	text := b.composer.Compose(summary, article.Link)
	stats.Attempted++

	id, err := pub.Publish(ctx, text)
	switch {
	case errors.Is(err, publisher.ErrForbidden):
		stats.Failed++
		lgr.Printf("[WARN] post rejected, no write access or monthly limit reached: %v", err)
	case err != nil:
		stats.Failed++
		lgr.Printf("[WARN] post failed for %s: %v", article.Link, err)
	default:
		stats.Published++
		lgr.Printf("[INFO] posted %s, id %s", article.Link, id)
	}
}

// sleep pauses for d or until context canceled
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
