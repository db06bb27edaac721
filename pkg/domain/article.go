package domain

import "fmt"

// NoTitle is used for feed entries without a title
const NoTitle = "No Title"

// Article represents a single feed entry picked for posting
type Article struct {
	Title   string
	Link    string
	Excerpt string // plain text summary from the feed entry
}

// FeedError reports a feed which could not be fetched or parsed
type FeedError struct {
	URL string
	Err error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s unavailable: %v", e.URL, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// FetchResult is the outcome of fetching a list of feeds.
// Articles keep the configured feed order, failed feeds contribute nothing.
type FetchResult struct {
	Articles []Article
	Failures []*FeedError
}

// RunStats summarizes a single pipeline run
type RunStats struct {
	Fetched    int // articles fetched from all feeds
	Attempted  int // posts attempted, limited by max posts
	Published  int // posts accepted by the publishing API
	Failed     int // posts rejected by the publishing API
	FeedErrors int // feeds skipped due to errors
	Fallbacks  int // summaries replaced by article title
}

func (s RunStats) String() string {
	return fmt.Sprintf("fetched:%d, attempted:%d, published:%d, failed:%d, feed errors:%d, fallbacks:%d",
		s.Fetched, s.Attempted, s.Published, s.Failed, s.FeedErrors, s.Fallbacks)
}
