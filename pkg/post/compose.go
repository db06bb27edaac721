// Package post builds the text of social media posts within a fixed character budget.
// Lengths are counted in runes, so multibyte characters are never split.
package post

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultLimit is the post character budget of the publishing API
	DefaultLimit = 280
	// DefaultHashtags appended to every post
	DefaultHashtags = "#AI #TechNews"
	// Ellipsis marks truncated text
	Ellipsis = "…"
	// ReadMore prefixes the article link
	ReadMore = "Read more: "
)

// Composer makes posts from summary, link and hashtags
type Composer struct {
	Hashtags string
	Limit    int
}

// Compose builds a post with default hashtags and limit
func Compose(summary, link string) string {
	return Composer{Hashtags: DefaultHashtags, Limit: DefaultLimit}.Compose(summary, link)
}

// Compose concatenates summary, "Read more" link and hashtags on separate lines,
// truncating the result to the limit. Same inputs always give the same output.
func (c Composer) Compose(summary, link string) string {
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var sb strings.Builder
	sb.WriteString(summary)
	sb.WriteString("\n")
	sb.WriteString(ReadMore)
	sb.WriteString(link)
	sb.WriteString("\n")
	sb.WriteString(c.Hashtags)

	return Truncate(sb.String(), limit)
}

// Truncate cuts s to limit-1 runes followed by an ellipsis if s is longer than limit runes
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + Ellipsis
}
