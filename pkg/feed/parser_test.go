package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsbot/pkg/domain"
)

func rssFeed(n int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Test Feed</title>
	<link>http://example.com</link>
	<description>Test Description</description>`)
	for i := 1; i <= n; i++ {
		sb.WriteString(fmt.Sprintf(`
	<item>
		<title>Article %d</title>
		<link>http://example.com/article%d</link>
		<description>Article %d description</description>
	</item>`, i, i, i))
	}
	sb.WriteString("\n</channel>\n</rss>")
	return sb.String()
}

func feedServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(content))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParser_Parse(t *testing.T) {
	t.Run("rss feed with limit", func(t *testing.T) {
		server := feedServer(t, rssFeed(5))

		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.NoError(t, err)
		require.Len(t, articles, 3)

		for i, a := range articles {
			assert.Equal(t, fmt.Sprintf("Article %d", i+1), a.Title)
			assert.Equal(t, fmt.Sprintf("http://example.com/article%d", i+1), a.Link)
			assert.Equal(t, fmt.Sprintf("Article %d description", i+1), a.Excerpt)
		}
	})

	t.Run("atom feed", func(t *testing.T) {
		atomContent := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Test Atom Feed</title>
	<link href="https://example.com/"/>
	<updated>2006-01-02T15:04:05Z</updated>
	<entry>
		<title>Atom Entry 1</title>
		<link href="https://example.com/entry1"/>
		<id>entry1</id>
		<updated>2006-01-02T15:04:05Z</updated>
		<summary>Entry 1 summary</summary>
	</entry>
</feed>`
		server := feedServer(t, atomContent)

		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 10)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, domain.Article{Title: "Atom Entry 1", Link: "https://example.com/entry1", Excerpt: "Entry 1 summary"}, articles[0])
	})

	t.Run("missing fields use sentinels", func(t *testing.T) {
		content := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>T</title>
	<item><guid isPermaLink="false">only-guid</guid></item>
</channel></rss>`
		server := feedServer(t, content)

		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, domain.Article{Title: domain.NoTitle, Link: "", Excerpt: ""}, articles[0])
	})

	t.Run("html excerpt stripped", func(t *testing.T) {
		content := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>T</title>
	<item>
		<title>Html</title>
		<link>http://example.com/html</link>
		<description><![CDATA[<p>Models &amp; agents</p>
		<p>are   <b>here</b></p>]]></description>
	</item>
</channel></rss>`
		server := feedServer(t, content)

		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "Models & agents are here", articles[0].Excerpt)
	})

	t.Run("headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "newsbot-test", r.Header.Get("User-Agent"))
			assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
			_, _ = w.Write([]byte(rssFeed(1)))
		}))
		defer server.Close()

		parser := NewParser(5*time.Second, "newsbot-test")
		_, err := parser.Parse(context.Background(), server.URL, 1)
		require.NoError(t, err)
	})

	t.Run("zero limit", func(t *testing.T) {
		server := feedServer(t, rssFeed(2))
		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 0)
		require.NoError(t, err)
		assert.Empty(t, articles)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		parser := NewParser(10*time.Millisecond, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "context deadline exceeded")
		assert.Nil(t, articles)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code: 500")
		assert.Nil(t, articles)
	})

	t.Run("invalid feed content", func(t *testing.T) {
		server := feedServer(t, "not xml content")
		parser := NewParser(5*time.Second, "newsbot-test")
		articles, err := parser.Parse(context.Background(), server.URL, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feed")
		assert.Nil(t, articles)
	})

	t.Run("empty url", func(t *testing.T) {
		parser := NewParser(5*time.Second, "newsbot-test")
		_, err := parser.Parse(context.Background(), "", 3)
		require.Error(t, err)
	})
}

func TestParser_FetchArticles(t *testing.T) {
	t.Run("keeps feed order and limit", func(t *testing.T) {
		feedA := feedServer(t, strings.ReplaceAll(rssFeed(5), "Article", "A"))
		feedB := feedServer(t, strings.ReplaceAll(rssFeed(2), "Article", "B"))

		parser := NewParser(5*time.Second, "newsbot-test")
		res := parser.FetchArticles(context.Background(), []string{feedA.URL, feedB.URL}, 3)
		assert.Empty(t, res.Failures)
		require.Len(t, res.Articles, 5)

		titles := make([]string, 0, len(res.Articles))
		for _, a := range res.Articles {
			titles = append(titles, a.Title)
		}
		assert.Equal(t, []string{"A 1", "A 2", "A 3", "B 1", "B 2"}, titles)
	})

	t.Run("unreachable feed is skipped", func(t *testing.T) {
		good := feedServer(t, rssFeed(4))
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		badURL := bad.URL
		bad.Close() // connection refused from now on

		feeds := []string{badURL, good.URL, "  ", "not-a-valid-url"}
		parser := NewParser(time.Second, "newsbot-test")
		res := parser.FetchArticles(context.Background(), feeds, 2)

		require.Len(t, res.Articles, 2)
		assert.LessOrEqual(t, len(res.Articles), len(feeds)*2)
		assert.Equal(t, "Article 1", res.Articles[0].Title)
		assert.Equal(t, "Article 2", res.Articles[1].Title)

		require.Len(t, res.Failures, 3)
		assert.Equal(t, badURL, res.Failures[0].URL)
		assert.Empty(t, res.Failures[1].URL)
		assert.Equal(t, "not-a-valid-url", res.Failures[2].URL)
		assert.Contains(t, res.Failures[0].Error(), "unavailable")
	})

	t.Run("no feeds", func(t *testing.T) {
		parser := NewParser(time.Second, "newsbot-test")
		res := parser.FetchArticles(context.Background(), nil, 3)
		assert.Empty(t, res.Articles)
		assert.NotNil(t, res.Articles)
		assert.Empty(t, res.Failures)
	})
}
