package feed

import "net/http"

// feedAccept lists feed content types first, some servers return html without it
const feedAccept = "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,text/html;q=0.7,*/*;q=0.5"

// addBrowserHeaders adds browser-like headers for feed fetching,
// a few publishers reject requests carrying only a bot user agent
func addBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", feedAccept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
}
