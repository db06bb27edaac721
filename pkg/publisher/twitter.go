// Package publisher submits posts to the Twitter v2 API.
//
// Failures are classified: ErrForbidden for permission or monthly quota rejections (HTTP 403)
// and ErrAPI for everything else. Both come wrapped in *APIError, callers check them with errors.Is.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/go-pkgz/lgr"
	"github.com/go-resty/resty/v2"

	"github.com/umputun/newsbot/pkg/config"
)

var (
	// ErrForbidden returned when the API refuses the post, no write permission or monthly cap exceeded
	ErrForbidden = errors.New("forbidden")
	// ErrAPI returned for any other failure reported by the API or the transport
	ErrAPI = errors.New("api error")
	// ErrNoCredentials returned by Authenticate when neither user credentials nor bearer token set
	ErrNoCredentials = errors.New("no twitter credentials")
)

// APIError describes a rejected post
type APIError struct {
	Kind   error // ErrForbidden or ErrAPI
	Status int   // http status, 0 for transport errors
	Detail string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Kind, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// Client posts tweets on behalf of the authenticated account
type Client struct {
	rest *resty.Client
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Authenticate makes a client bound to the configured credentials. OAuth 1.0a user context is used
// when consumer key/secret and access token/secret are all set, the bearer token otherwise.
func Authenticate(ctx context.Context, cfg config.TwitterConfig) (*Client, error) {
	var rc *resty.Client
	switch {
	case cfg.HasUserCredentials():
		oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APIKeySecret)
		token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
		rc = resty.NewWithClient(oauthCfg.Client(ctx, token))
		lgr.Printf("[DEBUG] twitter client with user context auth")
	case cfg.BearerToken != "":
		rc = resty.New().SetAuthToken(cfg.BearerToken)
		lgr.Printf("[DEBUG] twitter client with bearer token auth")
	default:
		return nil, ErrNoCredentials
	}

	rc.SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{})

	return &Client{rest: rc}, nil
}

// Publish creates a post with the given text and returns its id
func (c *Client) Publish(ctx context.Context, text string) (string, error) {
	var result tweetResponse
	var apiErr errorResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(tweetRequest{Text: text}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2/tweets")
	if err != nil {
		return "", &APIError{Kind: ErrAPI, Detail: err.Error()}
	}

	if resp.StatusCode() == http.StatusForbidden {
		return "", &APIError{Kind: ErrForbidden, Status: resp.StatusCode(), Detail: apiErr.detail(resp.Status())}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &APIError{Kind: ErrAPI, Status: resp.StatusCode(), Detail: apiErr.detail(resp.Status())}
	}
	if result.Data.ID == "" {
		return "", &APIError{Kind: ErrAPI, Status: resp.StatusCode(), Detail: "no post id in response"}
	}

	return result.Data.ID, nil
}

// detail picks the most descriptive message from the error body
func (e errorResponse) detail(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, m := range e.Errors {
			msgs = append(msgs, m.Message)
		}
		return strings.Join(msgs, "; ")
	}
	if e.Title != "" {
		return e.Title
	}
	return fallback
}

// restyLogger sends resty messages to lgr
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) { lgr.Printf("[WARN] twitter client: "+format, v...) }
func (restyLogger) Warnf(format string, v ...any)  { lgr.Printf("[WARN] twitter client: "+format, v...) }
func (restyLogger) Debugf(format string, v ...any) { lgr.Printf("[DEBUG] twitter client: "+format, v...) }
