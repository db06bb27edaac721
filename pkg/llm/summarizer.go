package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/umputun/newsbot/pkg/config"
	"github.com/umputun/newsbot/pkg/domain"
	"github.com/umputun/newsbot/pkg/post"
)

// default instruction header of the summary prompt
const defaultPromptHeader = `You are an AI assistant focusing on AI news. Summarize the following article in about 3 or 4 sentences. Provide key insights and context. Be concise and natural and creative:`

// prompt layout: instruction header, title, excerpt
const promptTemplate = "%s\n\nTitle: %s\n\nSummary: %s\n\nMulti-sentence Summary:"

// rough estimate used to keep the prompt within the context window
const charsPerToken = 4

var (
	errNoChoices = errors.New("no response from llm")
	errEmptyText = errors.New("empty text from llm")
)

// SummaryError reports a failed summarization, the article title is used instead
type SummaryError struct {
	Title string
	Err   error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summarize %q: %v", e.Title, e.Err)
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}

// Summarizer makes short summaries of articles with a text completion model.
// Works with any OpenAI-compatible completions endpoint, e.g. llama.cpp server holding the local model.
type Summarizer struct {
	client *openai.Client
	config config.LLMConfig
	header string
	limit  int
}

// NewSummarizer creates a summarizer, limit is the maximum summary length in runes
func NewSummarizer(cfg config.LLMConfig, limit int) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	header := cfg.Prompt
	if header == "" {
		header = defaultPromptHeader
	}

	if limit <= 0 {
		limit = post.DefaultLimit
	}

	return &Summarizer{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		header: header,
		limit:  limit,
	}
}

// Summarize returns a cleaned summary of the article. On any model failure it returns
// the article title unmodified together with *SummaryError, so the text is always usable.
func (s *Summarizer) Summarize(ctx context.Context, article domain.Article) (string, error) {
	prompt := s.buildPrompt(article)
	lgr.Printf("[DEBUG] summary prompt for %q:\n%s", article.Title, prompt)

	text, err := s.complete(ctx, prompt)
	if err != nil {
		return article.Title, &SummaryError{Title: article.Title, Err: err}
	}
	return text, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	req := openai.CompletionRequest{
		Model:       s.config.Model,
		Prompt:      prompt,
		Temperature: samplingValue(s.config.Temperature),
		TopP:        samplingValue(s.config.TopP),
		MaxTokens:   s.config.MaxTokens,
	}

	resp, err := s.client.CreateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	text := CleanText(resp.Choices[0].Text, s.limit)
	if text == "" {
		return "", errEmptyText
	}
	return text, nil
}

// samplingValue converts a sampling parameter for the request. Zero values are omitted
// from the request body, so zero is sent as the smallest positive float32.
func samplingValue(v float64) float32 {
	if v <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}

// buildPrompt creates the prompt, the excerpt is shortened to fit the context window
func (s *Summarizer) buildPrompt(article domain.Article) string {
	excerpt := article.Excerpt

	if s.config.ContextSize > 0 {
		budget := (s.config.ContextSize - s.config.MaxTokens) * charsPerToken
		budget -= utf8.RuneCountInString(fmt.Sprintf(promptTemplate, s.header, article.Title, ""))
		if budget < 0 {
			budget = 0
		}
		if utf8.RuneCountInString(excerpt) > budget {
			excerpt = string([]rune(excerpt)[:budget])
		}
	}

	return fmt.Sprintf(promptTemplate, s.header, article.Title, excerpt)
}

// CleanText collapses whitespace runs to a single space, trims the result
// and truncates it to limit runes ending with ellipsis
func CleanText(s string, limit int) string {
	return post.Truncate(strings.Join(strings.Fields(s), " "), limit)
}
