package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// default values, mirror the free-tier limits of the publishing API
const (
	DefaultMaxPosts           = 5
	DefaultMaxArticlesPerFeed = 3
	DefaultMaxPostLength      = 280
	DefaultHashtags           = "#AI #TechNews"
	DefaultPostInterval       = 6 * time.Hour
	DefaultPostDelay          = 5 * time.Second
	DefaultTemperature        = 0.8
	DefaultTopP               = 0.9
)

// DefaultFeeds used when no feeds configured
var DefaultFeeds = []string{
	"https://www.techradar.com/rss",
	"https://export.arxiv.org/rss/cs.AI",
}

// Config holds the application configuration
type Config struct {
	Twitter TwitterConfig `yaml:"twitter" json:"twitter" jsonschema:"description=Twitter API credentials"`
	LLM     LLMConfig     `yaml:"llm" json:"llm" jsonschema:"description=Text generation model configuration"`
	Bot     BotConfig     `yaml:"bot" json:"bot" jsonschema:"description=Bot tunables"`
}

// TwitterConfig holds credentials for the publishing API
type TwitterConfig struct {
	APIKey            string        `yaml:"api_key" json:"api_key" jsonschema:"description=Consumer API key"`
	APIKeySecret      string        `yaml:"api_key_secret" json:"api_key_secret" jsonschema:"description=Consumer API key secret"`
	AccessToken       string        `yaml:"access_token" json:"access_token" jsonschema:"description=User access token"`
	AccessTokenSecret string        `yaml:"access_token_secret" json:"access_token_secret" jsonschema:"description=User access token secret"`
	BearerToken       string        `yaml:"bearer_token" json:"bearer_token" jsonschema:"description=Bearer token (optional)"`
	BaseURL           string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://api.twitter.com,description=API base URL"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// LLMConfig holds settings of the text generation model
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"required,default=http://localhost:8080/v1,description=OpenAI-compatible completions endpoint (llama.cpp server)"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (optional for local servers)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"required,description=Model file location or model name"`
	ContextSize int           `yaml:"context_size" json:"context_size" jsonschema:"default=2048,minimum=256,description=Context window in tokens"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.8,minimum=0,maximum=2,description=Sampling temperature"`
	TopP        float64       `yaml:"top_p" json:"top_p" jsonschema:"default=0.9,minimum=0,maximum=1,description=Nucleus sampling probability"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=512,minimum=1,description=Maximum tokens in response"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=2m,description=Request timeout"`
	Prompt      string        `yaml:"prompt" json:"prompt" jsonschema:"description=Instruction header of the summary prompt (optional)"`
}

// BotConfig holds the pipeline tunables
type BotConfig struct {
	WOEID              string        `yaml:"woeid" json:"woeid" jsonschema:"default=23424977,description=Target audience location identifier"`
	Query              string        `yaml:"query" json:"query" jsonschema:"default=AI OR #AI,description=Search query string"`
	MaxPosts           int           `yaml:"max_posts" json:"max_posts" jsonschema:"default=5,minimum=1,description=Maximum posts per run"`
	Feeds              []string      `yaml:"feeds" json:"feeds" jsonschema:"required,description=RSS/Atom feed URLs"`
	MaxArticlesPerFeed int           `yaml:"max_articles_per_feed" json:"max_articles_per_feed" jsonschema:"default=3,minimum=1,description=Maximum articles taken from each feed"`
	PostInterval       time.Duration `yaml:"post_interval" json:"post_interval" jsonschema:"default=6h,description=Interval between runs in daemon mode"`
	PostDelay          time.Duration `yaml:"post_delay" json:"post_delay" jsonschema:"default=5s,description=Pause between posts"`
	Hashtags           string        `yaml:"hashtags" json:"hashtags" jsonschema:"default=#AI #TechNews,description=Hashtags appended to every post"`
	MaxPostLength      int           `yaml:"max_post_length" json:"max_post_length" jsonschema:"default=280,minimum=16,description=Post character budget"`
	FeedTimeout        time.Duration `yaml:"feed_timeout" json:"feed_timeout" jsonschema:"default=30s,description=Timeout for a single feed request"`
	UserAgent          string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=newsbot/1.0,description=User agent for feed requests"`
}

// Load reads configuration from a YAML or INI file, the format is picked by extension
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".conf":
		if cfg, err = parseINI(expanded); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		cfg = newConfig()
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return cfg, nil
}

// newConfig makes a config with sampling defaults set before parsing,
// so an explicit zero temperature or top_p is kept
func newConfig() *Config {
	return &Config{LLM: LLMConfig{Temperature: DefaultTemperature, TopP: DefaultTopP}}
}

func (c *Config) setDefaults() {
	// set defaults for twitter
	if c.Twitter.BaseURL == "" {
		c.Twitter.BaseURL = "https://api.twitter.com"
	}
	if c.Twitter.Timeout == 0 {
		c.Twitter.Timeout = 30 * time.Second
	}

	// set defaults for LLM
	if c.LLM.Endpoint == "" {
		c.LLM.Endpoint = "http://localhost:8080/v1"
	}
	if c.LLM.ContextSize == 0 {
		c.LLM.ContextSize = 2048
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 512
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 2 * time.Minute
	}

	// set defaults for bot
	if c.Bot.WOEID == "" {
		c.Bot.WOEID = "23424977"
	}
	if c.Bot.Query == "" {
		c.Bot.Query = "AI OR #AI"
	}
	if c.Bot.MaxPosts == 0 {
		c.Bot.MaxPosts = DefaultMaxPosts
	}
	if len(c.Bot.Feeds) == 0 {
		c.Bot.Feeds = append([]string(nil), DefaultFeeds...)
	}
	if c.Bot.MaxArticlesPerFeed == 0 {
		c.Bot.MaxArticlesPerFeed = DefaultMaxArticlesPerFeed
	}
	if c.Bot.PostInterval == 0 {
		c.Bot.PostInterval = DefaultPostInterval
	}
	if c.Bot.PostDelay == 0 {
		c.Bot.PostDelay = DefaultPostDelay
	}
	if c.Bot.Hashtags == "" {
		c.Bot.Hashtags = DefaultHashtags
	}
	if c.Bot.MaxPostLength == 0 {
		c.Bot.MaxPostLength = DefaultMaxPostLength
	}
	if c.Bot.FeedTimeout == 0 {
		c.Bot.FeedTimeout = 30 * time.Second
	}
	if c.Bot.UserAgent == "" {
		c.Bot.UserAgent = "newsbot/1.0"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate LLM config
	if cfg.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.TopP < 0 || cfg.LLM.TopP > 1 {
		return fmt.Errorf("llm.top_p must be between 0 and 1")
	}
	if cfg.LLM.MaxTokens >= cfg.LLM.ContextSize {
		return fmt.Errorf("llm.max_tokens must be less than llm.context_size")
	}

	// validate bot config
	if cfg.Bot.MaxPosts < 1 {
		return fmt.Errorf("bot.max_posts must be at least 1")
	}
	if cfg.Bot.MaxArticlesPerFeed < 1 {
		return fmt.Errorf("bot.max_articles_per_feed must be at least 1")
	}
	if cfg.Bot.PostDelay < 0 {
		return fmt.Errorf("bot.post_delay must be non-negative")
	}
	if cfg.Bot.PostInterval < time.Minute {
		return fmt.Errorf("bot.post_interval must be at least 1 minute")
	}
	if cfg.Bot.MaxPostLength < 16 {
		return fmt.Errorf("bot.max_post_length must be at least 16")
	}

	// validate twitter config
	if cfg.Twitter.Timeout < time.Second {
		return fmt.Errorf("twitter.timeout must be at least 1 second")
	}

	return nil
}

// HasUserCredentials reports whether the full OAuth 1.0a credential set is present
func (t TwitterConfig) HasUserCredentials() bool {
	return t.APIKey != "" && t.APIKeySecret != "" && t.AccessToken != "" && t.AccessTokenSecret != ""
}

// Secrets returns all non-empty credentials, used to hide them from logs
func (c *Config) Secrets() []string {
	var res []string
	for _, s := range []string{c.Twitter.APIKey, c.Twitter.APIKeySecret, c.Twitter.AccessToken,
		c.Twitter.AccessTokenSecret, c.Twitter.BearerToken, c.LLM.APIKey} {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}
