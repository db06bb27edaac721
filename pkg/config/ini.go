package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// parseINI maps the legacy config.ini layout with [Twitter], [Llama] and [Bot] sections.
// Section and key names are case-insensitive, values are taken verbatim (no inline comments),
// so "HASHTAGS = #AI #TechNews" works as expected.
func parseINI(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true, IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, fmt.Errorf("load ini: %w", err)
	}

	cfg := newConfig()

	tw := f.Section("twitter")
	cfg.Twitter.APIKey = tw.Key("api_key").String()
	cfg.Twitter.APIKeySecret = tw.Key("api_key_secret").String()
	cfg.Twitter.AccessToken = tw.Key("access_token").String()
	cfg.Twitter.AccessTokenSecret = tw.Key("access_token_secret").String()
	cfg.Twitter.BearerToken = tw.Key("bearer_token").String()
	cfg.Twitter.BaseURL = tw.Key("base_url").String()

	llama := f.Section("llama")
	cfg.LLM.Model = llama.Key("model_path").String()
	cfg.LLM.Endpoint = llama.Key("endpoint").String()
	cfg.LLM.APIKey = llama.Key("api_key").String()
	cfg.LLM.ContextSize = llama.Key("n_ctx").MustInt(0)
	cfg.LLM.Temperature = llama.Key("temperature").MustFloat64(DefaultTemperature)
	cfg.LLM.TopP = llama.Key("top_p").MustFloat64(DefaultTopP)
	cfg.LLM.MaxTokens = llama.Key("max_tokens").MustInt(0)

	bot := f.Section("bot")
	cfg.Bot.WOEID = bot.Key("woeid").String()
	cfg.Bot.Query = bot.Key("query").String()
	cfg.Bot.MaxPosts = bot.Key("max_tweets").MustInt(0)
	cfg.Bot.MaxArticlesPerFeed = bot.Key("max_articles_per_feed").MustInt(0)
	cfg.Bot.Hashtags = bot.Key("hashtags").String()
	if hours := bot.Key("post_interval_hours").MustInt(0); hours > 0 {
		cfg.Bot.PostInterval = time.Duration(hours) * time.Hour
	}
	if secs := bot.Key("post_delay_seconds").MustInt(0); secs > 0 {
		cfg.Bot.PostDelay = time.Duration(secs) * time.Second
	}
	for _, u := range strings.Split(bot.Key("rss_feeds").String(), ",") {
		if u = strings.TrimSpace(u); u != "" {
			cfg.Bot.Feeds = append(cfg.Bot.Feeds, u)
		}
	}

	return cfg, nil
}
