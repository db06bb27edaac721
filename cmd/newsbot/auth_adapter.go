package main

import (
	"context"

	"github.com/umputun/newsbot/pkg/bot"
	"github.com/umputun/newsbot/pkg/config"
	"github.com/umputun/newsbot/pkg/publisher"
)

// newAuthenticator adapts publisher construction to the bot.Authenticator interface.
// In dry mode no credentials are needed and posts are only logged.
func newAuthenticator(cfg config.TwitterConfig, dry bool) bot.Authenticator {
	if dry {
		return bot.AuthFunc(func(context.Context) (bot.Publisher, error) {
			return &publisher.DryRun{}, nil
		})
	}

	return bot.AuthFunc(func(ctx context.Context) (bot.Publisher, error) {
		client, err := publisher.Authenticate(ctx, cfg)
		if err != nil {
			return nil, err // avoid typed nil in the interface
		}
		return client, nil
	})
}
