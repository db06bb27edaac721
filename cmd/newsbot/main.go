package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/newsbot/pkg/bot"
	"github.com/umputun/newsbot/pkg/config"
	"github.com/umputun/newsbot/pkg/feed"
	"github.com/umputun/newsbot/pkg/llm"
	"github.com/umputun/newsbot/pkg/scheduler"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"newsbot.yml" description:"configuration file (yaml or ini)"`
	EnvFile string `long:"env-file" env:"ENV_FILE" default:".env" description:"env file with credentials"`
	Daemon  bool   `long:"daemon" env:"DAEMON" description:"keep running and repeat every bot.post_interval"`
	Dry     bool   `long:"dry" env:"DRY" description:"log posts instead of publishing"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)
	log.Printf("[INFO] starting newsbot version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// re-setup logger to hide credentials
	setupLog(opts.Debug, opts.NoColor, cfg.Secrets()...)
	log.Printf("[DEBUG] config loaded from %s, feeds: %d, max posts: %d", opts.Config, len(cfg.Bot.Feeds), cfg.Bot.MaxPosts)
	log.Printf("[DEBUG] audience woeid %s, query %q", cfg.Bot.WOEID, cfg.Bot.Query)

	b := bot.New(bot.Params{
		Fetcher:       feed.NewParser(cfg.Bot.FeedTimeout, cfg.Bot.UserAgent),
		Summarizer:    llm.NewSummarizer(cfg.LLM, cfg.Bot.MaxPostLength),
		Authenticator: newAuthenticator(cfg.Twitter, opts.Dry),
		Feeds:         cfg.Bot.Feeds,
		PerFeedLimit:  cfg.Bot.MaxArticlesPerFeed,
		MaxPosts:      cfg.Bot.MaxPosts,
		PostDelay:     cfg.Bot.PostDelay,
		Hashtags:      cfg.Bot.Hashtags,
		MaxPostLength: cfg.Bot.MaxPostLength,
	})

	if !opts.Daemon {
		if _, err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot run failed: %w", err)
		}
		return nil
	}

	sched := scheduler.New("bot run", cfg.Bot.PostInterval, func(ctx context.Context) error {
		_, err := b.Run(ctx)
		return err
	})
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler failed: %w", err)
	}
	return nil
}

// loadEnvFile sets variables from env file, existing variables are not overridden.
// Missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("[DEBUG] env file %s not found, skipped", path)
			return nil
		}
		return err
	}
	log.Printf("[DEBUG] env loaded from %s", path)
	return nil
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
