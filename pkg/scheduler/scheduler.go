package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

// Job is a single scheduled run
type Job func(ctx context.Context) error

// Scheduler runs a job immediately and then at a fixed interval until stopped.
// Runs never overlap, a tick is skipped if the previous run is still active.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
}

// New makes a scheduler for the job. Fractions of a second in the interval are dropped,
// intervals shorter than a second run every second.
func New(name string, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{name: name, interval: interval, job: job}
}

// Run blocks until the context is canceled and waits for the active job to finish
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	schedule := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(schedule, func() { s.runJob(ctx) }); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", s.name, schedule, err)
	}

	// run immediately on start
	s.runJob(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c.Start()
	lgr.Printf("[INFO] scheduler started for %s, every %v", s.name, s.interval)
	if entries := c.Entries(); len(entries) > 0 {
		lgr.Printf("[DEBUG] next %s run at %s", s.name, entries[0].Next.Format(time.RFC3339))
	}

	<-ctx.Done()
	lgr.Printf("[INFO] stopping scheduler for %s", s.name)
	<-c.Stop().Done()
	lgr.Printf("[INFO] scheduler for %s stopped", s.name)
	return ctx.Err()
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	st := time.Now()
	lgr.Printf("[INFO] starting %s", s.name)
	if err := s.job(ctx); err != nil {
		lgr.Printf("[ERROR] %s failed: %v", s.name, err)
		return
	}
	lgr.Printf("[INFO] %s completed in %v", s.name, time.Since(st).Round(time.Millisecond))
}

// cronLogger adapts lgr to cron.Logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	lgr.Printf("[DEBUG] cron %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	lgr.Printf("[WARN] cron %s: %v %v", msg, err, keysAndValues)
}
