package publisher

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
)

// DryRun logs posts instead of publishing them
type DryRun struct {
	count int
}

// Publish logs the text and returns a synthetic id
func (d *DryRun) Publish(_ context.Context, text string) (string, error) {
	d.count++
	lgr.Printf("[INFO] dry run, post #%d (%d chars):\n%s", d.count, utf8.RuneCountInString(text), text)
	return fmt.Sprintf("dry-run-%d", d.count), nil
}
