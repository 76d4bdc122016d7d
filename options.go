package redline

import (
	"log/slog"
	"time"

	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/revision"
)

// EditOptions holds configuration for applying edits.
type EditOptions struct {
	author string
	mode   docx.RevisionMode

	// Batch behaviour
	stopOnFailure bool
	relaxAttempts int

	now    func() time.Time
	logger *slog.Logger
}

// defaultOptions returns the default edit options.
func defaultOptions() EditOptions {
	return EditOptions{
		author: revision.DefaultAuthor,
		mode:   docx.SkipRevisions,
	}
}

// clone returns a copy of the options. All fields are values or shared
// read-only references.
func (o EditOptions) clone() EditOptions {
	return o
}

// session translates the options into revision session options. A batch
// author, when given, takes precedence over the configured one.
func (o EditOptions) session(batchAuthor string) []revision.Option {
	author := o.author
	if batchAuthor != "" {
		author = batchAuthor
	}
	opts := []revision.Option{
		revision.WithAuthor(author),
		revision.WithMode(o.mode),
		revision.StopOnFailure(o.stopOnFailure),
		revision.WithRelaxation(o.relaxAttempts),
	}
	if o.now != nil {
		opts = append(opts, revision.WithClock(o.now))
	}
	if o.logger != nil {
		opts = append(opts, revision.WithLogger(o.logger))
	}
	return opts
}
