package revision

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tsawler/redline/anchor"
	"github.com/tsawler/redline/docx"
	"github.com/tsawler/redline/edit"
)

// DefaultAuthor is used when no author is configured.
const DefaultAuthor = "Unknown Author"

// State is the lifecycle position of one edit.
type State int

const (
	Pending State = iota
	Resolving
	Resolved
	Mutating
	Applied
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Mutating:
		return "mutating"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the outcome of one edit.
type Result struct {
	Index int
	Spec  edit.Spec
	State State
	Err   error

	// ChangeIDs are the w:id values of the envelopes the edit produced,
	// in allocation order.
	ChangeIDs []int
	// CommentID is the id of the attached comment, or -1.
	CommentID int
	// Relaxed holds the corrected anchor when the edit only applied after
	// a relaxed retry.
	Relaxed string
}

// Option configures a Session.
type Option func(*Session)

// WithAuthor sets the author recorded on revisions and on comments that
// do not name their own.
func WithAuthor(author string) Option {
	return func(s *Session) {
		if author != "" {
			s.author = author
		}
	}
}

// WithMode sets which runs anchors are matched against. The default,
// docx.SkipRevisions, ignores text inside existing tracked changes.
func WithMode(mode docx.RevisionMode) Option {
	return func(s *Session) { s.mode = mode }
}

// WithClock sets the time source for w:date attributes.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for edit state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// StopOnFailure makes ApplyBatch stop at the first failed edit. Remaining
// edits stay Pending.
func StopOnFailure(stop bool) Option {
	return func(s *Session) { s.stopOnFailure = stop }
}

// WithRelaxation allows up to n relaxed retries for edits whose anchor
// was not found. Attempt k matches at anchor level Folded+k-1.
func WithRelaxation(n int) Option {
	return func(s *Session) { s.relax = n }
}

// Session applies edits to one document. It owns the change id counter, so
// each document being edited needs its own Session. A Session is not safe
// for concurrent use.
type Session struct {
	doc           *docx.Document
	author        string
	mode          docx.RevisionMode
	now           func() time.Time
	log           *slog.Logger
	stopOnFailure bool
	relax         int
	nextID        int
}

// NewSession creates a session editing doc.
func NewSession(doc *docx.Document, opts ...Option) *Session {
	s := &Session{
		doc:    doc,
		author: DefaultAuthor,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nextID = doc.MaxAnnotationID() + 1
	return s
}

// Document returns the document being edited.
func (s *Session) Document() *docx.Document {
	return s.doc
}

// Author returns the session author.
func (s *Session) Author() string {
	return s.author
}

// allocID returns the next change id.
func (s *Session) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Apply resolves spec against the current document and applies it.
func (s *Session) Apply(spec edit.Spec) Result {
	return s.applyAt(0, spec)
}

func (s *Session) applyAt(index int, spec edit.Spec) Result {
	res := s.apply(index, spec)
	if res.State != Failed || s.relax <= 0 || edit.KindOf(res.Err) != edit.AnchorNotFound {
		return res
	}

	upTo := anchor.Folded + anchor.Level(s.relax-1)
	if upTo > anchor.Partial {
		upTo = anchor.Partial
	}
	tried := map[string]bool{spec.Anchor(): true}
	for level := anchor.Folded; level <= upTo; level++ {
		fixed, ok := Relaxed(spec, s.doc.Text(s.mode), level)
		if !ok || tried[fixed.Anchor()] {
			continue
		}
		tried[fixed.Anchor()] = true

		retry := s.apply(index, fixed)
		if retry.State == Applied {
			s.log.Info("edit applied with relaxed anchor",
				"edit", index, "level", level.String(), "anchor", spec.Anchor(), "relaxed", fixed.Anchor())
			retry.Spec = spec
			retry.Relaxed = fixed.Anchor()
			return retry
		}
	}
	return res
}

func (s *Session) apply(index int, spec edit.Spec) Result {
	res := Result{Index: index, Spec: spec, State: Pending, CommentID: -1}
	log := s.log.With("edit", index, "type", string(spec.Type()), "anchor", spec.Anchor())

	res.State = Resolving
	log.Debug("resolving edit")
	if err := spec.Validate(); err != nil {
		return s.fail(res, log, err)
	}
	p, err := s.plan(spec)
	if err != nil {
		return s.fail(res, log, err)
	}

	res.State = Resolved
	log.Debug("edit resolved")

	res.State = Mutating
	if err := p.mutate(s, &res); err != nil {
		return s.fail(res, log, err)
	}

	res.State = Applied
	log.Debug("edit applied", "changes", res.ChangeIDs, "comment", res.CommentID)
	return res
}

func (s *Session) fail(res Result, log *slog.Logger, err error) Result {
	e := classify(res.Spec, err)
	res.State = Failed
	res.Err = e
	log.Warn("edit failed", "kind", e.Kind.String(), "problem", e.Problem)
	return res
}

// classify maps leaf errors onto the edit error taxonomy.
func classify(spec edit.Spec, err error) *edit.Error {
	var e *edit.Error
	if errors.As(err, &e) {
		return e
	}
	kind := edit.StructuralInvariant
	switch {
	case errors.Is(err, anchor.ErrMalformed):
		kind = edit.AnchorMalformed
	case errors.Is(err, anchor.ErrNotFound):
		kind = edit.AnchorNotFound
	}
	return edit.NewError(kind, spec.Anchor(), problemOf(err), err)
}

// problemOf strips a leading sentinel message so it is not repeated after
// the kind name.
func problemOf(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{anchor.ErrMalformed, anchor.ErrNotFound} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// Report summarises a batch.
type Report struct {
	Applied     int          `json:"applied"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped,omitempty"`
	Results     []Result     `json:"-"`
	FailedItems []FailedItem `json:"failed_items"`
}

// FailedItem describes a failed edit in enough detail for the caller to
// correct and resubmit it.
type FailedItem struct {
	Index       int             `json:"index"`
	EditSpec    json.RawMessage `json:"edit_spec,omitempty"`
	Kind        string          `json:"kind"`
	Anchor      string          `json:"anchor"`
	Problem     string          `json:"problem"`
	Consequence string          `json:"consequence"`
	Tip         string          `json:"tip"`
}

// ApplyBatch applies specs in order. Each edit is resolved against the
// document as left by the previous one; a failed edit does not stop the
// batch unless StopOnFailure is set.
func (s *Session) ApplyBatch(specs []edit.Spec) *Report {
	items := make([]edit.Item, len(specs))
	for i, spec := range specs {
		items[i] = edit.Item{Spec: spec}
	}
	return s.ApplyItems(items)
}

// ApplyItems applies a decoded batch. Items that failed to decode are
// reported as failed without touching the document.
func (s *Session) ApplyItems(items []edit.Item) *Report {
	rep := &Report{FailedItems: []FailedItem{}}
	stopped := false
	for i, it := range items {
		if stopped {
			rep.Results = append(rep.Results, Result{Index: i, Spec: it.Spec, State: Pending, CommentID: -1})
			rep.Skipped++
			continue
		}

		var res Result
		if it.Err != nil {
			res = Result{Index: i, State: Failed, Err: it.Err, CommentID: -1}
			s.log.Warn("edit rejected", "edit", i, "kind", edit.KindOf(it.Err).String(), "error", it.Err)
		} else {
			res = s.applyAt(i, it.Spec)
		}
		rep.Results = append(rep.Results, res)

		if res.State == Applied {
			rep.Applied++
			continue
		}
		rep.Failed++
		rep.FailedItems = append(rep.FailedItems, failedItem(res, it.Raw))
		if s.stopOnFailure {
			stopped = true
		}
	}
	s.log.Info("batch applied", "applied", rep.Applied, "failed", rep.Failed, "skipped", rep.Skipped)
	return rep
}

func failedItem(res Result, raw json.RawMessage) FailedItem {
	fi := FailedItem{Index: res.Index, EditSpec: raw, Consequence: edit.Consequence}
	if fi.EditSpec == nil && res.Spec != nil {
		if data, err := edit.Marshal(res.Spec); err == nil {
			fi.EditSpec = data
		}
	}
	var e *edit.Error
	if errors.As(res.Err, &e) {
		fi.Kind = e.Kind.String()
		fi.Anchor = e.Anchor
		fi.Problem = e.Problem
		fi.Tip = e.Tip
	} else if res.Err != nil {
		fi.Kind = edit.StructuralInvariant.String()
		fi.Problem = res.Err.Error()
	}
	return fi
}
