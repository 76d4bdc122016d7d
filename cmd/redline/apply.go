package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsawler/redline"
	"github.com/tsawler/redline/format"
	"github.com/tsawler/redline/revision"
	"github.com/tsawler/redline/store"
)

type applyOptions struct {
	output            string
	author            string
	includeInsertions bool
	stopOnFailure     bool
	relax             int
	normalize         bool
	fromStore         bool
}

func newApplyCmd(a *app) *cobra.Command {
	o := &applyOptions{}
	cmd := &cobra.Command{
		Use:   "apply <document.docx|key> <edits.json|->",
		Short: "Apply a JSON edit batch as tracked changes",
		Long: `Apply reads a batch of the form {"author": ..., "edits": [...]} and applies
each edit in order. The report is written to stdout as JSON. The exit code
is 1 when any edit failed and 2 when the command itself failed.

With --store the first argument is a store key and the document is
updated in place.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(cmd, o, args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&o.output, "output", "o", "",
		"Output path (default <name>-redlined.docx next to the input)")
	cmd.Flags().StringVar(&o.author, "author", "",
		"Author for batches that do not name one (overrides config)")
	cmd.Flags().BoolVar(&o.includeInsertions, "include-insertions", false,
		"Match anchors against text inside existing tracked insertions")
	cmd.Flags().BoolVar(&o.stopOnFailure, "stop-on-failure", false,
		"Stop at the first failed edit")
	cmd.Flags().IntVar(&o.relax, "relax", -1,
		"Relaxed retries for anchors that are not found (default from config)")
	cmd.Flags().BoolVar(&o.normalize, "normalize-spaces", false,
		"Collapse repeated spaces before applying edits")
	cmd.Flags().BoolVar(&o.fromStore, "store", false,
		"Treat the document argument as a store key and update it in place")
	return cmd
}

func (a *app) runApply(cmd *cobra.Command, o *applyOptions, target, editsPath string) error {
	batch, err := readInput(cmd.InOrStdin(), editsPath)
	if err != nil {
		return err
	}
	author := a.cfg.Author
	if o.author != "" {
		author = o.author
	}
	if batch, err = withDefaultAuthor(batch, author); err != nil {
		return err
	}

	var report *revision.Report
	transform := func(data []byte) ([]byte, error) {
		ed := a.editor(redline.FromBytes(data), o)
		normalized := 0
		if o.normalize {
			n, err := ed.NormalizeSpaces()
			if err != nil {
				return nil, err
			}
			a.log.Debug("normalized spaces", "changed", n)
			normalized = n
		}
		r, err := ed.ApplyJSON(batch)
		if err != nil {
			return nil, err
		}
		report = r
		if r.Applied == 0 && normalized == 0 {
			return data, nil
		}
		return ed.Bytes()
	}

	if o.fromStore {
		s, err := store.Open(cmd.Context(), a.cfg.Store)
		if err != nil {
			return err
		}
		if err := store.Update(cmd.Context(), s, target, storedContentType(target), transform); err != nil {
			return err
		}
		a.log.Info("updated stored document", "key", target)
	} else {
		data, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		out, err := transform(data)
		if err != nil {
			return err
		}
		dest := o.output
		if dest == "" {
			dest = redlinedName(target)
		}
		if err := os.WriteFile(dest, out, 0o644); err != nil {
			return err
		}
		a.log.Info("wrote document", "path", dest)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if report.Failed > 0 {
		return &exitError{code: ExitEditsFailed, msg: fmt.Sprintf("%d of %d edits failed", report.Failed, len(report.Results))}
	}
	return nil
}

// editor applies the configured and flag-level options to ed.
func (a *app) editor(ed *redline.Editor, o *applyOptions) *redline.Editor {
	relax := a.cfg.RelaxAttempts
	if o.relax >= 0 {
		relax = o.relax
	}

	ed = ed.Mode(a.cfg.RevisionMode()).RelaxAnchors(relax).Logger(a.log)
	if o.includeInsertions {
		ed = ed.IncludeInsertions()
	}
	if o.stopOnFailure || a.cfg.StopOnFailure {
		ed = ed.StopOnFailure()
	}
	return ed
}

// withDefaultAuthor sets the batch author when the batch has none.
func withDefaultAuthor(batch []byte, author string) ([]byte, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(batch, &envelope); err != nil {
		return nil, fmt.Errorf("edit batch is not a JSON object: %w", err)
	}
	var current string
	if raw, ok := envelope["author"]; ok {
		if err := json.Unmarshal(raw, &current); err != nil {
			return nil, fmt.Errorf("edit batch author must be a string: %w", err)
		}
	}
	if current != "" || author == "" {
		return batch, nil
	}
	raw, err := json.Marshal(author)
	if err != nil {
		return nil, err
	}
	envelope["author"] = raw
	return json.Marshal(envelope)
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// storedContentType returns the MIME type of a stored Word document from
// its key's extension. Keys without one are taken to be DOCX.
func storedContentType(key string) string {
	if f := format.Detect(key); f.IsWord() {
		return f.ContentType()
	}
	return format.DOCX.ContentType()
}

// redlinedName turns "dir/contract.docx" into "dir/contract-redlined.docx".
func redlinedName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-redlined" + ext
}
