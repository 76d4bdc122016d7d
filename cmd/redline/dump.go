package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsawler/redline"
)

type dumpOptions struct {
	cursor int
	size   int
	text   bool
}

func newDumpCmd(a *app) *cobra.Command {
	o := &dumpOptions{}
	cmd := &cobra.Command{
		Use:   "dump <document.docx>",
		Short: "Print a document as paragraph chunks or as anchor text",
		Long: `Dump writes one page of paragraph chunks as JSON, including runs inside
existing tracked changes flagged as insertions or deletions. With --text it
prints the flattened text that anchors are matched against instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDump(cmd, o, args[0])
		},
	}
	cmd.Flags().IntVar(&o.cursor, "cursor", 0, "Index of the first paragraph")
	cmd.Flags().IntVar(&o.size, "size", 50, "Number of paragraphs per page")
	cmd.Flags().BoolVar(&o.text, "text", false, "Print the anchor text instead of chunks")
	return cmd
}

func (a *app) runDump(cmd *cobra.Command, o *dumpOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ed := redline.FromBytes(data).Mode(a.cfg.RevisionMode()).Logger(a.log)

	if o.text {
		text, err := ed.Text()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	page, err := ed.Chunks(o.cursor, o.size)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}
