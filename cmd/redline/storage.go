package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsawler/redline"
	"github.com/tsawler/redline/format"
	"github.com/tsawler/redline/store"
)

func newUploadCmd(a *app) *cobra.Command {
	var normalize bool
	cmd := &cobra.Command{
		Use:   "upload <document.docx>",
		Short: "Store a document under a new key and print the key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := format.RequireDOCX(data)
			if err != nil {
				return err
			}
			if normalize {
				ed := redline.FromBytes(data).Logger(a.log)
				n, err := ed.NormalizeSpaces()
				if err != nil {
					return err
				}
				if data, err = ed.Bytes(); err != nil {
					return err
				}
				a.log.Debug("normalized spaces", "changed", n)
			}

			s, err := store.Open(cmd.Context(), a.cfg.Store)
			if err != nil {
				return err
			}
			key, err := store.Upload(cmd.Context(), s, data, f.Extension(), f.ContentType())
			if err != nil {
				return err
			}
			a.log.Info("uploaded document", "key", key, "bytes", len(data))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize-spaces", true,
		"Collapse repeated spaces before storing")
	return cmd
}

func newDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <key> <output.docx>",
		Short: "Write a stored document to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(cmd.Context(), a.cfg.Store)
			if err != nil {
				return err
			}
			data, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil {
				return err
			}
			a.log.Info("downloaded document", "key", args[0], "path", args[1])
			return nil
		},
	}
}
