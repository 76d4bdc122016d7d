package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tsawler/redline/config"
)

// app is the state shared by all subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "redline",
		Short: "Apply anchored edits to Word documents as tracked changes",
		Long: `redline resolves edits against the visible text of a DOCX file and
records them as tracked insertions and deletions, optionally with
reviewer comments, so that the result opens in Word as a redline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "redline.yaml",
		"Path to the YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")

	root.AddCommand(newApplyCmd(a))
	root.AddCommand(newDumpCmd(a))
	root.AddCommand(newUploadCmd(a))
	root.AddCommand(newDownloadCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	return nil
}
