package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/younwookim/mgport/internal/infrastructure/config"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

func newLogsCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect session and error logs",
	}
	cmd.AddCommand(newLogsListCmd(flags))
	cmd.AddCommand(newLogsShowCmd(flags))
	cmd.AddCommand(newLogsArchiveCmd(flags, logger))
	cmd.AddCommand(newLogsClearErrorsCmd(flags, logger))
	return cmd
}

func logsDir(flags *globalFlags) (string, error) {
	set, err := flags.paths()
	if err != nil {
		return "", err
	}
	return set.Logs, nil
}

func newLogsListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session logs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := logsDir(flags)
			if err != nil {
				return err
			}
			entries, err := os.ReadDir(dir)
			if os.IsNotExist(err) {
				entries, err = nil, nil
			}
			if err != nil {
				return err
			}

			var names []string
			for _, e := range entries {
				name := e.Name()
				if e.Type().IsRegular() && (strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".txt"+logging.ArchiveSuffix)) {
					names = append(names, name)
				}
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No logs.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}

func newLogsShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a log, decompressing archived ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := logsDir(flags)
			if err != nil {
				return err
			}
			name := args[0]
			if filepath.Base(name) != name {
				return fmt.Errorf("log %s: expected a file name in %s", name, dir)
			}

			p := filepath.Join(dir, name)
			var data []byte
			if strings.HasSuffix(name, logging.ArchiveSuffix) {
				data, err = logging.ReadArchived(p)
			} else {
				data, err = os.ReadFile(p)
			}
			if err != nil {
				return fmt.Errorf("log %s: %w", name, err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newLogsArchiveCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Compress all but the newest session logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := flags.paths()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("keep") {
				cfg, err := config.Resolve(flags.config, set.Base)
				if err != nil {
					return err
				}
				keep = cfg.Logs.KeepSessions
			}
			n, err := logging.ArchiveOld(set.Logs, keep)
			if err != nil {
				return err
			}
			logger.Info("archived", "logs", n, "kept", keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Session logs left uncompressed (default: logs.keep_sessions)")
	return cmd
}

func newLogsClearErrorsCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-errors",
		Short: "Empty the running error log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := logsDir(flags)
			if err != nil {
				return err
			}
			errs := logging.NewErrorLog(dir, nil)
			if err := errs.Clear(); err != nil {
				return err
			}
			logger.Info("cleared", "file", errs.Path())
			return nil
		},
	}
}
