package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/younwookim/mgport/internal/application/content"
	"github.com/younwookim/mgport/internal/infrastructure/config"
	"github.com/younwookim/mgport/internal/infrastructure/fsys"
)

func newValidateCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	var requireAudio bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the Content install",
		Long: `Runs the same content check as the boot screen and prints the report.
Exits with status 1 when the install is not usable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := flags.paths()
			if err != nil {
				return err
			}
			cfg, err := config.Resolve(flags.config, set.Base)
			if err != nil {
				return err
			}
			audio := cfg.Content.RequireAudioAssets
			if cmd.Flags().Changed("require-audio") {
				audio = requireAudio
			}

			start := time.Now()
			report := content.Validate(set, fsys.NewRedirect(set), audio)
			took := time.Since(start).Round(time.Microsecond)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Content: %s\n", set.Content)
			fmt.Fprintf(out, "Status:  %s (%s)\n", report.Summary, took)
			for _, p := range report.Problems {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			if !report.OK {
				logger.Warn("content check failed", "problems", report.Len())
				return errSilent
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&requireAudio, "require-audio", true, "Require the FMOD audio folder")
	return cmd
}
