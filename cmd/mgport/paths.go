package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPathsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved data roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := flags.paths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Base     %s\n", set.Base)
			fmt.Fprintf(out, "Content  %s\n", set.Content)
			fmt.Fprintf(out, "Logs     %s\n", set.Logs)
			fmt.Fprintf(out, "Save     %s\n", set.Save)
			return nil
		},
	}
}
