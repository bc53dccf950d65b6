// mgport runs the port layer on desktop and inspects its data root.
//
// Usage:
//
//	mgport run [--record f]      - Start the game window
//	mgport run --replay <file>   - Play a recorded session back
//	mgport validate              - Check the Content install and print the report
//	mgport paths                 - Print the resolved data roots
//	mgport save list             - List save keys
//	mgport save show <key>       - Decode a save file
//	mgport save delete <key>     - Delete a save file (the backup stays)
//	mgport logs list             - List session logs and the error log
//	mgport logs show <name>      - Print a log, archived ones included
//	mgport logs archive [--keep] - Compress old session logs
//	mgport logs clear-errors     - Empty error_log.txt
//
// Global flags:
//
//	--data <dir>     - Base data root (default: $MGPORT_DATA or the user config dir)
//	--config <file>  - Explicit port.yaml
package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

// errSilent marks failures already reported to the user.
var errSilent = errors.New("silent")

type globalFlags struct {
	data   string
	config string
}

func (g *globalFlags) paths() (paths.Set, error) {
	base := g.data
	if base == "" {
		base = paths.DefaultBase()
	}
	return paths.FromBase(base)
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "mgport"})
	if err := newRootCmd(logger).Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			logger.Error(err)
		}
		os.Exit(1)
	}
}

func newRootCmd(logger *log.Logger) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "mgport",
		Short: "Port layer host for the mobile build of a 2D game",
		Long: `mgport hosts the port layer on desktop: it checks the Content
install, shows the recovery screens and runs the save flow the same way
the mobile build does.

Examples:
  mgport validate --data ./var/mgport
  mgport run
  mgport save list`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.data, "data", "", "Base data root (default: $"+paths.EnvBase+" or the user config dir)")
	root.PersistentFlags().StringVar(&flags.config, "config", "", "Path to port.yaml")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newValidateCmd(flags, logger))
	root.AddCommand(newPathsCmd(flags))
	root.AddCommand(newSaveCmd(flags, logger))
	root.AddCommand(newLogsCmd(flags, logger))
	return root
}
