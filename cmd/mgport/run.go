package main

import (
	"errors"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/younwookim/mgport/internal/application/app"
	"github.com/younwookim/mgport/internal/application/replay"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

type runFlags struct {
	record string
	replay string
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the game window",
		Long: `Opens the game window. Input can be recorded to a file and played back
later to reproduce a boot or save problem.

Examples:
  mgport run --record replay.json
  mgport run --replay replay.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGame(flags, rf)
		},
	}
	cmd.Flags().StringVar(&rf.record, "record", "", "Record input to file (e.g., --record replay.json)")
	cmd.Flags().StringVar(&rf.replay, "replay", "", "Play input back from a recorded file")
	return cmd
}

func runGame(flags *globalFlags, rf *runFlags) (err error) {
	set, err := flags.paths()
	if err != nil {
		return err
	}
	opts := app.Options{
		Base:       set.Base,
		ConfigPath: flags.config,
		Mirror:     os.Stderr,
		Console:    true,
		Record:     rf.record,
	}
	if rf.replay != "" {
		data, err := replay.LoadReplay(rf.replay)
		if err != nil {
			return err
		}
		opts.Input = replay.NewReplayer(*data)
	}

	a, err := app.Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	defer logging.Recover("PORT/MAIN")

	d := a.Config.Display
	ebiten.SetWindowSize(d.ScreenWidth*d.Scale, d.ScreenHeight*d.Scale)
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetTPS(d.Framerate)

	if err := ebiten.RunGame(a.Game); err != nil && !errors.Is(err, ebiten.Termination) {
		a.Log.Exception("PORT/MAIN", err, "RunGame")
		return err
	}
	return nil
}
