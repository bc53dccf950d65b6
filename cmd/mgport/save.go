package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/younwookim/mgport/internal/application/savestore"
	"github.com/younwookim/mgport/internal/domain/progress"
	"github.com/younwookim/mgport/internal/infrastructure/config"
	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

func newSaveCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Inspect and manage save files",
	}
	cmd.AddCommand(newSaveListCmd(flags))
	cmd.AddCommand(newSaveShowCmd(flags))
	cmd.AddCommand(newSaveDeleteCmd(flags, logger))
	return cmd
}

func openStore(flags *globalFlags) (*savestore.Store, error) {
	set, err := flags.paths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(flags.config, set.Base)
	if err != nil {
		return nil, err
	}
	return savestore.New(fsys.NewRedirect(set), logging.Nop{},
		savestore.WithExtension(cfg.Save.Extension),
		savestore.WithBackupDir(cfg.Save.BackupDir),
	), nil
}

func newSaveListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(flags)
			if err != nil {
				return err
			}
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No saves.")
				return nil
			}
			for _, k := range keys {
				fmt.Fprintln(out, k)
			}
			return nil
		},
	}
}

func newSaveShowCmd(flags *globalFlags) *cobra.Command {
	var backup bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Decode a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(flags)
			if err != nil {
				return err
			}
			key := args[0]
			out := cmd.OutOrStdout()

			if key == progress.SettingsKey {
				slot := savestore.NewSlot[progress.Settings](store, savestore.JSONCodec[progress.Settings]{})
				s, status := slot.Lookup(key, backup)
				if status != savestore.StatusFound {
					return fmt.Errorf("save %s: %s", key, status)
				}
				fmt.Fprintf(out, "Language  %s\nMusic     %d\nSFX       %d\n", s.Language, s.MusicVolume, s.SFXVolume)
				return nil
			}

			slot := savestore.NewSlot[progress.SaveData](store, savestore.JSONCodec[progress.SaveData]{})
			d, status := slot.Lookup(key, backup)
			if status != savestore.StatusFound {
				return fmt.Errorf("save %s: %s", key, status)
			}
			fmt.Fprintf(out, "Name      %s\nVersion   %s\nDeaths    %d\nTime      %s\nSaves     %d\n",
				d.Name, d.Version, d.TotalDeaths, d.Time, d.SaveCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&backup, "backup", false, "Read the backup copy")
	return cmd
}

func newSaveDeleteCmd(flags *globalFlags, logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete the primary copy of a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(flags)
			if err != nil {
				return err
			}
			if !store.Delete(args[0]) {
				return fmt.Errorf("save %s: delete failed", args[0])
			}
			logger.Info("deleted", "key", args[0])
			return nil
		},
	}
}
