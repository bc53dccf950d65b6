// Package app wires the port layer for a host: desktop (cmd/mgport) and
// the mobile binding build the same object graph through Bootstrap.
package app

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/younwookim/mgport/internal/application/boot"
	"github.com/younwookim/mgport/internal/application/game"
	"github.com/younwookim/mgport/internal/application/replay"
	"github.com/younwookim/mgport/internal/application/saveflow"
	"github.com/younwookim/mgport/internal/application/savestore"
	"github.com/younwookim/mgport/internal/application/scene"
	"github.com/younwookim/mgport/internal/application/scene/title"
	"github.com/younwookim/mgport/internal/application/system"
	"github.com/younwookim/mgport/internal/domain/progress"
	"github.com/younwookim/mgport/internal/infrastructure/config"
	"github.com/younwookim/mgport/internal/infrastructure/fsys"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
	"github.com/younwookim/mgport/internal/infrastructure/paths"
)

const logTag = "PORT/APP"

// DefaultPlayerName names a save file created on first launch.
const DefaultPlayerName = "Madeline"

// Options selects where the port keeps its data.
type Options struct {
	// Base is the base data root. Empty means paths.DefaultBase().
	Base string
	// ConfigPath is an explicit port.yaml. Empty means <Base>/port.yaml.
	ConfigPath string
	// Mirror receives the console copy of the session log. Nil disables it.
	Mirror io.Writer
	// Console redirects the standard library logger into the session log.
	Console bool
	// Input overrides the ebiten input source.
	Input scene.InputReader
	// Record names a file the session's input is written to on Close.
	Record string
}

// App is a fully wired port session.
type App struct {
	Paths  paths.Set
	Config *config.PortConfig
	Log    *logging.FileLogger
	Errors *logging.ErrorLog
	Files  fsys.FileSystem
	Store  *savestore.Store
	Boot   *boot.Manager
	Saves  *saveflow.Orchestrator
	Title  *title.Title
	Game   *game.Game

	console  *logging.LineWriter
	recorder *replay.Recorder
	record   string
}

// Bootstrap ensures the data roots, opens the session log and builds the
// game. Content is not validated here; boot does that on the first tick.
func Bootstrap(opts Options) (*App, error) {
	base := opts.Base
	if base == "" {
		base = paths.DefaultBase()
	}
	set, err := paths.FromBase(base)
	if err != nil {
		return nil, err
	}
	if err := paths.Ensure(set); err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(opts.ConfigPath, set.Base)
	if err != nil {
		return nil, err
	}

	fileLog, err := logging.NewFileLogger(set.Logs,
		logging.WithMirror(opts.Mirror),
		logging.WithMirrorLevel(cfg.Logs.MirrorLevel),
	)
	if err != nil {
		return nil, err
	}
	errs := logging.NewErrorLog(set.Logs, fileLog)
	logging.SetCrashLogger(fileLog, errs)

	a := &App{
		Paths:  set,
		Config: cfg,
		Log:    fileLog,
		Errors: errs,
		Files:  fsys.NewRedirect(set),
	}
	if opts.Console {
		a.console = logging.NewLineWriter(fileLog, "PORT/CONSOLE", false)
		stdlog.SetOutput(a.console)
		stdlog.SetFlags(0)
	}

	a.banner()

	if n, err := logging.ArchiveOld(set.Logs, cfg.Logs.KeepSessions); err != nil {
		fileLog.Exception(logTag, err, "ArchiveOld")
	} else if n > 0 {
		fileLog.Info(logTag, fmt.Sprintf("LOGS_ARCHIVED=%d", n))
	}

	a.Store = savestore.New(a.Files, fileLog,
		savestore.WithExtension(cfg.Save.Extension),
		savestore.WithBackupDir(cfg.Save.BackupDir),
		savestore.WithErrorLog(errs),
	)
	files := savestore.NewSlot[progress.SaveData](a.Store, savestore.JSONCodec[progress.SaveData]{})
	prefs := savestore.NewSlot[progress.Settings](a.Store, savestore.JSONCodec[progress.Settings]{})

	data := loadSaveData(files, cfg.Save.FileKey, fileLog)
	settings := loadSettings(prefs, fileLog)

	a.Boot = boot.New(set, a.Files, fileLog, boot.Options{
		RequireAudio: cfg.Content.RequireAudioAssets,
		HoldToggle:   time.Duration(cfg.Boot.HoldToggleSeconds * float64(time.Second)),
		MaxListed:    cfg.Boot.MaxListedProblems,
	})

	var src scene.InputReader = system.NewInputSystem()
	if opts.Input != nil {
		src = opts.Input
	}
	if opts.Record != "" {
		a.recorder = replay.NewRecorder(src)
		a.record = opts.Record
		src = a.recorder
	}
	latch := game.NewLatch(src)

	a.Title = title.New(data, settings, cfg.Save.FileKey, latch, fileLog)
	a.Saves = saveflow.New(files, prefs, a.Title, fileLog)
	a.Title.SetSaver(a.Saves)

	a.Game = game.New(a.Title, a.Boot, a.Saves, latch, cfg.Display.ScreenWidth, cfg.Display.ScreenHeight)
	a.Game.SetDT(1.0 / float64(cfg.Display.Framerate))
	return a, nil
}

func (a *App) banner() {
	a.Log.Info(logTag, "SESSION_START "+time.Now().Format(time.RFC3339))
	a.Log.Info(logTag, "PATHS Base="+a.Paths.Base)
	a.Log.Info(logTag, "PATHS Content="+a.Paths.Content)
	a.Log.Info(logTag, "PATHS Logs="+a.Paths.Logs)
	a.Log.Info(logTag, "PATHS Save="+a.Paths.Save)
}

// loadSaveData falls back to the backup when the primary copy is unusable
// and starts a fresh file when there is none.
func loadSaveData(slot *savestore.Slot[progress.SaveData], key string, log logging.Logger) *progress.SaveData {
	data, status := slot.Lookup(key, false)
	if status == savestore.StatusCorrupt {
		log.Warn(logTag, "SAVE_CORRUPT key="+key+" trying backup")
		data, status = slot.Lookup(key, true)
	}
	if status != savestore.StatusFound {
		log.Info(logTag, fmt.Sprintf("SAVE_NEW key=%s status=%s", key, status))
		return progress.NewSaveData(DefaultPlayerName)
	}
	log.Info(logTag, fmt.Sprintf("SAVE_LOADED key=%s saves=%d", key, data.SaveCount))
	return &data
}

func loadSettings(slot *savestore.Slot[progress.Settings], log logging.Logger) *progress.Settings {
	settings, status := slot.Lookup(progress.SettingsKey, false)
	if status == savestore.StatusCorrupt {
		settings, status = slot.Lookup(progress.SettingsKey, true)
	}
	if status != savestore.StatusFound {
		return progress.DefaultSettings()
	}
	settings.Clamp()
	return &settings
}

// Close waits for an in-flight save, then flushes and closes the logs.
func (a *App) Close() error {
	a.Saves.Wait()
	if a.recorder != nil && a.recorder.FrameCount() > 0 {
		a.recorder.Stop()
		if err := a.recorder.Save(a.record); err != nil {
			a.Log.Exception(logTag, err, "SaveRecording")
		} else {
			a.Log.Info(logTag, fmt.Sprintf("RECORDING_SAVED file=%s frames=%d", a.record, a.recorder.FrameCount()))
		}
		a.recorder = nil
	}
	if n := a.Errors.Count(); n > 0 {
		a.Log.Warn(logTag, fmt.Sprintf("ERRORS_LOGGED=%d file=%s", n, a.Errors.Path()))
	}
	a.Log.Info(logTag, "SESSION_END")
	if a.console != nil {
		_ = a.console.Flush()
		stdlog.SetOutput(os.Stderr)
		a.console = nil
	}
	logging.SetCrashLogger(nil, nil)
	return a.Log.Close()
}
