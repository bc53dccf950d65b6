// Package title provides the placeholder scene shown once the content
// check passes. It keeps a save file alive so the save flow has
// something real to persist.
package title

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgport/internal/application/scene"
	"github.com/younwookim/mgport/internal/domain/progress"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

const logTag = "PORT/TITLE"

var colorBG = color.RGBA{26, 26, 46, 255}

// Title is the placeholder scene
type Title struct {
	data     *progress.SaveData
	settings *progress.Settings
	fileKey  string
	input    scene.InputReader
	saves    scene.SaveRequester
	log      logging.Logger

	entered  int
	lastSave string
}

// New creates the title scene over the loaded payloads.
// saves may be nil until the save flow is wired with SetSaver.
func New(data *progress.SaveData, settings *progress.Settings, fileKey string, input scene.InputReader, log logging.Logger) *Title {
	if log == nil {
		log = logging.Nop{}
	}
	return &Title{
		data:     data,
		settings: settings,
		fileKey:  fileKey,
		input:    input,
		log:      log,
	}
}

// SetSaver wires the save flow. The flow reads its payloads from the
// Title, so it can only be built after it.
func (t *Title) SetSaver(saves scene.SaveRequester) {
	t.saves = saves
}

// SaveData implements saveflow.Source.
func (t *Title) SaveData() *progress.SaveData { return t.data }

// Settings implements saveflow.Source.
func (t *Title) Settings() *progress.Settings { return t.settings }

// FileKey implements saveflow.Source.
func (t *Title) FileKey() string { return t.fileKey }

// Update implements scene.Scene.
func (t *Title) Update(dt float64) (scene.Scene, error) {
	t.data.AddTime(dt)

	in := t.input.GetInput()
	if in.Retry {
		t.data.TotalDeaths++
	}
	if in.Save && t.saves != nil {
		if t.saves.Request(true, true) {
			t.lastSave = time.Now().Format("15:04:05")
		}
	}
	if in.Exit {
		t.log.Info(logTag, "USER_EXIT_FROM_TITLE")
		return nil, ebiten.Termination
	}
	return nil, nil
}

// Lines is the text drawn by the scene.
func (t *Title) Lines() []string {
	last := "-"
	if t.lastSave != "" {
		last = t.lastSave
	}
	return []string{
		"MGPORT",
		"",
		fmt.Sprintf("FILE %s  %s", t.fileKey, t.data.Name),
		fmt.Sprintf("TIME %s", t.data.Time.Truncate(time.Second)),
		fmt.Sprintf("DEATHS %d", t.data.TotalDeaths),
		fmt.Sprintf("SAVES %d  LAST %s", t.data.SaveCount, last),
		fmt.Sprintf("MUSIC %d  SFX %d", t.settings.MusicVolume, t.settings.SFXVolume),
		"",
		"ENTER/A: +1 DEATH   S/Y: SAVE   ESC/B: QUIT",
	}
}

// Draw implements scene.Scene.
func (t *Title) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)
	for i, line := range t.Lines() {
		ebitenutil.DebugPrintAt(screen, line, 24, 24+i*16)
	}
}

// OnEnter implements scene.Scene.
func (t *Title) OnEnter() {
	t.entered++
	t.log.Info(logTag, fmt.Sprintf("ENTER file=%s saves=%d", t.fileKey, t.data.SaveCount))
}

// OnExit implements scene.Scene.
func (t *Title) OnExit() {
	t.log.Info(logTag, "EXIT")
}
