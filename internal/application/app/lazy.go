package app

import (
	"errors"
	"image/color"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgport/internal/infrastructure/config"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

var colorInitFailed = color.RGBA{120, 0, 0, 255}

// Lazy is an ebiten.Game that builds the App on its first frame. Hosts that
// learn the data root only after the process started hand it to the engine
// instead of App.Game. Panics escaping a frame are reported under tag before
// they unwind into the host.
type Lazy struct {
	tag   string
	build func() (*App, error)

	once    sync.Once
	initErr error
	app     atomic.Pointer[App]
}

// NewLazy returns a Lazy that calls build once, on the first Update or Draw.
func NewLazy(tag string, build func() (*App, error)) *Lazy {
	return &Lazy{tag: tag, build: build}
}

func (l *Lazy) initialize() {
	l.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				l.initErr = logging.ReportPanic(l.tag, r, debug.Stack())
			}
		}()

		a, err := l.build()
		if err == nil && a == nil {
			err = errors.New("app: build returned no App")
		}
		if err != nil {
			l.initErr = err
			return
		}
		l.app.Store(a)
	})
}

// App returns the built App, or nil before the first frame or after a
// failed build. It is safe to call from any goroutine.
func (l *Lazy) App() *App {
	return l.app.Load()
}

// Err returns why the build failed.
func (l *Lazy) Err() error {
	l.initialize()
	return l.initErr
}

// Update implements ebiten.Game. On Termination the App is closed so the
// logs reach disk before the host goes away.
func (l *Lazy) Update() error {
	l.initialize()
	defer logging.Recover(l.tag)

	a := l.app.Load()
	if a == nil {
		return nil
	}
	err := a.Game.Update()
	if err != nil {
		_ = a.Close()
	}
	return err
}

// Draw implements ebiten.Game. A failed build is drawn as a red screen
// with the error.
func (l *Lazy) Draw(screen *ebiten.Image) {
	l.initialize()
	defer logging.Recover(l.tag)

	a := l.app.Load()
	if a == nil {
		screen.Fill(colorInitFailed)
		ebitenutil.DebugPrintAt(screen, "ERRO FATAL\n\n"+l.initErr.Error(), 16, 16)
		return
	}
	a.Game.Draw(screen)
}

// Layout implements ebiten.Game. Before the build it uses the default
// logical screen.
func (l *Lazy) Layout(outsideWidth, outsideHeight int) (int, int) {
	if a := l.app.Load(); a != nil {
		return a.Game.Layout(outsideWidth, outsideHeight)
	}
	d := config.Defaults().Display
	return d.ScreenWidth, d.ScreenHeight
}

// Flush forces buffered session log lines to disk. It does nothing before
// the App exists.
func (l *Lazy) Flush() error {
	if a := l.app.Load(); a != nil {
		return a.Log.Flush()
	}
	return nil
}
