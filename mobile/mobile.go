//go:build mobile

// Package mobile is the ebitenmobile binding entry point.
//
// Build the Android library with:
//
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.younwookim.mgport -o build/android/mgport.aar ./mobile
//
// The host activity calls SetDataDir with its external files directory
// before the view is shown. The game is built lazily on the first frame.
package mobile

import (
	"errors"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/younwookim/mgport/internal/application/app"
)

const logTag = "PORT/MOBILE"

var (
	mu      sync.Mutex
	dataDir string
)

// SetDataDir sets the base data root. It only takes effect before the
// first frame.
func SetDataDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	dataDir = dir
}

func currentDataDir() string {
	mu.Lock()
	defer mu.Unlock()
	return dataDir
}

// build runs on the first frame. Building from init would run before the
// host handed in the data root.
func build() (*app.App, error) {
	dir := currentDataDir()
	if dir == "" {
		return nil, errors.New("mobile: SetDataDir was not called")
	}
	return app.Bootstrap(app.Options{
		Base:    dir,
		Mirror:  os.Stderr,
		Console: true,
	})
}

var game = app.NewLazy(logTag, build)

func init() {
	mobile.SetGame(game)
}

// Flush writes buffered log lines to disk. The host calls it from onPause.
func Flush() {
	_ = game.Flush()
}
