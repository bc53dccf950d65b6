// Package game provides the main game loop manager. It runs boot ahead of
// the current scene, ticks the save flow, and handles Scene transitions.
package game

import (
	"errors"
	"runtime/debug"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/mgport/internal/application/boot"
	"github.com/younwookim/mgport/internal/application/saveflow"
	"github.com/younwookim/mgport/internal/application/scene"
	"github.com/younwookim/mgport/internal/infrastructure/logging"
)

const logTag = "PORT/GAME"

// Message shown when the running scene fails.
const (
	MsgScenePanic = "Erro inesperado no jogo"
	MsgSceneError = "Falha na cena atual"
)

// Game implements ebiten.Game and manages Scene transitions.
type Game struct {
	current scene.Scene
	boot    *boot.Manager
	saves   *saveflow.Orchestrator
	input   *Latch
	screenW int
	screenH int
	dt      float64

	// entered is set once the initial scene got OnEnter. That only
	// happens after boot reached Running for the first time.
	entered bool
}

// New creates a new Game with the given initial scene.
// saves may be nil. The initial scene's OnEnter is deferred until the
// content check passes.
func New(initialScene scene.Scene, bootMgr *boot.Manager, saves *saveflow.Orchestrator, input *Latch, screenW, screenH int) *Game {
	return &Game{
		current: initialScene,
		boot:    bootMgr,
		saves:   saves,
		input:   input,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 60.0, // Default to 60 FPS
	}
}

// Update runs boot, then the save flow, then the current scene.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	in := g.input.Poll()

	bootBlocked := g.boot.IsBlocking()
	if err := g.boot.Update(g.dt, in); err != nil {
		return err
	}
	if g.boot.IsBlocking() {
		return nil
	}
	if bootBlocked {
		in = g.input.Consume()
	}

	if !g.entered {
		g.entered = true
		g.current.OnEnter()
	}

	if g.saves != nil {
		prompted := g.saves.Blocking()
		g.saves.Update(g.dt, in)
		if g.saves.Blocking() {
			return nil
		}
		if prompted {
			g.input.Consume()
		}
	}

	next, err := g.updateScene()
	if err != nil {
		if errors.Is(err, ebiten.Termination) {
			return err
		}
		var pe *logging.PanicError
		if errors.As(err, &pe) {
			g.boot.EnterFatalReported(MsgScenePanic, err)
		} else {
			g.boot.EnterFatal(MsgSceneError, err)
		}
		return nil
	}

	// Handle scene transition
	if next != nil {
		g.current.OnExit()
		g.current = next
		g.current.OnEnter()
	}

	return nil
}

// updateScene turns a scene panic into an error so boot can show the
// fatal screen instead of the process dying.
func (g *Game) updateScene() (next scene.Scene, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = logging.ReportPanic(logTag, r, debug.Stack())
		}
	}()
	return g.current.Update(g.dt)
}

// Draw renders the current scene under the save and boot overlays.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.entered && !g.boot.IsBlocking() {
		g.current.Draw(screen)
		if g.saves != nil {
			g.saves.Draw(screen)
		}
	}
	g.boot.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// SetDT sets the delta time used for updates.
// Useful for testing or custom frame rates.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

// Current returns the active scene.
func (g *Game) Current() scene.Scene {
	return g.current
}
