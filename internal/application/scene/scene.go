// Package scene defines the Scene interface for what runs once boot lets
// the game loop through.
//
// The port ships a single title scene standing in for the game. A real
// game plugs its own scenes in behind the same interface.
package scene

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/mgport/internal/application/system"
)

// Scene represents a game screen.
//
// The game loop only delegates to the current scene while boot is Running
// and no save prompt is open. Transitions happen by returning a new Scene
// from Update.
type Scene interface {
	// Update updates the scene state.
	// dt is the delta time in seconds (typically 1/60).
	// Returns the next scene if a transition is needed, nil to stay on current scene.
	// Returning ebiten.Termination exits; any other error is fatal.
	Update(dt float64) (next Scene, err error)

	// Draw renders the scene to the screen.
	Draw(screen *ebiten.Image)

	// OnEnter is called when entering this scene.
	OnEnter()

	// OnExit is called when leaving this scene.
	OnExit()
}

// InputReader supplies the intents of the current tick.
type InputReader interface {
	GetInput() system.InputState
}

// SaveRequester starts an asynchronous save.
type SaveRequester interface {
	Request(file, settings bool) bool
}
