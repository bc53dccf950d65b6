package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState holds the intents read during one tick
type InputState struct {
	Retry bool // Confirm or retry, edge-triggered
	Exit  bool // Exit or cancel, edge-triggered
	Hold  bool // Held while the diagnostics gesture is sustained
	Save  bool // Request a save, edge-triggered
}

// Any reports whether any intent is set
func (s InputState) Any() bool {
	return s.Retry || s.Exit || s.Hold || s.Save
}

// Device is the slice of the engine input API the port reads
type Device interface {
	KeyPressed(k ebiten.Key) bool
	KeyJustPressed(k ebiten.Key) bool
	Gamepads() []ebiten.GamepadID
	ButtonPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool
	ButtonJustPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool
	// Touches returns how many fingers are down and how many just landed
	Touches() (down, justPressed int)
}

// Bindings maps devices to intents
type Bindings struct {
	RetryKeys    []ebiten.Key
	ExitKeys     []ebiten.Key
	HoldKeys     []ebiten.Key
	SaveKeys     []ebiten.Key
	RetryButtons []ebiten.StandardGamepadButton
	ExitButtons  []ebiten.StandardGamepadButton
	HoldButtons  []ebiten.StandardGamepadButton
	SaveButtons  []ebiten.StandardGamepadButton
	// HoldTouches is the finger count that counts as a hold, 0 disables it
	HoldTouches int
}

// DefaultBindings returns Enter/Space or Start/A to retry, Escape or
// Back/B to exit, Enter/Space or Start held for diagnostics and S or Y to save.
func DefaultBindings() Bindings {
	return Bindings{
		RetryKeys: []ebiten.Key{ebiten.KeyEnter, ebiten.KeySpace},
		ExitKeys:  []ebiten.Key{ebiten.KeyEscape},
		HoldKeys:  []ebiten.Key{ebiten.KeyEnter, ebiten.KeySpace},
		SaveKeys:  []ebiten.Key{ebiten.KeyS},
		RetryButtons: []ebiten.StandardGamepadButton{
			ebiten.StandardGamepadButtonCenterRight,
			ebiten.StandardGamepadButtonRightBottom,
		},
		ExitButtons: []ebiten.StandardGamepadButton{
			ebiten.StandardGamepadButtonCenterLeft,
			ebiten.StandardGamepadButtonRightRight,
		},
		HoldButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonCenterRight},
		SaveButtons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightTop},
		HoldTouches: 2,
	}
}

// InputSystem turns device state into intents
type InputSystem struct {
	device   Device
	bindings Bindings
}

// NewInputSystem creates an input system reading the ebiten devices
func NewInputSystem() *InputSystem {
	return NewInputSystemFrom(EbitenDevice{}, DefaultBindings())
}

// NewInputSystemFrom creates an input system over any device
func NewInputSystemFrom(device Device, bindings Bindings) *InputSystem {
	return &InputSystem{device: device, bindings: bindings}
}

// GetInput reads the current input state
func (s *InputSystem) GetInput() InputState {
	b := s.bindings
	pads := s.device.Gamepads()
	down, tapped := s.device.Touches()

	return InputState{
		Retry: s.anyKey(b.RetryKeys, true) || s.anyButton(pads, b.RetryButtons, true) || touchRetry(down, tapped, b.HoldTouches),
		Exit:  s.anyKey(b.ExitKeys, true) || s.anyButton(pads, b.ExitButtons, true),
		Hold:  s.anyKey(b.HoldKeys, false) || s.anyButton(pads, b.HoldButtons, false) || (b.HoldTouches > 0 && down >= b.HoldTouches),
		Save:  s.anyKey(b.SaveKeys, true) || s.anyButton(pads, b.SaveButtons, true),
	}
}

// touchRetry treats a new tap as retry unless enough fingers are down
// to be the hold gesture.
func touchRetry(down, tapped, holdTouches int) bool {
	if tapped == 0 {
		return false
	}
	return holdTouches == 0 || down < holdTouches
}

func (s *InputSystem) anyKey(keys []ebiten.Key, edge bool) bool {
	for _, k := range keys {
		if edge && s.device.KeyJustPressed(k) || !edge && s.device.KeyPressed(k) {
			return true
		}
	}
	return false
}

func (s *InputSystem) anyButton(pads []ebiten.GamepadID, buttons []ebiten.StandardGamepadButton, edge bool) bool {
	for _, id := range pads {
		for _, b := range buttons {
			if edge && s.device.ButtonJustPressed(id, b) || !edge && s.device.ButtonPressed(id, b) {
				return true
			}
		}
	}
	return false
}

// EbitenDevice reads the live ebiten input state
type EbitenDevice struct{}

func (EbitenDevice) KeyPressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (EbitenDevice) KeyJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// Gamepads returns the pads that report the standard layout
func (EbitenDevice) Gamepads() []ebiten.GamepadID {
	var ids []ebiten.GamepadID
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (EbitenDevice) ButtonPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool {
	return ebiten.IsStandardGamepadButtonPressed(id, b)
}

func (EbitenDevice) ButtonJustPressed(id ebiten.GamepadID, b ebiten.StandardGamepadButton) bool {
	return inpututil.IsStandardGamepadButtonJustPressed(id, b)
}

func (EbitenDevice) Touches() (int, int) {
	return len(ebiten.AppendTouchIDs(nil)), len(inpututil.AppendJustPressedTouchIDs(nil))
}
