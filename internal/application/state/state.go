package state

// BootState represents where the boot manager is in the startup flow
type BootState int

const (
	// BootRunning is the only state in which the game loop runs unhindered
	BootRunning BootState = iota
	BootContentInvalid
	BootFatal
)

// String returns the string representation of the boot state
func (s BootState) String() string {
	switch s {
	case BootRunning:
		return "Running"
	case BootContentInvalid:
		return "ContentInvalid"
	case BootFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Blocking reports whether the state replaces the game loop with a report screen
func (s BootState) Blocking() bool {
	return s != BootRunning
}

// SaveFlowState represents the step of the save handshake
type SaveFlowState int

const (
	SaveIdle SaveFlowState = iota
	SaveSerializing
	SaveWritingInBackground
	SaveAwaitingUserDecision
)

// String returns the string representation of the save flow state
func (s SaveFlowState) String() string {
	switch s {
	case SaveIdle:
		return "Idle"
	case SaveSerializing:
		return "Serializing"
	case SaveWritingInBackground:
		return "WritingInBackground"
	case SaveAwaitingUserDecision:
		return "AwaitingUserDecision"
	default:
		return "Unknown"
	}
}
