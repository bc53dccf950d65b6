// Package replay records the per-tick input intents of a session and
// plays them back, so boot and save flows can be reproduced off-device.
package replay

// FormatVersion is written into every recording.
const FormatVersion = "2.0"

// FrameInput records input state for a single frame
type FrameInput struct {
	F int  `json:"f"`           // Frame number
	R bool `json:"r,omitempty"` // Retry
	X bool `json:"x,omitempty"` // Exit
	H bool `json:"h,omitempty"` // Hold
	S bool `json:"s,omitempty"` // Save
}

// ReplayData contains all data needed to replay a session
type ReplayData struct {
	Version   string       `json:"version"`
	Platform  string       `json:"platform"`
	StartTime string       `json:"startTime"`
	Frames    []FrameInput `json:"frames"`
}
