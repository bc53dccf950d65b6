package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/younwookim/mgport/internal/application/scene"
	"github.com/younwookim/mgport/internal/application/system"
)

// Recorder wraps an input source and records every state it returns.
type Recorder struct {
	src       scene.InputReader
	data      ReplayData
	recording bool
	frame     int
}

// NewRecorder creates a new recorder over src
func NewRecorder(src scene.InputReader) *Recorder {
	return &Recorder{
		src: src,
		data: ReplayData{
			Version:   FormatVersion,
			Platform:  runtime.GOOS,
			StartTime: time.Now().Format(time.RFC3339),
			Frames:    make([]FrameInput, 0, 3600), // Pre-allocate for ~1 minute at 60fps
		},
		recording: true,
	}
}

// GetInput reads the wrapped source and records the frame.
func (r *Recorder) GetInput() system.InputState {
	in := r.src.GetInput()
	r.RecordFrame(in)
	return in
}

// RecordFrame records a single frame's input
func (r *Recorder) RecordFrame(in system.InputState) {
	if !r.recording {
		return
	}
	r.data.Frames = append(r.data.Frames, FrameInput{
		F: r.frame,
		R: in.Retry,
		X: in.Exit,
		H: in.Hold,
		S: in.Save,
	})
	r.frame++
}

// Data returns the recording so far.
func (r *Recorder) Data() ReplayData {
	return r.data
}

// Save writes the replay data to a file
func (r *Recorder) Save(filename string) error {
	if len(r.data.Frames) == 0 {
		return fmt.Errorf("no frames to save")
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r.data); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	return file.Sync()
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// FrameCount returns the number of recorded frames
func (r *Recorder) FrameCount() int {
	return len(r.data.Frames)
}

// GenerateFilename creates a filename based on current time
func GenerateFilename() string {
	return fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
}

// Replayer handles input playback from recorded data. Once the frames
// run out it reports idle input.
type Replayer struct {
	data  ReplayData
	frame int
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{data: data}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var data ReplayData
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	return &data, nil
}

// GetInput returns the input for the current frame and advances
func (r *Replayer) GetInput() system.InputState {
	if r.frame >= len(r.data.Frames) {
		return system.InputState{}
	}

	fi := r.data.Frames[r.frame]
	r.frame++

	return system.InputState{
		Retry: fi.R,
		Exit:  fi.X,
		Hold:  fi.H,
		Save:  fi.S,
	}
}

// Done reports whether every recorded frame was played.
func (r *Replayer) Done() bool {
	return r.frame >= len(r.data.Frames)
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
}

// Script builds replay data from a list of states, one per frame.
func Script(frames ...system.InputState) ReplayData {
	data := ReplayData{
		Version: FormatVersion,
		Frames:  make([]FrameInput, len(frames)),
	}
	for i, in := range frames {
		data.Frames[i] = FrameInput{F: i, R: in.Retry, X: in.Exit, H: in.Hold, S: in.Save}
	}
	return data
}
