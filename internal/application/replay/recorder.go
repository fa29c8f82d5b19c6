package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// Recorder handles input recording for replay
type Recorder struct {
	data      ReplayData
	recording bool
}

// NewRecorder starts recording a session on stage at a fixed frame duration
func NewRecorder(stage string, frameDT float64) *Recorder {
	return &Recorder{
		data: ReplayData{
			Version:   Version,
			Stage:     stage,
			StartTime: time.Now().Format(time.RFC3339),
			FrameDT:   frameDT,
			Frames:    make([]FrameInput, 0, 1024),
		},
		recording: true,
	}
}

// RecordFrame records a single frame's input
func (r *Recorder) RecordFrame(in movement.Inputs) {
	if !r.recording {
		return
	}
	if in != (movement.Inputs{}) {
		r.data.Frames = append(r.data.Frames, frameOf(r.data.Length, in))
	}
	r.data.Length++
}

// WriteTo encodes the recording as indented JSON
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	if r.data.Length == 0 {
		return 0, ErrEmpty
	}
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode replay: %w", err)
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// Save writes the replay data to a file
func (r *Recorder) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := r.WriteTo(file); err != nil {
		_ = file.Close()
		_ = os.Remove(filename)
		return err
	}
	return file.Close()
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// FrameCount returns the number of recorded frames, idle ones included
func (r *Recorder) FrameCount() int {
	return r.data.Length
}

// Data returns the recording so far
func (r *Recorder) Data() ReplayData {
	return r.data
}

// GenerateFilename creates a filename based on current time
func GenerateFilename() string {
	return fmt.Sprintf("replay_%s.json", time.Now().Format("20060102_150405"))
}
