package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// Replayer handles input playback from recorded data
type Replayer struct {
	data  ReplayData
	frame int
	next  int // index into data.Frames
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{data: data}
}

// Decode reads and validates replay data
func Decode(r io.Reader) (*ReplayData, error) {
	var data ReplayData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid replay: %w", err)
	}
	return &data, nil
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Next returns the input for the current frame and advances. Frames that
// were not stored replay as idle.
func (r *Replayer) Next() (movement.Inputs, bool) {
	if r.frame >= r.data.Length {
		return movement.Inputs{}, false
	}

	var in movement.Inputs
	if r.next < len(r.data.Frames) && r.data.Frames[r.next].F == r.frame {
		in = r.data.Frames[r.next].Inputs()
		r.next++
	}
	r.frame++
	return in, true
}

// Done reports whether every frame was played
func (r *Replayer) Done() bool {
	return r.frame >= r.data.Length
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return r.data.Length
}

// FrameDT returns the frame duration the session was recorded at
func (r *Replayer) FrameDT() float64 {
	return r.data.FrameDT
}

// Stage returns the recorded stage name
func (r *Replayer) Stage() string {
	return r.data.Stage
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
	r.next = 0
}
