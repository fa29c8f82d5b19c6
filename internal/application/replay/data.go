package replay

import (
	"errors"
	"fmt"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// Version is written into every recording
const Version = "2"

var (
	ErrEmpty         = errors.New("no frames to save")
	ErrFrameOrder    = errors.New("frames are not in increasing order")
	ErrFrameRange    = errors.New("frame index outside the recording")
	ErrVersion       = errors.New("unsupported replay version")
	ErrFrameDuration = errors.New("frame duration must be positive")
)

// FrameInput is the input of one frame. Idle frames are not stored.
type FrameInput struct {
	F   int     `json:"f"`             // Frame number
	H   float64 `json:"h,omitempty"`   // Horizontal
	V   float64 `json:"v,omitempty"`   // Vertical
	J   bool    `json:"j,omitempty"`   // Jump
	JP  bool    `json:"jp,omitempty"`  // JumpPressed
	JR  bool    `json:"jr,omitempty"`  // JumpReleased
	Dsh bool    `json:"dsh,omitempty"` // DashPressed
	PP  bool    `json:"pp,omitempty"`  // PowerPressed
	PH  bool    `json:"ph,omitempty"`  // PowerHeld
	PR  bool    `json:"pr,omitempty"`  // PowerReleased
	Pos bool    `json:"pos,omitempty"` // PossessPressed
}

// ReplayData contains all data needed to replay a session
type ReplayData struct {
	Version   string       `json:"version"`
	Stage     string       `json:"stage"`
	StartTime string       `json:"startTime"`
	FrameDT   float64      `json:"frameDT"`
	Length    int          `json:"length"`
	Frames    []FrameInput `json:"frames"`
}

func frameOf(f int, in movement.Inputs) FrameInput {
	return FrameInput{
		F:   f,
		H:   in.Horizontal,
		V:   in.Vertical,
		J:   in.Jump,
		JP:  in.JumpPressed,
		JR:  in.JumpReleased,
		Dsh: in.DashPressed,
		PP:  in.PowerPressed,
		PH:  in.PowerHeld,
		PR:  in.PowerReleased,
		Pos: in.PossessPressed,
	}
}

// Inputs converts the frame back to movement inputs
func (fi FrameInput) Inputs() movement.Inputs {
	return movement.Inputs{
		Horizontal:     fi.H,
		Vertical:       fi.V,
		Jump:           fi.J,
		JumpPressed:    fi.JP,
		JumpReleased:   fi.JR,
		DashPressed:    fi.Dsh,
		PowerPressed:   fi.PP,
		PowerHeld:      fi.PH,
		PowerReleased:  fi.PR,
		PossessPressed: fi.Pos,
	}
}

// Validate checks that the data can be played back.
func (d *ReplayData) Validate() error {
	if d.Version != Version {
		return fmt.Errorf("%w: %q", ErrVersion, d.Version)
	}
	if d.FrameDT <= 0 {
		return ErrFrameDuration
	}
	prev := -1
	for _, fi := range d.Frames {
		if fi.F <= prev {
			return fmt.Errorf("%w: frame %d after %d", ErrFrameOrder, fi.F, prev)
		}
		if fi.F >= d.Length {
			return fmt.Errorf("%w: frame %d of %d", ErrFrameRange, fi.F, d.Length)
		}
		prev = fi.F
	}
	return nil
}
