package movement

// Inputs is one frame of player or AI intent.
//
// Axes are in [-1,1]. The Pressed and Released fields are edges: the
// producer sets them for exactly one frame.
type Inputs struct {
	Horizontal float64
	Vertical   float64

	Jump         bool
	JumpPressed  bool
	JumpReleased bool

	DashPressed bool

	PowerPressed  bool
	PowerHeld     bool
	PowerReleased bool

	PossessPressed bool
}

// Clamped returns a copy with both axes limited to [-1,1].
func (in Inputs) Clamped() Inputs {
	in.Horizontal = clampAxis(in.Horizontal)
	in.Vertical = clampAxis(in.Vertical)
	return in
}

func clampAxis(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
