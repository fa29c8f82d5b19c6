package movement

// JumpKind tells observers which jump fired.
type JumpKind int

const (
	JumpGrounded JumpKind = iota
	JumpAirborne
	JumpWall
)

func (k JumpKind) String() string {
	switch k {
	case JumpGrounded:
		return "grounded"
	case JumpAirborne:
		return "airborne"
	case JumpWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Observer is notified of movement events. Animation and audio hook in
// here; the machine never calls them directly.
type Observer interface {
	OnJump(kind JumpKind)
	OnLanded()
	OnSlide(started bool)
	OnDashUsed()
	OnDashCooldownProgress(fraction float64)
	OnDashCooldownOver()
}

// Hooks adapts plain functions to Observer. Nil fields are skipped.
type Hooks struct {
	Jump                 func(JumpKind)
	Landed               func()
	Slide                func(started bool)
	DashUsed             func()
	DashCooldownProgress func(fraction float64)
	DashCooldownOver     func()
}

func (h Hooks) OnJump(kind JumpKind) {
	if h.Jump != nil {
		h.Jump(kind)
	}
}

func (h Hooks) OnLanded() {
	if h.Landed != nil {
		h.Landed()
	}
}

func (h Hooks) OnSlide(started bool) {
	if h.Slide != nil {
		h.Slide(started)
	}
}

func (h Hooks) OnDashUsed() {
	if h.DashUsed != nil {
		h.DashUsed()
	}
}

func (h Hooks) OnDashCooldownProgress(fraction float64) {
	if h.DashCooldownProgress != nil {
		h.DashCooldownProgress(fraction)
	}
}

func (h Hooks) OnDashCooldownOver() {
	if h.DashCooldownOver != nil {
		h.DashCooldownOver()
	}
}
