package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// InputSystem handles player input
type InputSystem struct{}

// NewInputSystem creates a new input system
func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

// InputState holds the current keyboard state
type InputState struct {
	Left         bool
	Right        bool
	Up           bool
	Down         bool
	Jump         bool
	JumpPressed  bool
	JumpReleased bool
	Dash         bool

	Power         bool
	PowerPressed  bool
	PowerReleased bool
	Possess       bool
}

// Poll reads the keyboard. Must run once per frame inside ebiten's Update.
func (s *InputSystem) Poll() InputState {
	return InputState{
		Left:          anyPressed(ebiten.KeyA, ebiten.KeyArrowLeft),
		Right:         anyPressed(ebiten.KeyD, ebiten.KeyArrowRight),
		Up:            anyPressed(ebiten.KeyW, ebiten.KeyArrowUp),
		Down:          anyPressed(ebiten.KeyS, ebiten.KeyArrowDown),
		Jump:          anyPressed(ebiten.KeyW, ebiten.KeyArrowUp),
		JumpPressed:   anyJustPressed(ebiten.KeyW, ebiten.KeyArrowUp),
		JumpReleased:  anyJustReleased(ebiten.KeyW, ebiten.KeyArrowUp),
		Dash:          inpututil.IsKeyJustPressed(ebiten.KeySpace),
		Power:         ebiten.IsKeyPressed(ebiten.KeyQ),
		PowerPressed:  inpututil.IsKeyJustPressed(ebiten.KeyQ),
		PowerReleased: inpututil.IsKeyJustReleased(ebiten.KeyQ),
		Possess:       inpututil.IsKeyJustPressed(ebiten.KeyP),
	}
}

// GetInput reads the keyboard and converts it to movement inputs
func (s *InputSystem) GetInput() movement.Inputs {
	return s.Poll().Inputs()
}

// Inputs converts the key state. Opposite keys cancel out.
func (in InputState) Inputs() movement.Inputs {
	return movement.Inputs{
		Horizontal:     axis(in.Left, in.Right),
		Vertical:       axis(in.Down, in.Up),
		Jump:           in.Jump,
		JumpPressed:    in.JumpPressed,
		JumpReleased:   in.JumpReleased,
		DashPressed:    in.Dash,
		PowerPressed:   in.PowerPressed,
		PowerHeld:      in.Power,
		PowerReleased:  in.PowerReleased,
		PossessPressed: in.Possess,
	}
}

func axis(negative, positive bool) float64 {
	v := 0.0
	if negative {
		v--
	}
	if positive {
		v++
	}
	return v
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func anyJustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

func anyJustReleased(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustReleased(k) {
			return true
		}
	}
	return false
}
