package ecs

import (
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/chipmunk"
)

// Form is the shape a character currently moves with
type Form int

const (
	FormWalker Form = iota
	FormBounce
)

func (f Form) String() string {
	switch f {
	case FormWalker:
		return "walker"
	case FormBounce:
		return "bounce"
	default:
		return "unknown"
	}
}

// Character is a walking entity driven by a movement machine. It may own a
// bounce form in Bouncers under the same ID; only the active form's body is
// in the collision space.
type Character struct {
	Machine *movement.Machine
	Body    *chipmunk.Body
	Form    Form
	Spawn   kinematic.Vec

	formBody      *chipmunk.Body
	returnPending bool // bounce form finished, back to walker after dispatch
}

// Position returns the position of the active form's body
func (c *Character) Position() kinematic.Vec {
	if c.Form == FormBounce && c.formBody != nil {
		return c.formBody.Position()
	}
	return c.Body.Position()
}

// Bouncer is a body moved by a BounceStepper.
type Bouncer struct {
	Stepper *kinematic.BounceStepper
	Body    *chipmunk.Body
}

// Health represents entity health with invulnerability after a hit
type Health struct {
	Current int
	Max     int
	Iframe  kinematic.Window
}

// TakeDamage applies damage if not invulnerable, returns true if dead
func (h *Health) TakeDamage(amount int) bool {
	if h.Iframe.Active() {
		return false
	}
	h.Current -= amount
	return h.Current <= 0
}

// IsAlive returns true if health > 0
func (h *Health) IsAlive() bool {
	return h.Current > 0
}

// Heal restores health up to max
func (h *Health) Heal(amount int) {
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
}

// ControllerKind says where a character's inputs come from
type ControllerKind int

const (
	ControlIdle ControllerKind = iota
	ControlPlayer
	ControlScript
)

// Controller selects the input source of a character. Script names a
// compiled script owned by the application layer.
type Controller struct {
	Kind   ControllerKind
	Script string
}
