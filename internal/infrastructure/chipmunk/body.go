package chipmunk

import (
	"github.com/jakecoffman/cp"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
)

// Body is a kinematic circle living in a World. It implements
// kinematic.Body.
type Body struct {
	world    *World
	body     *cp.Body
	shape    *cp.Shape
	radius   float64
	collider kinematic.Collider
	parked   bool
}

func (b *Body) Collider() kinematic.Collider { return b.collider }

func (b *Body) Position() kinematic.Vec {
	if b.body == nil {
		return kinematic.Vec{}
	}
	return b.body.Position()
}

// SetPosition moves the body and refreshes the shape's cached geometry so
// casts see the new position before the next Sync.
func (b *Body) SetPosition(p kinematic.Vec) {
	if b.body == nil {
		return
	}
	b.body.SetPosition(p)
	b.shape.CacheBB()
}

func (b *Body) SetAngle(radians float64) {
	if b.body == nil {
		return
	}
	b.body.SetAngle(radians)
}

// Angle returns the rotation set by the last SetAngle.
func (b *Body) Angle() float64 {
	if b.body == nil {
		return 0
	}
	return b.body.Angle()
}

func (b *Body) Radius() float64 { return b.radius }

// Parked reports whether the shape is out of the space.
func (b *Body) Parked() bool { return b.parked }

// Park takes the shape out of collision queries while keeping its
// collider. Used for the inactive form of a character.
func (b *Body) Park() {
	if b.parked || b.body == nil {
		return
	}
	b.world.space.RemoveShape(b.shape)
	b.parked = true
}

// Unpark puts a parked shape back into the space.
func (b *Body) Unpark() {
	if !b.parked || b.body == nil {
		return
	}
	b.world.space.AddShape(b.shape)
	b.shape.CacheBB()
	b.parked = false
}
