// Package kinematic moves collision shapes through a world by shape casting.
//
// Two movers live here: Stepper slides a body along the surfaces it hits and
// classifies ground contact, BounceStepper reflects its velocity off them.
// Both are driven once per fixed step and neither owns the collision world;
// they query it through a Caster.
package kinematic

import (
	"errors"

	"github.com/jakecoffman/cp"
)

// Vec is a 2D vector, y up.
type Vec = cp.Vector

// Up is the world up direction.
var Up = Vec{X: 0, Y: 1}

// EntityID identifies the entity that owns a collider
type EntityID uint64

// ColliderID identifies a single collision shape
type ColliderID uint64

// Collider names a shape and the entity it belongs to.
type Collider struct {
	ID     ColliderID
	Entity EntityID
}

// Hit is one result of a shape cast, ordered by Distance.
type Hit struct {
	Distance float64
	Normal   Vec
	Point    Vec
	Collider Collider
}

// Filter selects which colliders a query can see.
type Filter struct {
	Categories uint
	Mask       uint
}

// FilterAll sees every collider
var FilterAll = Filter{Categories: ^uint(0), Mask: ^uint(0)}

// IsZero reports whether the filter was left unset.
func (f Filter) IsZero() bool {
	return f.Categories == 0 && f.Mask == 0
}

// OrAll returns FilterAll for an unset filter.
func (f Filter) OrAll() Filter {
	if f.IsZero() {
		return FilterAll
	}
	return f
}

// Body is the movable collision shape of an entity.
type Body interface {
	Collider() Collider
	Position() Vec
	SetPosition(p Vec)
	SetAngle(radians float64)
}

// Caster answers collision queries against the world.
//
// Cast sweeps body along dir (unit length) for at most maxDistance and
// returns every hit ordered by distance. The body's own collider is never
// reported. Overlap lists the colliders currently intersecting body.
type Caster interface {
	Cast(body Body, dir Vec, filter Filter, maxDistance float64) []Hit
	Overlap(body Body, filter Filter) []Collider
}

// Pass tells which half of a step a move belongs to.
type Pass int

const (
	PassHorizontal Pass = iota
	PassVertical
)

func (p Pass) String() string {
	switch p {
	case PassHorizontal:
		return "Horizontal"
	case PassVertical:
		return "Vertical"
	default:
		return "Unknown"
	}
}

var (
	ErrNilBody   = errors.New("kinematic: body is required")
	ErrNilCaster = errors.New("kinematic: caster is required")
)

// Reflect mirrors v about the surface with unit normal n.
func Reflect(v, n Vec) Vec {
	return v.Sub(n.Mult(2 * v.Dot(n)))
}
