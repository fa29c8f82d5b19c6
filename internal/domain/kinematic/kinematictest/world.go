// Package kinematictest provides an analytic collision world for tests.
//
// Surfaces are infinite planes and bodies are circles, so cast distances are
// exact and scenarios can be checked against closed-form numbers.
package kinematictest

import (
	"sort"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
)

// Plane is a one-sided infinite surface. Normal must be unit length and
// points out of the solid side.
type Plane struct {
	Point    kinematic.Vec
	Normal   kinematic.Vec
	Collider kinematic.Collider
}

// World answers casts against a set of planes.
type World struct {
	Planes []Plane
	Casts  int
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{}
}

// AddPlane adds a surface and returns its collider.
func (w *World) AddPlane(point, normal kinematic.Vec, entity kinematic.EntityID) kinematic.Collider {
	c := kinematic.Collider{ID: kinematic.ColliderID(len(w.Planes) + 1000), Entity: entity}
	w.Planes = append(w.Planes, Plane{Point: point, Normal: normal.Normalize(), Collider: c})
	return c
}

// Floor adds a ground plane at height y.
func (w *World) Floor(y float64) kinematic.Collider {
	return w.AddPlane(kinematic.Vec{X: 0, Y: y}, kinematic.Vec{X: 0, Y: 1}, 0)
}

// Ceiling adds a plane at height y facing down.
func (w *World) Ceiling(y float64) kinematic.Collider {
	return w.AddPlane(kinematic.Vec{X: 0, Y: y}, kinematic.Vec{X: 0, Y: -1}, 0)
}

// RightWall adds a wall at x blocking movement to the right.
func (w *World) RightWall(x float64) kinematic.Collider {
	return w.AddPlane(kinematic.Vec{X: x, Y: 0}, kinematic.Vec{X: -1, Y: 0}, 0)
}

// LeftWall adds a wall at x blocking movement to the left.
func (w *World) LeftWall(x float64) kinematic.Collider {
	return w.AddPlane(kinematic.Vec{X: x, Y: 0}, kinematic.Vec{X: 1, Y: 0}, 0)
}

func (w *World) Cast(body kinematic.Body, dir kinematic.Vec, _ kinematic.Filter, maxDistance float64) []kinematic.Hit {
	w.Casts++
	r := radiusOf(body)
	pos := body.Position()

	var hits []kinematic.Hit
	for _, p := range w.Planes {
		approach := dir.Dot(p.Normal)
		if approach >= 0 {
			continue
		}
		gap := pos.Sub(p.Point).Dot(p.Normal) - r
		t := gap / -approach
		if t < 0 {
			t = 0
		}
		if t > maxDistance {
			continue
		}
		center := pos.Add(dir.Mult(t))
		hits = append(hits, kinematic.Hit{
			Distance: t,
			Normal:   p.Normal,
			Point:    center.Sub(p.Normal.Mult(r)),
			Collider: p.Collider,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func (w *World) Overlap(body kinematic.Body, _ kinematic.Filter) []kinematic.Collider {
	r := radiusOf(body)
	pos := body.Position()
	var out []kinematic.Collider
	for _, p := range w.Planes {
		if pos.Sub(p.Point).Dot(p.Normal)-r < -1e-9 {
			out = append(out, p.Collider)
		}
	}
	return out
}

func radiusOf(body kinematic.Body) float64 {
	if c, ok := body.(interface{ Radius() float64 }); ok {
		return c.Radius()
	}
	return 0
}

// Circle is a plain body for tests.
type Circle struct {
	R     float64
	Pos   kinematic.Vec
	Angle float64
	ID    kinematic.Collider
}

// NewCircle creates a circle body owned by entity.
func NewCircle(entity kinematic.EntityID, r float64, pos kinematic.Vec) *Circle {
	return &Circle{
		R:   r,
		Pos: pos,
		ID:  kinematic.Collider{ID: kinematic.ColliderID(entity), Entity: entity},
	}
}

func (c *Circle) Collider() kinematic.Collider { return c.ID }
func (c *Circle) Position() kinematic.Vec { return c.Pos }
func (c *Circle) SetPosition(p kinematic.Vec) { c.Pos = p }
func (c *Circle) SetAngle(radians float64) { c.Angle = radians }
func (c *Circle) Radius() float64 { return c.R }

// Recorder collects contact events in order.
type Recorder struct {
	Events []string
	Last   kinematic.Contact
}

func (r *Recorder) OnContactEnter(c kinematic.Contact) {
	r.Events = append(r.Events, "enter")
	r.Last = c
}

func (r *Recorder) OnContactStay(c kinematic.Contact) {
	r.Events = append(r.Events, "stay")
	r.Last = c
}

func (r *Recorder) OnContactExit(c kinematic.Contact) {
	r.Events = append(r.Events, "exit")
	r.Last = c
}

// Reset forgets recorded events
func (r *Recorder) Reset() {
	r.Events = nil
}
