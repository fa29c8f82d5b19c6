// Package chipmunk answers kinematic collision queries with a Chipmunk2D
// space.
//
// Bodies are kinematic: the space never integrates them. Movers place them
// with SetPosition and Sync reindexes the broad phase once per fixed step.
package chipmunk

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
)

// World owns the Chipmunk space and maps its shapes back to colliders.
type World struct {
	space *cp.Space

	nextID     kinematic.ColliderID
	colliders  map[*cp.Shape]kinematic.Collider
	shapeOfID  map[kinematic.ColliderID]*cp.Shape
	stageShape []*cp.Shape
	stageTiles map[kinematic.ColliderID]stage.Tile
}

// NewWorld creates an empty world
func NewWorld() *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})

	return &World{
		space:      space,
		colliders:  make(map[*cp.Shape]kinematic.Collider),
		shapeOfID:  make(map[kinematic.ColliderID]*cp.Shape),
		stageTiles: make(map[kinematic.ColliderID]stage.Tile),
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	return w.space
}

func (w *World) register(shape *cp.Shape, entity kinematic.EntityID) kinematic.Collider {
	w.nextID++
	c := kinematic.Collider{ID: w.nextID, Entity: entity}
	shape.UserData = c
	w.colliders[shape] = c
	w.shapeOfID[c.ID] = shape
	return c
}

// AddBox adds a static box. entity is zero for level geometry.
func (w *World) AddBox(r stage.Rect, entity kinematic.EntityID) kinematic.Collider {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: r.L, B: r.B, R: r.R, T: r.T}, 0)
	w.space.AddShape(shape)
	return w.register(shape, entity)
}

// AddSegment adds a static segment with thickness radius.
func (w *World) AddSegment(a, b kinematic.Vec, radius float64, entity kinematic.EntityID) kinematic.Collider {
	shape := cp.NewSegment(w.space.StaticBody, a, b, radius)
	w.space.AddShape(shape)
	return w.register(shape, entity)
}

// AddSensor adds a static box that shows up in overlaps but never blocks
// casts.
func (w *World) AddSensor(r stage.Rect, entity kinematic.EntityID) kinematic.Collider {
	shape := cp.NewBox2(w.space.StaticBody, cp.BB{L: r.L, B: r.B, R: r.R, T: r.T}, 0)
	shape.SetSensor(true)
	w.space.AddShape(shape)
	return w.register(shape, entity)
}

// LoadStage replaces the level geometry with the solid runs of s.
func (w *World) LoadStage(s *stage.Stage) error {
	if s == nil {
		return fmt.Errorf("failed to load stage: stage is nil")
	}
	for _, shape := range w.stageShape {
		w.removeShape(shape)
	}
	w.stageShape = w.stageShape[:0]
	clear(w.stageTiles)

	for _, run := range s.SolidRuns() {
		c := w.AddBox(run.Rect, 0)
		w.stageShape = append(w.stageShape, w.shapeOfID[c.ID])
		w.stageTiles[c.ID] = run.Tile
	}
	return nil
}

// TileOf returns the stage tile a collider was built from.
func (w *World) TileOf(c kinematic.Collider) (stage.Tile, bool) {
	t, ok := w.stageTiles[c.ID]
	return t, ok
}

// AddCircle creates a kinematic circle body for entity at pos.
func (w *World) AddCircle(entity kinematic.EntityID, radius float64, pos kinematic.Vec, filter kinematic.Filter) *Body {
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFilter(toShapeFilter(filter))
	w.space.AddBody(body)
	w.space.AddShape(shape)

	return &Body{
		world:    w,
		body:     body,
		shape:    shape,
		radius:   radius,
		collider: w.register(shape, entity),
	}
}

// Remove takes a body out of the space.
func (w *World) Remove(b *Body) {
	if b == nil || b.body == nil {
		return
	}
	w.forget(b.shape)
	if !b.parked {
		w.space.RemoveShape(b.shape)
	}
	w.space.RemoveBody(b.body)
	b.body = nil
	b.parked = false
}

func (w *World) removeShape(shape *cp.Shape) {
	w.forget(shape)
	w.space.RemoveShape(shape)
}

func (w *World) forget(shape *cp.Shape) {
	if c, ok := w.colliders[shape]; ok {
		delete(w.shapeOfID, c.ID)
	}
	delete(w.colliders, shape)
}

// Collider returns the collider of a registered shape.
func (w *World) Collider(shape *cp.Shape) (kinematic.Collider, bool) {
	c, ok := w.colliders[shape]
	return c, ok
}

// Cast sweeps the circle of body along dir. Only bodies created by this
// world can be cast. Surfaces the body is moving away from are skipped.
func (w *World) Cast(body kinematic.Body, dir kinematic.Vec, filter kinematic.Filter, maxDistance float64) []kinematic.Hit {
	b, ok := body.(*Body)
	if !ok || b.body == nil || b.parked || maxDistance <= 0 {
		return nil
	}

	start := b.body.Position()
	end := start.Add(dir.Mult(maxDistance))

	var hits []kinematic.Hit
	w.space.SegmentQuery(start, end, b.radius, toShapeFilter(filter), func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
		if shape == b.shape || shape.Sensor() {
			return
		}
		// starting inside a shape reports it at alpha 0 whatever the direction
		if normal.Dot(dir) >= 0 {
			return
		}
		c, ok := w.colliders[shape]
		if !ok {
			return
		}
		hits = append(hits, kinematic.Hit{
			Distance: alpha * maxDistance,
			Normal:   normal,
			Point:    point,
			Collider: c,
		})
	}, nil)

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// Overlap lists the shapes intersecting the circle of body, sensors
// included.
func (w *World) Overlap(body kinematic.Body, filter kinematic.Filter) []kinematic.Collider {
	b, ok := body.(*Body)
	if !ok || b.body == nil || b.parked {
		return nil
	}

	query := toShapeFilter(filter)
	var out []kinematic.Collider
	w.space.ShapeQuery(b.shape, func(shape *cp.Shape, _ *cp.ContactPointSet) {
		if shape == b.shape || shape.Filter.Reject(query) {
			return
		}
		if c, ok := w.colliders[shape]; ok {
			out = append(out, c)
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sync steps the space. Kinematic bodies carry no velocity, so this only
// refreshes the broad phase with the positions set during the step.
func (w *World) Sync(dt float64) {
	if dt <= 0 {
		return
	}
	w.space.Step(dt)
}

func toShapeFilter(f kinematic.Filter) cp.ShapeFilter {
	f = f.OrAll()
	return cp.ShapeFilter{Group: cp.NO_GROUP, Categories: f.Categories, Mask: f.Mask}
}
