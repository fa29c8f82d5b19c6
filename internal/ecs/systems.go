package ecs

import (
	"math"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
)

// KnockbackConfig tunes what happens to a character that takes damage.
// Values are in tiles/sec and seconds.
type KnockbackConfig struct {
	Force        float64
	UpForce      float64
	StunDuration float64
	Invulnerable float64
}

// UpdateTimers advances all per-entity timers by one fixed step
func UpdateTimers(w *World, dt float64) {
	for id, h := range w.Health {
		h.Iframe.Advance(dt)
		w.Health[id] = h
	}
}

// Hurt damages a walking character and knocks it away from normal. When the
// surface normal is mostly vertical the push goes against the facing
// direction. A character that dies respawns at full health. Returns false if
// the hit was ignored.
func (w *World) Hurt(id EntityID, damage int, normal kinematic.Vec) bool {
	ch, ok := w.Characters[id]
	if !ok || ch.Form != FormWalker {
		return false
	}
	h, ok := w.Health[id]
	if !ok || h.Iframe.Active() {
		return false
	}

	dead := h.TakeDamage(damage)
	h.Iframe.Open(w.Knockback.Invulnerable)
	w.Health[id] = h

	if dead {
		w.respawn(id)
		return true
	}

	w.KnockBack(id, normal)
	return true
}

// KnockBack pushes a walking character away from normal without damage.
func (w *World) KnockBack(id EntityID, normal kinematic.Vec) bool {
	ch, ok := w.Characters[id]
	if !ok || ch.Form != FormWalker {
		return false
	}
	ch.Machine.KnockBack(knockbackForce(w.Knockback, normal, ch.Machine.Facing()), w.Knockback.StunDuration)
	return true
}

func knockbackForce(cfg KnockbackConfig, normal kinematic.Vec, facing float64) kinematic.Vec {
	dir := -facing
	if math.Abs(normal.X) > 0.1 {
		dir = math.Copysign(1, normal.X)
	}
	return kinematic.Vec{X: dir * cfg.Force, Y: cfg.UpForce}
}

func (w *World) respawn(id EntityID) {
	ch := w.Characters[id]
	h := w.Health[id]
	h.Current = h.Max
	w.Health[id] = h

	stepper := ch.Machine.Stepper()
	ch.Body.SetPosition(ch.Spawn)
	stepper.SetVelocity(kinematic.Vec{})
	stepper.SetTargetHorizontal(0)
}

func (w *World) touchHazard(id EntityID, c kinematic.Contact) {
	tile, ok := w.Physics.TileOf(c.Other)
	if !ok || tile.Damage <= 0 {
		return
	}
	w.Hurt(id, tile.Damage, c.Normal)
}
