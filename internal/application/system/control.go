package system

import (
	"math"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
)

// ApplyActions handles the inputs the movement machine does not read:
// the possess key toggles possession mode and the power key throws a
// walking character's bounce form at launchSpeed.
func ApplyActions(w *ecs.World, id ecs.EntityID, in movement.Inputs, launchSpeed float64) error {
	ch, ok := w.Characters[id]
	if !ok {
		return nil
	}

	if in.PossessPressed {
		w.SetPossessing(id, !w.IsPossessing(id))
	}

	if in.PowerPressed && ch.Form == ecs.FormWalker {
		if _, ok := w.Bouncers[id]; !ok {
			return nil
		}
		dir := LaunchDirection(in, ch.Machine.Facing())
		return w.LaunchForm(id, dir.Mult(launchSpeed))
	}
	return nil
}

// LaunchDirection aims along the held direction keys. With no key held it
// throws forward and up at 45 degrees.
func LaunchDirection(in movement.Inputs, facing float64) kinematic.Vec {
	dir := kinematic.Vec{Y: in.Vertical}
	if in.Horizontal != 0 {
		dir.X = math.Copysign(1, in.Horizontal)
	}
	if dir.X == 0 && dir.Y == 0 {
		dir = kinematic.Vec{X: facing, Y: 1}
	}
	return dir.Normalize()
}

// Feature is a movement ability that can be switched at runtime
type Feature int

const (
	FeatureAirborneJump Feature = iota
	FeatureWallSlide
	FeatureWallJump
	FeatureDash
	FeatureCount
)

func (f Feature) String() string {
	switch f {
	case FeatureAirborneJump:
		return "air jump"
	case FeatureWallSlide:
		return "wall slide"
	case FeatureWallJump:
		return "wall jump"
	case FeatureDash:
		return "dash"
	default:
		return "unknown"
	}
}

// Features holds one switch per Feature
type Features [FeatureCount]bool

// FeaturesOf returns the switches a movement config starts with
func FeaturesOf(cfg movement.Config) Features {
	return Features{
		FeatureAirborneJump: cfg.AirborneJumpEnabled,
		FeatureWallSlide:    cfg.WallSlideEnabled,
		FeatureWallJump:     cfg.WallJumpEnabled,
		FeatureDash:         cfg.DashEnabled,
	}
}

// Toggle flips f and returns its new value
func (fs *Features) Toggle(f Feature) bool {
	fs[f] = !fs[f]
	return fs[f]
}

// Apply sets the switches on every character of w.
func (fs Features) Apply(w *ecs.World) {
	for _, id := range w.CharacterIDs() {
		m := w.Characters[id].Machine
		m.EnableAirborneJump(fs[FeatureAirborneJump])
		m.EnableSlideOfWall(fs[FeatureWallSlide])
		m.EnableWallJump(fs[FeatureWallJump])
		m.EnableDash(fs[FeatureDash])
	}
}
