package system

import (
	"fmt"
	"log"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
)

// CharacterConfig builds the per-character configuration from tuning.
// Every character gets a bounce form.
func CharacterConfig(t *config.TuningConfig) (ecs.CharacterConfig, error) {
	bounce, err := t.ToBounceConfig()
	if err != nil {
		return ecs.CharacterConfig{}, fmt.Errorf("failed to build character config: %w", err)
	}
	return ecs.CharacterConfig{
		Radius:       t.Character.Radius,
		MaxHealth:    t.Character.MaxHealth,
		Stepper:      t.ToStepperConfig(),
		Movement:     t.ToMovementConfig(),
		Bounce:       &bounce,
		BounceRadius: t.Bounce.Radius,
	}, nil
}

// KnockbackConfig converts the knockback tuning
func KnockbackConfig(t *config.TuningConfig) ecs.KnockbackConfig {
	return ecs.KnockbackConfig{
		Force:        t.Knockback.Force,
		UpForce:      t.Knockback.UpForce,
		StunDuration: t.Knockback.StunDuration,
		Invulnerable: t.Knockback.Invulnerable,
	}
}

// SpawnStage loads st into the world's collision space, creates the player at
// the stage spawn and one character per stage spawn entry. Characters that
// fail to build are logged and skipped; a failing player is an error.
func SpawnStage(w *ecs.World, st *stage.Stage, stageCfg *config.StageConfig, tuning *config.TuningConfig) (ecs.EntityID, error) {
	if err := w.Physics.LoadStage(st); err != nil {
		return 0, err
	}

	charCfg, err := CharacterConfig(tuning)
	if err != nil {
		return 0, err
	}
	w.Knockback = KnockbackConfig(tuning)

	player, err := w.CreatePlayer(SpawnPosition(st.Spawn, charCfg.Radius), charCfg)
	if err != nil {
		return 0, fmt.Errorf("failed to spawn player: %w", err)
	}

	for i, spawn := range stageCfg.Spawns {
		pos := SpawnPosition(PixelToWorld(st, config.PositionConfig{X: spawn.X, Y: spawn.Y}), charCfg.Radius)
		id, err := w.CreateCharacter(pos, charCfg)
		if err != nil {
			log.Printf("Skipping spawn %d (%s): %v", i, spawn.Type, err)
			continue
		}
		if spawn.Script != "" {
			w.Controllers[id] = ecs.Controller{Kind: ecs.ControlScript, Script: spawn.Script}
		}
	}
	return player, nil
}

// ApplyTuning pushes new tuning into every live character and bouncer. The
// first failure aborts; characters updated before it keep the new values.
func ApplyTuning(w *ecs.World, tuning *config.TuningConfig) error {
	stepperCfg := tuning.ToStepperConfig()
	moveCfg := tuning.ToMovementConfig()
	bounceCfg, err := tuning.ToBounceConfig()
	if err != nil {
		return fmt.Errorf("failed to apply tuning: %w", err)
	}

	for _, id := range w.CharacterIDs() {
		ch := w.Characters[id]
		if err := ch.Machine.Stepper().SetConfig(stepperCfg); err != nil {
			return fmt.Errorf("failed to apply tuning to entity %d: %w", id, err)
		}
		if err := ch.Machine.SetConfig(moveCfg); err != nil {
			return fmt.Errorf("failed to apply tuning to entity %d: %w", id, err)
		}
	}
	for id, b := range w.Bouncers {
		if err := b.Stepper.SetConfig(bounceCfg); err != nil {
			return fmt.Errorf("failed to apply tuning to bouncer %d: %w", id, err)
		}
	}
	w.Knockback = KnockbackConfig(tuning)
	return nil
}

// SpawnPosition lifts a spawn point so a circle of radius rests on it
// instead of being centered on it.
func SpawnPosition(p kinematic.Vec, radius float64) kinematic.Vec {
	return kinematic.Vec{X: p.X, Y: p.Y + radius}
}
