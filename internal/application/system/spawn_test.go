package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/chipmunk"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
)

const sandboxConfigs = "../../../cmd/sandbox/configs"

func loadSandboxConfig(t *testing.T) *config.GameConfig {
	t.Helper()
	cfg, err := config.NewLoader(sandboxConfigs).LoadAll("demo")
	require.NoError(t, err)
	return cfg
}

func TestSpawnStage(t *testing.T) {
	cfg := loadSandboxConfig(t)
	st := LoadStage(cfg.Stage)
	w := ecs.NewWorld(chipmunk.NewWorld())

	player, err := SpawnStage(w, st, cfg.Stage, cfg.Tuning)
	require.NoError(t, err)

	assert.Equal(t, player, w.PlayerID)
	assert.Equal(t, 1+len(cfg.Stage.Spawns), w.CountCharacters())
	assert.Equal(t, cfg.Tuning.Knockback.Force, w.Knockback.Force)

	scripted := 0
	for _, id := range w.CharacterIDs() {
		if c := w.Controllers[id]; c.Kind == ecs.ControlScript {
			scripted++
			assert.Equal(t, "patrol", c.Script)
		}
		assert.Contains(t, w.Bouncers, id, "every character can change form")
	}
	assert.Equal(t, 1, scripted)

	sim, err := NewSimulation(w, cfg.Tuning.FixedDT(), cfg.Tuning.Simulation.MaxTicksPerFrame)
	require.NoError(t, err)
	for i := 0; i < 120; i++ {
		_, err := sim.Update(testFrameDT, nil)
		require.NoError(t, err)
	}

	for _, id := range w.CharacterIDs() {
		ch := w.Characters[id]
		assert.True(t, ch.Machine.IsGrounded(), "entity %d lands", id)
		assert.InDelta(t, 2+cfg.Tuning.Character.Radius, ch.Position().Y, 0.02, "entity %d rests on the floor", id)
	}
}

func TestApplyTuning(t *testing.T) {
	cfg := loadSandboxConfig(t)
	w := ecs.NewWorld(chipmunk.NewWorld())
	_, err := SpawnStage(w, LoadStage(cfg.Stage), cfg.Stage, cfg.Tuning)
	require.NoError(t, err)

	tuning := *cfg.Tuning
	tuning.Movement.MaxSpeed = 3
	tuning.Bounce.Restitution = 0.5
	tuning.Knockback.Force = 2
	require.NoError(t, ApplyTuning(w, &tuning))

	for _, id := range w.CharacterIDs() {
		assert.Equal(t, 3.0, w.Characters[id].Machine.Config().MaxSpeed)
		assert.Equal(t, 0.5, w.Bouncers[id].Stepper.Config().Restitution)
	}
	assert.Equal(t, 2.0, w.Knockback.Force)

	bad := tuning
	bad.Bounce.Policy = "forever"
	assert.Error(t, ApplyTuning(w, &bad))

	bad = tuning
	bad.Movement.MaxSpeed = -1
	assert.Error(t, ApplyTuning(w, &bad))
}

func TestCharacterConfig(t *testing.T) {
	tuning := config.DefaultTuning()

	cc, err := CharacterConfig(&tuning)
	require.NoError(t, err)
	assert.Equal(t, tuning.Character.Radius, cc.Radius)
	assert.Equal(t, tuning.Character.MaxHealth, cc.MaxHealth)
	require.NotNil(t, cc.Bounce)
	assert.Equal(t, tuning.Bounce.Radius, cc.BounceRadius)

	tuning.Bounce.Policy = "forever"
	_, err = CharacterConfig(&tuning)
	assert.Error(t, err)
}
