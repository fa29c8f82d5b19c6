package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ertsnom99/plateformer-sub000/internal/application/game"
	"github.com/ertsnom99/plateformer-sub000/internal/application/replay"
	"github.com/ertsnom99/plateformer-sub000/internal/application/state"
	"github.com/ertsnom99/plateformer-sub000/internal/application/system"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/watch"
)

const (
	sandboxConfigs = "../../../../cmd/sandbox/configs"
	testFrameDT    = 1.0 / 60.0
)

func createTestOptions(t *testing.T, dir string) Options {
	t.Helper()
	loader := config.NewLoader(dir)
	cfg, err := loader.LoadAll("demo")
	require.NoError(t, err)
	return Options{Loader: loader, Config: cfg}
}

func createTestSandbox(t *testing.T, opts Options) *Sandbox {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	s.OnEnter()
	return s
}

func advanceFrames(t *testing.T, s *Sandbox, frames int, keys func(frame int) Keys) {
	t.Helper()
	for f := 0; f < frames; f++ {
		require.NoError(t, s.advance(testFrameDT, keys(f)))
	}
}

func hold(in movement.Inputs) func(int) Keys {
	return func(int) Keys { return Keys{Player: in} }
}

func positions(s *Sandbox) map[ecs.EntityID]kinematic.Vec {
	out := make(map[ecs.EntityID]kinematic.Vec)
	for _, id := range s.world.CharacterIDs() {
		out[id] = s.world.Characters[id].Position()
	}
	return out
}

func TestNew(t *testing.T) {
	opts := createTestOptions(t, sandboxConfigs)
	s, err := New(opts)
	require.NoError(t, err)

	assert.Equal(t, 3, s.world.CountCharacters())
	assert.Equal(t, state.StateLoading, s.state.Current())
	assert.NotNil(t, s.recorder)
	assert.Nil(t, s.replayer)
	assert.Equal(t, system.Features{true, true, true, true}, s.features)

	s.OnEnter()
	assert.Equal(t, state.StatePlaying, s.state.Current())
}

func TestSandbox_MovesPlayer(t *testing.T) {
	s := createTestSandbox(t, createTestOptions(t, sandboxConfigs))
	start := s.world.Player().Position()

	advanceFrames(t, s, 60, hold(movement.Inputs{Horizontal: 1}))

	pos := s.world.Player().Position()
	assert.Greater(t, pos.X, start.X+2)
	assert.Less(t, pos.X, 14.0, "stopped by the column")
	assert.True(t, s.world.Player().Machine.IsGrounded())
	assert.Equal(t, 60, s.recorder.FrameCount())
	assert.Equal(t, uint64(50), s.sim.Ticks())
}

func TestSandbox_Pause(t *testing.T) {
	s := createTestSandbox(t, createTestOptions(t, sandboxConfigs))
	advanceFrames(t, s, 5, hold(movement.Inputs{}))

	require.NoError(t, s.advance(testFrameDT, Keys{Pause: true}))
	assert.Equal(t, state.StatePaused, s.state.Current())
	before := positions(s)
	ticks := s.sim.Ticks()

	advanceFrames(t, s, 30, hold(movement.Inputs{Horizontal: 1, JumpPressed: true}))
	assert.Equal(t, before, positions(s), "time is stopped for everyone")
	assert.Equal(t, ticks, s.sim.Ticks())
	assert.Equal(t, 5, s.recorder.FrameCount(), "paused frames are not recorded")

	require.NoError(t, s.advance(testFrameDT, Keys{Pause: true}))
	assert.Equal(t, state.StatePlaying, s.state.Current())
	assert.Equal(t, 6, s.recorder.FrameCount())
}

func TestSandbox_ToggleFeature(t *testing.T) {
	s := createTestSandbox(t, createTestOptions(t, sandboxConfigs))

	keys := Keys{}
	keys.Toggle[system.FeatureDash] = true
	require.NoError(t, s.advance(testFrameDT, keys))

	assert.False(t, s.features[system.FeatureDash])
	assert.Equal(t, "dash: off", s.status)
	assert.Contains(t, s.featureLine(), "4 dash: off")
}

func TestSandbox_Quit(t *testing.T) {
	s := createTestSandbox(t, createTestOptions(t, sandboxConfigs))

	assert.ErrorIs(t, s.advance(testFrameDT, Keys{Quit: true}), game.ErrQuit)
}

func TestSandbox_Knockback(t *testing.T) {
	s := createTestSandbox(t, createTestOptions(t, sandboxConfigs))
	require.NoError(t, s.advance(testFrameDT, Keys{Knockback: true}))
	assert.True(t, s.world.Player().Machine.IsKnockedBack())

	opts := createTestOptions(t, sandboxConfigs)
	opts.RecordPath = filepath.Join(t.TempDir(), "session.json")
	s = createTestSandbox(t, opts)
	require.NoError(t, s.advance(testFrameDT, Keys{Knockback: true}))
	assert.False(t, s.world.Player().Machine.IsKnockedBack(), "would not replay")
}

func TestSandbox_ScriptedPlayer(t *testing.T) {
	opts := createTestOptions(t, sandboxConfigs)
	opts.Script = "patrol"
	s := createTestSandbox(t, opts)

	advanceFrames(t, s, 30, hold(movement.Inputs{Horizontal: -1}))

	data := s.recorder.Data()
	require.NotEmpty(t, data.Frames)
	assert.Equal(t, 1.0, data.Frames[0].H, "the script drives, not the keyboard")
}

// session walks, jumps, throws the bounce form and walks back.
func session(frame int) Keys {
	in := movement.Inputs{Horizontal: 1}
	switch {
	case frame == 30:
		in.Jump, in.JumpPressed = true, true
	case frame > 30 && frame < 45:
		in.Jump = true
	case frame == 45:
		in.JumpReleased = true
	case frame == 70:
		in.PowerPressed = true
	case frame > 120:
		in.Horizontal = -1
	}
	return Keys{Player: in}
}

func TestSandbox_RecordAndReplay(t *testing.T) {
	const frames = 180
	path := filepath.Join(t.TempDir(), "session.json")

	opts := createTestOptions(t, sandboxConfigs)
	opts.RecordPath = path
	rec := createTestSandbox(t, opts)
	advanceFrames(t, rec, frames, session)
	rec.OnExit()
	recorded := positions(rec)

	data, err := replay.LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, frames, data.Length)
	assert.Equal(t, "demo", data.Stage)

	opts = createTestOptions(t, sandboxConfigs)
	opts.Replay = data
	play := createTestSandbox(t, opts)
	assert.Equal(t, state.StateReplaying, play.state.Current())
	assert.Nil(t, play.recorder)

	advanceFrames(t, play, frames, hold(movement.Inputs{Horizontal: -1}))
	assert.Equal(t, state.StateReplaying, play.state.Current())
	require.NoError(t, play.advance(testFrameDT, Keys{}))
	assert.Equal(t, state.StateReplayDone, play.state.Current())

	assert.Equal(t, rec.sim.Ticks(), play.sim.Ticks())
	assert.Equal(t, recorded, positions(play), "the keyboard is ignored during a replay")
}

func copyConfigs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"tuning.yaml", "stages/demo.json", "scripts/patrol.tengo"} {
		data, err := os.ReadFile(filepath.Join(sandboxConfigs, name))
		require.NoError(t, err)
		dst := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
		require.NoError(t, os.WriteFile(dst, data, 0o644))
	}
	return dir
}

func TestSandbox_HotReload(t *testing.T) {
	dir := copyConfigs(t)
	w, err := watch.New(func(p string) bool {
		return config.IsTuningFile(p) || script.IsScriptFile(p)
	}, 20*time.Millisecond, dir, filepath.Join(dir, "scripts"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	opts := createTestOptions(t, dir)
	opts.Watcher = w
	s := createTestSandbox(t, opts)
	player := s.world.Player()

	path := filepath.Join(dir, "tuning.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tuned := strings.Replace(string(data), "maxSpeed: 9", "maxSpeed: 3", 1)
	tuned = strings.Replace(tuned, "tickRate: 50", "tickRate: 100", 1)
	require.NoError(t, os.WriteFile(path, []byte(tuned), 0o644))

	assert.Eventually(t, func() bool {
		s.reload()
		return player.Machine.Config().MaxSpeed == 3
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0.01, s.sim.FixedDT)
	assert.Equal(t, "tuning reloaded", s.status)
}

func TestCameraOffset(t *testing.T) {
	tests := []struct {
		name           string
		fx, fy         float64
		wantX, wantY   int
		stageW, stageH int
	}{
		{"centered", 500, 400, 180, 160, 1000, 800},
		{"clamped to origin", 10, 10, 0, 0, 1000, 800},
		{"clamped to far edge", 990, 790, 360, 320, 1000, 800},
		{"stage smaller than screen", 100, 100, 0, 0, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := cameraOffset(tt.fx, tt.fy, tt.stageW, tt.stageH, 640, 480)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}
