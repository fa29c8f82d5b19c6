package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ertsnom99/plateformer-sub000/internal/application/system"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/chipmunk"
)

const testFrameDT = 1.0 / 60.0

func createTestReplayData(length int, frames ...FrameInput) ReplayData {
	return ReplayData{
		Version: Version,
		Stage:   "test",
		FrameDT: testFrameDT,
		Length:  length,
		Frames:  frames,
	}
}

func TestRecorder_SkipsIdleFrames(t *testing.T) {
	r := NewRecorder("demo", testFrameDT)
	r.RecordFrame(movement.Inputs{})
	r.RecordFrame(movement.Inputs{Horizontal: 1, JumpPressed: true})
	r.RecordFrame(movement.Inputs{})

	data := r.Data()
	assert.Equal(t, 3, r.FrameCount())
	assert.Equal(t, 3, data.Length)
	assert.Equal(t, []FrameInput{{F: 1, H: 1, JP: true}}, data.Frames)
	assert.Equal(t, "demo", data.Stage)
	assert.Equal(t, Version, data.Version)

	r.Stop()
	r.RecordFrame(movement.Inputs{Horizontal: -1})
	assert.False(t, r.IsRecording())
	assert.Equal(t, 3, r.FrameCount())
}

func TestRecorder_WriteTo(t *testing.T) {
	r := NewRecorder("demo", testFrameDT)

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	assert.ErrorIs(t, err, ErrEmpty)

	r.RecordFrame(movement.Inputs{DashPressed: true})
	_, err = r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"dsh": true`)
	assert.NotContains(t, buf.String(), `"jp"`, "false fields are omitted")
}

func TestReplayer_Next(t *testing.T) {
	data := createTestReplayData(4,
		FrameInput{F: 1, H: -1, J: true, JP: true},
		FrameInput{F: 2, Dsh: true, Pos: true},
	)
	replayer := NewReplayer(data)

	want := []movement.Inputs{
		{},
		{Horizontal: -1, Jump: true, JumpPressed: true},
		{DashPressed: true, PossessPressed: true},
		{},
	}
	for i, w := range want {
		assert.Equal(t, i, replayer.CurrentFrame())
		in, ok := replayer.Next()
		require.True(t, ok)
		assert.Equal(t, w, in, "frame %d", i)
	}

	_, ok := replayer.Next()
	assert.False(t, ok)
	assert.True(t, replayer.Done())
	assert.Equal(t, 4, replayer.TotalFrames())

	replayer.Reset()
	assert.Equal(t, 0, replayer.CurrentFrame())
	replayer.Next()
	in, _ := replayer.Next()
	assert.Equal(t, -1.0, in.Horizontal)
}

func TestFrameInput_Inputs(t *testing.T) {
	in := movement.Inputs{
		Horizontal:     0.5,
		Vertical:       -1,
		Jump:           true,
		JumpPressed:    true,
		JumpReleased:   true,
		DashPressed:    true,
		PowerPressed:   true,
		PowerHeld:      true,
		PowerReleased:  true,
		PossessPressed: true,
	}

	assert.Equal(t, in, frameOf(7, in).Inputs())
	assert.Equal(t, 7, frameOf(7, in).F)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"valid", `{"version":"2","frameDT":0.02,"length":3,"frames":[{"f":0,"h":1},{"f":2,"j":true}]}`, nil},
		{"old version", `{"version":"1.0","frameDT":0.02,"length":1,"frames":[]}`, ErrVersion},
		{"no frame duration", `{"version":"2","length":1,"frames":[]}`, ErrFrameDuration},
		{"unordered", `{"version":"2","frameDT":0.02,"length":3,"frames":[{"f":2},{"f":1}]}`, ErrFrameOrder},
		{"duplicate", `{"version":"2","frameDT":0.02,"length":3,"frames":[{"f":1},{"f":1}]}`, ErrFrameOrder},
		{"past the end", `{"version":"2","frameDT":0.02,"length":2,"frames":[{"f":2}]}`, ErrFrameRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Decode(strings.NewReader(tt.json))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, data.Length)
		})
	}

	_, err := Decode(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), GenerateFilename())

	r := NewRecorder("demo", testFrameDT)
	assert.Error(t, r.Save(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "failed saves leave no file")

	r.RecordFrame(movement.Inputs{Horizontal: 1})
	r.RecordFrame(movement.Inputs{})
	require.NoError(t, r.Save(path))

	data, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, r.Data().Frames, data.Frames)
	assert.Equal(t, 2, data.Length)
	assert.Equal(t, testFrameDT, data.FrameDT)

	_, err = LoadReplay(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func createTestSimulation(t *testing.T) (*system.Simulation, ecs.EntityID) {
	t.Helper()
	world := ecs.NewWorld(chipmunk.NewWorld())
	world.Physics.AddBox(stage.Rect{L: -100, B: -1, R: 100, T: 0}, 0)
	world.Physics.AddBox(stage.Rect{L: 6, B: 0, R: 7, T: 3}, 0)

	cfg := ecs.CharacterConfig{
		Radius:    0.5,
		MaxHealth: 3,
		Stepper:   kinematic.DefaultStepperConfig(),
		Movement:  movement.DefaultConfig(),
	}
	player, err := world.CreatePlayer(kinematic.Vec{X: 0, Y: 0.51}, cfg)
	require.NoError(t, err)
	sim, err := system.NewSimulation(world, 0.02, 5)
	require.NoError(t, err)
	return sim, player
}

// scripted walks right, jumps and dashes into the wall.
func scripted(frame int) movement.Inputs {
	in := movement.Inputs{Horizontal: 1}
	switch {
	case frame == 20:
		in.Jump, in.JumpPressed = true, true
	case frame > 20 && frame < 35:
		in.Jump = true
	case frame == 35:
		in.JumpReleased = true
	case frame == 50:
		in.DashPressed = true
	case frame > 90:
		in.Horizontal = -1
	}
	return in
}

func TestReplay_ReproducesSession(t *testing.T) {
	const frames = 150

	sim, player := createTestSimulation(t)
	rec := NewRecorder("test", testFrameDT)
	for f := 0; f < frames; f++ {
		in := scripted(f)
		rec.RecordFrame(in)
		_, err := sim.Update(testFrameDT, map[ecs.EntityID]movement.Inputs{player: in})
		require.NoError(t, err)
	}
	recorded := sim.World.Player().Position()

	var buf bytes.Buffer
	_, err := rec.WriteTo(&buf)
	require.NoError(t, err)
	data, err := Decode(&buf)
	require.NoError(t, err)

	replaySim, replayPlayer := createTestSimulation(t)
	replayer := NewReplayer(*data)
	for {
		in, ok := replayer.Next()
		if !ok {
			break
		}
		_, err := replaySim.Update(replayer.FrameDT(), map[ecs.EntityID]movement.Inputs{replayPlayer: in})
		require.NoError(t, err)
	}

	assert.Equal(t, sim.Ticks(), replaySim.Ticks())
	assert.Equal(t, recorded, replaySim.World.Player().Position())
}
