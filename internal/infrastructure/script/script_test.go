package script

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

const sandboxConfigs = "../../../cmd/sandbox/configs"

func createTestScript(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Compile("test", []byte(src))
	require.NoError(t, err)
	return s
}

func run(t *testing.T, s *Script, st State) movement.Inputs {
	t.Helper()
	in, err := s.Run(context.Background(), st)
	require.NoError(t, err)
	return in
}

func TestLoad_Patrol(t *testing.T) {
	s, err := Load(os.DirFS(sandboxConfigs), "patrol")
	require.NoError(t, err)
	assert.Equal(t, "patrol", s.Name())

	tests := []struct {
		name string
		st   State
		want movement.Inputs
	}{
		{"walks right and hops", State{Frame: 0, Grounded: true}, movement.Inputs{Horizontal: 1, Jump: true, JumpPressed: true}},
		{"walks right", State{Frame: 30, Grounded: true}, movement.Inputs{Horizontal: 1}},
		{"turns around", State{Frame: 100, Grounded: true}, movement.Inputs{Horizontal: -1}},
		{"no hop in the air", State{Frame: 120}, movement.Inputs{Horizontal: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, s, tt.st))
		})
	}
}

func TestScript_OutputsReset(t *testing.T) {
	s := createTestScript(t, `if frame == 0 { dash = true; horizontal = -1 }`)

	assert.Equal(t, movement.Inputs{Horizontal: -1, DashPressed: true}, run(t, s, State{Frame: 0}))
	assert.Equal(t, movement.Inputs{}, run(t, s, State{Frame: 1}))
}

func TestScript_ReadsState(t *testing.T) {
	s := createTestScript(t, `
horizontal = x > 5 ? -0.5 : 0.5
jumpReleased = vy > 0 && !grounded
dash = facing < 0 && !sliding && !dashing
`)

	in := run(t, s, State{X: 6, VY: 2, Facing: -1})
	assert.Equal(t, movement.Inputs{Horizontal: -0.5, JumpReleased: true, DashPressed: true}, in)

	in = run(t, s, State{X: 1, VY: 2, Grounded: true, Facing: 1})
	assert.Equal(t, movement.Inputs{Horizontal: 0.5}, in)
}

func TestScript_Memory(t *testing.T) {
	src := `
if is_undefined(memory.count) {
	memory.count = 0
}
memory.count += 1
horizontal = memory.count / 10.0
`
	s := createTestScript(t, src)

	assert.InDelta(t, 0.1, run(t, s, State{}).Horizontal, 1e-9)
	assert.InDelta(t, 0.2, run(t, s, State{}).Horizontal, 1e-9)

	clone := s.Clone()
	assert.InDelta(t, 0.1, run(t, clone, State{}).Horizontal, 1e-9, "clones start with empty memory")
	assert.InDelta(t, 0.3, run(t, s, State{}).Horizontal, 1e-9)
}

func TestScript_ClampsAxis(t *testing.T) {
	s := createTestScript(t, `horizontal = frame == 0 ? 5 : -7`)

	assert.Equal(t, 1.0, run(t, s, State{Frame: 0}).Horizontal)
	assert.Equal(t, -1.0, run(t, s, State{Frame: 1}).Horizontal)
}

func TestScript_Errors(t *testing.T) {
	_, err := Compile("broken", []byte(`horizontal = `))
	assert.Error(t, err)

	s := createTestScript(t, `v := 1; v()`)
	_, err = s.Run(context.Background(), State{})
	assert.Error(t, err)

	s = createTestScript(t, `for {}`)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Run(ctx, State{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = Load(os.DirFS(sandboxConfigs), "missing")
	assert.Error(t, err)
}

func TestScript_Imports(t *testing.T) {
	s := createTestScript(t, `
math := import("math")
horizontal = math.sin(0)
jump = math.abs(-2.0) == 2.0
`)

	assert.Equal(t, movement.Inputs{Jump: true}, run(t, s, State{}))
}

func TestIsScriptFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"configs/scripts/patrol.tengo", true},
		{"PATROL.TENGO", true},
		{"configs/tuning.yaml", false},
		{"patrol.tengo.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsScriptFile(tt.path))
		})
	}

	assert.Equal(t, "patrol", NameOf("configs/scripts/patrol.tengo"))
	assert.Equal(t, "patrol", NameOf(`C:\configs\scripts\patrol.tengo`))
}
