package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func createTestReloader(t *testing.T) (*Reloader, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tuning.yaml"), "movement:\n  maxSpeed: 6\n")
	writeFile(t, filepath.Join(dir, "scripts", "walk.tengo"), "horizontal = 1\n")

	sim, _ := createTestSimulation(t)
	loader := config.NewLoader(dir)
	tuning, err := loader.LoadTuning()
	require.NoError(t, err)

	return &Reloader{
		Loader: loader,
		World:  sim.World,
		Scripts: NewScriptDriver(func(name string) (*script.Script, error) {
			return script.Load(loader.FS(), name)
		}),
		Tuning: tuning,
	}, dir
}

func TestReloader_Tuning(t *testing.T) {
	r, dir := createTestReloader(t)
	path := filepath.Join(dir, "tuning.yaml")
	player := r.World.Player()

	writeFile(t, path, "movement:\n  maxSpeed: 4\nknockback:\n  force: 3\n")
	changed, err := r.Apply([]string{path, path})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 4.0, player.Machine.Config().MaxSpeed)
	assert.Equal(t, 3.0, r.World.Knockback.Force)
	assert.Equal(t, 4.0, r.Tuning.Movement.MaxSpeed)

	writeFile(t, path, "movement:\n  maxSpeed: -1\n")
	changed, err = r.Apply([]string{path})
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, 4.0, player.Machine.Config().MaxSpeed, "a bad file changes nothing")
	assert.Equal(t, 4.0, r.Tuning.Movement.MaxSpeed)
}

func TestReloader_Scripts(t *testing.T) {
	r, dir := createTestReloader(t)
	path := filepath.Join(dir, "scripts", "walk.tengo")

	changed, err := r.Apply([]string{path})
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, path, "horizontal = \n")
	_, err = r.Apply([]string{path})
	assert.Error(t, err)
	assert.Error(t, r.Scripts.Err("walk"))

	writeFile(t, path, "horizontal = -1\n")
	_, err = r.Apply([]string{path})
	require.NoError(t, err)
	assert.NoError(t, r.Scripts.Err("walk"))
}

func TestReloader_IgnoresOtherFiles(t *testing.T) {
	r, dir := createTestReloader(t)

	changed, err := r.Apply([]string{filepath.Join(dir, "notes.txt"), filepath.Join(dir, "stages", "demo.json")})
	assert.NoError(t, err)
	assert.False(t, changed)
}
