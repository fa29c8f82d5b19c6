package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml")
}

func createTestWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	w, err := New(isYAML, testDebounce, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, dir
}

func nextEvent(t *testing.T, w *Watcher) (string, bool) {
	t.Helper()
	select {
	case p, ok := <-w.Events:
		return p, ok
	case <-time.After(2 * time.Second):
		return "", false
	}
}

func TestWatcher_ReportsMatchingWrites(t *testing.T) {
	w, dir := createTestWatcher(t)
	path := filepath.Join(dir, "tuning.yaml")

	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))

	got, ok := nextEvent(t, w)
	require.True(t, ok)
	assert.Equal(t, path, got)

	select {
	case extra := <-w.Events:
		t.Fatalf("burst reported twice: %s", extra)
	case <-time.After(5 * testDebounce):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	w, dir := createTestWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stage.yaml"), []byte("x"), 0o644))

	got, ok := nextEvent(t, w)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "stage.yaml"), got)
}

func TestWatcher_Drain(t *testing.T) {
	w, dir := createTestWatcher(t)
	assert.Empty(t, w.Drain())

	path := filepath.Join(dir, "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	assert.Eventually(t, func() bool {
		paths := w.Drain()
		return len(paths) == 1 && paths[0] == path
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWatcher_Close(t *testing.T) {
	w, _ := createTestWatcher(t)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "closing twice is fine")

	_, ok := <-w.Events
	assert.False(t, ok)
	_, ok = <-w.Errors
	assert.False(t, ok)
	assert.Empty(t, w.Drain())
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(isYAML, testDebounce, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
