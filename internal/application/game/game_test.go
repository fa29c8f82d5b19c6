package game

import (
	"fmt"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ertsnom99/plateformer-sub000/internal/application/scene"
)

// mockScene is a test double for Scene interface
type mockScene struct {
	updateCalled  int
	drawCalled    int
	onEnterCalled int
	onExitCalled  int
	lastDT        float64
	nextScene     scene.Scene
	updateErr     error
}

func (m *mockScene) Update(dt float64) (scene.Scene, error) {
	m.updateCalled++
	m.lastDT = dt
	return m.nextScene, m.updateErr
}

func (m *mockScene) Draw(screen *ebiten.Image) {
	m.drawCalled++
}

func (m *mockScene) OnEnter() {
	m.onEnterCalled++
}

func (m *mockScene) OnExit() {
	m.onExitCalled++
}

func TestNew(t *testing.T) {
	mockInitial := &mockScene{}
	g := New(mockInitial, 320, 240)

	assert.NotNil(t, g)
	assert.Equal(t, 1, mockInitial.onEnterCalled, "OnEnter should be called on initial scene")
	assert.InDelta(t, 1.0/float64(ebiten.TPS()), g.DT(), 1e-12)
}

func TestGame_Update_PassesDT(t *testing.T) {
	mockInitial := &mockScene{}
	g := New(mockInitial, 320, 240)
	g.SetDT(0.02)

	assert.NoError(t, g.Update())
	assert.Equal(t, 1, mockInitial.updateCalled)
	assert.Equal(t, 0.02, mockInitial.lastDT)
}

func TestGame_Draw_DelegatesToCurrentScene(t *testing.T) {
	mockInitial := &mockScene{}
	g := New(mockInitial, 320, 240)

	g.Draw(nil)

	assert.Equal(t, 1, mockInitial.drawCalled)
}

func TestGame_Layout(t *testing.T) {
	g := New(&mockScene{}, 320, 240)

	w, h := g.Layout(640, 480)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestGame_SceneTransition(t *testing.T) {
	scene1 := &mockScene{}
	scene2 := &mockScene{}
	scene1.nextScene = scene2

	g := New(scene1, 320, 240)

	assert.NoError(t, g.Update())
	assert.Equal(t, 1, scene1.onExitCalled, "scene1 OnExit called on transition")
	assert.Equal(t, 1, scene2.onEnterCalled, "scene2 OnEnter called on transition")

	assert.NoError(t, g.Update())
	assert.Equal(t, 1, scene2.updateCalled, "scene2 Update called")
}

func TestGame_UpdateErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"quit terminates", ErrQuit, ebiten.Termination},
		{"wrapped quit terminates", fmt.Errorf("menu: %w", ErrQuit), ebiten.Termination},
		{"other errors propagate", assert.AnError, assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &mockScene{updateErr: tt.err, nextScene: &mockScene{}}
			g := New(s, 320, 240)

			assert.ErrorIs(t, g.Update(), tt.want)
			assert.Equal(t, 0, s.onExitCalled, "no transition on error")
		})
	}
}

func TestGame_Close(t *testing.T) {
	s := &mockScene{}
	g := New(s, 320, 240)

	g.Close()
	g.Close()

	assert.Equal(t, 1, s.onExitCalled)
}
