// Package game runs the current scene inside ebiten's loop.
package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ertsnom99/plateformer-sub000/internal/application/scene"
)

// ErrQuit is returned by a scene to end the game normally.
var ErrQuit = errors.New("quit")

// Game is the ebiten.Game handed to ebiten.RunGame. It owns the current
// scene and feeds it a fixed frame duration.
type Game struct {
	current scene.Scene
	screenW int
	screenH int
	dt      float64
	closed  bool
}

// New enters initialScene right away.
func New(initialScene scene.Scene, screenW, screenH int) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / float64(ebiten.TPS()),
	}
	g.current.OnEnter()
	return g
}

// Update runs one frame of the current scene. ErrQuit ends RunGame without
// an error.
func (g *Game) Update() error {
	next, err := g.current.Update(g.dt)
	switch {
	case errors.Is(err, ErrQuit):
		return ebiten.Termination
	case err != nil:
		return err
	case next == nil:
		return nil
	}

	g.current.OnExit()
	g.current = next
	g.current.OnEnter()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout keeps the logical screen size whatever the window size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.screenW, g.screenH
}

// SetDT sets the frame duration passed to scenes.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

// DT returns the frame duration passed to scenes
func (g *Game) DT() float64 {
	return g.dt
}

// Close exits the current scene. Call it once ebiten.RunGame returns.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.current.OnExit()
}
