// Package scene defines what the game loop runs each frame.
package scene

import "github.com/hajimehoshi/ebiten/v2"

// Scene is one screen of the game. Returning a non-nil Scene from Update
// switches to it; returning an error stops the game.
type Scene interface {
	// Update advances the scene by one frame of dt seconds.
	Update(dt float64) (next Scene, err error)
	Draw(screen *ebiten.Image)

	OnEnter()
	// OnExit also runs at shutdown.
	OnExit()
}
