package sandbox

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ertsnom99/plateformer-sub000/internal/application/state"
	"github.com/ertsnom99/plateformer-sub000/internal/application/system"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
)

// Colors for rendering
var (
	colorBG        = color.RGBA{26, 26, 46, 255}
	colorWall      = color.RGBA{80, 80, 100, 255}
	colorSpike     = color.RGBA{200, 50, 50, 255}
	colorPlatform  = color.RGBA{120, 100, 70, 255}
	colorPlayer    = color.RGBA{100, 200, 100, 255}
	colorScripted  = color.RGBA{230, 150, 60, 255}
	colorIdle      = color.RGBA{150, 150, 160, 255}
	colorForm      = color.RGBA{240, 220, 80, 255}
	colorFlash     = color.RGBA{255, 255, 255, 200}
	colorPossess   = color.RGBA{180, 120, 255, 255}
	colorHealthBG  = color.RGBA{60, 60, 60, 255}
	colorHealthFG  = color.RGBA{100, 200, 100, 255}
	colorOverlay   = color.RGBA{0, 0, 0, 128}
	colorReplayEnd = color.RGBA{0, 40, 80, 160}
)

const controlsText = "A/D: Move | W: Jump | Space: Dash | Q: Launch form | P: Possess | K: Knockback | 1-4: Toggles | F5: Save | ESC: Pause | F10: Quit"

// cameraOffset centers the view on focus, in pixels, without showing
// anything outside the stage.
func cameraOffset(focusX, focusY float64, stageW, stageH, screenW, screenH int) (int, int) {
	camX := clampInt(int(focusX)-screenW/2, 0, stageW-screenW)
	camY := clampInt(int(focusY)-screenH/2, 0, stageH-screenH)
	return camX, camY
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// toPixels converts a world position to stage pixels, y down.
func toPixels(st *stage.Stage, p kinematic.Vec) (float64, float64) {
	ts := float64(st.TileSize)
	return p.X * ts, (float64(st.Height) - p.Y) * ts
}

func (s *Sandbox) camera() (int, int) {
	fx, fy := float64(s.stage.Width*s.stage.TileSize)/2, float64(s.stage.Height*s.stage.TileSize)/2
	if ch := s.world.Player(); ch != nil {
		fx, fy = toPixels(s.stage, ch.Position())
	}
	return cameraOffset(fx, fy, s.stage.Width*s.stage.TileSize, s.stage.Height*s.stage.TileSize, s.screenW, s.screenH)
}

// Draw renders the sandbox
func (s *Sandbox) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	camX, camY := s.camera()
	s.drawTiles(screen, camX, camY)
	s.drawCharacters(screen, camX, camY)
	s.drawUI(screen)

	switch s.state.Current() {
	case state.StatePaused:
		ebitenutil.DrawRect(screen, 0, 0, float64(s.screenW), float64(s.screenH), colorOverlay)
		ebitenutil.DebugPrintAt(screen, "PAUSED\n\nPress ESC to resume", s.screenW/2-50, s.screenH/2-20)
	case state.StateReplayDone:
		ebitenutil.DrawRect(screen, 0, 0, float64(s.screenW), float64(s.screenH), colorReplayEnd)
		ebitenutil.DebugPrintAt(screen, "REPLAY FINISHED\n\nPress F10 to quit", s.screenW/2-60, s.screenH/2-20)
	}
}

func (s *Sandbox) drawTiles(screen *ebiten.Image, camX, camY int) {
	ts := s.stage.TileSize
	startX, startY := camX/ts, camY/ts
	endX, endY := (camX+s.screenW)/ts+1, (camY+s.screenH)/ts+1

	for ty := max(startY, 0); ty <= endY && ty < s.stage.Height; ty++ {
		for tx := max(startX, 0); tx <= endX && tx < s.stage.Width; tx++ {
			var c color.Color
			switch s.stage.GetTile(tx, ty).Type {
			case stage.TileWall:
				c = colorWall
			case stage.TileSpike:
				c = colorSpike
			case stage.TilePlatform:
				c = colorPlatform
			default:
				continue
			}
			ebitenutil.DrawRect(screen, float64(tx*ts-camX), float64(ty*ts-camY), float64(ts), float64(ts), c)
		}
	}
}

func (s *Sandbox) drawCharacters(screen *ebiten.Image, camX, camY int) {
	ts := float32(s.stage.TileSize)

	for _, id := range s.world.CharacterIDs() {
		ch := s.world.Characters[id]
		x, y := toPixels(s.stage, ch.Position())
		cx, cy := float32(x)-float32(camX), float32(y)-float32(camY)

		if ch.Form == ecs.FormBounce {
			r := float32(s.world.Bouncers[id].Body.Radius()) * ts
			vector.DrawFilledCircle(screen, cx, cy, r, colorForm, true)
			continue
		}

		c := s.characterColor(id)
		if h := s.world.Health[id]; h.Iframe.Active() && int(h.Iframe.Remaining()*10)%2 == 0 {
			c = colorFlash
		}
		r := float32(ch.Body.Radius()) * ts
		vector.DrawFilledCircle(screen, cx, cy, r, c, true)
		vector.StrokeLine(screen, cx, cy, cx+float32(ch.Machine.Facing())*r, cy, 2, colorBG, true)
		if s.world.IsPossessing(id) {
			vector.StrokeCircle(screen, cx, cy, r+3, 2, colorPossess, true)
		}
	}

	for _, id := range s.world.ActiveBouncerIDs() {
		if _, ok := s.world.Characters[id]; ok {
			continue
		}
		b := s.world.Bouncers[id]
		x, y := toPixels(s.stage, b.Body.Position())
		vector.DrawFilledCircle(screen, float32(x)-float32(camX), float32(y)-float32(camY), float32(b.Body.Radius())*ts, colorForm, true)
	}
}

func (s *Sandbox) characterColor(id ecs.EntityID) color.Color {
	switch s.world.Controllers[id].Kind {
	case ecs.ControlPlayer:
		return colorPlayer
	case ecs.ControlScript:
		return colorScripted
	default:
		return colorIdle
	}
}

func (s *Sandbox) drawUI(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, controlsText)
	ebitenutil.DebugPrintAt(screen, s.debugLine(), 0, 16)
	ebitenutil.DebugPrintAt(screen, s.featureLine(), 0, 32)
	if s.statusTimer > 0 {
		ebitenutil.DebugPrintAt(screen, s.status, 0, 48)
	}

	h, ok := s.world.Health[s.world.PlayerID]
	if !ok || h.Max <= 0 {
		return
	}
	barX, barY := 10.0, float64(s.screenH-20)
	barW, barH := 100.0, 10.0
	ratio := max(float64(h.Current)/float64(h.Max), 0)
	ebitenutil.DrawRect(screen, barX, barY, barW, barH, colorHealthBG)
	ebitenutil.DrawRect(screen, barX, barY, barW*ratio, barH, colorHealthFG)
}

func (s *Sandbox) debugLine() string {
	ch := s.world.Player()
	if ch == nil {
		return s.state.Current().String()
	}
	m := ch.Machine
	pos := ch.Position()
	vel := m.Velocity()
	if ch.Form == ecs.FormBounce {
		vel = s.world.Bouncers[s.world.PlayerID].Stepper.Velocity()
	}

	flags := []string{ch.Form.String()}
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.IsGrounded(), "grounded"},
		{m.IsSlidingOfWall(), "sliding"},
		{m.IsDashing(), "dashing"},
		{m.DashOnCooldown(), "cooldown"},
		{m.IsKnockedBack(), "knocked"},
		{m.InWallJumpGrace(), "grace"},
		{m.AirborneJumpAvailable(), "airjump"},
		{s.world.IsPossessing(s.world.PlayerID), "possessing"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}

	line := fmt.Sprintf("%s | tick %d (+%d) | pos %.2f,%.2f vel %.2f,%.2f | %s",
		s.state.Current(), s.sim.Ticks(), s.lastTicks, pos.X, pos.Y, vel.X, vel.Y, strings.Join(flags, " "))
	if s.replayer != nil {
		line += fmt.Sprintf(" | replay %d/%d", s.replayer.CurrentFrame(), s.replayer.TotalFrames())
	} else if s.recorder != nil {
		line += fmt.Sprintf(" | rec %d", s.recorder.FrameCount())
	}
	return line
}

func (s *Sandbox) featureLine() string {
	parts := make([]string, 0, system.FeatureCount)
	for i, on := range s.features {
		parts = append(parts, fmt.Sprintf("%d %s: %s", i+1, system.Feature(i), onOff(on)))
	}
	return strings.Join(parts, " | ")
}
