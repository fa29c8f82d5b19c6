// Package sandbox provides the movement test scene: a stage with the
// player, a few other characters and the debug controls to poke at them.
package sandbox

import (
	"context"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ertsnom99/plateformer-sub000/internal/application/game"
	"github.com/ertsnom99/plateformer-sub000/internal/application/replay"
	"github.com/ertsnom99/plateformer-sub000/internal/application/scene"
	"github.com/ertsnom99/plateformer-sub000/internal/application/state"
	"github.com/ertsnom99/plateformer-sub000/internal/application/system"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/stage"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/chipmunk"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/watch"
)

// Options configures a Sandbox
type Options struct {
	Loader *config.Loader
	Config *config.GameConfig

	// RecordPath is where the session is saved on exit. F5 saves at any
	// time, to a generated name when RecordPath is empty.
	RecordPath string

	// Replay drives the player from a recording instead of the keyboard.
	Replay *replay.ReplayData

	// Script drives the player from a script instead of the keyboard.
	Script string

	// Watcher reports changed config files. Nil disables hot reload.
	Watcher *watch.Watcher
}

// Keys is one frame of keyboard state
type Keys struct {
	Player    movement.Inputs
	Pause     bool
	Knockback bool
	Save      bool
	Quit      bool
	Toggle    [system.FeatureCount]bool
}

var featureKeys = [system.FeatureCount]ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4}

func pollKeys(input *system.InputSystem) Keys {
	k := Keys{
		Player:    input.GetInput(),
		Pause:     inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Knockback: inpututil.IsKeyJustPressed(ebiten.KeyK),
		Save:      inpututil.IsKeyJustPressed(ebiten.KeyF5),
		Quit:      inpututil.IsKeyJustPressed(ebiten.KeyF10),
	}
	for i, key := range featureKeys {
		k.Toggle[i] = inpututil.IsKeyJustPressed(key)
	}
	return k
}

// Sandbox is the movement test scene
type Sandbox struct {
	opts     Options
	tuning   *config.TuningConfig
	stage    *stage.Stage
	world    *ecs.World
	sim      *system.Simulation
	input    *system.InputSystem
	scripts  *system.ScriptDriver
	reloader *system.Reloader
	state    *state.Machine
	features system.Features

	recorder *replay.Recorder
	replayer *replay.Replayer

	screenW   int
	screenH   int
	lastTicks int

	status      string
	statusTimer float64
}

// New builds the stage and its characters.
func New(opts Options) (*Sandbox, error) {
	cfg := opts.Config
	st := system.LoadStage(cfg.Stage)
	world := ecs.NewWorld(chipmunk.NewWorld())

	player, err := system.SpawnStage(world, st, cfg.Stage, cfg.Tuning)
	if err != nil {
		return nil, fmt.Errorf("failed to build stage %s: %w", cfg.Stage.ID, err)
	}
	if opts.Script != "" {
		world.Controllers[player] = ecs.Controller{Kind: ecs.ControlScript, Script: opts.Script}
	}

	sim, err := system.NewSimulation(world, cfg.Tuning.FixedDT(), cfg.Tuning.Simulation.MaxTicksPerFrame)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}
	sim.Clock.TimeScale = cfg.Tuning.Simulation.TimeScale

	fsys := opts.Loader.FS()
	scripts := system.NewScriptDriver(func(name string) (*script.Script, error) {
		return script.Load(fsys, name)
	})

	s := &Sandbox{
		opts:    opts,
		tuning:  cfg.Tuning,
		stage:   st,
		world:   world,
		sim:     sim,
		input:   system.NewInputSystem(),
		scripts: scripts,
		reloader: &system.Reloader{
			Loader:  opts.Loader,
			World:   world,
			Scripts: scripts,
			Tuning:  cfg.Tuning,
		},
		state:    state.NewMachine(),
		features: system.FeaturesOf(cfg.Tuning.ToMovementConfig()),
		screenW:  cfg.Tuning.Display.ScreenWidth,
		screenH:  cfg.Tuning.Display.ScreenHeight,
	}

	if opts.Replay != nil {
		s.replayer = replay.NewReplayer(*opts.Replay)
	} else {
		s.recorder = replay.NewRecorder(cfg.Stage.ID, 1/float64(cfg.Tuning.Display.Framerate))
	}
	return s, nil
}

// OnEnter starts the session
func (s *Sandbox) OnEnter() {
	if s.replayer != nil {
		s.state.Set(state.StateReplaying)
		log.Printf("Replaying %d frames of %s", s.replayer.TotalFrames(), s.replayer.Stage())
		return
	}
	s.state.Set(state.StatePlaying)
	if s.opts.RecordPath != "" {
		log.Printf("Recording enabled: %s", s.opts.RecordPath)
	}
}

// OnExit saves the recording when a record path was given
func (s *Sandbox) OnExit() {
	if s.opts.RecordPath != "" {
		s.saveRecording()
	}
}

// Update proceeds the sandbox (implements scene.Scene)
func (s *Sandbox) Update(dt float64) (scene.Scene, error) {
	s.reload()
	if err := s.advance(dt, pollKeys(s.input)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Sandbox) advance(dt float64, keys Keys) error {
	if s.statusTimer > 0 {
		s.statusTimer -= dt
	}
	if keys.Quit {
		return game.ErrQuit
	}
	if keys.Save {
		s.saveRecording()
	}
	if keys.Pause {
		s.state.TogglePause()
	}
	for i, pressed := range keys.Toggle {
		if !pressed {
			continue
		}
		f := system.Feature(i)
		on := s.features.Toggle(f)
		s.features.Apply(s.world)
		s.notify(fmt.Sprintf("%s: %s", f, onOff(on)))
	}

	s.sim.Clock.TimeScale = s.state.Current().TimeScale(s.tuning.Simulation.TimeScale)
	if !s.state.Current().Running() {
		s.lastTicks = 0
		return nil
	}

	player := s.world.PlayerID
	in := keys.Player
	if s.replayer != nil {
		next, ok := s.replayer.Next()
		if !ok {
			s.state.Set(state.StateReplayDone)
			s.lastTicks = 0
			log.Printf("Replay finished")
			return nil
		}
		in = next
		dt = s.replayer.FrameDT()
	}

	inputs := make(map[ecs.EntityID]movement.Inputs)
	s.scripts.Inputs(context.Background(), s.world, inputs)
	if s.world.Controllers[player].Kind == ecs.ControlPlayer {
		inputs[player] = in
	}
	if s.recorder != nil {
		s.recorder.RecordFrame(inputs[player])
	}

	if keys.Knockback {
		// Not part of recordings, so only outside of them.
		if s.replayer == nil && s.opts.RecordPath == "" {
			s.world.KnockBack(player, kinematic.Vec{})
		} else {
			s.notify("knockback disabled while recording")
		}
	}
	if err := system.ApplyActions(s.world, player, inputs[player], s.tuning.Bounce.LaunchSpeed); err != nil {
		return err
	}

	ticks, err := s.sim.Update(dt, inputs)
	s.lastTicks = ticks
	return err
}

func (s *Sandbox) reload() {
	w := s.opts.Watcher
	if w == nil {
		return
	}
	select {
	case err, ok := <-w.Errors:
		if ok {
			log.Printf("Watcher error: %v", err)
		}
	default:
	}

	paths := w.Drain()
	if len(paths) == 0 {
		return
	}
	changed, err := s.reloader.Apply(paths)
	if err != nil {
		log.Printf("Reload failed: %v", err)
		s.notify("reload failed, see log")
	}
	if !changed {
		return
	}

	s.tuning = s.reloader.Tuning
	s.sim.FixedDT = s.tuning.FixedDT()
	s.sim.MaxTicksPerFrame = s.tuning.Simulation.MaxTicksPerFrame
	s.features = system.FeaturesOf(s.tuning.ToMovementConfig())
	s.features.Apply(s.world)
	s.notify("tuning reloaded")
}

// saveRecording saves the current recording to file
func (s *Sandbox) saveRecording() {
	if s.recorder == nil {
		return
	}

	filename := s.opts.RecordPath
	if filename == "" {
		filename = replay.GenerateFilename()
	}
	if err := s.recorder.Save(filename); err != nil {
		log.Printf("Failed to save recording: %v", err)
		return
	}
	log.Printf("Recording saved: %s (%d frames)", filename, s.recorder.FrameCount())
	s.notify("saved " + filename)
}

func (s *Sandbox) notify(msg string) {
	s.status = msg
	s.statusTimer = 2
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
