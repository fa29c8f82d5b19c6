package system

import (
	"context"
	"log"
	"time"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
)

// DefaultScriptTimeout bounds a single script run
const DefaultScriptTimeout = 10 * time.Millisecond

// ScriptLoader compiles the script with the given name
type ScriptLoader func(name string) (*script.Script, error)

// ScriptDriver produces the inputs of script-controlled characters. Each
// character runs its own clone so script memory is per character.
type ScriptDriver struct {
	Timeout time.Duration

	load     ScriptLoader
	compiled map[string]*script.Script
	broken   map[string]error
	clones   map[ecs.EntityID]*script.Script
	frame    int
}

// NewScriptDriver creates a driver that compiles scripts with load on
// first use.
func NewScriptDriver(load ScriptLoader) *ScriptDriver {
	return &ScriptDriver{
		Timeout:  DefaultScriptTimeout,
		load:     load,
		compiled: make(map[string]*script.Script),
		broken:   make(map[string]error),
		clones:   make(map[ecs.EntityID]*script.Script),
	}
}

// Inputs runs the script of every walking script-controlled character and
// stores the result in out. A character whose script fails stands still.
// Inputs counts one frame per call.
func (d *ScriptDriver) Inputs(ctx context.Context, w *ecs.World, out map[ecs.EntityID]movement.Inputs) {
	for id := range d.clones {
		if c := w.Controllers[id]; c.Kind != ecs.ControlScript {
			delete(d.clones, id)
		}
	}

	for _, id := range w.CharacterIDs() {
		c := w.Controllers[id]
		ch := w.Characters[id]
		if c.Kind != ecs.ControlScript || ch.Form != ecs.FormWalker {
			continue
		}
		s := d.scriptFor(id, c.Script)
		if s == nil {
			out[id] = movement.Inputs{}
			continue
		}

		in, err := d.run(ctx, s, stateOf(d.frame, ch))
		if err != nil {
			log.Printf("Script %s failed for entity %d: %v", c.Script, id, err)
			d.broken[c.Script] = err
			delete(d.clones, id)
			in = movement.Inputs{}
		}
		out[id] = in
	}
	d.frame++
}

func (d *ScriptDriver) run(ctx context.Context, s *script.Script, st script.State) (movement.Inputs, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return s.Run(ctx, st)
}

func (d *ScriptDriver) scriptFor(id ecs.EntityID, name string) *script.Script {
	if s, ok := d.clones[id]; ok && s.Name() == name {
		return s
	}
	if _, ok := d.broken[name]; ok {
		return nil
	}

	base, ok := d.compiled[name]
	if !ok {
		var err error
		base, err = d.load(name)
		if err != nil {
			log.Printf("Failed to load script %s: %v", name, err)
			d.broken[name] = err
			return nil
		}
		d.compiled[name] = base
	}

	s := base.Clone()
	d.clones[id] = s
	return s
}

// Reload recompiles name. Characters running it start over with empty
// memory. On failure they keep standing still until the next Reload.
func (d *ScriptDriver) Reload(name string) error {
	for id, s := range d.clones {
		if s.Name() == name {
			delete(d.clones, id)
		}
	}
	delete(d.compiled, name)
	delete(d.broken, name)

	s, err := d.load(name)
	if err != nil {
		d.broken[name] = err
		return err
	}
	d.compiled[name] = s
	return nil
}

// Err returns the last error of name, nil if it runs
func (d *ScriptDriver) Err(name string) error {
	return d.broken[name]
}

// Frame returns the number of frames driven so far
func (d *ScriptDriver) Frame() int {
	return d.frame
}

func stateOf(frame int, ch *ecs.Character) script.State {
	m := ch.Machine
	pos := ch.Position()
	vel := m.Velocity()
	return script.State{
		Frame:    frame,
		Grounded: m.IsGrounded(),
		Sliding:  m.IsSlidingOfWall(),
		Dashing:  m.IsDashing(),
		X:        pos.X,
		Y:        pos.Y,
		VX:       vel.X,
		VY:       vel.Y,
		Facing:   m.Facing(),
	}
}
