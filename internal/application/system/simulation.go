package system

import (
	"errors"
	"fmt"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
)

// tickEpsilon lets an accumulator that is a rounding error short of a full
// step still run it.
const tickEpsilon = 1e-9

// Clock scales frame time before it reaches the simulation. A zero or
// negative scale stops time.
type Clock struct {
	TimeScale float64
}

// Scale converts a frame duration into simulated time
func (c Clock) Scale(dt float64) float64 {
	if c.Stopped() {
		return 0
	}
	return dt * c.TimeScale
}

// Stopped reports whether simulated time is frozen
func (c Clock) Stopped() bool {
	return c.TimeScale <= 0
}

// Simulation runs the world at a fixed step no matter the frame rate
type Simulation struct {
	World            *ecs.World
	FixedDT          float64
	MaxTicksPerFrame int
	Clock            Clock

	accumulator float64
	ticks       uint64
}

var (
	ErrFixedDT  = errors.New("fixed step must be positive")
	ErrMaxTicks = errors.New("max ticks per frame must be positive")
)

// NewSimulation creates a simulation ticking every fixedDT seconds
func NewSimulation(world *ecs.World, fixedDT float64, maxTicksPerFrame int) (*Simulation, error) {
	if fixedDT <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrFixedDT, fixedDT)
	}
	if maxTicksPerFrame <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrMaxTicks, maxTicksPerFrame)
	}
	return &Simulation{
		World:            world,
		FixedDT:          fixedDT,
		MaxTicksPerFrame: maxTicksPerFrame,
		Clock:            Clock{TimeScale: 1},
	}, nil
}

// Update applies one frame of inputs and runs as many fixed steps as the
// scaled frame time allows. Characters missing from inputs get none. When
// more than MaxTicksPerFrame steps are due the backlog is dropped. Returns
// the number of steps run.
func (s *Simulation) Update(frameDT float64, inputs map[ecs.EntityID]movement.Inputs) (int, error) {
	if s.Clock.Stopped() {
		return 0, nil
	}

	for _, id := range s.World.CharacterIDs() {
		ch := s.World.Characters[id]
		if ch.Form != ecs.FormWalker {
			continue
		}
		ch.Machine.SetInputs(inputs[id])
		ch.Machine.ComputeVelocity()
	}

	s.accumulator += s.Clock.Scale(frameDT)

	ticks := 0
	for s.accumulator >= s.FixedDT-tickEpsilon {
		if ticks == s.MaxTicksPerFrame {
			s.accumulator = 0
			break
		}
		if err := s.Tick(); err != nil {
			return ticks, err
		}
		s.accumulator -= s.FixedDT
		ticks++
	}
	return ticks, nil
}

// Tick advances every active body by one fixed step. Contacts are
// dispatched only once every body has moved.
func (s *Simulation) Tick() error {
	w := s.World
	dt := s.FixedDT

	characters := w.CharacterIDs()
	bouncers := w.ActiveBouncerIDs()

	for _, id := range characters {
		w.Characters[id].Machine.FixedStep(dt)
	}
	for _, id := range bouncers {
		w.Bouncers[id].Stepper.Step(dt)
	}

	w.Physics.Sync(dt)

	for _, id := range characters {
		w.Characters[id].Machine.Stepper().DispatchContacts()
	}
	for _, id := range bouncers {
		w.Bouncers[id].Stepper.DispatchContacts()
	}

	ecs.UpdateTimers(w, dt)
	if err := w.Settle(); err != nil {
		return fmt.Errorf("failed to settle tick %d: %w", s.ticks, err)
	}
	s.ticks++
	return nil
}

// Ticks returns the number of fixed steps run so far
func (s *Simulation) Ticks() uint64 {
	return s.ticks
}

// Accumulator returns the simulated time not yet consumed by a step
func (s *Simulation) Accumulator() float64 {
	return s.accumulator
}
