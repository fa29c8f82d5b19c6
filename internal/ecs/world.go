package ecs

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/chipmunk"
)

// EntityID is a unique identifier for an entity (never recycled)
type EntityID = kinematic.EntityID

var (
	ErrNotCharacter = errors.New("ecs: entity is not a character")
	ErrNoBounceForm = errors.New("ecs: character has no bounce form")
)

// World holds all component maps and the next entity ID
type World struct {
	Physics   *chipmunk.World
	Knockback KnockbackConfig

	nextID EntityID

	// Components
	Characters  map[EntityID]*Character
	Bouncers    map[EntityID]*Bouncer
	Health      map[EntityID]Health
	Controllers map[EntityID]Controller
	Listeners   map[EntityID][]kinematic.ContactListener

	// Tags
	IsPlayer   map[EntityID]struct{}
	Possessing map[EntityID]struct{}

	// Singleton references
	PlayerID EntityID

	pendingPossess [2]EntityID
}

// NewWorld creates a new empty world on top of a collision space
func NewWorld(physics *chipmunk.World) *World {
	return &World{
		Physics:     physics,
		nextID:      1, // 0 is level geometry
		Characters:  make(map[EntityID]*Character),
		Bouncers:    make(map[EntityID]*Bouncer),
		Health:      make(map[EntityID]Health),
		Controllers: make(map[EntityID]Controller),
		Listeners:   make(map[EntityID][]kinematic.ContactListener),
		IsPlayer:    make(map[EntityID]struct{}),
		Possessing:  make(map[EntityID]struct{}),
	}
}

// NewEntity returns a new unique entity ID
func (w *World) NewEntity() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// DestroyEntity removes all components for an entity and takes its bodies
// out of the collision space
func (w *World) DestroyEntity(id EntityID) {
	if ch, ok := w.Characters[id]; ok {
		w.Physics.Remove(ch.Body)
	}
	if b, ok := w.Bouncers[id]; ok {
		w.Physics.Remove(b.Body)
	}
	delete(w.Characters, id)
	delete(w.Bouncers, id)
	delete(w.Health, id)
	delete(w.Controllers, id)
	delete(w.Listeners, id)
	delete(w.IsPlayer, id)
	delete(w.Possessing, id)
	if w.PlayerID == id {
		w.PlayerID = 0
	}
}

// Exists checks if an entity has a Character or Bouncer component
func (w *World) Exists(id EntityID) bool {
	if _, ok := w.Characters[id]; ok {
		return true
	}
	_, ok := w.Bouncers[id]
	return ok
}

// CharacterConfig holds configuration for creating a character
type CharacterConfig struct {
	Radius    float64
	MaxHealth int
	Stepper   kinematic.StepperConfig
	Movement  movement.Config

	// Bounce is the alternate form. Nil means the character cannot
	// change form.
	Bounce       *kinematic.BounceConfig
	BounceRadius float64
}

// CreateCharacter creates an idle character at pos
func (w *World) CreateCharacter(pos kinematic.Vec, cfg CharacterConfig) (EntityID, error) {
	id := w.NewEntity()

	body := w.Physics.AddCircle(id, cfg.Radius, pos, kinematic.FilterAll)
	stepper, err := kinematic.NewStepper(body, w.Physics, cfg.Stepper)
	if err != nil {
		w.Physics.Remove(body)
		return 0, fmt.Errorf("failed to create character: %w", err)
	}
	machine, err := movement.New(stepper, cfg.Movement)
	if err != nil {
		w.Physics.Remove(body)
		return 0, fmt.Errorf("failed to create character: %w", err)
	}

	var formBody *chipmunk.Body
	if cfg.Bounce != nil {
		form := w.Physics.AddCircle(id, cfg.BounceRadius, pos, kinematic.FilterAll)
		bouncer, err := kinematic.NewBounceStepper(form, w.Physics, *cfg.Bounce)
		if err != nil {
			w.Physics.Remove(form)
			w.Physics.Remove(body)
			return 0, fmt.Errorf("failed to create bounce form: %w", err)
		}
		form.Park()
		w.attachBouncer(id, bouncer, form)
		bouncer.Subscribe(kinematic.BounceHooks{
			Finished: func() { w.requestReturn(id) },
		})
		formBody = form
	}

	stepper.AddContactListener(w.forward(id))
	stepper.SetContactRouter(w)

	w.Characters[id] = &Character{Machine: machine, Body: body, Spawn: pos, formBody: formBody}
	w.Health[id] = Health{Current: cfg.MaxHealth, Max: cfg.MaxHealth}
	w.Controllers[id] = Controller{Kind: ControlIdle}
	w.Listeners[id] = append(w.Listeners[id],
		kinematic.ContactFuncs{Stay: func(c kinematic.Contact) { w.touchHazard(id, c) }},
		kinematic.ContactFuncs{Enter: func(c kinematic.Contact) { w.touchPossessable(id, c) }},
	)

	return id, nil
}

// CreatePlayer creates a character driven by the player
func (w *World) CreatePlayer(pos kinematic.Vec, cfg CharacterConfig) (EntityID, error) {
	id, err := w.CreateCharacter(pos, cfg)
	if err != nil {
		return 0, err
	}
	w.Controllers[id] = Controller{Kind: ControlPlayer}
	w.IsPlayer[id] = struct{}{}
	w.PlayerID = id
	return id, nil
}

// CreateBouncer creates a free bouncing body at pos. It stays put until
// launched.
func (w *World) CreateBouncer(pos kinematic.Vec, radius float64, cfg kinematic.BounceConfig) (EntityID, error) {
	id := w.NewEntity()

	body := w.Physics.AddCircle(id, radius, pos, kinematic.FilterAll)
	stepper, err := kinematic.NewBounceStepper(body, w.Physics, cfg)
	if err != nil {
		w.Physics.Remove(body)
		return 0, fmt.Errorf("failed to create bouncer: %w", err)
	}
	w.attachBouncer(id, stepper, body)
	return id, nil
}

func (w *World) attachBouncer(id EntityID, stepper *kinematic.BounceStepper, body *chipmunk.Body) {
	stepper.SetPassThrough(w.PassThrough)
	stepper.AddContactListener(w.forward(id))
	stepper.SetContactRouter(w)
	w.Bouncers[id] = &Bouncer{Stepper: stepper, Body: body}
}

// forward hands contacts of id's own bodies to whatever is registered in
// Listeners at dispatch time.
func (w *World) forward(id EntityID) kinematic.ContactListener {
	return kinematic.ContactFuncs{
		Enter: func(c kinematic.Contact) {
			for _, l := range w.Listeners[id] {
				l.OnContactEnter(c)
			}
		},
		Stay: func(c kinematic.Contact) {
			for _, l := range w.Listeners[id] {
				l.OnContactStay(c)
			}
		},
		Exit: func(c kinematic.Contact) {
			for _, l := range w.Listeners[id] {
				l.OnContactExit(c)
			}
		},
	}
}

// AddListener registers l for every contact involving id.
func (w *World) AddListener(id EntityID, l kinematic.ContactListener) {
	w.Listeners[id] = append(w.Listeners[id], l)
}

// ListenersOf implements kinematic.ContactRouter.
func (w *World) ListenersOf(id EntityID) []kinematic.ContactListener {
	return w.Listeners[id]
}

// PassThrough reports whether bouncing bodies should fly through c.
func (w *World) PassThrough(c kinematic.Collider) bool {
	_, ok := w.Possessing[c.Entity]
	return ok
}

// SetPossessing turns possession mode on or off for id
func (w *World) SetPossessing(id EntityID, on bool) {
	if on {
		w.Possessing[id] = struct{}{}
		return
	}
	delete(w.Possessing, id)
}

// IsPossessing reports whether id is in possession mode
func (w *World) IsPossessing(id EntityID) bool {
	_, ok := w.Possessing[id]
	return ok
}

// Player returns the player character, nil if there is none
func (w *World) Player() *Character {
	return w.Characters[w.PlayerID]
}

// CharacterIDs returns the character IDs in creation order
func (w *World) CharacterIDs() []EntityID {
	return slices.Sorted(maps.Keys(w.Characters))
}

// ActiveBouncerIDs returns, in creation order, the bouncers that move this
// step: free bouncers and characters in their bounce form.
func (w *World) ActiveBouncerIDs() []EntityID {
	ids := make([]EntityID, 0, len(w.Bouncers))
	for _, id := range slices.Sorted(maps.Keys(w.Bouncers)) {
		if ch, ok := w.Characters[id]; ok && ch.Form != FormBounce {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// SwitchForm swaps the active body of a character. The new body takes over
// the old one's position and the old body leaves the collision space.
func (w *World) SwitchForm(id EntityID, form Form) error {
	ch, ok := w.Characters[id]
	if !ok {
		return ErrNotCharacter
	}
	if ch.Form == form {
		return nil
	}
	b, ok := w.Bouncers[id]
	if !ok {
		return ErrNoBounceForm
	}

	stepper := ch.Machine.Stepper()
	switch form {
	case FormBounce:
		pos := ch.Body.Position()
		stepper.SetEnabled(false)
		ch.Body.Park()
		b.Body.SetPosition(pos)
		b.Body.Unpark()
	case FormWalker:
		pos := b.Body.Position()
		b.Stepper.FreezeMovement(true)
		b.Body.Park()
		ch.Body.SetPosition(pos)
		ch.Body.Unpark()
		stepper.SetVelocity(kinematic.Vec{})
		stepper.SetTargetHorizontal(0)
		stepper.SetEnabled(true)
	default:
		return fmt.Errorf("unknown form %d", form)
	}
	ch.Form = form
	ch.returnPending = false
	return nil
}

// LaunchForm turns a character into its bounce form and throws it with
// force.
func (w *World) LaunchForm(id EntityID, force kinematic.Vec) error {
	if err := w.SwitchForm(id, FormBounce); err != nil {
		return fmt.Errorf("failed to launch entity %d: %w", id, err)
	}
	w.Bouncers[id].Stepper.Launch(force)
	return nil
}

func (w *World) requestReturn(id EntityID) {
	if ch, ok := w.Characters[id]; ok && ch.Form == FormBounce {
		ch.returnPending = true
	}
}

// Possess hands the controller of from over to to. from is left idle and
// leaves possession mode.
func (w *World) Possess(from, to EntityID) error {
	if _, ok := w.Characters[from]; !ok {
		return fmt.Errorf("failed to possess from %d: %w", from, ErrNotCharacter)
	}
	target, ok := w.Characters[to]
	if !ok {
		return fmt.Errorf("failed to possess %d: %w", to, ErrNotCharacter)
	}
	if from == to {
		return nil
	}

	w.Controllers[to] = w.Controllers[from]
	w.Controllers[from] = Controller{Kind: ControlIdle}
	w.Characters[from].Machine.SetInputs(movement.Inputs{})
	delete(w.Possessing, from)

	if _, ok := w.IsPlayer[from]; ok {
		delete(w.IsPlayer, from)
		w.IsPlayer[to] = struct{}{}
		w.PlayerID = to
	}
	if target.Form == FormBounce {
		target.returnPending = true
	}
	return nil
}

func (w *World) touchPossessable(id EntityID, c kinematic.Contact) {
	if !w.IsPossessing(id) || c.OtherEntity == 0 || c.OtherEntity == id {
		return
	}
	target, ok := w.Characters[c.OtherEntity]
	if !ok || target.Form != FormBounce {
		return
	}
	w.pendingPossess = [2]EntityID{id, c.OtherEntity}
}

// Settle applies what contact listeners requested while contacts were
// being dispatched: possession changes and bounce forms turning back into
// walkers. Call once per fixed step after dispatch.
func (w *World) Settle() error {
	if p := w.pendingPossess; p[0] != 0 {
		w.pendingPossess = [2]EntityID{}
		if err := w.Possess(p[0], p[1]); err != nil {
			return err
		}
	}
	for _, id := range w.CharacterIDs() {
		if !w.Characters[id].returnPending {
			continue
		}
		if err := w.SwitchForm(id, FormWalker); err != nil {
			return fmt.Errorf("failed to return entity %d to walker: %w", id, err)
		}
	}
	return nil
}

// CountCharacters returns the number of characters
func (w *World) CountCharacters() int {
	return len(w.Characters)
}
