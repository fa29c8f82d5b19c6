package kinematic

import (
	"fmt"
	"math"
)

// StepperConfig tunes a Stepper.
type StepperConfig struct {
	Gravity         Vec
	GravityScale    float64
	FallMultiplier  float64 // applied to gravity while moving down
	MaxFallSpeed    float64 // zero disables the clamp
	GroundThreshold float64 // minimum normal.Y of a ground surface
	MinMoveDistance float64
	ShellRadius     float64
	Filter          Filter
}

// DefaultStepperConfig returns a usable starting point.
func DefaultStepperConfig() StepperConfig {
	return StepperConfig{
		Gravity:         Vec{X: 0, Y: -20},
		GravityScale:    1,
		FallMultiplier:  1,
		GroundThreshold: 0.65,
		MinMoveDistance: 0.001,
		ShellRadius:     0.01,
		Filter:          FilterAll,
	}
}

// Validate reports values the stepper cannot run with.
func (c StepperConfig) Validate() error {
	if c.GroundThreshold <= 0 || c.GroundThreshold > 1 {
		return fmt.Errorf("ground threshold %v out of (0,1]", c.GroundThreshold)
	}
	if c.ShellRadius < 0 {
		return fmt.Errorf("shell radius %v is negative", c.ShellRadius)
	}
	if c.MinMoveDistance < 0 {
		return fmt.Errorf("min move distance %v is negative", c.MinMoveDistance)
	}
	if c.MaxFallSpeed < 0 {
		return fmt.Errorf("max fall speed %v is negative", c.MaxFallSpeed)
	}
	return nil
}

// Stepper is a kinematic mover that slides along what it hits.
//
// Every Step integrates gravity, takes the target horizontal speed as is,
// then moves along the ground tangent and afterwards vertically. Hits are
// collected into a contact set that DispatchContacts turns into events.
type Stepper struct {
	cfg    StepperConfig
	body   Body
	caster Caster

	velocity     Vec
	targetVX     float64
	gravityScale float64

	grounded     bool
	groundNormal Vec
	enabled      bool

	contacts  *ContactTracker
	listeners []ContactListener
	router    ContactRouter
	onHit     func(Hit, Pass)
}

// NewStepper creates a stepper driving body through caster.
func NewStepper(body Body, caster Caster, cfg StepperConfig) (*Stepper, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if caster == nil {
		return nil, ErrNilCaster
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stepper config: %w", err)
	}
	cfg.Filter = cfg.Filter.OrAll()
	return &Stepper{
		cfg:          cfg,
		body:         body,
		caster:       caster,
		gravityScale: cfg.GravityScale,
		groundNormal: Up,
		enabled:      true,
		contacts:     NewContactTracker(),
	}, nil
}

// Step advances the body by one fixed step.
func (s *Stepper) Step(dt float64) {
	if !s.enabled || dt <= 0 {
		return
	}
	// A set nobody dispatched belongs to the previous step boundary.
	s.contacts.Flush(s.body.Collider(), s.listeners, s.router)

	s.applyGravity(dt)
	s.velocity.X = s.targetVX

	s.grounded = false

	tangent := s.groundNormal.ReversePerp()
	s.Move(tangent.Mult(s.velocity.X*dt), PassHorizontal)
	s.Move(Up.Mult(s.velocity.Y*dt), PassVertical)

	if !s.grounded {
		s.groundNormal = Up
	}

	for _, other := range s.caster.Overlap(s.body, s.cfg.Filter) {
		s.contacts.Record(Contact{
			Other:            other,
			OtherEntity:      other.Entity,
			RelativeVelocity: s.velocity,
			Point:            s.body.Position(),
		})
	}
	s.contacts.Seal()
}

func (s *Stepper) applyGravity(dt float64) {
	g := s.cfg.Gravity.Y * s.gravityScale * dt
	if s.velocity.Y < 0 && s.cfg.FallMultiplier > 0 {
		g *= s.cfg.FallMultiplier
	}
	s.velocity.Y += g
	if s.cfg.MaxFallSpeed > 0 && s.velocity.Y < -s.cfg.MaxFallSpeed {
		s.velocity.Y = -s.cfg.MaxFallSpeed
	}
}

// Move is the sliding resolution primitive. It casts along displacement,
// classifies ground, removes vertical velocity driving into the surfaces hit
// on the vertical pass and travels as far as the closest hit allows. A
// vertical pass too short to move still checks the ground under the body.
func (s *Stepper) Move(displacement Vec, pass Pass) {
	distance := displacement.Length()
	if distance <= s.cfg.MinMoveDistance {
		if pass == PassVertical {
			s.restOnGround()
		}
		return
	}
	dir := displacement.Mult(1 / distance)

	travel := distance
	for _, hit := range s.caster.Cast(s.body, dir, s.cfg.Filter, distance+s.cfg.ShellRadius) {
		if hit.Normal.Y >= s.cfg.GroundThreshold {
			s.grounded = true
			if pass == PassVertical {
				s.groundNormal = hit.Normal
			}
		}
		travel = math.Min(travel, hit.Distance-s.cfg.ShellRadius)
		s.record(hit, pass)
	}

	s.body.SetPosition(s.body.Position().Add(dir.Mult(travel)))
}

// restOnGround keeps a body that is not moving vertically grounded on the
// surface within shell reach below it. The body stays where it is.
func (s *Stepper) restOnGround() {
	reach := 2*s.cfg.ShellRadius + s.cfg.MinMoveDistance
	for _, hit := range s.caster.Cast(s.body, Up.Neg(), s.cfg.Filter, reach) {
		if hit.Normal.Y < s.cfg.GroundThreshold {
			continue
		}
		s.grounded = true
		s.groundNormal = hit.Normal
		s.record(hit, PassVertical)
	}
}

// record removes vertical velocity driving into hit on the vertical pass,
// then stores the contact and reports the hit.
func (s *Stepper) record(hit Hit, pass Pass) {
	if pass == PassVertical {
		if into := s.velocity.Y * hit.Normal.Y; into < 0 {
			s.velocity.Y -= hit.Normal.Y * into
		}
	}

	s.contacts.Record(Contact{
		Other:            hit.Collider,
		OtherEntity:      hit.Collider.Entity,
		RelativeVelocity: s.velocity,
		Point:            hit.Point,
		Normal:           hit.Normal,
	})
	if s.onHit != nil {
		s.onHit(hit, pass)
	}
}

// DispatchContacts fires the enter, stay and exit events of the last step.
// The scheduler calls it once every body has stepped.
func (s *Stepper) DispatchContacts() {
	s.contacts.Flush(s.body.Collider(), s.listeners, s.router)
}

// SetEnabled turns stepping on or off. Disabling ends every open contact;
// enabling again resets the ground normal to up.
func (s *Stepper) SetEnabled(enabled bool) {
	if enabled == s.enabled {
		return
	}
	s.enabled = enabled
	if !enabled {
		s.DispatchContacts()
		s.contacts.Seal()
		s.DispatchContacts()
		s.grounded = false
		return
	}
	s.groundNormal = Up
	s.grounded = false
}

// Enabled reports whether Step moves the body
func (s *Stepper) Enabled() bool { return s.enabled }

// SetTargetHorizontal sets the horizontal speed applied on the next step.
func (s *Stepper) SetTargetHorizontal(vx float64) { s.targetVX = vx }

// TargetHorizontal returns the horizontal speed the next step will use
func (s *Stepper) TargetHorizontal() float64 { return s.targetVX }

// SetVelocity overwrites both components. The horizontal target follows.
func (s *Stepper) SetVelocity(v Vec) {
	s.velocity = v
	s.targetVX = v.X
}

// SetVerticalVelocity overwrites the vertical component
func (s *Stepper) SetVerticalVelocity(vy float64) { s.velocity.Y = vy }

// AddVerticalVelocity adds dy to the vertical component
func (s *Stepper) AddVerticalVelocity(dy float64) { s.velocity.Y += dy }

// Velocity returns the velocity resolved by the last step
func (s *Stepper) Velocity() Vec { return s.velocity }

// SetGravityScale changes the multiplier applied to gravity
func (s *Stepper) SetGravityScale(scale float64) { s.gravityScale = scale }

// GravityScale returns the current gravity multiplier
func (s *Stepper) GravityScale() float64 { return s.gravityScale }

// Grounded reports whether the last step touched ground.
func (s *Stepper) Grounded() bool { return s.grounded }

// GroundNormal returns the normal of the ground last stood on, up otherwise.
func (s *Stepper) GroundNormal() Vec { return s.groundNormal }

// SetHitHook registers a function observing every hit of every pass.
func (s *Stepper) SetHitHook(fn func(Hit, Pass)) { s.onHit = fn }

// AddContactListener registers a listener for this body's contacts.
func (s *Stepper) AddContactListener(l ContactListener) {
	s.listeners = append(s.listeners, l)
}

// SetContactRouter sets where the other side of a contact is notified.
func (s *Stepper) SetContactRouter(r ContactRouter) { s.router = r }

// Touching reports whether other was in contact at the last dispatch
func (s *Stepper) Touching(other Collider) bool { return s.contacts.Touching(other) }

// Body returns the driven body
func (s *Stepper) Body() Body { return s.body }

// Caster returns the world the stepper queries
func (s *Stepper) Caster() Caster { return s.caster }

// Config returns the active tuning
func (s *Stepper) Config() StepperConfig { return s.cfg }

// SetConfig swaps the tuning. The current gravity scale is kept.
func (s *Stepper) SetConfig(cfg StepperConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid stepper config: %w", err)
	}
	cfg.Filter = cfg.Filter.OrAll()
	s.cfg = cfg
	return nil
}
