package kinematic

import (
	"fmt"
	"math"
)

// BouncePolicy decides when a launched body is done bouncing.
type BouncePolicy int

const (
	// BounceByDuration ends once un-frozen flight time exceeds MaxDuration.
	BounceByDuration BouncePolicy = iota
	// BounceByCount ends once MaxBounces surfaces were hit.
	BounceByCount
	// BounceBySpeed ends once speed drops below MinSpeed.
	BounceBySpeed
)

func (p BouncePolicy) String() string {
	switch p {
	case BounceByDuration:
		return "duration"
	case BounceByCount:
		return "count"
	case BounceBySpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// ParseBouncePolicy maps a config name to a policy.
func ParseBouncePolicy(name string) (BouncePolicy, error) {
	switch name {
	case "duration", "":
		return BounceByDuration, nil
	case "count":
		return BounceByCount, nil
	case "speed":
		return BounceBySpeed, nil
	default:
		return 0, fmt.Errorf("unknown bounce policy %q", name)
	}
}

// BounceConfig tunes a BounceStepper.
type BounceConfig struct {
	Gravity         Vec
	GravityScale    float64
	Restitution     float64
	MaxRetries      int
	ShellRadius     float64
	MinMoveDistance float64
	FreezeDuration  float64 // pause after every bounce

	Policy         BouncePolicy
	MaxDuration    float64
	MaxBounces     int
	MinSpeed       float64
	FreezeOnFinish bool

	Filter Filter
}

// DefaultBounceConfig returns a usable starting point.
func DefaultBounceConfig() BounceConfig {
	return BounceConfig{
		Gravity:         Vec{X: 0, Y: -20},
		GravityScale:    1,
		Restitution:     0.8,
		MaxRetries:      4,
		ShellRadius:     0.01,
		MinMoveDistance: 0.0001,
		FreezeDuration:  0.05,
		Policy:          BounceByCount,
		MaxBounces:      3,
		FreezeOnFinish:  true,
		Filter:          FilterAll,
	}
}

// Validate reports values the bounce stepper cannot run with.
func (c BounceConfig) Validate() error {
	if c.Restitution < 0 {
		return fmt.Errorf("restitution %v is negative", c.Restitution)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries %d must be at least 1", c.MaxRetries)
	}
	if c.ShellRadius < 0 {
		return fmt.Errorf("shell radius %v is negative", c.ShellRadius)
	}
	switch c.Policy {
	case BounceByDuration:
		if c.MaxDuration <= 0 {
			return fmt.Errorf("duration policy needs a positive max duration")
		}
	case BounceByCount:
		if c.MaxBounces <= 0 {
			return fmt.Errorf("count policy needs a positive max bounce count")
		}
	case BounceBySpeed:
		if c.MinSpeed <= 0 {
			return fmt.Errorf("speed policy needs a positive min speed")
		}
	default:
		return fmt.Errorf("unknown bounce policy %d", c.Policy)
	}
	return nil
}

// BounceListener is notified about a launched body.
type BounceListener interface {
	OnBounceStarted()
	OnBounce(hit Hit)
	OnBounceFinished()
}

// BounceHooks adapts plain functions to BounceListener. Nil fields are
// skipped.
type BounceHooks struct {
	Started  func()
	Bounced  func(Hit)
	Finished func()
}

func (h BounceHooks) OnBounceStarted() {
	if h.Started != nil {
		h.Started()
	}
}

func (h BounceHooks) OnBounce(hit Hit) {
	if h.Bounced != nil {
		h.Bounced(hit)
	}
}

func (h BounceHooks) OnBounceFinished() {
	if h.Finished != nil {
		h.Finished()
	}
}

// BounceStepper drives a body ballistically and reflects it off surfaces.
//
// It stays frozen until the first Launch. After every bounce a short freeze
// window holds it in place; FreezeMovement holds it indefinitely. Neither
// touches the velocity. A held body keeps reporting the surfaces it rests
// against, so contacts stay and end while it is held.
type BounceStepper struct {
	cfg    BounceConfig
	body   Body
	caster Caster

	velocity Vec
	bounces  int
	elapsed  float64
	frozen   bool
	freeze   Window
	finished bool

	passThrough func(Collider) bool

	contacts    *ContactTracker
	listeners   []ContactListener
	router      ContactRouter
	subscribers []BounceListener
}

// NewBounceStepper creates a frozen bounce stepper for body.
func NewBounceStepper(body Body, caster Caster, cfg BounceConfig) (*BounceStepper, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if caster == nil {
		return nil, ErrNilCaster
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bounce config: %w", err)
	}
	cfg.Filter = cfg.Filter.OrAll()
	return &BounceStepper{
		cfg:      cfg,
		body:     body,
		caster:   caster,
		frozen:   true,
		contacts: NewContactTracker(),
	}, nil
}

// Launch starts a new flight with velocity force.
func (b *BounceStepper) Launch(force Vec) {
	b.bounces = 0
	b.elapsed = 0
	b.frozen = false
	b.freeze.Cancel()
	b.finished = false
	b.velocity = force
	for _, s := range b.subscribers {
		s.OnBounceStarted()
	}
}

// Step advances the flight by one fixed step.
func (b *BounceStepper) Step(dt float64) {
	if dt <= 0 {
		return
	}
	b.contacts.Flush(b.body.Collider(), b.listeners, b.router)

	if b.frozen || b.freeze.Active() {
		if !b.frozen {
			b.freeze.Advance(dt)
		}
		b.holdContacts()
		return
	}

	b.elapsed += dt
	b.velocity = b.velocity.Add(b.cfg.Gravity.Mult(b.cfg.GravityScale * dt))
	b.Move(b.velocity.Mult(dt))
	b.checkFinished()

	b.recordOverlaps(b.velocity)
	b.contacts.Seal()
}

// holdContacts builds the set of a body that is not moving: the surfaces of
// the last set still within shell reach, plus what it overlaps.
func (b *BounceStepper) holdContacts() {
	reach := 2*b.cfg.ShellRadius + b.cfg.MinMoveDistance
	for _, c := range b.contacts.Last() {
		if c.Normal.LengthSq() == 0 {
			continue
		}
		for _, hit := range b.caster.Cast(b.body, c.Normal.Neg(), b.cfg.Filter, reach) {
			if hit.Collider == c.Other {
				c.RelativeVelocity = Vec{}
				b.contacts.Record(c)
				break
			}
		}
	}
	b.recordOverlaps(Vec{})
	b.contacts.Seal()
}

func (b *BounceStepper) recordOverlaps(velocity Vec) {
	for _, other := range b.caster.Overlap(b.body, b.cfg.Filter) {
		b.contacts.Record(Contact{
			Other:            other,
			OtherEntity:      other.Entity,
			RelativeVelocity: velocity,
			Point:            b.body.Position(),
		})
	}
}

// Move is the reflecting resolution primitive. It travels the length of
// displacement along the current velocity, bouncing off every surface met
// until the distance is spent, the retry budget runs out or the body freezes.
func (b *BounceStepper) Move(displacement Vec) {
	remaining := displacement.Length()
	sounded := false

	for i := 0; i < b.cfg.MaxRetries; i++ {
		if remaining <= b.cfg.MinMoveDistance || b.frozen || b.freeze.Active() {
			break
		}
		speed := b.velocity.Length()
		if speed == 0 {
			break
		}
		dir := b.velocity.Mult(1 / speed)

		surface, ok := b.firstSurface(dir, remaining)
		if !ok {
			b.body.SetPosition(b.body.Position().Add(dir.Mult(remaining)))
			remaining = 0
			break
		}

		travel := math.Max(0, math.Min(remaining, surface.Distance-b.cfg.ShellRadius))
		b.body.SetPosition(b.body.Position().Add(dir.Mult(travel)))
		remaining -= travel

		b.velocity = Reflect(b.velocity, surface.Normal).Mult(b.cfg.Restitution)
		b.bounces++
		if !sounded {
			sounded = true
			for _, s := range b.subscribers {
				s.OnBounce(surface)
			}
		}

		b.checkFinished()
		if !b.frozen && b.cfg.FreezeDuration > 0 {
			b.freeze.Open(b.cfg.FreezeDuration)
		}
	}

	if b.velocity.LengthSq() > 0 {
		b.body.SetAngle(b.velocity.ToAngle())
	}
}

// firstSurface casts ahead and returns the first hit to bounce off. Hits on
// pass-through colliders and surfaces the body moves away from are recorded
// as contacts only.
func (b *BounceStepper) firstSurface(dir Vec, distance float64) (Hit, bool) {
	for _, hit := range b.caster.Cast(b.body, dir, b.cfg.Filter, distance+b.cfg.ShellRadius) {
		b.contacts.Record(Contact{
			Other:            hit.Collider,
			OtherEntity:      hit.Collider.Entity,
			RelativeVelocity: b.velocity,
			Point:            hit.Point,
			Normal:           hit.Normal,
		})
		if b.passThrough != nil && b.passThrough(hit.Collider) {
			continue
		}
		if b.velocity.Dot(hit.Normal) >= 0 {
			continue
		}
		return hit, true
	}
	return Hit{}, false
}

func (b *BounceStepper) checkFinished() {
	if b.finished {
		return
	}
	var done bool
	switch b.cfg.Policy {
	case BounceByDuration:
		done = b.elapsed > b.cfg.MaxDuration
	case BounceByCount:
		done = b.bounces >= b.cfg.MaxBounces
	case BounceBySpeed:
		done = b.velocity.Length() < b.cfg.MinSpeed
	}
	if !done {
		return
	}
	b.finished = true
	if b.cfg.FreezeOnFinish {
		b.frozen = true
		b.freeze.Cancel()
	}
	for _, s := range b.subscribers {
		s.OnBounceFinished()
	}
}

// FreezeMovement holds or releases the body. Velocity is left untouched.
func (b *BounceStepper) FreezeMovement(freeze bool) {
	b.frozen = freeze
}

// DispatchContacts fires the contact events of the last step.
func (b *BounceStepper) DispatchContacts() {
	b.contacts.Flush(b.body.Collider(), b.listeners, b.router)
}

// SetPassThrough installs a predicate for colliders the body flies through.
func (b *BounceStepper) SetPassThrough(fn func(Collider) bool) { b.passThrough = fn }

// Subscribe registers a flight listener
func (b *BounceStepper) Subscribe(l BounceListener) {
	b.subscribers = append(b.subscribers, l)
}

// AddContactListener registers a listener for this body's contacts.
func (b *BounceStepper) AddContactListener(l ContactListener) {
	b.listeners = append(b.listeners, l)
}

// SetContactRouter sets where the other side of a contact is notified.
func (b *BounceStepper) SetContactRouter(r ContactRouter) { b.router = r }

func (b *BounceStepper) Velocity() Vec { return b.velocity }
func (b *BounceStepper) SetVelocity(v Vec) { b.velocity = v }
func (b *BounceStepper) Bounces() int { return b.bounces }
func (b *BounceStepper) Elapsed() float64 { return b.elapsed }
func (b *BounceStepper) Frozen() bool { return b.frozen }
func (b *BounceStepper) Finished() bool { return b.finished }
func (b *BounceStepper) Body() Body { return b.body }

// Holding reports whether a post-bounce freeze window is open
func (b *BounceStepper) Holding() bool { return b.freeze.Active() }

// Config returns the active tuning
func (b *BounceStepper) Config() BounceConfig { return b.cfg }

// SetConfig swaps the tuning for the next launch and the current flight.
func (b *BounceStepper) SetConfig(cfg BounceConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid bounce config: %w", err)
	}
	cfg.Filter = cfg.Filter.OrAll()
	b.cfg = cfg
	return nil
}
