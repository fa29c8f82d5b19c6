// Package movement implements platformer character movement on top of a
// kinematic.Stepper: running, jumping, double jumping, wall sliding, wall
// jumping, dashing and knockback.
package movement

import (
	"errors"
	"fmt"
	"math"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
)

var ErrNilStepper = errors.New("movement: stepper is required")

// Machine turns inputs into stepper velocities.
//
// ComputeVelocity runs once per rendered frame and decides what the next
// fixed step does. FixedStep runs at the fixed rate, moves the body and
// advances the timed windows. Dash, wall slide and knockback each override
// velocity; entering one cancels the others.
type Machine struct {
	cfg     Config
	stepper *kinematic.Stepper
	inputs  Inputs

	facing       float64
	prevPosition kinematic.Vec

	grounded              bool
	airborneJumpAvailable bool
	jumpCancelled         bool
	sliding               bool
	dashing               bool
	knockedBack           bool

	hitWall     bool
	wallNormalX float64

	triggeredJump         bool
	triggeredAirborneJump bool
	triggeredDash         bool

	dash         kinematic.Window
	dashCooldown kinematic.Window
	wallJumpWait kinematic.Window // grace after leaving a wall
	controlDelay kinematic.Window

	// share of the cooldown already spent when the cooldown window opened
	cooldownOffset float64

	airborneJumpEnabled bool
	wallSlideEnabled    bool
	wallJumpEnabled     bool
	dashEnabled         bool

	observers []Observer
}

// New creates a machine driving stepper.
func New(stepper *kinematic.Stepper, cfg Config) (*Machine, error) {
	if stepper == nil {
		return nil, ErrNilStepper
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid movement config: %w", err)
	}
	m := &Machine{
		cfg:                   cfg,
		stepper:               stepper,
		facing:                1,
		prevPosition:          stepper.Body().Position(),
		airborneJumpAvailable: true,
		airborneJumpEnabled:   cfg.AirborneJumpEnabled,
		wallSlideEnabled:      cfg.WallSlideEnabled,
		wallJumpEnabled:       cfg.WallJumpEnabled,
		dashEnabled:           cfg.DashEnabled,
	}
	stepper.SetGravityScale(cfg.NormalGravityScale)
	stepper.SetHitHook(m.onHit)
	return m, nil
}

// SetInputs stores the inputs of the current frame. Ignored while knocked
// back.
func (m *Machine) SetInputs(in Inputs) {
	if m.knockedBack {
		return
	}
	m.inputs = in.Clamped()
}

// ComputeVelocity evaluates the frame's inputs. At most one of jump, wall
// jump, airborne jump and dash fires per fixed step.
func (m *Machine) ComputeVelocity() {
	in := m.inputs
	grounded := m.stepper.Grounded()

	if !m.triggered() && !m.knockedBack {
		switch {
		case grounded && in.JumpPressed:
			m.jump()
			m.triggeredJump = true
			m.notify(func(o Observer) { o.OnJump(JumpGrounded) })
		case m.wallJumpEnabled && in.JumpPressed && (m.sliding || m.wallJumpWait.Active()):
			m.wallJump()
			m.triggeredJump = true
			m.notify(func(o Observer) { o.OnJump(JumpWall) })
		case m.airborneJumpEnabled && in.JumpPressed && !grounded && m.airborneJumpAvailable:
			m.airborneJump()
			m.triggeredAirborneJump = true
			m.notify(func(o Observer) { o.OnJump(JumpAirborne) })
		case m.dashEnabled && in.DashPressed && !m.dash.Active() && !m.dashCooldown.Active():
			m.startDash()
			m.triggeredDash = true
		}
	}

	if v := m.stepper.Velocity(); v.Y > 0 && in.JumpReleased && !m.jumpCancelled {
		m.stepper.SetVerticalVelocity(v.Y * m.cfg.JumpCutFactor)
		m.jumpCancelled = true
	}

	if !m.controlDelay.Active() && !m.dash.Active() {
		m.stepper.SetTargetHorizontal(in.Horizontal * m.cfg.MaxSpeed)
	}
}

// FixedStep moves the body one fixed step and updates every state.
func (m *Machine) FixedStep(dt float64) {
	if dt <= 0 || !m.stepper.Enabled() {
		return
	}

	m.prevPosition = m.stepper.Body().Position()
	if !m.knockedBack && !m.sliding {
		if vx := m.stepper.TargetHorizontal(); vx != 0 {
			m.facing = math.Copysign(1, vx)
		}
	}

	if m.sliding && m.cfg.ConstantSlideSpeed && m.stepper.Velocity().Y < 0 {
		m.stepper.SetVerticalVelocity(0)
	}

	wasGrounded := m.grounded
	m.stepper.Step(dt)
	m.grounded = m.stepper.Grounded()

	m.advanceWindows(dt)
	m.dashing = m.dash.Active()

	m.updateWallSlide()

	if m.grounded || m.sliding {
		m.airborneJumpAvailable = true
		m.jumpCancelled = false
		if m.controlDelay.Active() && !m.knockedBack {
			m.controlDelay.Cancel()
		}
	}
	if m.grounded && !wasGrounded {
		m.notify(func(o Observer) { o.OnLanded() })
	}

	m.triggeredJump = false
	m.triggeredAirborneJump = false
	m.triggeredDash = false
	m.hitWall = false
}

// advanceWindows ticks every window. The cooldown goes first so one opened
// by an expiring dash starts counting on the next step.
func (m *Machine) advanceWindows(dt float64) {
	if m.dashCooldown.Active() {
		if m.dashCooldown.Advance(dt) {
			m.notify(func(o Observer) { o.OnDashCooldownOver() })
		} else {
			progress := m.cooldownProgress()
			m.notify(func(o Observer) { o.OnDashCooldownProgress(progress) })
		}
	}

	m.wallJumpWait.Advance(dt)

	if m.controlDelay.Advance(dt) && m.knockedBack {
		m.knockedBack = false
		// the knockback push would otherwise flip facing for a frame
		m.stepper.SetTargetHorizontal(0)
	}

	if m.dash.Advance(dt) {
		m.endDash()
	}
}

func (m *Machine) cooldownProgress() float64 {
	if m.cfg.DashCooldown <= 0 {
		return 1
	}
	return math.Min(1, (m.cooldownOffset+m.dashCooldown.Elapsed())/m.cfg.DashCooldown)
}

func (m *Machine) onHit(hit kinematic.Hit, _ kinematic.Pass) {
	if math.Abs(hit.Normal.Y) < m.cfg.WallNormalTolerance && hit.Normal.X != 0 {
		m.hitWall = true
		m.wallNormalX = hit.Normal.X
	}
}

func (m *Machine) updateWallSlide() {
	if m.sliding {
		movingAway := m.stepper.TargetHorizontal()*m.wallNormalX > 0
		switch {
		case m.grounded:
			m.stopSlide(true)
		case !m.hitWall && movingAway:
			m.stopSlide(true)
		case !m.wallAhead(-m.facing):
			m.stopSlide(true)
		}
		return
	}

	if !m.wallSlideEnabled || m.grounded || m.knockedBack || !m.hitWall {
		return
	}
	if m.stepper.Velocity().Y > 0 && !m.cfg.AllowUpwardSlide {
		return
	}
	if m.wallAhead(m.facing) {
		m.startSlide()
	}
}

// wallAhead casts from the body along dir looking for a wall facing it.
func (m *Machine) wallAhead(dir float64) bool {
	ray := kinematic.Vec{X: dir, Y: 0}
	hits := m.stepper.Caster().Cast(m.stepper.Body(), ray, m.stepper.Config().Filter, m.cfg.WallCheckDistance)
	for _, hit := range hits {
		if math.Abs(hit.Normal.Y) < m.cfg.WallNormalTolerance && hit.Normal.X*dir < 0 {
			return true
		}
	}
	return false
}

// startSlide turns the body away from the wall. Facing holds while sliding,
// so a dash or wall jump leaves the wall.
func (m *Machine) startSlide() {
	m.sliding = true
	m.facing = math.Copysign(1, m.wallNormalX)
	m.stepper.SetVelocity(kinematic.Vec{})
	if m.dash.Active() {
		m.cancelDash()
	}
	m.wallJumpWait.Cancel()
	m.stepper.SetGravityScale(m.cfg.SlideGravityScale)
	m.notify(func(o Observer) { o.OnSlide(true) })
}

// stopSlide leaves the wall. grace opens the wall jump grace window.
func (m *Machine) stopSlide(grace bool) {
	if !m.sliding {
		return
	}
	m.sliding = false
	if !m.dash.Active() {
		m.stepper.SetGravityScale(m.cfg.NormalGravityScale)
	}
	if grace {
		m.wallJumpWait.Open(m.cfg.WallJumpGrace)
	}
	m.notify(func(o Observer) { o.OnSlide(false) })
}

func (m *Machine) jump() {
	m.stepper.SetVerticalVelocity(m.cfg.JumpTakeOffSpeed)
	m.stepper.SetGravityScale(m.cfg.NormalGravityScale)
}

func (m *Machine) airborneJump() {
	m.jump()
	m.airborneJumpAvailable = false
	m.jumpCancelled = false
}

func (m *Machine) wallJump() {
	away := math.Copysign(1, m.wallNormalX)
	if m.wallNormalX == 0 {
		away = -m.facing
	}
	m.stopSlide(false)
	m.jump()
	m.stepper.SetTargetHorizontal(away * m.cfg.WallJumpPushSpeed)
	m.wallJumpWait.Cancel()
	m.controlDelay.Open(m.cfg.WallJumpControlDelay)
}

func (m *Machine) startDash() {
	m.stopSlide(false)
	m.wallJumpWait.Cancel()
	m.controlDelay.Cancel()

	m.stepper.SetVerticalVelocity(0)
	m.stepper.SetTargetHorizontal(m.cfg.DashSpeed * m.facing)
	m.stepper.SetGravityScale(0)

	m.dash.Open(m.cfg.DashDuration)
	m.dashing = true
	m.notify(func(o Observer) { o.OnDashUsed() })
}

// endDash runs when the dash window expires.
func (m *Machine) endDash() {
	m.dashing = false
	m.restoreGravity()
	m.openCooldown(m.dash.Duration())
}

// cancelDash stops a dash early. The cooldown still runs from its start.
func (m *Machine) cancelDash() {
	spent := m.dash.Elapsed()
	m.dash.Cancel()
	m.dashing = false
	m.restoreGravity()
	m.openCooldown(spent)
}

func (m *Machine) openCooldown(spent float64) {
	m.cooldownOffset = spent
	m.dashCooldown.Open(math.Max(0, m.cfg.DashCooldown-spent))
}

func (m *Machine) restoreGravity() {
	if m.sliding {
		m.stepper.SetGravityScale(m.cfg.SlideGravityScale)
		return
	}
	m.stepper.SetGravityScale(m.cfg.NormalGravityScale)
}

// KnockBack pushes the body by force and takes control away for delay
// seconds.
func (m *Machine) KnockBack(force kinematic.Vec, delay float64) {
	m.inputs = Inputs{}
	m.triggeredJump = false
	m.triggeredAirborneJump = false
	m.triggeredDash = false

	if m.sliding {
		m.sliding = false
		m.notify(func(o Observer) { o.OnSlide(false) })
	}
	m.dash.Cancel()
	m.dashing = false
	if m.dashCooldown.Active() {
		m.dashCooldown.Cancel()
		m.notify(func(o Observer) { o.OnDashCooldownOver() })
	}
	m.wallJumpWait.Cancel()
	m.controlDelay.Cancel()

	m.stepper.SetGravityScale(m.cfg.NormalGravityScale)
	m.stepper.SetTargetHorizontal(force.X)
	m.stepper.AddVerticalVelocity(force.Y)

	m.knockedBack = true
	m.controlDelay.Open(delay)
}

// AddVerticalVelocity adds an impulse, e.g. from a spring.
func (m *Machine) AddVerticalVelocity(dy float64) {
	m.stepper.AddVerticalVelocity(dy)
}

func (m *Machine) triggered() bool {
	return m.triggeredJump || m.triggeredAirborneJump || m.triggeredDash
}

func (m *Machine) notify(fn func(Observer)) {
	for _, o := range m.observers {
		fn(o)
	}
}

// Subscribe registers an observer
func (m *Machine) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Feature toggles only gate entry; windows already open keep running.

func (m *Machine) EnableAirborneJump(enabled bool) { m.airborneJumpEnabled = enabled }
func (m *Machine) EnableWallJump(enabled bool)     { m.wallJumpEnabled = enabled }
func (m *Machine) EnableSlideOfWall(enabled bool)  { m.wallSlideEnabled = enabled }
func (m *Machine) EnableDash(enabled bool)         { m.dashEnabled = enabled }

// SetConfig swaps the tuning. Feature toggles are left as they are.
func (m *Machine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid movement config: %w", err)
	}
	m.cfg = cfg
	return nil
}

func (m *Machine) Config() Config { return m.cfg }

func (m *Machine) IsGrounded() bool            { return m.grounded }
func (m *Machine) IsAirborne() bool            { return !m.grounded }
func (m *Machine) IsDashing() bool             { return m.dashing }
func (m *Machine) IsSlidingOfWall() bool       { return m.sliding }
func (m *Machine) IsKnockedBack() bool         { return m.knockedBack }
func (m *Machine) AirborneJumpAvailable() bool { return m.airborneJumpAvailable }
func (m *Machine) InWallJumpGrace() bool       { return m.wallJumpWait.Active() }
func (m *Machine) ControlDelayed() bool        { return m.controlDelay.Active() }
func (m *Machine) DashOnCooldown() bool        { return m.dashCooldown.Active() }
func (m *Machine) TriggeredJump() bool         { return m.triggeredJump }
func (m *Machine) TriggeredAirborneJump() bool { return m.triggeredAirborneJump }
func (m *Machine) TriggeredDash() bool         { return m.triggeredDash }

// Facing returns 1 or -1, the sign of the last non-zero horizontal target.
func (m *Machine) Facing() float64 { return m.facing }

// Velocity returns the velocity resolved by the last fixed step
func (m *Machine) Velocity() kinematic.Vec { return m.stepper.Velocity() }

// Position returns the body position
func (m *Machine) Position() kinematic.Vec { return m.stepper.Body().Position() }

// PreviousPosition returns the body position before the last fixed step.
// Renderers interpolate between it and Position.
func (m *Machine) PreviousPosition() kinematic.Vec { return m.prevPosition }

// Inputs returns the inputs of the current frame
func (m *Machine) Inputs() Inputs { return m.inputs }

// Stepper returns the underlying stepper
func (m *Machine) Stepper() *kinematic.Stepper { return m.stepper }
