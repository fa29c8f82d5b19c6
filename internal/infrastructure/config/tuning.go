package config

import (
	"fmt"

	"github.com/ertsnom99/plateformer-sub000/internal/domain/kinematic"
	"github.com/ertsnom99/plateformer-sub000/internal/domain/movement"
)

// DefaultTuning mirrors the domain defaults.
func DefaultTuning() TuningConfig {
	stepper := kinematic.DefaultStepperConfig()
	move := movement.DefaultConfig()
	bounce := kinematic.DefaultBounceConfig()

	return TuningConfig{
		Display: DisplayConfig{
			ScreenWidth:  640,
			ScreenHeight: 480,
			Scale:        2,
			Framerate:    60,
		},
		Physics: PhysicsSettings{
			Gravity:         stepper.Gravity.Y,
			FallMultiplier:  stepper.FallMultiplier,
			MaxFallSpeed:    stepper.MaxFallSpeed,
			GroundThreshold: stepper.GroundThreshold,
			ShellRadius:     stepper.ShellRadius,
			MinMoveDistance: stepper.MinMoveDistance,
		},
		Character: CharacterConfig{Radius: 0.45, MaxHealth: 3},
		Movement:  MovementConfig{MaxSpeed: move.MaxSpeed},
		Jump: JumpConfig{
			TakeOffSpeed: move.JumpTakeOffSpeed,
			CutFactor:    move.JumpCutFactor,
			Airborne:     move.AirborneJumpEnabled,
		},
		WallSlide: WallSlideConfig{
			Enabled:         move.WallSlideEnabled,
			GravityScale:    move.SlideGravityScale,
			ConstantSpeed:   move.ConstantSlideSpeed,
			AllowUpward:     move.AllowUpwardSlide,
			CheckDistance:   move.WallCheckDistance,
			NormalTolerance: move.WallNormalTolerance,
		},
		WallJump: WallJumpConfig{
			Enabled:      move.WallJumpEnabled,
			PushSpeed:    move.WallJumpPushSpeed,
			ControlDelay: move.WallJumpControlDelay,
			Grace:        move.WallJumpGrace,
		},
		Dash: DashConfig{
			Enabled:  move.DashEnabled,
			Speed:    move.DashSpeed,
			Duration: move.DashDuration,
			Cooldown: move.DashCooldown,
		},
		Knockback: KnockbackConfig{
			Force:        8,
			UpForce:      10,
			StunDuration: 0.3,
			Invulnerable: 1,
		},
		Bounce: BounceConfig{
			Radius:         0.3,
			LaunchSpeed:    14,
			GravityScale:   bounce.GravityScale,
			Restitution:    bounce.Restitution,
			MaxRetries:     bounce.MaxRetries,
			FreezeDuration: bounce.FreezeDuration,
			Policy:         bounce.Policy.String(),
			MaxDuration:    bounce.MaxDuration,
			MaxBounces:     bounce.MaxBounces,
			MinSpeed:       bounce.MinSpeed,
			FreezeOnFinish: bounce.FreezeOnFinish,
		},
		Simulation: SimulationConfig{
			TickRate:         50,
			MaxTicksPerFrame: 5,
			TimeScale:        1,
		},
	}
}

// ToStepperConfig converts the physics section.
func (c *TuningConfig) ToStepperConfig() kinematic.StepperConfig {
	return kinematic.StepperConfig{
		Gravity:         kinematic.Vec{X: 0, Y: c.Physics.Gravity},
		GravityScale:    1,
		FallMultiplier:  c.Physics.FallMultiplier,
		MaxFallSpeed:    c.Physics.MaxFallSpeed,
		GroundThreshold: c.Physics.GroundThreshold,
		MinMoveDistance: c.Physics.MinMoveDistance,
		ShellRadius:     c.Physics.ShellRadius,
		Filter:          kinematic.FilterAll,
	}
}

// ToMovementConfig converts the movement, jump, wall and dash sections.
func (c *TuningConfig) ToMovementConfig() movement.Config {
	return movement.Config{
		MaxSpeed:             c.Movement.MaxSpeed,
		JumpTakeOffSpeed:     c.Jump.TakeOffSpeed,
		JumpCutFactor:        c.Jump.CutFactor,
		NormalGravityScale:   1,
		SlideGravityScale:    c.WallSlide.GravityScale,
		ConstantSlideSpeed:   c.WallSlide.ConstantSpeed,
		AllowUpwardSlide:     c.WallSlide.AllowUpward,
		WallCheckDistance:    c.WallSlide.CheckDistance,
		WallNormalTolerance:  c.WallSlide.NormalTolerance,
		WallJumpPushSpeed:    c.WallJump.PushSpeed,
		WallJumpControlDelay: c.WallJump.ControlDelay,
		WallJumpGrace:        c.WallJump.Grace,
		DashSpeed:            c.Dash.Speed,
		DashDuration:         c.Dash.Duration,
		DashCooldown:         c.Dash.Cooldown,
		AirborneJumpEnabled:  c.Jump.Airborne,
		WallSlideEnabled:     c.WallSlide.Enabled,
		WallJumpEnabled:      c.WallJump.Enabled,
		DashEnabled:          c.Dash.Enabled,
	}
}

// ToBounceConfig converts the bounce section. Gravity and the cast
// tolerances come from the physics section.
func (c *TuningConfig) ToBounceConfig() (kinematic.BounceConfig, error) {
	policy, err := kinematic.ParseBouncePolicy(c.Bounce.Policy)
	if err != nil {
		return kinematic.BounceConfig{}, err
	}
	return kinematic.BounceConfig{
		Gravity:         kinematic.Vec{X: 0, Y: c.Physics.Gravity},
		GravityScale:    c.Bounce.GravityScale,
		Restitution:     c.Bounce.Restitution,
		MaxRetries:      c.Bounce.MaxRetries,
		ShellRadius:     c.Physics.ShellRadius,
		MinMoveDistance: c.Physics.MinMoveDistance,
		FreezeDuration:  c.Bounce.FreezeDuration,
		Policy:          policy,
		MaxDuration:     c.Bounce.MaxDuration,
		MaxBounces:      c.Bounce.MaxBounces,
		MinSpeed:        c.Bounce.MinSpeed,
		FreezeOnFinish:  c.Bounce.FreezeOnFinish,
		Filter:          kinematic.FilterAll,
	}, nil
}

// FixedDT returns the length of one fixed step in seconds.
func (c *TuningConfig) FixedDT() float64 {
	return 1 / float64(c.Simulation.TickRate)
}

// Validate reports values the simulation cannot run with.
func (c *TuningConfig) Validate() error {
	if err := c.ToStepperConfig().Validate(); err != nil {
		return fmt.Errorf("physics: %w", err)
	}
	if err := c.ToMovementConfig().Validate(); err != nil {
		return fmt.Errorf("movement: %w", err)
	}
	bounce, err := c.ToBounceConfig()
	if err != nil {
		return fmt.Errorf("bounce: %w", err)
	}
	if err := bounce.Validate(); err != nil {
		return fmt.Errorf("bounce: %w", err)
	}
	if c.Character.Radius <= 0 {
		return fmt.Errorf("character: radius %v must be positive", c.Character.Radius)
	}
	if c.Bounce.Radius <= 0 {
		return fmt.Errorf("bounce: radius %v must be positive", c.Bounce.Radius)
	}
	if c.Character.MaxHealth <= 0 {
		return fmt.Errorf("character: max health %d must be positive", c.Character.MaxHealth)
	}
	if c.Knockback.StunDuration < 0 {
		return fmt.Errorf("knockback: stun duration %v is negative", c.Knockback.StunDuration)
	}
	if c.Knockback.Invulnerable < 0 {
		return fmt.Errorf("knockback: invulnerable time %v is negative", c.Knockback.Invulnerable)
	}
	if c.Display.Framerate <= 0 {
		return fmt.Errorf("display: framerate %d must be positive", c.Display.Framerate)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("display: scale %d must be positive", c.Display.Scale)
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation: tick rate %d must be positive", c.Simulation.TickRate)
	}
	if c.Simulation.MaxTicksPerFrame <= 0 {
		return fmt.Errorf("simulation: max ticks per frame %d must be positive", c.Simulation.MaxTicksPerFrame)
	}
	if c.Simulation.TimeScale < 0 {
		return fmt.Errorf("simulation: time scale %v is negative", c.Simulation.TimeScale)
	}
	return nil
}
