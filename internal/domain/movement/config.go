package movement

import "fmt"

// Config tunes a Machine.
type Config struct {
	MaxSpeed         float64
	JumpTakeOffSpeed float64
	JumpCutFactor    float64 // applied once when jump is released while rising

	NormalGravityScale float64
	SlideGravityScale  float64
	ConstantSlideSpeed bool
	AllowUpwardSlide   bool

	WallCheckDistance   float64
	WallNormalTolerance float64

	WallJumpPushSpeed    float64
	WallJumpControlDelay float64
	WallJumpGrace        float64

	DashSpeed    float64
	DashDuration float64
	DashCooldown float64 // measured from the start of the dash

	AirborneJumpEnabled bool
	WallSlideEnabled    bool
	WallJumpEnabled     bool
	DashEnabled         bool
}

// DefaultConfig returns a usable starting point.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:             6,
		JumpTakeOffSpeed:     15,
		JumpCutFactor:        0.5,
		NormalGravityScale:   1,
		SlideGravityScale:    0.2,
		ConstantSlideSpeed:   false,
		WallCheckDistance:    0.1,
		WallNormalTolerance:  1e-3,
		WallJumpPushSpeed:    8,
		WallJumpControlDelay: 0.2,
		WallJumpGrace:        0.1,
		DashSpeed:            15,
		DashDuration:         0.5,
		DashCooldown:         1.0,
		AirborneJumpEnabled:  true,
		WallSlideEnabled:     true,
		WallJumpEnabled:      true,
		DashEnabled:          true,
	}
}

// Validate reports values the machine cannot run with.
func (c Config) Validate() error {
	if c.MaxSpeed < 0 {
		return fmt.Errorf("max speed %v is negative", c.MaxSpeed)
	}
	if c.JumpCutFactor < 0 || c.JumpCutFactor > 1 {
		return fmt.Errorf("jump cut factor %v out of [0,1]", c.JumpCutFactor)
	}
	if c.WallCheckDistance < 0 {
		return fmt.Errorf("wall check distance %v is negative", c.WallCheckDistance)
	}
	if c.WallNormalTolerance <= 0 || c.WallNormalTolerance >= 1 {
		return fmt.Errorf("wall normal tolerance %v out of (0,1)", c.WallNormalTolerance)
	}
	for name, d := range map[string]float64{
		"wall jump control delay": c.WallJumpControlDelay,
		"wall jump grace":         c.WallJumpGrace,
		"dash duration":           c.DashDuration,
		"dash cooldown":           c.DashCooldown,
	} {
		if d < 0 {
			return fmt.Errorf("%s %v is negative", name, d)
		}
	}
	return nil
}
