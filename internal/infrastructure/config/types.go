package config

// TuningConfig is the root config for tuning.yaml or tuning.json.
//
// Files are decoded on top of DefaultTuning, so a file only lists the values
// it changes.
type TuningConfig struct {
	Display    DisplayConfig    `json:"display" yaml:"display"`
	Physics    PhysicsSettings  `json:"physics" yaml:"physics"`
	Character  CharacterConfig  `json:"character" yaml:"character"`
	Movement   MovementConfig   `json:"movement" yaml:"movement"`
	Jump       JumpConfig       `json:"jump" yaml:"jump"`
	WallSlide  WallSlideConfig  `json:"wallSlide" yaml:"wallSlide"`
	WallJump   WallJumpConfig   `json:"wallJump" yaml:"wallJump"`
	Dash       DashConfig       `json:"dash" yaml:"dash"`
	Knockback  KnockbackConfig  `json:"knockback" yaml:"knockback"`
	Bounce     BounceConfig     `json:"bounce" yaml:"bounce"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

type DisplayConfig struct {
	ScreenWidth  int `json:"screenWidth" yaml:"screenWidth"`
	ScreenHeight int `json:"screenHeight" yaml:"screenHeight"`
	Scale        int `json:"scale" yaml:"scale"` // window pixels per screen pixel
	Framerate    int `json:"framerate" yaml:"framerate"`
}

// PhysicsSettings are in world units (one tile) and seconds.
type PhysicsSettings struct {
	Gravity         float64 `json:"gravity" yaml:"gravity"`
	FallMultiplier  float64 `json:"fallMultiplier" yaml:"fallMultiplier"`
	MaxFallSpeed    float64 `json:"maxFallSpeed" yaml:"maxFallSpeed"`
	GroundThreshold float64 `json:"groundThreshold" yaml:"groundThreshold"`
	ShellRadius     float64 `json:"shellRadius" yaml:"shellRadius"`
	MinMoveDistance float64 `json:"minMoveDistance" yaml:"minMoveDistance"`
}

type CharacterConfig struct {
	Radius    float64 `json:"radius" yaml:"radius"`
	MaxHealth int     `json:"maxHealth" yaml:"maxHealth"`
}

type MovementConfig struct {
	MaxSpeed float64 `json:"maxSpeed" yaml:"maxSpeed"`
}

type JumpConfig struct {
	TakeOffSpeed float64 `json:"takeOffSpeed" yaml:"takeOffSpeed"`
	CutFactor    float64 `json:"cutFactor" yaml:"cutFactor"`
	Airborne     bool    `json:"airborne" yaml:"airborne"`
}

type WallSlideConfig struct {
	Enabled         bool    `json:"enabled" yaml:"enabled"`
	GravityScale    float64 `json:"gravityScale" yaml:"gravityScale"`
	ConstantSpeed   bool    `json:"constantSpeed" yaml:"constantSpeed"`
	AllowUpward     bool    `json:"allowUpward" yaml:"allowUpward"`
	CheckDistance   float64 `json:"checkDistance" yaml:"checkDistance"`
	NormalTolerance float64 `json:"normalTolerance" yaml:"normalTolerance"`
}

type WallJumpConfig struct {
	Enabled      bool    `json:"enabled" yaml:"enabled"`
	PushSpeed    float64 `json:"pushSpeed" yaml:"pushSpeed"`
	ControlDelay float64 `json:"controlDelay" yaml:"controlDelay"`
	Grace        float64 `json:"grace" yaml:"grace"`
}

type DashConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Speed    float64 `json:"speed" yaml:"speed"`
	Duration float64 `json:"duration" yaml:"duration"`
	Cooldown float64 `json:"cooldown" yaml:"cooldown"`
}

type KnockbackConfig struct {
	Force        float64 `json:"force" yaml:"force"`
	UpForce      float64 `json:"upForce" yaml:"upForce"`
	StunDuration float64 `json:"stunDuration" yaml:"stunDuration"`
	Invulnerable float64 `json:"invulnerable" yaml:"invulnerable"` // seconds without damage after a hit
}

type BounceConfig struct {
	Radius         float64 `json:"radius" yaml:"radius"`
	LaunchSpeed    float64 `json:"launchSpeed" yaml:"launchSpeed"`
	GravityScale   float64 `json:"gravityScale" yaml:"gravityScale"`
	Restitution    float64 `json:"restitution" yaml:"restitution"`
	MaxRetries     int     `json:"maxRetries" yaml:"maxRetries"`
	FreezeDuration float64 `json:"freezeDuration" yaml:"freezeDuration"`
	Policy         string  `json:"policy" yaml:"policy"` // duration, count or speed
	MaxDuration    float64 `json:"maxDuration" yaml:"maxDuration"`
	MaxBounces     int     `json:"maxBounces" yaml:"maxBounces"`
	MinSpeed       float64 `json:"minSpeed" yaml:"minSpeed"`
	FreezeOnFinish bool    `json:"freezeOnFinish" yaml:"freezeOnFinish"`
}

type SimulationConfig struct {
	TickRate         int     `json:"tickRate" yaml:"tickRate"` // fixed steps per second
	MaxTicksPerFrame int     `json:"maxTicksPerFrame" yaml:"maxTicksPerFrame"`
	TimeScale        float64 `json:"timeScale" yaml:"timeScale"`
}
