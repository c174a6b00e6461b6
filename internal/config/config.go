package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/strider/internal/physics"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Level      LevelConfig      `yaml:"level"`
	Logging    LoggingConfig    `yaml:"logging"`
	Console    ConsoleConfig    `yaml:"console"`
}

type ControllerConfig struct {
	Height           float64 `yaml:"height"`
	WalkSpeed        float64 `yaml:"walk_speed"`
	RunSpeed         float64 `yaml:"run_speed"`
	InitialSpeed     float64 `yaml:"initial_speed"`
	JumpVelocity     float64 `yaml:"jump_velocity"`
	Gravity          float64 `yaml:"gravity"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity"`
	RayOffset        float64 `yaml:"ray_offset"`
	FloorTag         string  `yaml:"floor_tag"`
	PitchLimit       float64 `yaml:"pitch_limit"`
}

type LevelConfig struct {
	Path  string    `yaml:"path"`
	Spawn []float64 `yaml:"spawn"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type ConsoleConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	MovePulse    time.Duration `yaml:"move_pulse"`
	// LookStep is the pointer delta in pixels injected per arrow key.
	LookStep float64 `yaml:"look_step"`
}

func Default() *Config {
	t := physics.DefaultTuning()
	return &Config{
		Controller: ControllerConfig{
			Height:           t.Height,
			WalkSpeed:        t.WalkSpeed,
			RunSpeed:         t.RunSpeed,
			InitialSpeed:     t.InitialSpeed,
			JumpVelocity:     t.JumpVelocity,
			Gravity:          t.Gravity,
			MouseSensitivity: t.MouseSensitivity,
			RayOffset:        t.RayOffset,
			FloorTag:         t.FloorTag,
			PitchLimit:       t.PitchLimit,
		},
		Level: LevelConfig{
			Path:  "levels/demo.yaml",
			Spawn: []float64{0, 0, 3},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Console: ConsoleConfig{
			TickInterval: 16 * time.Millisecond,
			MovePulse:    180 * time.Millisecond,
			LookStep:     50,
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	ctl := c.Controller
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("controller.%s must be positive, got %v", name, v))
		}
	}
	positive("height", ctl.Height)
	positive("walk_speed", ctl.WalkSpeed)
	positive("run_speed", ctl.RunSpeed)
	positive("gravity", ctl.Gravity)
	positive("mouse_sensitivity", ctl.MouseSensitivity)
	if ctl.JumpVelocity < 0 {
		errs = append(errs, fmt.Errorf("controller.jump_velocity must not be negative, got %v", ctl.JumpVelocity))
	}
	if ctl.RayOffset < 0 {
		errs = append(errs, fmt.Errorf("controller.ray_offset must not be negative, got %v", ctl.RayOffset))
	}
	if ctl.PitchLimit < 0 {
		errs = append(errs, fmt.Errorf("controller.pitch_limit must not be negative, got %v", ctl.PitchLimit))
	}
	if ctl.FloorTag == "" {
		errs = append(errs, errors.New("controller.floor_tag is empty"))
	}
	if len(c.Level.Spawn) != 3 {
		errs = append(errs, fmt.Errorf("level.spawn needs 3 coordinates, got %d", len(c.Level.Spawn)))
	}
	if c.Console.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("console.tick_interval must be positive, got %v", c.Console.TickInterval))
	}
	return errors.Join(errs...)
}

func (c ControllerConfig) Tuning() physics.Tuning {
	return physics.Tuning{
		Height:           c.Height,
		WalkSpeed:        c.WalkSpeed,
		RunSpeed:         c.RunSpeed,
		InitialSpeed:     c.InitialSpeed,
		JumpVelocity:     c.JumpVelocity,
		Gravity:          c.Gravity,
		MouseSensitivity: c.MouseSensitivity,
		RayOffset:        c.RayOffset,
		FloorTag:         c.FloorTag,
		PitchLimit:       c.PitchLimit,
	}
}

// SpawnPoint returns the configured spawn, or the origin if it is malformed.
func (l LevelConfig) SpawnPoint() mgl64.Vec3 {
	if len(l.Spawn) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{l.Spawn[0], l.Spawn[1], l.Spawn[2]}
}
