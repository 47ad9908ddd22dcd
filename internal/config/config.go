package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/physics"
	"github.com/zeusync/jitterball/internal/core/scene"
	"github.com/zeusync/jitterball/internal/telemetry"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the file-level configuration of the jitterball host. Every field
// is optional; missing ones keep the values from Default.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Perturb   PerturbConfig   `yaml:"perturb"`
	Scene     SceneConfig     `yaml:"scene"`
	Sphere    SphereConfig    `yaml:"sphere"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type PerturbConfig struct {
	TickInterval     time.Duration `yaml:"tick_interval"`
	TriggerThreshold float64       `yaml:"trigger_threshold"`
	CoinGate         bool          `yaml:"coin_gate"`
	NudgeRange       float64       `yaml:"nudge_range"`
	MaxSpeed         float64       `yaml:"max_speed"`
	// Seed makes runs reproducible. Empty seeds from the clock.
	Seed string `yaml:"seed"`
}

type SceneConfig struct {
	FrameInterval time.Duration `yaml:"frame_interval"`
	Gravity       [3]float64    `yaml:"gravity"`
	BoundsMin     [3]float64    `yaml:"bounds_min"`
	BoundsMax     [3]float64    `yaml:"bounds_max"`
}

// SphereConfig holds the one-time setup values of the demo sphere.
type SphereConfig struct {
	Name            string     `yaml:"name"`
	Radius          float64    `yaml:"radius"`
	Mass            float64    `yaml:"mass"`
	Friction        float64    `yaml:"friction"`
	Restitution     float64    `yaml:"restitution"`
	Mode            string     `yaml:"mode"`
	Position        [3]float64 `yaml:"position"`
	LinearVelocity  [3]float64 `yaml:"linear_velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
}

type TelemetryConfig struct {
	Enabled          bool          `yaml:"enabled"`
	ListenAddr       string        `yaml:"listen_addr"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	IncludeRuntime   bool          `yaml:"include_runtime_metrics"`
}

// Default returns the demo setup: a 5 cm sphere half a meter in front of the
// viewer, drifting at (0.25, 0.2, 0.15) m/s.
func Default() Config {
	pc := perturb.DefaultConfig()
	sc := scene.DefaultConfig()
	return Config{
		Log: LogConfig{Level: "info", Encoding: "json"},
		Perturb: PerturbConfig{
			TickInterval:     pc.TickInterval,
			TriggerThreshold: pc.TriggerThreshold,
			CoinGate:         pc.CoinGate,
			NudgeRange:       pc.NudgeRange,
			MaxSpeed:         pc.MaxSpeed,
		},
		Scene: SceneConfig{
			FrameInterval: time.Second / 60,
			Gravity:       sc.Gravity,
			BoundsMin:     sc.BoundsMin,
			BoundsMax:     sc.BoundsMax,
		},
		Sphere: SphereConfig{
			Name:           "sphere",
			Radius:         0.05,
			Mass:           1.0,
			Friction:       0.5,
			Restitution:    0.8,
			Mode:           physics.ModeDynamic.String(),
			Position:       [3]float64{0, 0, -0.5},
			LinearVelocity: [3]float64{0.25, 0.2, 0.15},
		},
		Telemetry: TelemetryConfig{
			Enabled:          true,
			ListenAddr:       "127.0.0.1:8787",
			SnapshotInterval: 100 * time.Millisecond,
		},
	}
}

// Load reads a YAML file. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays YAML from r on top of Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Log.ToLogger(); err != nil {
		return fmt.Errorf("%w: log: %w", ErrInvalidConfig, err)
	}
	if err := c.Perturb.ToScheduler().Validate(); err != nil {
		return fmt.Errorf("%w: perturb: %w", ErrInvalidConfig, err)
	}
	if c.Scene.FrameInterval <= 0 {
		return fmt.Errorf("%w: scene: frame interval %v", ErrInvalidConfig, c.Scene.FrameInterval)
	}
	if err := c.Scene.ToScene().Validate(); err != nil {
		return fmt.Errorf("%w: scene: %w", ErrInvalidConfig, err)
	}
	sphere, err := c.Sphere.Entity()
	if err != nil {
		return fmt.Errorf("%w: sphere: %w", ErrInvalidConfig, err)
	}
	if err := sphere.Validate(); err != nil {
		return fmt.Errorf("%w: sphere: %w", ErrInvalidConfig, err)
	}
	if c.Telemetry.Enabled {
		if err := c.Telemetry.ToServer().Validate(); err != nil {
			return fmt.Errorf("%w: telemetry: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c LogConfig) ToLogger() (log.Config, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.Config{}, err
	}
	if c.Encoding != "" && c.Encoding != "json" && c.Encoding != "console" {
		return log.Config{}, fmt.Errorf("unknown log encoding %q", c.Encoding)
	}
	return log.Config{Level: level, Encoding: c.Encoding}, nil
}

func (c PerturbConfig) ToScheduler() perturb.Config {
	return perturb.Config{
		TickInterval:     c.TickInterval,
		TriggerThreshold: c.TriggerThreshold,
		CoinGate:         c.CoinGate,
		NudgeRange:       c.NudgeRange,
		MaxSpeed:         c.MaxSpeed,
	}
}

// Source returns the random source selected by Seed.
func (c PerturbConfig) Source() perturb.Source {
	if c.Seed == "" {
		return perturb.NewTimeSource()
	}
	return perturb.NewSource(perturb.SeedFromString(c.Seed))
}

func (c SceneConfig) ToScene() scene.Config {
	return scene.Config{
		Gravity:   c.Gravity,
		BoundsMin: c.BoundsMin,
		BoundsMax: c.BoundsMax,
	}
}

func (c TelemetryConfig) ToServer() telemetry.Config {
	return telemetry.Config{
		ListenAddr:       c.ListenAddr,
		SnapshotInterval: c.SnapshotInterval,
	}
}

// Entity builds the sphere entity described by the config.
func (c SphereConfig) Entity() (*scene.Entity, error) {
	mode, err := physics.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	return scene.NewSphere(c.Name, c.Radius, c.Position).
		GenerateCollisionShape().
		WithBody(scene.PhysicsBody{
			Mass:     c.Mass,
			Material: physics.Material{Friction: c.Friction, Restitution: c.Restitution},
			Mode:     mode,
		}).
		WithMotion(physics.Motion{
			Linear:  c.LinearVelocity,
			Angular: c.AngularVelocity,
		}), nil
}
