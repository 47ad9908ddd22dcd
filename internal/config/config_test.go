package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/physics"
	"github.com/zeusync/jitterball/internal/core/scene"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, perturb.DefaultConfig(), cfg.Perturb.ToScheduler())
	assert.Equal(t, [3]float64{0.25, 0.2, 0.15}, cfg.Sphere.LinearVelocity)
	assert.Equal(t, [3]float64{0, 0, -0.5}, cfg.Sphere.Position)
	assert.Equal(t, 0.05, cfg.Sphere.Radius)
	assert.Equal(t, 0.5, cfg.Sphere.Friction)
	assert.Equal(t, 0.8, cfg.Sphere.Restitution)
}

func TestDecodeEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeOverlay(t *testing.T) {
	src := `
log:
  level: debug
  encoding: console
perturb:
  tick_interval: 10ms
  coin_gate: false
  seed: demo
scene:
  gravity: [0, -9.81, 0]
sphere:
  restitution: 0.6
  linear_velocity: [0.1, 0, 0]
telemetry:
  enabled: false
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.Perturb.TickInterval)
	assert.False(t, cfg.Perturb.CoinGate)
	assert.Equal(t, 0.995, cfg.Perturb.TriggerThreshold, "untouched fields keep defaults")
	assert.Equal(t, [3]float64{0, -9.81, 0}, cfg.Scene.Gravity)
	assert.Equal(t, 0.6, cfg.Sphere.Restitution)
	assert.Equal(t, 0.5, cfg.Sphere.Friction)
	assert.False(t, cfg.Telemetry.Enabled)

	logCfg, err := cfg.Log.ToLogger()
	require.NoError(t, err)
	assert.Equal(t, log.Config{Level: log.LevelDebug, Encoding: "console"}, logCfg)
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "perturb:\n  bogus: 1\n",
		"bad level":       "log:\n  level: loud\n",
		"bad encoding":    "log:\n  encoding: xml\n",
		"bad threshold":   "perturb:\n  trigger_threshold: 1.5\n",
		"zero tick":       "perturb:\n  tick_interval: 0s\n",
		"bad bounds":      "scene:\n  bounds_min: [1, 1, 1]\n",
		"bad mode":        "sphere:\n  mode: floating\n",
		"zero frame":      "scene:\n  frame_interval: 0s\n",
		"short vector":    "sphere:\n  position: [0, 0]\n",
		"empty telemetry": "telemetry:\n  listen_addr: \"\"\n",
		"negative radius": "sphere:\n  radius: -1\n",
		"zero mass":       "sphere:\n  mass: 0\n",
		"bad restitution": "sphere:\n  restitution: 1.5\n",
		"bad friction":    "sphere:\n  friction: -0.1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "jitterball.yaml")
	require.NoError(t, os.WriteFile(path, []byte("perturb:\n  nudge_range: 0.05\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Perturb.NudgeRange)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSphereEntity(t *testing.T) {
	e, err := Default().Sphere.Entity()
	require.NoError(t, err)

	assert.Equal(t, "sphere", e.Name)
	assert.Equal(t, physics.Position3{0, 0, -0.5}, e.Transform.Pos)
	require.NotNil(t, e.Collision)
	assert.Equal(t, 0.05, e.Collision.Radius)
	require.NotNil(t, e.Body)
	assert.Equal(t, physics.ModeDynamic, e.Body.Mode)
	assert.Equal(t, physics.Material{Friction: 0.5, Restitution: 0.8}, e.Body.Material)
	assert.Equal(t, physics.Velocity3{0.25, 0.2, 0.15}, e.Motion.Linear)
	assert.Equal(t, physics.Velocity3{}, e.Motion.Angular)
}

func TestSeededSourceIsReproducible(t *testing.T) {
	pc := Default().Perturb
	pc.Seed = "replay"
	a, b := pc.Source(), pc.Source()
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "jitterball.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, 16666*time.Microsecond, cfg.Perturb.TickInterval)
	assert.Equal(t, Default().Sphere, cfg.Sphere)
}

func TestValidateRejectsInvalidSphere(t *testing.T) {
	cfg := Default()
	cfg.Sphere.Radius = -1
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, scene.ErrInvalidEntity)
	assert.ErrorIs(t, err, physics.ErrInvalidRadius)

	path := filepath.Join(t.TempDir(), "jitterball.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sphere:\n  radius: -1\n"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, scene.ErrInvalidEntity)
}
