package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Velocity3 is a velocity in meters per second.
type Velocity3 = mgl64.Vec3

// Position3 is a position in meters, relative to the viewer.
type Position3 = mgl64.Vec3

// Motion is the linear and angular velocity state of a body.
type Motion struct {
	Linear  Velocity3
	Angular Velocity3
}

// Validate reports ErrNonFinite if any component is NaN or infinite.
func (m Motion) Validate() error {
	if !IsFinite(m.Linear) {
		return fmt.Errorf("linear velocity %v: %w", m.Linear, ErrNonFinite)
	}
	if !IsFinite(m.Angular) {
		return fmt.Errorf("angular velocity %v: %w", m.Angular, ErrNonFinite)
	}
	return nil
}

// Speed returns the magnitude of the linear velocity.
func (m Motion) Speed() float64 { return m.Linear.Len() }

// Mode is the simulation mode of a body.
type Mode uint8

const (
	ModeStatic Mode = iota
	ModeDynamic
	ModeKinematic
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeDynamic:
		return "dynamic"
	case ModeKinematic:
		return "kinematic"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode accepts the lower-case names produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "static":
		return ModeStatic, nil
	case "dynamic", "":
		return ModeDynamic, nil
	case "kinematic":
		return ModeKinematic, nil
	default:
		return ModeStatic, fmt.Errorf("unknown physics mode %q", s)
	}
}

// Material holds the contact coefficients of a body.
type Material struct {
	Friction    float64
	Restitution float64
}

func (m Material) Validate() error {
	if m.Friction < 0 || m.Restitution < 0 || m.Restitution > 1 ||
		math.IsNaN(m.Friction) || math.IsNaN(m.Restitution) {
		return fmt.Errorf("friction=%g restitution=%g: %w", m.Friction, m.Restitution, ErrInvalidMaterial)
	}
	return nil
}

// Sphere is the only geometry the scene knows about.
type Sphere struct {
	Radius float64
}

func (s Sphere) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("radius %g: %w", s.Radius, ErrInvalidRadius)
	}
	return nil
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Transform3D is the placement of an entity. Rotation is not modelled.
type Transform3D struct{ Pos Position3 }
